package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("senha123")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if IsLegacyHash(hash) {
		t.Fatalf("hash novo não deveria ser detectado como legado: %s", hash)
	}

	ok, err := Verify("senha123", hash)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatal("senha correta rejeitada")
	}

	ok, err = Verify("senha-errada", hash)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Fatal("senha errada aceita")
	}
}

func TestVerifyLegacyHash(t *testing.T) {
	sum := sha256.Sum256([]byte("outrasenha"))
	legacy := hex.EncodeToString(sum[:])

	if !IsLegacyHash(legacy) {
		t.Fatalf("hash SHA-256 não detectado como legado: %s", legacy)
	}

	ok, err := Verify("outrasenha", legacy)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatal("senha correta rejeitada no formato legado")
	}

	ok, err = Verify("senha-errada", legacy)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Fatal("senha errada aceita no formato legado")
	}
}

func TestSessionTokenRoundTrip(t *testing.T) {
	raw, hashed, err := GenerateSessionToken()
	if err != nil {
		t.Fatalf("GenerateSessionToken: %v", err)
	}
	if raw == "" || hashed == "" {
		t.Fatal("token ou hash vazios")
	}
	if HashSessionToken(raw) != hashed {
		t.Fatal("hash do token não é determinístico")
	}
	if raw == hashed {
		t.Fatal("token bruto igual ao hash")
	}
}
