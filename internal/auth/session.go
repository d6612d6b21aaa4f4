package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
)

var (
	// ErrSessaoInvalida é retornado quando o token de sessão é inválido ou expirado.
	ErrSessaoInvalida = errors.New("sessão inválida")
)

// GenerateSessionToken cria token de sessão aleatório e seu hash persistível.
// Somente o hash vai para o banco; o valor bruto fica com o cliente.
func GenerateSessionToken() (raw string, hashed string, err error) {
	buf := make([]byte, 32)
	if _, err = rand.Read(buf); err != nil {
		return "", "", err
	}

	raw = base64.RawURLEncoding.EncodeToString(buf)
	hashed = HashSessionToken(raw)
	return raw, hashed, nil
}

// HashSessionToken produz hash SHA-256 base64 do token bruto.
func HashSessionToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// SessionRedisKey monta chave única para o estado da sessão no Redis.
func SessionRedisKey(hash string) string {
	return fmt.Sprintf("sessao:%s", hash)
}
