package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"regexp"

	"github.com/alexedwards/argon2id"
)

var params = &argon2id.Params{
	Memory:      64 * 1024, // 64 MB
	Iterations:  3,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

// Bases antigas guardam SHA-256 puro da senha (64 dígitos hex, sem salt).
var legacyHashPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// Hash gera um hash Argon2id (inclui os parâmetros dentro do próprio hash).
func Hash(password string) (string, error) {
	return argon2id.CreateHash(password, params)
}

// Verify compara a senha com o hash armazenado. Aceita tanto Argon2id quanto
// o formato legado SHA-256; neste último caso a comparação é em tempo constante.
func Verify(password, encodedHash string) (bool, error) {
	if IsLegacyHash(encodedHash) {
		sum := sha256.Sum256([]byte(password))
		computed := hex.EncodeToString(sum[:])
		return subtle.ConstantTimeCompare([]byte(computed), []byte(encodedHash)) == 1, nil
	}
	return argon2id.ComparePasswordAndHash(password, encodedHash)
}

// IsLegacyHash informa se o hash veio da base antiga e precisa ser atualizado
// no próximo login bem-sucedido.
func IsLegacyHash(encodedHash string) bool {
	return legacyHashPattern.MatchString(encodedHash)
}
