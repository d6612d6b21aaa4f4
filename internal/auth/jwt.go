package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims representa as informações presentes em um token de acesso: a
// identidade mínima necessária para autorizar operações.
type Claims struct {
	Codigo string `json:"codigo"`
	Nome   string `json:"nome"`
	Papel  string `json:"papel"`
	jwt.RegisteredClaims
}

// JWTManager encapsula geração e validação de tokens.
type JWTManager struct {
	secret    []byte
	accessTTL time.Duration
}

// NewJWTManager cria o gerenciador com segredo e TTL configurados.
func NewJWTManager(secret string, accessTTL time.Duration) *JWTManager {
	return &JWTManager{secret: []byte(secret), accessTTL: accessTTL}
}

// GenerateAccessToken cria um JWT HS256 carregando a identidade do usuário.
func (m *JWTManager) GenerateAccessToken(subject, codigo, nome, papel string) (string, string, error) {
	now := time.Now().UTC()
	jti := uuid.NewString()

	claims := Claims{
		Codigo: codigo,
		Nome:   nome,
		Papel:  papel,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        jti,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", "", err
	}

	return signed, jti, nil
}

// ParseAndValidate verifica assinatura e expiração.
func (m *JWTManager) ParseAndValidate(tokenString string) (*Claims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	token, err := parser.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("token inválido")
	}

	return claims, nil
}
