package util

import (
	"errors"
	"strings"
	"time"
)

// DateLayout é o formato de data usado nos formulários (ISO, sem hora).
const DateLayout = "2006-01-02"

// RequireString garante string não vazia.
func RequireString(value, field string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New(field + " obrigatório")
	}
	return nil
}

// ValidatePassword verifica requisitos mínimos de senha.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("senha deve ter pelo menos 8 caracteres")
	}
	return nil
}

// ParseDate interpreta uma data de formulário; vazio devolve zero value sem erro.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, errors.New("data inválida, use AAAA-MM-DD")
	}
	return t, nil
}
