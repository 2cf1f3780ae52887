// Package secret генерирует и проверяет одноразовые коды подтверждения.
//
// Открытый код существует только в памяти между генерацией и отправкой:
// в хранилище попадает лишь bcrypt-хеш.
package secret

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// ErrMismatch код не совпадает с сохранённым хешем.
var ErrMismatch = errors.New("secret mismatch")

// Generate возвращает случайную строку длины length из символов alphabet.
// Символы выбираются равновероятно через crypto/rand.
func Generate(alphabet string, length int) (string, error) {
	const op = "secret.Generate"
	symbols := []rune(alphabet)
	if len(symbols) < 2 || length <= 0 {
		return "", fmt.Errorf("%s: invalid alphabet or length", op)
	}
	limit := big.NewInt(int64(len(symbols)))
	out := make([]rune, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		out[i] = symbols[n.Int64()]
	}
	return string(out), nil
}

// Hash хеширует код для хранения.
func Hash(code string) (string, error) {
	const op = "secret.Hash"
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hash), nil
}

// Compare сравнивает код с хешем за постоянное время.
func Compare(hash, code string) error {
	if hash == "" || code == "" {
		return ErrMismatch
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatch
		}
		return fmt.Errorf("secret.Compare: %w", err)
	}
	return nil
}
