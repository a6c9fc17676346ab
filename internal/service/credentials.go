package service

import "golang.org/x/crypto/bcrypt"

// passwordCost фиксированный work factor bcrypt.
const passwordCost = 10

// HashPassword возвращает новый солёный хеш пароля.
func HashPassword(plaintext string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plaintext), passwordCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// VerifyPassword сравнивает пароль с хешем. Повреждённый хеш даёт false.
func VerifyPassword(plaintext, storedHash string) bool {
	if storedHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(plaintext)) == nil
}
