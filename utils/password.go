package utils

import "golang.org/x/crypto/bcrypt"

// MinPasswordLen applies to staff and customer accounts alike, including admins made by
// scripts/create_admin.
const MinPasswordLen = 6

// HashPassword returns the bcrypt hash stored in users.password. Plaintext never reaches the DB.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches a stored hash. Login answers 401 on false
// without saying which half of the credentials was wrong.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
