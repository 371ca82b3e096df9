package admin

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// VerifyToken checks if the provided token matches the stored hash
func VerifyToken(hashedToken, plainToken string) bool {
	if hashedToken == "" || plainToken == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(hashedToken), []byte(plainToken))
	return err == nil
}

// HashToken hashes an admin token for ADMIN_TOKEN_HASH
func HashToken(plainToken string) (string, error) {
	if plainToken == "" {
		return "", fmt.Errorf("admin token is empty")
	}
	hashedToken, err := bcrypt.GenerateFromPassword([]byte(plainToken), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash token: %w", err)
	}
	return string(hashedToken), nil
}
