package services

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	generatedPasswordLen = 16
	symbols              = "!@#$%&*"
	upperLetters         = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowerLetters         = "abcdefghijklmnopqrstuvwxyz"
	digits               = "0123456789"
)

// HashAdminPassword returns the bcrypt hash to put in ADMIN_PASSWORD_HASH.
func HashAdminPassword(plain string) (string, error) {
	if strings.TrimSpace(plain) == "" {
		return "", invalidf("HashAdminPassword", "password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// AdminCredentials checks Basic auth logins against the configured username and bcrypt hash.
// An empty hash rejects everyone.
type AdminCredentials struct {
	Username     string
	PasswordHash string
}

func (c AdminCredentials) Check(username, password string) bool {
	if c.PasswordHash == "" || c.Username == "" {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.Username)) == 1
	passOK := bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)) == nil
	return userOK && passOK
}

// GenerateSecurePassword returns a random password with at least one uppercase letter,
// one lowercase letter, one digit and one symbol. Do not log the returned string.
func GenerateSecurePassword() (string, error) {
	pick := func(s string) (byte, error) {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(s))))
		if err != nil {
			return 0, err
		}
		return s[n.Int64()], nil
	}

	result := make([]byte, 0, generatedPasswordLen)
	for _, set := range []string{upperLetters, lowerLetters, digits, symbols} {
		b, err := pick(set)
		if err != nil {
			return "", err
		}
		result = append(result, b)
	}
	all := upperLetters + lowerLetters + digits + symbols
	for len(result) < generatedPasswordLen {
		b, err := pick(all)
		if err != nil {
			return "", err
		}
		result = append(result, b)
	}

	// Fisher-Yates
	for i := len(result) - 1; i >= 1; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", fmt.Errorf("shuffle: %w", err)
		}
		j := int(n.Int64())
		result[i], result[j] = result[j], result[i]
	}
	return string(result), nil
}
