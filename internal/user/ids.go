package user

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
)

func newUserID() string {
	return uuid.New().String()
}

func newResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
