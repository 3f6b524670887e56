package utils

import (
	"github.com/google/uuid"
)

// GenerateID returns a new time-ordered unique identifier string
func GenerateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
