package utils

import (
	"strings"

	"github.com/google/uuid"
)

// NewInstanceID returns a random opaque calendar instance id.
func NewInstanceID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return "advent-" + strings.ReplaceAll(id.String(), "-", "")[:12], nil
}
