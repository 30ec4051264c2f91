package utils

import "github.com/google/uuid"

func GenerateID() string {
	return uuid.NewString()
}

func IsValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
