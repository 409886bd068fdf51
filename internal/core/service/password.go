package service

import (
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/userdesk/user-management/internal/core/domain"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// MaxPasswordBytes is the bcrypt input limit.
const MaxPasswordBytes = 72

// hashCost is a test seam; production always uses bcrypt.DefaultCost.
var hashCost = bcrypt.DefaultCost

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func passwordMatches(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// checkNewPassword flags a password that is too short or not confirmed.
func checkNewPassword(ve *domain.ValidationError, password, confirmation string) {
	checkPasswordLength(ve, password)
	if password != confirmation {
		ve.Add("password", "password confirmation does not match")
	}
}

func checkPasswordLength(ve *domain.ValidationError, password string) {
	switch {
	case len(password) < MinPasswordLength:
		ve.Add("password", "password must be at least 8 characters")
	case len(password) > MaxPasswordBytes:
		ve.Add("password", "password may not be greater than 72 bytes")
	}
}

func checkName(ve *domain.ValidationError, name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		ve.Add("name", "name is required")
	}
	return name
}

func checkEmail(ve *domain.ValidationError, email string) string {
	email = domain.NormalizeEmail(email)
	if email == "" {
		ve.Add("email", "email is required")
	}
	return email
}

func emailTaken() *domain.ValidationError {
	return domain.NewValidationError("email", "email has already been taken")
}
