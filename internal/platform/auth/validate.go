package auth

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"library-backend/internal/platform/validation"
)

var (
	reUsernameChars = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	rePersonName    = regexp.MustCompile(`^[A-Za-z\s]+$`)
)

const passwordSpecials = "!@#$%^&*"

func init() {
	validation.RegisterRule("username_chars", func(fl validator.FieldLevel) bool {
		return reUsernameChars.MatchString(fl.Field().String())
	})
	validation.RegisterRule("person_name", func(fl validator.FieldLevel) bool {
		return rePersonName.MatchString(fl.Field().String())
	})
	validation.RegisterRule("password_classes", func(fl validator.FieldLevel) bool {
		return hasPasswordClasses(fl.Field().String())
	})
}

func (r *RegisterRequest) normalize() {
	r.Surname = strings.TrimSpace(r.Surname)
	r.Firstname = strings.TrimSpace(r.Firstname)
	r.Username = strings.TrimSpace(r.Username)
	r.DisplayName = strings.TrimSpace(r.DisplayName)
	if r.MiddleInitial != nil {
		mi := strings.TrimSpace(*r.MiddleInitial)
		r.MiddleInitial = &mi
		if mi == "" {
			r.MiddleInitial = nil
		}
	}
}

func validateRegistration(r *RegisterRequest) error {
	return validation.Check(r, registrationMessage)
}

func registrationMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "username":
		if fe.Tag() == "required" {
			return "Username is required."
		}
		return "Username must be 3-30 letters, numbers or underscores."
	case "password":
		switch fe.Tag() {
		case "required":
			return "Password is required."
		case "min", "max":
			return "Password must be between 8 and 128 characters long."
		}
		return "Password must contain at least one uppercase letter, one lowercase letter, one number, and one special character."
	case "firstname":
		if fe.Tag() == "required" {
			return "First name is required."
		}
		return "First name must be at most 50 letters and spaces."
	case "surname":
		if fe.Tag() == "required" {
			return "Surname is required."
		}
		return "Surname must be at most 50 letters and spaces."
	case "middleInitial":
		return "Middle initial must be a single letter."
	case "displayName":
		if fe.Tag() == "required" {
			return "Display name is required."
		}
		return "Display name must not exceed 100 characters."
	}
	return fe.Field() + " is invalid."
}

func hasPasswordClasses(p string) bool {
	var upper, lower, digit, special bool
	for _, r := range p {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	return upper && lower && digit && special
}
