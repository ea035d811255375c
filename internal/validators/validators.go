// Package validators contrôle les formulaires avant tout appel distant.
package validators

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"samudra_back_end/internal/models"
)

const MinPasswordLength = 6

var (
	ErrInvalidEmail     = errors.New("please enter a valid email address")
	ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrPasswordMismatch = errors.New("passwords don't match")
)

var (
	emailRegex   = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRegex   = regexp.MustCompile(`^(\+91[\-\s]?)?[6-9]\d{9}$`)
	pincodeRegex = regexp.MustCompile(`^[1-9]\d{5}$`)
)

// FieldError signale un champ invalide du formulaire de livraison.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

func ValidateEmail(email string) error {
	if !emailRegex.MatchString(strings.TrimSpace(email)) {
		return ErrInvalidEmail
	}
	return nil
}

func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

// ValidateSignup vérifie l'e-mail, la longueur du mot de passe et sa confirmation.
func ValidateSignup(email, password, confirm string) error {
	if err := ValidateEmail(email); err != nil {
		return err
	}
	if password != confirm {
		return ErrPasswordMismatch
	}
	return ValidatePassword(password)
}

// ValidateDelivery exige tous les champs sauf les notes.
func ValidateDelivery(d models.DeliveryDetails) error {
	required := []struct {
		field, value string
	}{
		{"name", d.Name},
		{"phone", d.Phone},
		{"address", d.Address},
		{"city", d.City},
		{"pincode", d.Pincode},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &FieldError{Field: r.field, Message: "is required"}
		}
	}
	if !phoneRegex.MatchString(strings.TrimSpace(d.Phone)) {
		return &FieldError{Field: "phone", Message: "must be a valid 10-digit mobile number"}
	}
	if !pincodeRegex.MatchString(strings.TrimSpace(d.Pincode)) {
		return &FieldError{Field: "pincode", Message: "must be 6 digits"}
	}
	if utf8.RuneCountInString(d.Notes) > 500 {
		return &FieldError{Field: "notes", Message: "must be at most 500 characters"}
	}
	return nil
}
