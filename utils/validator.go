package utils

import (
	"net/mail"
	"strings"

	"download-request-service/model"
)

// ValidateEmail checks that the address parses and carries a domain part.
func ValidateEmail(email string) error {
	if email == "" {
		return ErrEmptyEmail
	}

	addr, err := mail.ParseAddress(email)
	if err != nil {
		return ErrInvalidEmail
	}

	// Reject display-name forms ("Name <a@b.com>"), only bare addresses here
	if addr.Address != email {
		return ErrInvalidEmail
	}

	at := strings.LastIndex(email, "@")
	if at < 1 || !strings.Contains(email[at+1:], ".") {
		return ErrInvalidEmail
	}

	return nil
}

// ValidateReason checks the reason against the closed enumeration.
func ValidateReason(reason model.RequestReason) error {
	if !reason.Valid() {
		return ErrInvalidReason
	}
	return nil
}

// ValidatePriority checks the priority against the closed enumeration.
func ValidatePriority(priority model.RequestPriority) error {
	if !priority.Valid() {
		return ErrInvalidPriority
	}
	return nil
}
