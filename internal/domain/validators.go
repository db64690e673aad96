package domain

import (
	"fmt"
	"regexp"
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-]{3,32}$`)
)

// ValidateEmail checks if an email address is valid.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidateUsername checks the display-name rules (3-32 word characters).
func ValidateUsername(username string) error {
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username must be 3-32 letters, digits, dash or underscore")
	}
	return nil
}

// ValidatePositiveAmount checks that a points amount is positive.
func ValidatePositiveAmount(amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive, got %d", amount)
	}
	return nil
}

// ValidateOdds checks that scaled decimal odds are at least evens (100).
func ValidateOdds(odds int64) error {
	if odds < 100 {
		return fmt.Errorf("odds must be at least 100 (1.00), got %d", odds)
	}
	return nil
}

// ValidatePrediction checks that a predicted side is A or B.
func ValidatePrediction(side Side) error {
	if side != SideA && side != SideB {
		return fmt.Errorf("prediction must be A or B, got %q", side)
	}
	return nil
}
