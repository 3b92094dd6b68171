package service

import (
	"fmt"
	"unicode"

	"github.com/noormarket/internal/config"
)

func validatePassword(policy config.PasswordPolicyConfig, password string) error {
	minLength := policy.MinLength
	if minLength <= 0 {
		minLength = 8
	}
	if len([]rune(password)) < minLength {
		return fmt.Errorf("%w: at least %d characters required", ErrPasswordTooWeak, minLength)
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsNumber(r):
			hasNumber = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}

	if policy.RequireUpper && !hasUpper {
		return fmt.Errorf("%w: uppercase letter required", ErrPasswordTooWeak)
	}
	if policy.RequireLower && !hasLower {
		return fmt.Errorf("%w: lowercase letter required", ErrPasswordTooWeak)
	}
	if policy.RequireNumber && !hasNumber {
		return fmt.Errorf("%w: number required", ErrPasswordTooWeak)
	}
	if policy.RequireSpecial && !hasSpecial {
		return fmt.Errorf("%w: special character required", ErrPasswordTooWeak)
	}
	return nil
}
