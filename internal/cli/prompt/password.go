package prompt

import (
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
)

// ErrPasswordMismatch indicates the password and its confirmation differ.
var ErrPasswordMismatch = errors.New("passwords do not match")

// Password prompts for a masked password.
func Password(label string) (string, error) {
	p := promptui.Prompt{
		Label: label,
		Mask:  '*',
	}

	result, err := p.Run()
	return result, wrapError(err)
}

// PasswordWithValidation prompts for a masked password enforcing a
// minimum length.
func PasswordWithValidation(label string, minLength int) (string, error) {
	p := promptui.Prompt{
		Label: label,
		Mask:  '*',
		Validate: func(input string) error {
			if len(input) < minLength {
				return fmt.Errorf("password must be at least %d characters", minLength)
			}
			return nil
		},
	}

	result, err := p.Run()
	return result, wrapError(err)
}

// PasswordWithConfirmation prompts for a password twice and verifies
// both entries match.
func PasswordWithConfirmation(label, confirmLabel string, minLength int) (string, error) {
	password, err := PasswordWithValidation(label, minLength)
	if err != nil {
		return "", err
	}

	confirm, err := Password(confirmLabel)
	if err != nil {
		return "", err
	}

	if password != confirm {
		return "", ErrPasswordMismatch
	}

	return password, nil
}

// NewPassword prompts for a new password with confirmation using the
// default labels and an 8-character minimum.
func NewPassword() (string, error) {
	return PasswordWithConfirmation("Password", "Confirm password", 8)
}
