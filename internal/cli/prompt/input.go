// Package prompt provides interactive terminal prompts for depotctl.
package prompt

import (
	"errors"

	"github.com/manifoldco/promptui"
)

// ErrAborted is returned when the user cancels a prompt with Ctrl+C.
var ErrAborted = errors.New("aborted")

// IsAborted reports whether err indicates the user cancelled the prompt.
func IsAborted(err error) bool {
	return errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrAbort) || errors.Is(err, ErrAborted)
}

// wrapError normalizes promptui interrupt/abort errors to ErrAborted.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if IsAborted(err) {
		return ErrAborted
	}
	return err
}

// Input prompts for free text with a default value.
func Input(label string, defaultValue string) (string, error) {
	p := promptui.Prompt{
		Label:   label,
		Default: defaultValue,
	}

	result, err := p.Run()
	return result, wrapError(err)
}

// InputRequired prompts for text that must not be empty.
func InputRequired(label string) (string, error) {
	p := promptui.Prompt{
		Label: label,
		Validate: func(input string) error {
			if input == "" {
				return promptui.ErrAbort
			}
			return nil
		},
	}

	result, err := p.Run()
	return result, wrapError(err)
}

// InputOptional prompts for text that may be left empty.
func InputOptional(label string) (string, error) {
	p := promptui.Prompt{
		Label: label + " (optional)",
	}

	result, err := p.Run()
	return result, wrapError(err)
}
