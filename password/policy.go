package password

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

const (
	// MinLength is the minimum password length in bytes.
	MinLength = 8
	// SpecialChars are the characters that satisfy the special-character rule.
	SpecialChars = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`
)

var (
	ErrPolicy          = errors.New("password does not meet all requirements")
	ErrCurrentRequired = errors.New("current password is required")
	ErrNewRequired     = errors.New("new password is required")
	ErrTooShort        = fmt.Errorf("password must be at least %d characters long", MinLength)
	ErrMismatch        = errors.New("passwords do not match")
	ErrSameAsCurrent   = errors.New("new password cannot be the same as current password")
)

// Report is the per-rule outcome of [Check].
type Report struct {
	MinLength   bool
	Uppercase   bool
	Lowercase   bool
	Number      bool
	SpecialChar bool
}

// OK reports whether every rule passed.
func (r Report) OK() bool {
	return r.MinLength && r.Uppercase && r.Lowercase && r.Number && r.SpecialChar
}

// Missing lists the failed rules in display order.
func (r Report) Missing() []string {
	var out []string
	if !r.MinLength {
		out = append(out, fmt.Sprintf("at least %d characters", MinLength))
	}
	if !r.Uppercase {
		out = append(out, "one uppercase letter")
	}
	if !r.Lowercase {
		out = append(out, "one lowercase letter")
	}
	if !r.Number {
		out = append(out, "one number")
	}
	if !r.SpecialChar {
		out = append(out, "one special character")
	}
	return out
}

// Check evaluates pw against each rule. Only ASCII letters and digits count
// toward the letter and number rules.
func Check(pw string) Report {
	r := Report{MinLength: len(pw) >= MinLength}
	for _, c := range pw {
		switch {
		case c > unicode.MaxASCII:
		case 'A' <= c && c <= 'Z':
			r.Uppercase = true
		case 'a' <= c && c <= 'z':
			r.Lowercase = true
		case '0' <= c && c <= '9':
			r.Number = true
		case strings.ContainsRune(SpecialChars, c):
			r.SpecialChar = true
		}
	}
	return r
}

// Validate returns an error wrapping [ErrPolicy] when pw fails any rule.
func Validate(pw string) error {
	r := Check(pw)
	if r.OK() {
		return nil
	}
	return fmt.Errorf("%w: needs %s", ErrPolicy, strings.Join(r.Missing(), ", "))
}

// ValidateChange applies the change-password rules in the order an operator
// would fix them.
func ValidateChange(current, next, confirm string) error {
	switch {
	case current == "":
		return ErrCurrentRequired
	case next == "":
		return ErrNewRequired
	case len(next) < MinLength:
		return ErrTooShort
	case next != confirm:
		return ErrMismatch
	case next == current:
		return ErrSameAsCurrent
	}
	return nil
}

// ValidateReset applies the reset rules: full policy, then confirmation.
func ValidateReset(next, confirm string) error {
	if err := Validate(next); err != nil {
		return err
	}
	if next != confirm {
		return ErrMismatch
	}
	return nil
}
