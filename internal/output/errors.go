package output

import (
	"errors"
	"fmt"

	"github.com/fatih/color"

	perksAdmin "github.com/MrEthical07/perksAdmin"
	"github.com/MrEthical07/perksAdmin/api"
	"github.com/MrEthical07/perksAdmin/forms"
)

// Exit code constants
const (
	ExitSuccess     = 0
	ExitGeneral     = 1
	ExitUsageError  = 2
	ExitAuthError   = 3
	ExitConfigError = 4
	ExitNetwork     = 5
)

// CLIError is a structured error with user-facing context
type CLIError struct {
	Summary    string
	Detail     string
	Suggestion string
	ExitCode   int
	Err        error
}

// Error implements the error interface, returning the summary
func (e *CLIError) Error() string {
	return e.Summary
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// Describe converts a command error into a [CLIError] with a suggestion where
// one is known. A *CLIError is returned unchanged.
func Describe(err error) *CLIError {
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr
	}

	var verrs forms.ValidationErrors
	if errors.As(err, &verrs) {
		return &CLIError{Summary: verrs.First(), Detail: verrs.Error(), ExitCode: ExitUsageError, Err: err}
	}

	switch {
	case errors.Is(err, perksAdmin.ErrNotAuthenticated):
		return &CLIError{Summary: "not signed in", Suggestion: "run 'perks-admin login'", ExitCode: ExitAuthError, Err: err}
	case errors.Is(err, perksAdmin.ErrNoResetEmail):
		return &CLIError{Summary: err.Error(), Suggestion: "run 'perks-admin password forgot --email <address>' first", ExitCode: ExitUsageError, Err: err}
	case errors.Is(err, perksAdmin.ErrNoResetToken), errors.Is(err, perksAdmin.ErrResetSessionExpired):
		return &CLIError{Summary: err.Error(), Suggestion: "request a new code with 'perks-admin password forgot'", ExitCode: ExitUsageError, Err: err}
	case errors.Is(err, perksAdmin.ErrInvalidConfig):
		return &CLIError{Summary: "invalid configuration", Detail: err.Error(), Suggestion: "check .perks-admin.yaml and PERKS_ADMIN_* variables", ExitCode: ExitConfigError, Err: err}
	}

	if apiErr, ok := api.AsError(err); ok {
		switch apiErr.Kind {
		case api.KindUnauthorized:
			return &CLIError{Summary: "session expired", Detail: apiErr.Message, Suggestion: "run 'perks-admin login'", ExitCode: ExitAuthError, Err: err}
		case api.KindNetwork:
			return &CLIError{Summary: "cannot reach the Perks API", Detail: apiErr.Error(), Suggestion: "check api.base_url and your connection", ExitCode: ExitNetwork, Err: err}
		}
		return &CLIError{Summary: api.Message(err, "request failed"), Detail: apiErr.Error(), ExitCode: ExitGeneral, Err: err}
	}

	return &CLIError{Summary: err.Error(), ExitCode: ExitGeneral, Err: err}
}

// FormatError prints a structured error message to stderr
func (p *Printer) FormatError(e *CLIError) {
	if p.useColors {
		color.New(color.FgRed, color.Bold).Fprintf(p.err, "Error: %s\n", e.Summary)
		if e.Detail != "" && e.Detail != e.Summary {
			fmt.Fprintf(p.err, "  Cause: %s\n", e.Detail)
		}
		if e.Suggestion != "" {
			color.New(color.FgCyan).Fprintf(p.err, "  Suggestion: %s\n", e.Suggestion)
		}
	} else {
		fmt.Fprintf(p.err, "[ERROR] %s\n", e.Summary)
		if e.Detail != "" && e.Detail != e.Summary {
			fmt.Fprintf(p.err, "  Cause: %s\n", e.Detail)
		}
		if e.Suggestion != "" {
			fmt.Fprintf(p.err, "  Suggestion: %s\n", e.Suggestion)
		}
	}
}
