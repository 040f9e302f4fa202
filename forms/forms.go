package forms

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/MrEthical07/perksAdmin/api"
	"github.com/MrEthical07/perksAdmin/password"
)

// SignIn is the sign-in form.
type SignIn struct {
	Email    string   `form:"email" validate:"required,email"`
	Password string   `form:"password" validate:"required"`
	Role     api.Role `form:"role" validate:"required,oneof=admin user store"`
}

// ChangePassword is the settings-page password form.
type ChangePassword struct {
	Current string `form:"currentPassword" validate:"required"`
	New     string `form:"newPassword" validate:"required,min=8,eqfield=Confirm,nefield=Current"`
	Confirm string `form:"confirmPassword"`
}

// ForgotPassword starts the reset flow.
type ForgotPassword struct {
	Email string `form:"email" validate:"required,email"`
}

// VerifyOTP is the six-digit code form.
type VerifyOTP struct {
	Email string `form:"email" validate:"required,email"`
	OTP   string `form:"otp" validate:"required,len=6,number"`
}

// ResetPassword sets a new password at the end of the reset flow.
type ResetPassword struct {
	Password string `form:"password" validate:"required,password_policy"`
	Confirm  string `form:"confirmPassword" validate:"eqfield=Password"`
}

// CreateNotification is the broadcast form.
type CreateNotification struct {
	Title       string `form:"title" validate:"required,max=120"`
	Description string `form:"description" validate:"required,max=1000"`
}

// ValidationErrors maps form field names to messages.
type ValidationErrors map[string]string

func (e ValidationErrors) Error() string {
	keys := slices.Sorted(maps.Keys(e))
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e[k]))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// First returns the message of the first field in sorted order, for screens
// that show a single error line.
func (e ValidationErrors) First() string {
	keys := slices.Sorted(maps.Keys(e))
	if len(keys) == 0 {
		return ""
	}
	return e[keys[0]]
}

var (
	once     sync.Once
	validate *validator.Validate
)

func engine() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("password_policy", func(fl validator.FieldLevel) bool {
			return password.Check(fl.Field().String()).OK()
		})
		validate = v
	})
	return validate
}

// Validate checks form and returns [ValidationErrors] or nil. Surrounding
// whitespace is not trimmed; callers decide what the operator meant.
func Validate(form any) error {
	err := engine().Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := make(ValidationErrors, len(verrs))
	for _, fe := range verrs {
		if _, exists := out[fe.Field()]; exists {
			continue
		}
		out[fe.Field()] = message(form, fe)
	}
	return out
}

func message(form any, fe validator.FieldError) string {
	switch form.(type) {
	case SignIn, *SignIn:
		if fe.Tag() == "required" {
			return "Please fill in all fields"
		}
	case ChangePassword, *ChangePassword:
		switch {
		case fe.Field() == "currentPassword":
			return "Current password is required"
		case fe.Tag() == "required":
			return "New password is required"
		case fe.Tag() == "min":
			return "Password must be at least 8 characters long"
		case fe.Tag() == "eqfield":
			return "Passwords do not match"
		case fe.Tag() == "nefield":
			return "New password cannot be the same as current password"
		}
	case VerifyOTP, *VerifyOTP:
		if fe.Field() == "otp" {
			return "Please enter all 6 digits"
		}
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "Please enter a valid email address"
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", fe.Field(), fe.Param())
	case "eqfield":
		return "Passwords do not match"
	case "password_policy":
		return "Password does not meet all requirements"
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
