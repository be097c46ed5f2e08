package validator

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var tickerPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9.\-]{0,11}$`)

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

func init() {
	// Initialize validation
	validate = validator.New(validator.WithRequiredStructEnabled())
	if err := Register(validate); err != nil {
		panic(err)
	}
}

// GetValidator returns the process-wide validator with the custom rules registered.
func GetValidator() *validator.Validate {
	return validate
}

// Register adds the custom rules ("ticker", "loglevel", "bcryptpw") to v. It is used on
// both the shared instance and gin's binding validator.
func Register(v *validator.Validate) error {
	if err := v.RegisterValidation("ticker", validateTicker); err != nil {
		return fmt.Errorf("failed to register ticker validation: %w", err)
	}
	if err := v.RegisterValidation("loglevel", validateLogLevel); err != nil {
		return fmt.Errorf("failed to register loglevel validation: %w", err)
	}
	if err := v.RegisterValidation("bcryptpw", validateBcryptPassword); err != nil {
		return fmt.Errorf("failed to register bcryptpw validation: %w", err)
	}
	return nil
}

// RegisterBinding installs the custom rules on gin's request validator.
func RegisterBinding() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected binding validator %T", binding.Validator.Engine())
	}
	return Register(v)
}

// IsTicker reports whether s looks like an exchange ticker such as "BRK.B".
func IsTicker(s string) bool {
	return tickerPattern.MatchString(strings.TrimSpace(s))
}

func validateTicker(fl validator.FieldLevel) bool {
	return IsTicker(fl.Field().String())
}

func validateLogLevel(fl validator.FieldLevel) bool {
	var level slog.Level
	return level.UnmarshalText([]byte(fl.Field().String())) == nil
}

// bcrypt limits the password in bytes, not characters.
func validateBcryptPassword(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= MaxPasswordBytes
}
