package validator

import (
	"regexp"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the format birth dates are stored in.
const DateLayout = "2006-01-02"

const (
	MinPasswordLength = 8
	AdultAge          = 18
)

var phonePattern = regexp.MustCompile(`^[0-9]{10}$`)

type CustomValidator struct {
	validator *validator.Validate
	now       func() time.Time
}

func NewValidator() *CustomValidator {
	cv := &CustomValidator{
		validator: validator.New(),
		now:       time.Now,
	}
	_ = cv.validator.RegisterValidation("phone10", func(fl validator.FieldLevel) bool {
		return IsValidPhone(fl.Field().String())
	})
	_ = cv.validator.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
		return PasswordStrength(fl.Field().String()).Valid()
	})
	_ = cv.validator.RegisterValidation("adult", func(fl validator.FieldLevel) bool {
		birth, err := time.Parse(DateLayout, fl.Field().String())
		if err != nil {
			return false
		}
		return IsAdult(birth, cv.now())
	})
	return cv
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func (cv *CustomValidator) FormatValidationErrors(err error) map[string]string {
	errors := make(map[string]string)

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			field := e.Field()
			switch e.Tag() {
			case "required":
				errors[field] = field + " is required"
			case "email":
				errors[field] = field + " must be a valid email address"
			case "min":
				errors[field] = field + " must be at least " + e.Param() + " characters"
			case "max":
				errors[field] = field + " must be at most " + e.Param() + " characters"
			case "gte":
				errors[field] = field + " must be greater than or equal to " + e.Param()
			case "lte":
				errors[field] = field + " must be less than or equal to " + e.Param()
			case "eqfield":
				errors[field] = field + " must match " + e.Param()
			case "oneof":
				errors[field] = field + " must be one of " + e.Param()
			case "phone10":
				errors[field] = field + " must be exactly 10 digits"
			case "strongpassword":
				errors[field] = field + " must have 8 characters, upper and lower case letters, a digit, a special character and no repeated consecutive digits"
			case "adult":
				errors[field] = field + " must be a date (YYYY-MM-DD) at least 18 years ago"
			default:
				errors[field] = field + " is invalid"
			}
		}
	}

	return errors
}

// Strength lists each password requirement separately so a form can
// toggle one indicator per rule.
type Strength struct {
	MinLength        bool `json:"minLength"`
	HasUpper         bool `json:"hasUpper"`
	HasLower         bool `json:"hasLower"`
	HasDigit         bool `json:"hasDigit"`
	HasSpecial       bool `json:"hasSpecial"`
	NoRepeatedDigits bool `json:"noRepeatedDigits"`
}

func (s Strength) Valid() bool {
	return s.MinLength && s.HasUpper && s.HasLower && s.HasDigit && s.HasSpecial && s.NoRepeatedDigits
}

func PasswordStrength(password string) Strength {
	s := Strength{
		MinLength:        len([]rune(password)) >= MinPasswordLength,
		NoRepeatedDigits: true,
	}
	var prev rune
	for i, r := range []rune(password) {
		switch {
		case unicode.IsUpper(r):
			s.HasUpper = true
		case unicode.IsLower(r):
			s.HasLower = true
		case unicode.IsDigit(r):
			s.HasDigit = true
			if i > 0 && r == prev {
				s.NoRepeatedDigits = false
			}
		case !unicode.IsSpace(r):
			s.HasSpecial = true
		}
		prev = r
	}
	return s
}

// IsValidPhone accepts exactly ten ASCII digits.
func IsValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// IsAdult reports whether someone born on birthDate has turned 18 by today.
// Only calendar dates are compared.
func IsAdult(birthDate, today time.Time) bool {
	birth := time.Date(birthDate.Year(), birthDate.Month(), birthDate.Day(), 0, 0, 0, 0, time.UTC)
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return !birth.AddDate(AdultAge, 0, 0).After(day)
}
