package validator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordStrengthIndicators(t *testing.T) {
	full := PasswordStrength("Abcdef1!")
	assert.True(t, full.Valid())

	cases := []struct {
		name     string
		password string
		check    func(Strength) bool
	}{
		{"too short", "Ab1!xyz", func(s Strength) bool { return !s.MinLength }},
		{"no upper", "abcdef1!", func(s Strength) bool { return !s.HasUpper }},
		{"no lower", "ABCDEF1!", func(s Strength) bool { return !s.HasLower }},
		{"no digit", "Abcdefg!", func(s Strength) bool { return !s.HasDigit }},
		{"no special", "Abcdefg1", func(s Strength) bool { return !s.HasSpecial }},
		{"repeated digits", "Abcde11!", func(s Strength) bool { return !s.NoRepeatedDigits }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := PasswordStrength(tc.password)
			assert.True(t, tc.check(s), "%+v", s)
			assert.False(t, s.Valid())
		})
	}
}

func TestPasswordStrengthIndependentIndicators(t *testing.T) {
	s := PasswordStrength("abc")
	assert.False(t, s.MinLength)
	assert.False(t, s.HasUpper)
	assert.True(t, s.HasLower)
	assert.False(t, s.HasDigit)
	assert.False(t, s.HasSpecial)
	assert.True(t, s.NoRepeatedDigits)

	// separated equal digits are not a run
	assert.True(t, PasswordStrength("Ab1c1d!e").Valid())
}

func TestIsValidPhone(t *testing.T) {
	assert.True(t, IsValidPhone("5512345678"))
	for _, bad := range []string{"", "551234567", "55123456789", "55-1234567", "abcdefghij", " 5512345678", "５５１２３４５６７８"} {
		assert.False(t, IsValidPhone(bad), bad)
	}
}

func TestIsAdult(t *testing.T) {
	today := time.Date(2024, 6, 15, 13, 30, 0, 0, time.UTC)

	assert.True(t, IsAdult(time.Date(2006, 6, 15, 0, 0, 0, 0, time.UTC), today))
	assert.False(t, IsAdult(time.Date(2006, 6, 16, 0, 0, 0, 0, time.UTC), today))
	assert.True(t, IsAdult(time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC), today))
}

func TestStructRules(t *testing.T) {
	type form struct {
		Phone     string `validate:"required,phone10"`
		Password  string `validate:"required,strongpassword"`
		Confirm   string `validate:"required,eqfield=Password"`
		BirthDate string `validate:"required,adult"`
	}
	cv := NewValidator()
	cv.now = func() time.Time { return time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC) }

	require.NoError(t, cv.Validate(form{
		Phone: "5512345678", Password: "Abcdef1!", Confirm: "Abcdef1!", BirthDate: "2006-06-15",
	}))

	err := cv.Validate(form{
		Phone: "123", Password: "weak", Confirm: "other", BirthDate: "2006-06-16",
	})
	require.Error(t, err)
	msgs := cv.FormatValidationErrors(err)
	assert.Contains(t, msgs["Phone"], "10 digits")
	assert.Contains(t, msgs, "Password")
	assert.Contains(t, msgs["Confirm"], "must match")
	assert.Contains(t, msgs, "BirthDate")
}
