package inquiry

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

const (
	maxName    = 120
	maxMessage = 5000
	minDigits  = 7
	maxDigits  = 15
)

// Submission is the quote form payload.
type Submission struct {
	FullName    string `json:"fullName" validate:"required,max=120"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone" validate:"omitempty,phone"`
	Destination string `json:"destination" validate:"required"`
	TravelDates string `json:"travelDates"`
	TravelTime  string `json:"travelTime"`
	Category    string `json:"category"`
	Company     string `json:"company"`
	Message     string `json:"message" validate:"required,max=5000"`
}

var validate = newValidator()

// newValidator reports fields by their JSON names and knows the phone rule.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return validPhone(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// ValidationError maps field names to messages.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "invalid inquiry: " + strings.Join(parts, "; ")
}

func (s *Submission) normalize() {
	s.FullName = strings.TrimSpace(s.FullName)
	s.Email = strings.ToLower(strings.TrimSpace(s.Email))
	s.Phone = strings.TrimSpace(s.Phone)
	s.Destination = strings.TrimSpace(s.Destination)
	s.TravelDates = strings.TrimSpace(s.TravelDates)
	s.TravelTime = strings.TrimSpace(s.TravelTime)
	s.Category = strings.TrimSpace(s.Category)
	s.Company = strings.TrimSpace(s.Company)
	s.Message = strings.TrimSpace(s.Message)
}

// Validate trims s in place and returns a *ValidationError listing every
// bad field, or nil.
func Validate(s *Submission) error {
	s.normalize()
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = message(fe)
	}
	return &ValidationError{Fields: fields}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "email":
		return "invalid email address"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "phone":
		return fmt.Sprintf("must have %d to %d digits and only + ( ) - . or spaces", minDigits, maxDigits)
	}
	return "invalid"
}

// validPhone accepts digits with the usual separators and an optional
// leading plus.
func validPhone(p string) bool {
	digits := 0
	for i, r := range p {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == '+' && i == 0:
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '.':
		default:
			return false
		}
	}
	return digits >= minDigits && digits <= maxDigits
}
