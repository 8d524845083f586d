package registration

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

const ownerNameMinLength = 2

// Rule identifica la regla incumplida por un campo.
type Rule string

const (
	RuleRequired    Rule = "required"
	RuleMinLength   Rule = "min_length"
	RuleInteger     Rule = "integer"
	RuleNonNegative Rule = "non_negative"
)

type FieldViolation struct {
	Field   Field
	Rule    Rule
	Message string
}

// ValidationError agrega todas las reglas incumplidas en un submit.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s (%s)", v.Field, v.Rule))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func (e *ValidationError) Has(f Field) bool {
	for _, v := range e.Violations {
		if v.Field == f {
			return true
		}
	}
	return false
}

// Validate aplica las reglas del formulario. Devuelve nil o *ValidationError.
//
// La edad solo exige entero no negativo: el máximo de 30 del input es
// orientativo y no se valida acá.
func Validate(fd FormData) error {
	var out []FieldViolation
	add := func(f Field, r Rule, msg string) {
		out = append(out, FieldViolation{Field: f, Rule: r, Message: msg})
	}

	name := strings.TrimSpace(fd[FieldOwnerName])
	switch {
	case name == "":
		add(FieldOwnerName, RuleRequired, "Full name is required")
	case utf8.RuneCountInString(name) < ownerNameMinLength:
		add(FieldOwnerName, RuleMinLength, "Full name must be at least 2 characters")
	}

	if strings.TrimSpace(fd[FieldOwnerAddress]) == "" {
		add(FieldOwnerAddress, RuleRequired, "Residential address is required")
	}
	if strings.TrimSpace(fd[FieldDogName]) == "" {
		add(FieldDogName, RuleRequired, "Dog's name is required")
	}
	if strings.TrimSpace(fd[FieldDogBreed]) == "" {
		add(FieldDogBreed, RuleRequired, "Breed is required")
	}

	age := strings.TrimSpace(fd[FieldDogAge])
	if age == "" {
		add(FieldDogAge, RuleRequired, "Age is required")
	} else if n, err := strconv.Atoi(age); err != nil {
		add(FieldDogAge, RuleInteger, "Age must be a whole number")
	} else if n < 0 {
		add(FieldDogAge, RuleNonNegative, "Age cannot be negative")
	}

	if len(out) == 0 {
		return nil
	}
	return &ValidationError{Violations: out}
}
