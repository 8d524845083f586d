package registration

import (
	"strings"
	"time"
)

// Field es uno de los campos fijos del formulario de registro.
type Field string

const (
	FieldOwnerName    Field = "owner_name"
	FieldOwnerAddress Field = "owner_address"
	FieldDogName      Field = "dog_name"
	FieldDogBreed     Field = "dog_breed"
	FieldDogAge       Field = "dog_age"
)

// Fields en el orden en que se muestran en el formulario.
var Fields = []Field{
	FieldOwnerName,
	FieldOwnerAddress,
	FieldDogName,
	FieldDogBreed,
	FieldDogAge,
}

// Nombres camelCase que usa el frontend.
var fieldAliases = map[string]Field{
	"ownerName":    FieldOwnerName,
	"ownerAddress": FieldOwnerAddress,
	"dogName":      FieldDogName,
	"dogBreed":     FieldDogBreed,
	"dogAge":       FieldDogAge,
}

func (f Field) Valid() bool {
	for _, k := range Fields {
		if f == k {
			return true
		}
	}
	return false
}

// ParseField acepta snake_case o el alias camelCase.
func ParseField(s string) (Field, error) {
	s = strings.TrimSpace(s)
	if f := Field(s); f.Valid() {
		return f, nil
	}
	if f, ok := fieldAliases[s]; ok {
		return f, nil
	}
	return "", ErrUnknownField
}

// FormData guarda el valor actual (sin trim) de cada campo.
type FormData map[Field]string

func NewFormData() FormData {
	fd := make(FormData, len(Fields))
	for _, f := range Fields {
		fd[f] = ""
	}
	return fd
}

func (fd FormData) Clone() FormData {
	out := make(FormData, len(fd))
	for k, v := range fd {
		out[k] = v
	}
	return out
}

type State string

const (
	StateEditing   State = "editing"
	StateSubmitted State = "submitted"
)

// Snapshot es la vista de solo lectura de un wizard.
type Snapshot struct {
	State                State
	Values               FormData
	CompletedFields      []Field
	CompletionPercentage int
	Started              bool
}

// Session es un formulario abierto por un cliente.
type Session struct {
	ID       string
	OpenedAt time.Time
	Wizard   *Wizard
}
