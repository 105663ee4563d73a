package param

import (
	"errors"
	"fmt"
)

// Parameter is a single named value usable as a placeholder replacement.
type Parameter struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Field names one of the two editable parts of a Parameter.
type Field string

const (
	FieldKey   Field = "key"
	FieldValue Field = "value"
)

var ErrIndexOutOfRange = errors.New("parameter index out of range")
var ErrUnknownField = errors.New("unknown parameter field")

// ParseField accepts "key" or "value".
func ParseField(s string) (Field, error) {
	switch Field(s) {
	case FieldKey, FieldValue:
		return Field(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
}
