// coltype exports the scalar column types used across several packages, such
// as catalog, heap, and operator. These types indicate what kind of value is
// stored in a given column position and how to parse and size it.
package coltype

import (
	"strconv"

	pkgerrors "github.com/pkg/errors"

	"github.com/flatbase/flatbase/errs"
)

const (
	Unknown = iota
	Int
	Float
	Str
)

// CT is a column type identifier, one of Unknown, Int, Float, or Str.
type CT = int

// Name returns the catalog/JSON spelling of a column type.
func Name(ct CT) string {
	switch ct {
	case Int:
		return "INT"
	case Float:
		return "FLOAT"
	case Str:
		return "STRING"
	default:
		return "UNKNOWN"
	}
}

// FromName parses the catalog/JSON spelling of a column type back into a CT.
func FromName(name string) (CT, error) {
	switch name {
	case "INT":
		return Int, nil
	case "FLOAT":
		return Float, nil
	case "STRING":
		return Str, nil
	default:
		return Unknown, pkgerrors.Wrapf(errs.ErrSchemaViolation, "unknown column type %q", name)
	}
}

// Parse coerces a textual field (as read from a CSV row, for instance) into
// a Go value matching ct: int32 for Int, float32 for Float, string for Str.
func Parse(ct CT, field string) (any, error) {
	switch ct {
	case Int:
		n, err := strconv.ParseInt(field, 10, 32)
		if err != nil {
			return nil, pkgerrors.Wrapf(errs.ErrSchemaViolation, "%q is not a valid INT", field)
		}
		return int32(n), nil
	case Float:
		f, err := strconv.ParseFloat(field, 32)
		if err != nil {
			return nil, pkgerrors.Wrapf(errs.ErrSchemaViolation, "%q is not a valid FLOAT", field)
		}
		return float32(f), nil
	case Str:
		if len(field) > 255 {
			return nil, pkgerrors.Wrapf(errs.ErrSchemaViolation, "string value exceeds 255 bytes")
		}
		return field, nil
	default:
		return nil, pkgerrors.Wrap(errs.ErrSchemaViolation, "cannot parse value of unknown column type")
	}
}

// Validate checks that v is the Go value shape ct requires.
func Validate(ct CT, v any) error {
	switch ct {
	case Int:
		if _, ok := v.(int32); !ok {
			return pkgerrors.Wrapf(errs.ErrSchemaViolation, "expected int32 for INT column, got %T", v)
		}
	case Float:
		if _, ok := v.(float32); !ok {
			return pkgerrors.Wrapf(errs.ErrSchemaViolation, "expected float32 for FLOAT column, got %T", v)
		}
	case Str:
		s, ok := v.(string)
		if !ok {
			return pkgerrors.Wrapf(errs.ErrSchemaViolation, "expected string for STRING column, got %T", v)
		}
		if len(s) > 255 {
			return pkgerrors.Wrap(errs.ErrSchemaViolation, "string value exceeds 255 bytes")
		}
	default:
		return pkgerrors.Wrap(errs.ErrSchemaViolation, "value has unknown column type")
	}
	return nil
}

// FixedSize returns the encoded size in bytes for fixed-width types, and ok
// false for Str whose size is data-dependent.
func FixedSize(ct CT) (size int, ok bool) {
	switch ct {
	case Int:
		return 4, true
	case Float:
		return 4, true
	default:
		return 0, false
	}
}
