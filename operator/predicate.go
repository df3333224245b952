package operator

import (
	"strings"

	pkgerrors "github.com/pkg/errors"

	"github.com/flatbase/flatbase/errs"
	"github.com/flatbase/flatbase/row"
)

// Comparison is a predicate's comparison operator.
type Comparison int

const (
	Eq Comparison = iota
	Neq
	Lt
	Lte
	Gt
	Gte
)

// Connector joins two predicates in a Selection.
type Connector int

const (
	And Connector = iota
	Or
)

// Predicate compares the value at LeftCol against either RightCol (another
// column) or RightLit (a literal), depending on which is set.
type Predicate struct {
	LeftCol  string
	Cmp      Comparison
	RightCol string
	// RightIsLit reports whether RightLit should be used instead of looking
	// up RightCol.
	RightIsLit bool
	RightLit   any
}

// Eval evaluates p against cols/r.
func (p Predicate) Eval(cols *row.ColumnIndex, r row.Row) (bool, error) {
	li, err := cols.Position(p.LeftCol)
	if err != nil {
		return false, err
	}
	left := r[li]

	var right any
	if p.RightIsLit {
		right = p.RightLit
	} else {
		ri, err := cols.Position(p.RightCol)
		if err != nil {
			return false, err
		}
		right = r[ri]
	}
	return compare(left, p.Cmp, right)
}

func compare(left any, cmp Comparison, right any) (bool, error) {
	c, err := compareValues(left, right)
	if err != nil {
		return false, err
	}
	switch cmp {
	case Eq:
		return c == 0, nil
	case Neq:
		return c != 0, nil
	case Lt:
		return c < 0, nil
	case Lte:
		return c <= 0, nil
	case Gt:
		return c > 0, nil
	case Gte:
		return c >= 0, nil
	default:
		return false, pkgerrors.Wrap(errs.ErrUnsupportedOp, "unknown comparison")
	}
}

// compareValues returns -1, 0, or 1 depending on whether left is less than,
// equal to, or greater than right. INT and FLOAT values compare
// numerically against one another; STRING values compare lexically.
func compareValues(left, right any) (int, error) {
	lf, lok := asFloat(left)
	rf, rok := asFloat(right)
	if lok && rok {
		switch {
		case lf < rf:
			return -1, nil
		case lf > rf:
			return 1, nil
		default:
			return 0, nil
		}
	}
	ls, lok := left.(string)
	rs, rok := right.(string)
	if lok && rok {
		return strings.Compare(ls, rs), nil
	}
	return 0, pkgerrors.Wrapf(errs.ErrSchemaViolation, "cannot compare %T with %T", left, right)
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int32:
		return float64(n), true
	case float32:
		return float64(n), true
	default:
		return 0, false
	}
}

// resolveOtherColumn resolves a join predicate's right-side column name
// against the right side's own (pre-rename) column index. Callers may write
// the predicate using the raw name ("city") or the post-join qualified name
// ("<otherKey>/city"), matching the worked examples; both are accepted.
func resolveOtherColumn(otherCols *row.ColumnIndex, otherKey, name string) (int, error) {
	if p, err := otherCols.Position(name); err == nil {
		return p, nil
	}
	prefix := otherKey + "/"
	if strings.HasPrefix(name, prefix) {
		return otherCols.Position(strings.TrimPrefix(name, prefix))
	}
	return -1, pkgerrors.Wrapf(errs.ErrUnknownColumn, "column %q not found on joined step %q", name, otherKey)
}

// equalityKey requires an equality predicate between two columns, which is
// the only shape HashJoin and SortMergeJoin support. It returns the left and
// right column names.
func equalityKey(p Predicate) (leftCol, rightCol string, err error) {
	if p.Cmp != Eq || p.RightIsLit {
		return "", "", pkgerrors.Wrap(errs.ErrUnsupportedOp, "hash and sort-merge joins require an equality predicate between two columns")
	}
	return p.LeftCol, p.RightCol, nil
}
