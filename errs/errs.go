// errs declares the sentinel error kinds flatbase's layers raise. Callers use
// errors.Is against these values; the layers themselves attach context with
// github.com/pkg/errors so a stack trace survives alongside the sentinel.
package errs

import "errors"

var (
	// ErrIO signals an underlying storage or filesystem failure.
	ErrIO = errors.New("io error")
	// ErrCorruptPage signals a page footer inconsistent with its payload, or
	// a schema-guided parse that overran the page bytes.
	ErrCorruptPage = errors.New("corrupt page")
	// ErrRowTooLarge signals a single row cannot fit in a page once the
	// footer and slot reservation are accounted for.
	ErrRowTooLarge = errors.New("row too large")
	// ErrSchemaViolation signals a value failed to encode under its declared
	// type, or a row's arity did not match a table's schema.
	ErrSchemaViolation = errors.New("schema violation")
	// ErrUnknownColumn signals an operator referenced a column absent from
	// the current column index.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrUnsupportedOp signals a hash or sort-merge join was constructed
	// with a non-equality predicate.
	ErrUnsupportedOp = errors.New("unsupported operator")
	// ErrMissingStep signals a join or merge referenced a step key absent
	// from the result environment.
	ErrMissingStep = errors.New("missing step")
)
