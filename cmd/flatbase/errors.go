package main

import (
	pkgerrors "github.com/pkg/errors"

	"github.com/flatbase/flatbase/errs"
)

func errColumnsTypesMismatch(nCols, nTypes int) error {
	return pkgerrors.Wrapf(errs.ErrSchemaViolation, "%d columns but %d types", nCols, nTypes)
}

func errFieldCountMismatch(table string, nFields, nSchema int) error {
	return pkgerrors.Wrapf(errs.ErrSchemaViolation, "table %q: csv record has %d fields but schema has %d", table, nFields, nSchema)
}
