// page implements the slotted page layout: packed payload bytes from offset
// zero, zero-filled slack, and a 4-byte footer holding the row count and the
// free byte offset. No explicit slot directory is written to a data page;
// rows are recovered by parsing the payload cyclically against the table's
// schema.
package heap

import (
	pkgerrors "github.com/pkg/errors"

	"github.com/flatbase/flatbase/codec"
	"github.com/flatbase/flatbase/coltype"
	"github.com/flatbase/flatbase/errs"
	"github.com/flatbase/flatbase/row"
)

const (
	PageSize = 4096

	countSize      = 2
	freeOffsetSize = 2
	footerSize     = countSize + freeOffsetSize
	slotSize       = 2

	dirEntrySize            = 2
	pageDirectoryEntriesNum = 2048
	SectionStride           = pageDirectoryEntriesNum + 1
)

// footer holds the two fields written at the tail of every data page.
type footer struct {
	rowCount   uint16
	freeOffset uint16
}

func readFooter(page []byte) (footer, error) {
	if len(page) != PageSize {
		return footer{}, pkgerrors.Wrap(errs.ErrCorruptPage, "page is not PageSize bytes")
	}
	off := PageSize - footerSize
	rowCount, err := codec.U16(page, off)
	if err != nil {
		return footer{}, err
	}
	freeOffset, err := codec.U16(page, off+countSize)
	if err != nil {
		return footer{}, err
	}
	if int(freeOffset) > PageSize-footerSize {
		return footer{}, pkgerrors.Wrap(errs.ErrCorruptPage, "free offset overruns payload region")
	}
	return footer{rowCount: rowCount, freeOffset: freeOffset}, nil
}

func writeFooter(page []byte, f footer) {
	off := PageSize - footerSize
	codec.PutU16(page, off, f.rowCount)
	codec.PutU16(page, off+countSize, f.freeOffset)
}

// freeBytesFor returns the directory-entry value a data page with footer f
// should carry: the bytes left in the page once its payload and reserved
// slots are accounted for.
func freeBytesFor(f footer) uint16 {
	return uint16(PageSize - footerSize - int(f.freeOffset) - int(f.rowCount)*slotSize)
}

// emptyDirectory returns the initial state of a section's page directory:
// pageDirectoryEntriesNum entries, each claiming its data page is entirely
// free.
func emptyDirectory() []uint16 {
	entries := make([]uint16, pageDirectoryEntriesNum)
	full := uint16(PageSize - footerSize)
	for i := range entries {
		entries[i] = full
	}
	return entries
}

// decodeDirectory parses a directory page into its pageDirectoryEntriesNum
// free-byte counts, one per data page in the section, in page order.
func decodeDirectory(page []byte) ([]uint16, error) {
	if len(page) != PageSize {
		return nil, pkgerrors.Wrap(errs.ErrCorruptPage, "directory page is not PageSize bytes")
	}
	entries := make([]uint16, pageDirectoryEntriesNum)
	for i := range entries {
		v, err := codec.U16(page, i*dirEntrySize)
		if err != nil {
			return nil, err
		}
		entries[i] = v
	}
	return entries, nil
}

// encodeDirectory packs entries back into a full directory page.
func encodeDirectory(entries []uint16) []byte {
	page := make([]byte, PageSize)
	for i, v := range entries {
		codec.PutU16(page, i*dirEntrySize, v)
	}
	return page
}

// rowEncodedSize returns the number of payload bytes rowVals would occupy,
// not counting the reserved slotSize.
func rowEncodedSize(schema []coltype.CT, rowVals row.Row) (int, error) {
	size := 0
	for i, ct := range schema {
		if fixed, ok := coltype.FixedSize(ct); ok {
			size += fixed
			continue
		}
		s, ok := rowVals[i].(string)
		if !ok {
			return 0, pkgerrors.Wrapf(errs.ErrSchemaViolation, "expected string at column %d, got %T", i, rowVals[i])
		}
		size += codec.StringSize(s)
	}
	return size, nil
}

// encodeRowInto writes rowVals into page starting at off, returning the
// number of bytes written.
func encodeRowInto(page []byte, off int, schema []coltype.CT, rowVals row.Row) (int, error) {
	cur := off
	for i, ct := range schema {
		switch ct {
		case coltype.Int:
			v, ok := rowVals[i].(int32)
			if !ok {
				return 0, pkgerrors.Wrapf(errs.ErrSchemaViolation, "expected int32 at column %d, got %T", i, rowVals[i])
			}
			codec.PutI32(page, cur, v)
			cur += 4
		case coltype.Float:
			v, ok := rowVals[i].(float32)
			if !ok {
				return 0, pkgerrors.Wrapf(errs.ErrSchemaViolation, "expected float32 at column %d, got %T", i, rowVals[i])
			}
			codec.PutF32(page, cur, v)
			cur += 4
		case coltype.Str:
			v, ok := rowVals[i].(string)
			if !ok {
				return 0, pkgerrors.Wrapf(errs.ErrSchemaViolation, "expected string at column %d, got %T", i, rowVals[i])
			}
			cur += codec.PutString(page, cur, v)
		default:
			return 0, pkgerrors.Wrap(errs.ErrSchemaViolation, "unknown column type during encode")
		}
	}
	return cur - off, nil
}

// decodeRowAt parses a single row from page at off against schema, returning
// the row and the number of bytes consumed.
func decodeRowAt(page []byte, off int, schema []coltype.CT) (row.Row, int, error) {
	cur := off
	vals := make(row.Row, len(schema))
	for i, ct := range schema {
		switch ct {
		case coltype.Int:
			v, err := codec.I32(page, cur)
			if err != nil {
				return nil, 0, err
			}
			vals[i] = v
			cur += 4
		case coltype.Float:
			v, err := codec.F32(page, cur)
			if err != nil {
				return nil, 0, err
			}
			vals[i] = v
			cur += 4
		case coltype.Str:
			s, n, err := codec.String(page, cur)
			if err != nil {
				return nil, 0, err
			}
			vals[i] = s
			cur += n
		default:
			return nil, 0, pkgerrors.Wrap(errs.ErrCorruptPage, "unknown column type during decode")
		}
	}
	return vals, cur - off, nil
}

// decodePage parses every row packed into page's payload region, given the
// table's schema.
func decodePage(page []byte, schema []coltype.CT) ([]row.Row, error) {
	f, err := readFooter(page)
	if err != nil {
		return nil, err
	}
	rows := make([]row.Row, 0, f.rowCount)
	off := 0
	for i := 0; i < int(f.rowCount); i++ {
		r, n, err := decodeRowAt(page, off, schema)
		if err != nil {
			return nil, err
		}
		rows = append(rows, r)
		off += n
	}
	if off > int(f.freeOffset) {
		return nil, pkgerrors.Wrap(errs.ErrCorruptPage, "decoded rows overrun recorded free offset")
	}
	return rows, nil
}
