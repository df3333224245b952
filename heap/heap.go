// heap implements the paged heap file: a flat concatenation of sections,
// each one page directory followed by pageDirectoryEntriesNum data pages.
// Scan walks every data page lazily; WriteRows appends rows by packing them
// greedily into a bounded number of pages per section pass.
package heap

import (
	"io"

	pkgerrors "github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/flatbase/flatbase/coltype"
	"github.com/flatbase/flatbase/errs"
	"github.com/flatbase/flatbase/row"
)

// MaxModifiedPagesPerSectionPass bounds how many data pages a single section
// pass of WriteRows will pack rows into before moving on to the next
// section with whatever rows remain.
var MaxModifiedPagesPerSectionPass = 2

// RowIterator is the pull-based contract every heap consumer iterates
// through: one row per Next call, ok false once exhausted, Close releases
// the resources the iterator opened.
type RowIterator interface {
	Next() (row.Row, bool, error)
	Close() error
}

// Scan returns a lazy RowIterator over every row in store, parsed against
// schema. Directory pages (absolute index i where i % SectionStride == 0)
// are skipped.
func Scan(store Storage, schema []coltype.CT) (RowIterator, error) {
	size, err := store.Size()
	if err != nil {
		return nil, err
	}
	totalPages := size / PageSize
	return &heapScanIterator{
		store:      store,
		schema:     schema,
		totalPages: totalPages,
		pageIndex:  0,
	}, nil
}

type heapScanIterator struct {
	store      Storage
	schema     []coltype.CT
	totalPages int64
	pageIndex  int64
	pending    []row.Row
	pendingPos int
}

func (it *heapScanIterator) Next() (row.Row, bool, error) {
	for it.pendingPos >= len(it.pending) {
		if it.pageIndex >= it.totalPages {
			return nil, false, nil
		}
		if it.pageIndex%SectionStride == 0 {
			it.pageIndex++
			continue
		}
		buf := make([]byte, PageSize)
		if _, err := it.store.ReadAt(buf, it.pageIndex*PageSize); err != nil && err != io.EOF {
			return nil, false, pkgerrors.Wrap(errs.ErrIO, err.Error())
		}
		it.pageIndex++
		rows, err := decodePage(buf, it.schema)
		if err != nil {
			return nil, false, err
		}
		it.pending = rows
		it.pendingPos = 0
	}
	r := it.pending[it.pendingPos]
	it.pendingPos++
	return r, true, nil
}

func (it *heapScanIterator) Close() error {
	return it.store.Close()
}

// WriteRows appends rows to store, packing them greedily into at most
// MaxModifiedPagesPerSectionPass data pages per section pass, then advances
// to the next section with any residual rows. Callers hold the write
// contract described in the concurrency model: WriteRows takes an exclusive
// lock on store for its duration.
func WriteRows(store Storage, schema []coltype.CT, rows []row.Row) error {
	lock, err := lockFor(store)
	if err != nil {
		return err
	}
	if err := lock.Lock(); err != nil {
		return err
	}
	defer lock.Unlock()

	size, err := store.Size()
	if err != nil {
		return err
	}
	totalPages := size / PageSize
	sectionStart := (totalPages / SectionStride) * SectionStride

	cache := newPageCache(64)
	remaining := rows

	for len(remaining) > 0 {
		remaining, err = writeSection(store, cache, schema, sectionStart, remaining)
		if err != nil {
			return err
		}
		sectionStart += SectionStride
	}
	return nil
}

// loadDirectory reads and decodes the page directory for the section
// beginning at sectionStart, returning the initial all-free directory if the
// store doesn't extend that far yet.
func loadDirectory(store Storage, sectionStart int64) ([]uint16, error) {
	size, err := store.Size()
	if err != nil {
		return nil, err
	}
	if sectionStart*PageSize >= size {
		return emptyDirectory(), nil
	}
	buf := make([]byte, PageSize)
	if _, err := store.ReadAt(buf, sectionStart*PageSize); err != nil && err != io.EOF {
		return nil, pkgerrors.Wrap(errs.ErrIO, err.Error())
	}
	return decodeDirectory(buf)
}

// writeDirectory encodes entries and writes them as the directory page at
// the start of the section at sectionStart.
func writeDirectory(store Storage, sectionStart int64, entries []uint16) error {
	if _, err := store.WriteAt(encodeDirectory(entries), sectionStart*PageSize); err != nil {
		return pkgerrors.Wrap(errs.ErrIO, err.Error())
	}
	return nil
}

// writeSection packs as many of rows as fit into MaxModifiedPagesPerSectionPass
// data pages within the section beginning at sectionStart, and returns the
// rows that did not fit. It reads the section's page directory up front to
// decide which data pages have room, and writes the updated directory back
// once packing is done.
func writeSection(store Storage, cache *pageCache, schema []coltype.CT, sectionStart int64, rows []row.Row) ([]row.Row, error) {
	dir, err := loadDirectory(store, sectionStart)
	if err != nil {
		return nil, err
	}
	dirChanged := false
	modified := 0
	dataPageOffset := int64(1) // skip the directory page at sectionStart+0

	for dataPageOffset <= pageDirectoryEntriesNum && len(rows) > 0 && modified < MaxModifiedPagesPerSectionPass {
		pageIndex := sectionStart + dataPageOffset
		entryIdx := dataPageOffset - 1
		page, f, err := loadOrNewPage(store, cache, pageIndex)
		if err != nil {
			return nil, err
		}

		changed := false
		for len(rows) > 0 {
			r := rows[0]
			sz, err := rowEncodedSize(schema, r)
			if err != nil {
				return nil, err
			}
			if sz+slotSize > PageSize-footerSize {
				return nil, pkgerrors.Wrapf(errs.ErrRowTooLarge, "row of %d bytes cannot fit in a page", sz)
			}
			if int(dir[entryIdx]) < sz+slotSize {
				break
			}
			n, err := encodeRowInto(page, int(f.freeOffset), schema, r)
			if err != nil {
				return nil, err
			}
			f.freeOffset += uint16(n)
			f.rowCount++
			dir[entryIdx] = freeBytesFor(f)
			rows = rows[1:]
			changed = true
		}

		if changed {
			writeFooter(page, f)
			if _, err := store.WriteAt(page, pageIndex*PageSize); err != nil {
				return nil, pkgerrors.Wrap(errs.ErrIO, err.Error())
			}
			cache.add(pageIndex, page)
			modified++
			dirChanged = true
		}
		dataPageOffset++
	}

	if dirChanged {
		if err := writeDirectory(store, sectionStart, dir); err != nil {
			return nil, err
		}
	}

	log.WithFields(log.Fields{
		"section":      sectionStart / SectionStride,
		"pages_packed": modified,
		"rows_left":    len(rows),
	}).Debug("heap: wrote section pass")

	return rows, nil
}

// loadOrNewPage reads the existing page at pageIndex, or returns a
// zero-valued page (empty footer) if the backing store doesn't extend that
// far yet.
func loadOrNewPage(store Storage, cache *pageCache, pageIndex int64) ([]byte, footer, error) {
	if buf, ok := cache.get(pageIndex); ok {
		f, err := readFooter(buf)
		if err != nil {
			return nil, footer{}, err
		}
		return buf, f, nil
	}

	size, err := store.Size()
	if err != nil {
		return nil, footer{}, err
	}
	buf := make([]byte, PageSize)
	if pageIndex*PageSize < size {
		if _, err := store.ReadAt(buf, pageIndex*PageSize); err != nil && err != io.EOF {
			return nil, footer{}, pkgerrors.Wrap(errs.ErrIO, err.Error())
		}
		f, err := readFooter(buf)
		if err != nil {
			return nil, footer{}, err
		}
		return buf, f, nil
	}
	return buf, footer{rowCount: 0, freeOffset: 0}, nil
}
