package streaming

import (
	"context"
	"io"
)

// RowDecoder batches a [Decoder]'s rows into fixed-size slices of T,
// mapping each raw row with mapRow. It looks one row ahead so its more
// flag is accurate for the final batch, matching the adapter Stream
// contract's lazy-sequence-of-batches shape (spec.md §4.5).
type RowDecoder[T any] struct {
	dec       *Decoder
	closer    io.Closer
	mapRow    func(map[string]any) (T, error)
	batchSize int

	pending   map[string]any
	pendingOK bool
	primed    bool
	err       error
}

// NewRowDecoder wraps source (closed by [RowDecoder.Close]), decoding up
// to batchSize rows per call to Next.
func NewRowDecoder[T any](source io.ReadCloser, batchSize int, mapRow func(map[string]any) (T, error)) *RowDecoder[T] {
	if batchSize <= 0 {
		batchSize = 1000
	}
	return &RowDecoder[T]{
		dec:       NewDecoder(source, 0),
		closer:    source,
		mapRow:    mapRow,
		batchSize: batchSize,
	}
}

func (d *RowDecoder[T]) fetch() {
	if d.pendingOK || d.err != nil {
		return
	}
	row, ok, err := d.dec.Next()
	if err != nil {
		d.err = err
		return
	}
	d.pending, d.pendingOK = row, ok
}

// Next returns the next batch of up to batchSize rows. more is false once
// the batch returned is the last one available.
func (d *RowDecoder[T]) Next(_ context.Context) ([]T, bool, error) {
	if !d.primed {
		d.primed = true
		d.fetch()
	}
	if d.err != nil {
		return nil, false, d.err
	}
	if !d.pendingOK {
		return nil, false, nil
	}

	batch := make([]T, 0, d.batchSize)
	for len(batch) < d.batchSize && d.pendingOK {
		row, err := d.mapRow(d.pending)
		if err != nil {
			return nil, false, err
		}
		batch = append(batch, row)
		d.pendingOK = false
		d.fetch()
		if d.err != nil {
			return batch, false, d.err
		}
	}
	return batch, d.pendingOK, nil
}

// Close closes the underlying reader.
func (d *RowDecoder[T]) Close() error {
	if d.closer == nil {
		return nil
	}
	return d.closer.Close()
}
