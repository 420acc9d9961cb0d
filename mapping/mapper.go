package mapping

import "fmt"

// Mapper converts one decoded row into a strongly typed value, grounded on
// transform.Mapper[T].
type Mapper[T any] func(Extractor) (T, error)

// StructIterator is a forward-only iterator over the values a Mapper
// produces, grounded on transform.StructIterator[T].
type StructIterator[T any] interface {
	Next() bool
	Struct() T
	Err() error
}

type mappedIterator[T any] struct {
	inner RecordIterator
	mapFn Mapper[T]

	cur  T
	err  error
	done bool
}

// Map applies mapFn to every row it yields, returning a StructIterator[T].
// It is the direct counterpart of transform.decodeMapTransform.Transform,
// minus the Decoder step: decoding already happened in package
// handle/streamer by the time a record.ParseResult reaches here.
func Map[T any](it RecordIterator, mapFn Mapper[T]) (StructIterator[T], error) {
	if mapFn == nil {
		return nil, fmt.Errorf("mapping: Mapper[T] must not be nil")
	}
	return &mappedIterator[T]{inner: it, mapFn: mapFn}, nil
}

func (m *mappedIterator[T]) Next() bool {
	if m.done {
		return false
	}
	if !m.inner.Next() {
		m.done = true
		return false
	}
	val, err := m.mapFn(m.inner.Record())
	if err != nil {
		m.err = err
		m.done = true
		return false
	}
	m.cur = val
	return true
}

func (m *mappedIterator[T]) Struct() T { return m.cur }

func (m *mappedIterator[T]) Err() error {
	if m.err != nil {
		return m.err
	}
	return m.inner.Err()
}
