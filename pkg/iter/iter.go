package iter

import (
	goiter "iter"
)

type Iterator[A any] interface {
	// Next advances the iterator and returns true if another value was found.
	Next() bool

	// At returns the value at the current iterator position.
	At() A

	// Err returns the last error of the iterator.
	Err() error

	Close() error
}

type errIterator[A any] struct {
	err error
}

func NewErrIterator[A any](err error) Iterator[A] {
	return &errIterator[A]{
		err: err,
	}
}

func (i *errIterator[A]) Err() error {
	return i.err
}
func (*errIterator[A]) At() (a A) {
	return a
}
func (*errIterator[A]) Next() bool {
	return false
}

func (*errIterator[A]) Close() error {
	return nil
}

type sliceIterator[A any] struct {
	list []A
	cur  A
}

func NewSliceIterator[A any](s []A) Iterator[A] {
	return &sliceIterator[A]{
		list: s,
	}
}

func (i *sliceIterator[A]) Err() error {
	return nil
}
func (i *sliceIterator[A]) Next() bool {
	if len(i.list) > 0 {
		i.cur = i.list[0]
		i.list = i.list[1:]
		return true
	}
	var a A
	i.cur = a
	return false
}

func (i *sliceIterator[A]) At() A {
	return i.cur
}

func (i *sliceIterator[A]) Close() error {
	return nil
}

type seqIterator[A any] struct {
	next func() (A, bool)
	stop func()
	cur  A
}

// FromSeq adapts a push iterator. Close must be called unless the iterator
// was drained.
func FromSeq[A any](seq goiter.Seq[A]) Iterator[A] {
	next, stop := goiter.Pull(seq)
	return &seqIterator[A]{next: next, stop: stop}
}

func (i *seqIterator[A]) Next() bool {
	var ok bool
	i.cur, ok = i.next()
	return ok
}

func (i *seqIterator[A]) At() A {
	return i.cur
}

func (i *seqIterator[A]) Err() error {
	return nil
}

func (i *seqIterator[A]) Close() error {
	i.stop()
	return nil
}

// Slice drains the iterator into a slice and closes it.
func Slice[A any](it Iterator[A]) ([]A, error) {
	var result []A
	for it.Next() {
		result = append(result, it.At())
	}
	if err := it.Err(); err != nil {
		_ = it.Close()
		return result, err
	}
	return result, it.Close()
}
