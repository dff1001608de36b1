package contract

import "iter"

// Take yields at most n successful items from seq and then stops pulling
// from it. An error item is passed through and ends the sequence.
func Take[T any](seq iter.Seq2[T, error], n int) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		if n <= 0 {
			return
		}
		taken := 0
		for v, err := range seq {
			if !yield(v, err) || err != nil {
				return
			}
			taken++
			if taken >= n {
				return
			}
		}
	}
}

// Collect drains seq into a slice, stopping at the first error.
func Collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	var out []T
	for v, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
	return out, nil
}

// SliceSeq adapts a slice to a sequence without errors.
func SliceSeq[T any](items []T) iter.Seq2[T, error] {
	return ErrSeq(items, nil)
}

// ErrSeq yields items and then, if err is non-nil, a final error.
func ErrSeq[T any](items []T, err error) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for _, v := range items {
			if !yield(v, nil) {
				return
			}
		}
		if err != nil {
			var zero T
			yield(zero, err)
		}
	}
}
