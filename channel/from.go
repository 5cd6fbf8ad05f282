package channel

// FromSlice returns a new queue holding each element of slice as a payload.
// No Sentinel is appended.
func FromSlice[T any](slice []T) *Queue[T] {
	q := New[T]()
	Fill(q, slice...)
	return q
}

// FromValues returns a new queue holding each value as a payload.
func FromValues[T any](values ...T) *Queue[T] {
	return FromSlice(values)
}

// Fill appends each value to q as a payload, in order.
func Fill[T any](q *Queue[T], values ...T) {
	for _, v := range values {
		q.Put(v)
	}
}
