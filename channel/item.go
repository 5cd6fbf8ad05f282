package channel

// Item is a value carried by a [Queue]: either a payload or the Sentinel.
type Item[T any] struct {
	// Value holds the payload. It is the zero value for a Sentinel.
	Value T

	end bool
}

// Payload wraps v as a payload item.
func Payload[T any](v T) Item[T] {
	return Item[T]{Value: v}
}

// Sentinel returns the end-of-stream marker.
// A Sentinel is never equal to a payload, whatever the payload value.
func Sentinel[T any]() Item[T] {
	return Item[T]{end: true}
}

// IsSentinel reports whether the item marks the end of the stream.
func (i Item[T]) IsSentinel() bool {
	return i.end
}

