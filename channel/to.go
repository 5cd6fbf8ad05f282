package channel

// ToSlice removes everything currently queued in q without blocking.
// It returns the payloads in queue order and the number of Sentinels removed.
func ToSlice[T any](q *Queue[T]) ([]T, int) {
	var (
		values    []T
		sentinels int
	)
	for {
		it, ok := q.TryGet()
		if !ok {
			return values, sentinels
		}
		if it.IsSentinel() {
			sentinels++
			continue
		}
		values = append(values, it.Value)
	}
}
