package scan

// Lookahead is a pull-based sequence that can be peeked arbitrarily far ahead.
// Elements come from a producer hook; once the hook reports the end, the sequence
// stays exhausted.
type Lookahead[T any] struct {
	produce func() (T, bool)
	queue   []T
	done    bool
}

// NewLookahead returns a sequence fed by produce. produce returns false at the end.
func NewLookahead[T any](produce func() (T, bool)) *Lookahead[T] {
	return &Lookahead[T]{produce: produce}
}

// FromSlice returns a sequence over items.
func FromSlice[T any](items []T) *Lookahead[T] {
	i := 0
	return NewLookahead(func() (T, bool) {
		if i >= len(items) {
			var zero T
			return zero, false
		}
		i++
		return items[i-1], true
	})
}

func (l *Lookahead[T]) pull() (T, bool) {
	if l.done {
		var zero T
		return zero, false
	}
	v, ok := l.produce()
	if !ok {
		l.done = true
	}
	return v, ok
}

// Peek returns the element k places ahead; Peek(0) is the element Next would return.
func (l *Lookahead[T]) Peek(k int) (T, bool) {
	for len(l.queue) <= k {
		v, ok := l.pull()
		if !ok {
			var zero T
			return zero, false
		}
		l.queue = append(l.queue, v)
	}
	return l.queue[k], true
}

// Next removes and returns the next element.
func (l *Lookahead[T]) Next() (T, bool) {
	if len(l.queue) > 0 {
		v := l.queue[0]
		var zero T
		l.queue[0] = zero
		l.queue = l.queue[1:]
		return v, true
	}
	return l.pull()
}

// Skip drops the next n elements.
func (l *Lookahead[T]) Skip(n int) {
	for i := 0; i < n; i++ {
		if _, ok := l.Next(); !ok {
			return
		}
	}
}

// Done reports whether the sequence is exhausted.
func (l *Lookahead[T]) Done() bool {
	_, ok := l.Peek(0)
	return !ok
}
