package scan

import "strings"

// A Production consumes zero or more runes and reports whether it matched. A
// production that fails may leave the cursor anywhere; Match restores it.
type Production func(s *Stream) bool

// Match runs p inside a mark. It reports success only if p matched and consumed at
// least one rune; otherwise the stream is rolled back.
func (s *Stream) Match(p Production) bool {
	s.Start()
	if !p(s) {
		s.Rollback()
		return false
	}
	return s.Commit()
}

// Value runs a value-producing rule inside a mark. On failure the stream is rolled
// back as if nothing was consumed and the zero value is returned.
func Value[T any](s *Stream, rule func(*Stream) (T, bool)) (T, bool) {
	s.Start()
	v, ok := rule(s)
	if !ok {
		s.Rollback()
		var zero T
		return zero, false
	}
	s.Commit()
	return v, true
}

// Char matches the rune c.
func Char(c rune) Production {
	return func(s *Stream) bool {
		r, ok := s.Peek()
		if !ok || r != c {
			return false
		}
		s.Next()
		return true
	}
}

// OneOf matches any single rune in set.
func OneOf(set string) Production {
	return func(s *Stream) bool {
		r, ok := s.Peek()
		if !ok || !strings.ContainsRune(set, r) {
			return false
		}
		s.Next()
		return true
	}
}

// Range matches a single rune in [lo, hi].
func Range(lo, hi rune) Production {
	return func(s *Stream) bool {
		r, ok := s.Peek()
		if !ok || r < lo || r > hi {
			return false
		}
		s.Next()
		return true
	}
}

// AnyExcept matches any single rune not in set.
func AnyExcept(set string) Production {
	return func(s *Stream) bool {
		r, ok := s.Peek()
		if !ok || strings.ContainsRune(set, r) {
			return false
		}
		s.Next()
		return true
	}
}

// Literal matches the exact text lit.
func Literal(lit string) Production {
	return func(s *Stream) bool {
		for _, c := range lit {
			r, ok := s.Next()
			if !ok || r != c {
				return false
			}
		}
		return true
	}
}

// OneOrMore matches p repeatedly. It fails if the first attempt fails.
func OneOrMore(p Production) Production {
	return func(s *Stream) bool {
		if !s.Match(p) {
			return false
		}
		for s.Match(p) {
		}
		return true
	}
}

// Seq matches each production in order; all must match.
func Seq(ps ...Production) Production {
	return func(s *Stream) bool {
		for _, p := range ps {
			if !s.Match(p) {
				return false
			}
		}
		return true
	}
}

// Alt matches the first production that matches.
func Alt(ps ...Production) Production {
	return func(s *Stream) bool {
		for _, p := range ps {
			if s.Match(p) {
				return true
			}
		}
		return false
	}
}
