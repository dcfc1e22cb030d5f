package scan

import "testing"

func TestLookahead_PeekCachesAndNextDrains(t *testing.T) {
	calls := 0
	n := 0
	la := NewLookahead(func() (int, bool) {
		calls++
		if n >= 5 {
			return 0, false
		}
		n++
		return n, true
	})

	if v, ok := la.Peek(3); !ok || v != 4 {
		t.Fatalf("expected Peek(3) = 4, got %d, %v", v, ok)
	}
	if calls != 4 {
		t.Errorf("expected 4 producer calls, got %d", calls)
	}
	if v, _ := la.Peek(0); v != 1 {
		t.Errorf("expected Peek(0) = 1, got %d", v)
	}
	if calls != 4 {
		t.Errorf("expected cached peek, got %d producer calls", calls)
	}

	var got []int
	for {
		v, ok := la.Next()
		if !ok {
			break
		}
		got = append(got, v)
	}
	if len(got) != 5 || got[0] != 1 || got[4] != 5 {
		t.Errorf("unexpected sequence %v", got)
	}
}

func TestLookahead_StaysExhausted(t *testing.T) {
	calls := 0
	la := NewLookahead(func() (string, bool) {
		calls++
		return "", false
	})
	for i := 0; i < 3; i++ {
		if _, ok := la.Next(); ok {
			t.Fatal("expected end of sequence")
		}
		if _, ok := la.Peek(2); ok {
			t.Fatal("expected end of sequence")
		}
	}
	if calls != 1 {
		t.Errorf("expected producer to be called once, got %d", calls)
	}
	if !la.Done() {
		t.Error("expected Done")
	}
}

func TestLookahead_PeekPastEnd(t *testing.T) {
	la := FromSlice([]string{"a", "b"})
	if _, ok := la.Peek(2); ok {
		t.Error("expected Peek(2) to fail on a two element sequence")
	}
	if v, ok := la.Peek(1); !ok || v != "b" {
		t.Errorf("expected Peek(1) = b, got %q, %v", v, ok)
	}
	la.Skip(1)
	if v, _ := la.Next(); v != "b" {
		t.Errorf("expected b, got %q", v)
	}
	if !la.Done() {
		t.Error("expected Done")
	}
}
