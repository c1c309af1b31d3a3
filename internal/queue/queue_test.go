package queue

import "testing"

func TestBounded_FIFO(t *testing.T) {
	q := NewBounded[int](10)

	for i := 1; i <= 5; i++ {
		if dropped := q.Push(i); dropped != 0 {
			t.Errorf("Push(%d) dropped %d, want 0", i, dropped)
		}
	}

	got := q.Drain(0)
	want := []int{1, 2, 3, 4, 5}
	if len(got) != len(want) {
		t.Fatalf("Drain returned %d items, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Drain[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestBounded_DrainMax(t *testing.T) {
	q := NewBounded[int](10)
	for i := 1; i <= 5; i++ {
		q.Push(i)
	}

	first := q.Drain(2)
	if len(first) != 2 || first[0] != 1 || first[1] != 2 {
		t.Errorf("Drain(2) = %v, want [1 2]", first)
	}
	if q.Len() != 3 {
		t.Errorf("Len = %d, want 3", q.Len())
	}
}

func TestBounded_DropOldestAtCap(t *testing.T) {
	q := NewBounded[int](3)

	q.Push(1)
	q.Push(2)
	q.Push(3)
	if dropped := q.Push(4); dropped != 1 {
		t.Errorf("Push over cap dropped %d, want 1", dropped)
	}

	got := q.Drain(0)
	want := []int{2, 3, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Drain[%d] = %d, want %d", i, got[i], want[i])
		}
	}

	if s := q.Stats(); s.TotalDropped != 1 {
		t.Errorf("TotalDropped = %d, want 1", s.TotalDropped)
	}
}

func TestBounded_PushFrontPreservesOrder(t *testing.T) {
	q := NewBounded[int](10)
	q.Push(1)
	q.Push(2)
	q.Push(3)

	batch := q.Drain(2) // [1 2]
	q.PushFront(batch)  // back to front

	got := q.Drain(0)
	want := []int{1, 2, 3}
	if len(got) != 3 {
		t.Fatalf("Drain returned %d items, want 3", len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Drain[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestBounded_PushFrontOverCap(t *testing.T) {
	q := NewBounded[int](3)
	q.Push(1)
	q.Push(2)

	dropped := q.PushFront([]int{10, 11, 12})
	if dropped != 2 {
		t.Errorf("PushFront dropped %d, want 2", dropped)
	}

	got := q.Drain(0)
	want := []int{10, 1, 2}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Drain[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestBounded_WrapAround(t *testing.T) {
	q := NewBounded[int](4)

	// Cycle enough items through to wrap the ring several times.
	next := 1
	for cycle := 0; cycle < 5; cycle++ {
		for i := 0; i < 3; i++ {
			q.Push(next)
			next++
		}
		drained := q.Drain(3)
		if len(drained) != 3 {
			t.Fatalf("cycle %d: Drain returned %d items, want 3", cycle, len(drained))
		}
	}

	if q.Len() != 0 {
		t.Errorf("Len = %d, want 0", q.Len())
	}
	if s := q.Stats(); s.TotalPushed != 15 || s.TotalDrained != 15 {
		t.Errorf("Stats = %+v, want 15 pushed and drained", s)
	}
}

func TestBounded_DrainEmpty(t *testing.T) {
	q := NewBounded[int](4)
	if got := q.Drain(0); got != nil {
		t.Errorf("Drain on empty = %v, want nil", got)
	}
}
