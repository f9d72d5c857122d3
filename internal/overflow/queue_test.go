package overflow

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/me/jamsched/pkg/model"
)

func ov(task string, es int64, prio int) model.OverflowEntry {
	return model.OverflowEntry{
		Identity:      model.Identity{ApplicationID: "1", TaskID: task},
		EarliestStart: es,
		Computation:   1,
		Deadline:      5,
		Priority:      prio,
	}
}

func TestQueueOrder(t *testing.T) {
	q := New()
	q.Push(ov("late", 30, 6))
	q.Push(ov("low", 10, 1))
	q.Push(ov("high", 10, 4))
	q.Push(ov("first", 0, 1))
	q.Push(ov("low-again", 10, 1))

	got := q.Entries()
	want := []model.OverflowEntry{
		ov("first", 0, 1),
		ov("high", 10, 4),
		ov("low", 10, 1),
		ov("low-again", 10, 1),
		ov("late", 30, 6),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Entries() mismatch (-want +got):\n%s", diff)
	}
}

func TestQueuePeekPop(t *testing.T) {
	q := New()
	if _, ok := q.Peek(); ok {
		t.Error("Peek on empty queue returned ok")
	}
	if _, ok := q.Pop(); ok {
		t.Error("Pop on empty queue returned ok")
	}

	q.Push(ov("b", 20, 1))
	q.Push(ov("a", 5, 1))

	head, ok := q.Peek()
	if !ok || head.Identity.TaskID != "a" {
		t.Fatalf("Peek() = %v, %v; want a", head, ok)
	}
	if q.Len() != 2 {
		t.Errorf("Len() after Peek = %d, want 2", q.Len())
	}

	for _, want := range []string{"a", "b"} {
		e, ok := q.Pop()
		if !ok || e.Identity.TaskID != want {
			t.Errorf("Pop() = %v, %v; want %s", e, ok, want)
		}
	}
	if q.Len() != 0 {
		t.Errorf("Len() = %d, want 0", q.Len())
	}
}

func TestQueueIdenticalEntriesKept(t *testing.T) {
	q := New()
	q.Push(ov("a", 5, 1))
	q.Push(ov("a", 5, 1))
	if q.Len() != 2 {
		t.Errorf("Len() = %d, want 2", q.Len())
	}
}
