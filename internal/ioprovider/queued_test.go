package ioprovider

import "testing"

func TestQueued_ReadsPushedLinesInOrder(t *testing.T) {
	q := NewQueued("a", "b")
	if text, outcome := q.ReadLine(); text != "a" || outcome != ReadOK {
		t.Fatalf("first ReadLine: got (%q, %v)", text, outcome)
	}
	if text, outcome := q.ReadLine(); text != "b" || outcome != ReadOK {
		t.Fatalf("second ReadLine: got (%q, %v)", text, outcome)
	}
}

func TestQueued_WaitingWhenDrainedAndOpen(t *testing.T) {
	q := NewQueued()
	if _, outcome := q.ReadLine(); outcome != ReadWaiting {
		t.Errorf("got %v, want ReadWaiting", outcome)
	}
}

func TestQueued_PushAfterWaitingSucceeds(t *testing.T) {
	q := NewQueued()
	if _, outcome := q.ReadLine(); outcome != ReadWaiting {
		t.Fatalf("expected ReadWaiting first, got %v", outcome)
	}
	q.Push("late")
	if text, outcome := q.ReadLine(); text != "late" || outcome != ReadOK {
		t.Errorf("got (%q, %v), want (late, ReadOK)", text, outcome)
	}
}

func TestQueued_EOFOnceClosedAndDrained(t *testing.T) {
	q := NewQueued("only")
	q.Close()
	q.ReadLine() // consume "only"
	if _, outcome := q.ReadLine(); outcome != ReadEOF {
		t.Errorf("got %v, want ReadEOF", outcome)
	}
}

func TestQueued_OutputAccumulatesWrites(t *testing.T) {
	q := NewQueued()
	q.Write("no newline")
	q.WriteLine("with newline")
	want := "no newlinewith newline\n"
	if got := q.Output(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
