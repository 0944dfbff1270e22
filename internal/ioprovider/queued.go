package ioprovider

import "strings"

// Queued is an embedded-host-style provider: lines are pushed ahead of
// time (or fed incrementally by a host driving the VM across separate
// Run calls), and ReadLine reports ReadWaiting rather than blocking when
// the queue is momentarily empty. This is what exercises the VM's
// WaitingForInput suspension contract (§4.3, §5) deterministically in
// tests, where a real terminal's blocking read can't be driven step by
// step.
type Queued struct {
	lines  []string
	pos    int
	closed bool
	out    strings.Builder
}

func NewQueued(lines ...string) *Queued {
	return &Queued{lines: lines}
}

// Push appends a line the next ReadLine calls will consume, as if more
// input just arrived at the host boundary.
func (q *Queued) Push(line string) { q.lines = append(q.lines, line) }

// Close marks the input exhausted: once the queue drains, ReadLine
// reports ReadEOF instead of ReadWaiting.
func (q *Queued) Close() { q.closed = true }

func (q *Queued) Write(s string)     { q.out.WriteString(s) }
func (q *Queued) WriteLine(s string) { q.out.WriteString(s); q.out.WriteByte('\n') }

// Output returns everything written so far, for test assertions.
func (q *Queued) Output() string { return q.out.String() }

func (q *Queued) ReadLine() (string, ReadOutcome) {
	if q.pos < len(q.lines) {
		line := q.lines[q.pos]
		q.pos++
		return line, ReadOK
	}
	if q.closed {
		return "", ReadEOF
	}
	return "", ReadWaiting
}
