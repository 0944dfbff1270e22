package ioprovider

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// Stdio is the default driver-facing provider: it reads stdin
// synchronously, so it never reports ReadWaiting (there is no later
// retry in a blocking CLI session — a read either succeeds or stdin is
// at EOF). Prompts and output go to stdout the same way whether or not
// it is a terminal; isTTY is only reported through IsInteractive.
type Stdio struct {
	in    *bufio.Scanner
	out   io.Writer
	isTTY bool
}

func NewStdio() *Stdio {
	return &Stdio{
		in:    bufio.NewScanner(os.Stdin),
		out:   os.Stdout,
		isTTY: isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()),
	}
}

func (s *Stdio) Write(text string) { fmt.Fprint(s.out, text) }

func (s *Stdio) WriteLine(text string) { fmt.Fprintln(s.out, text) }

func (s *Stdio) ReadLine() (string, ReadOutcome) {
	if !s.in.Scan() {
		return "", ReadEOF
	}
	return s.in.Text(), ReadOK
}

// IsInteractive reports whether stdout was a terminal when NewStdio ran.
func (s *Stdio) IsInteractive() bool { return s.isTTY }
