// Package debugcli is the bubbletea/lipgloss terminal debugger
// SPEC_FULL.md §5 asks for: step one bytecode instruction at a time,
// inspect the current frame, stack, and disassembly, and feed input()
// lines interactively when the VM suspends — supplementing the
// interpreter trace facilities original_source carries that the
// distilled spec leaves out, in the REPL-model style of the teacher
// pack's own Charm-based REPL.
package debugcli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/csh1668/pyhyeon/internal/bytecode"
	"github.com/csh1668/pyhyeon/internal/config"
	"github.com/csh1668/pyhyeon/internal/interp"
	"github.com/csh1668/pyhyeon/internal/ioprovider"
	"github.com/csh1668/pyhyeon/internal/jit"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)
	frameStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	pcStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF79C6")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#767676"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87")).Bold(true)
	outputStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F1FA8C"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#767676"))
)

// provider is the debugger's own ioprovider.Provider: print() output is
// captured for the scrollback pane instead of going to stdout directly,
// and input() lines come from whatever the operator has typed into the
// prompt pane since the VM last suspended.
type provider struct {
	output []string
	queue  []string
}

func (p *provider) Write(s string)     { p.output = append(p.output, s) }
func (p *provider) WriteLine(s string) { p.output = append(p.output, s+"\n") }
func (p *provider) ReadLine() (string, ioprovider.ReadOutcome) {
	if len(p.queue) == 0 {
		return "", ioprovider.ReadWaiting
	}
	line := p.queue[0]
	p.queue = p.queue[1:]
	return line, ioprovider.ReadOK
}
func (p *provider) feed(line string) { p.queue = append(p.queue, line) }

// Run builds a VM over module and drives the debugger's bubbletea
// program until the operator quits or the VM finishes.
func Run(module *bytecode.Module, tuning config.Tuning, hotThreshold int, cachePath string) error {
	io := &provider{}
	vm := interp.NewTuned(module, io, tuning)
	if hotThreshold >= 0 {
		var cache *jit.Cache
		if cachePath != "" {
			c, err := jit.OpenCache(cachePath)
			if err != nil {
				return err
			}
			cache = c
		}
		vm.SetJIT(jit.NewEngine(hotThreshold, cache))
	}
	p := tea.NewProgram(newModel(vm, module))
	_, err := p.Run()
	return err
}

type model struct {
	vm      *interp.VM
	io      *provider
	module  *bytecode.Module
	pending string // input() line being typed while waiting
	steps   int
	err     error
	quit    bool
}

func newModel(vm *interp.VM, module *bytecode.Module) model {
	return model{vm: vm, module: module, io: vm.IO.(*provider)}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.vm.State == interp.StateWaitingForInput {
		switch keyMsg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quit = true
			return m, tea.Quit
		case tea.KeyEnter:
			m.io.feed(m.pending)
			m.pending = ""
			m.step()
		case tea.KeyBackspace:
			if len(m.pending) > 0 {
				m.pending = m.pending[:len(m.pending)-1]
			}
		case tea.KeyRunes:
			m.pending += string(keyMsg.Runes)
		}
		return m, nil
	}

	switch keyMsg.String() {
	case "ctrl+c", "q", "esc":
		m.quit = true
		return m, tea.Quit
	case "n", "enter", " ":
		m.step()
	case "c":
		for i := 0; i < 100000 && m.err == nil && m.vm.State == interp.StateRunning; i++ {
			m.step()
		}
	}
	return m, nil
}

// step advances the VM exactly one instruction, matching the "step one
// bytecode instruction" contract the debugger exists for.
func (m *model) step() {
	if m.err != nil || m.vm.State == interp.StateFinished {
		return
	}
	_, _, err := m.vm.Step()
	m.steps++
	if err != nil {
		m.err = err
	}
}

func (m model) View() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render(" pyhyeon debugger "))
	s.WriteString("\n\n")

	switch {
	case m.err != nil:
		s.WriteString(errStyle.Render(fmt.Sprintf("runtime error: %s", m.err)))
		s.WriteString("\n\n")
	case m.vm.State == interp.StateFinished:
		s.WriteString(frameStyle.Render("finished"))
		if len(m.vm.Stack) > 0 {
			s.WriteString(fmt.Sprintf(" -> %s", m.vm.Stack[len(m.vm.Stack)-1].Inspect()))
		}
		s.WriteString("\n\n")
	default:
		s.WriteString(m.renderFrame())
		s.WriteString("\n")
	}

	if len(m.io.output) > 0 {
		s.WriteString(dimStyle.Render("output:"))
		s.WriteString("\n")
		s.WriteString(outputStyle.Render(strings.Join(m.io.output, "")))
		s.WriteString("\n")
	}

	if m.vm.State == interp.StateWaitingForInput {
		s.WriteString(fmt.Sprintf("input> %s█\n", m.pending))
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render(fmt.Sprintf("steps: %d  |  n: step  c: run  q: quit", m.steps)))
	return s.String()
}

// renderFrame shows the current frame's function disassembly with the
// instruction at IP marked, its locals, and the operand stack — the
// "inspect a running VM" half of the debugger's job.
func (m model) renderFrame() string {
	f := m.vm.CurrentFrame()
	if f == nil {
		return dimStyle.Render("(no frame)")
	}
	fn := m.module.Functions[f.FuncID]
	name := m.module.Symbols[fn.NameSymbol]

	var s strings.Builder
	s.WriteString(frameStyle.Render(fmt.Sprintf("func %s  (func_id=%d  ip=%d)", name, f.FuncID, f.IP)))
	s.WriteString("\n")

	for _, line := range strings.Split(bytecode.Disassemble(fn, name), "\n") {
		marker := fmt.Sprintf("%04d ", f.IP)
		if strings.HasPrefix(line, marker) {
			s.WriteString(pcStyle.Render("-> " + line))
		} else {
			s.WriteString("   " + line)
		}
		s.WriteString("\n")
	}

	s.WriteString(dimStyle.Render("locals: "))
	parts := make([]string, len(f.Locals))
	for i, v := range f.Locals {
		parts[i] = v.Inspect()
	}
	s.WriteString(strings.Join(parts, ", "))
	s.WriteString("\n")

	s.WriteString(dimStyle.Render("stack: "))
	stackParts := make([]string, len(m.vm.Stack))
	for i, v := range m.vm.Stack {
		stackParts[i] = v.Inspect()
	}
	s.WriteString(strings.Join(stackParts, ", "))
	return s.String()
}
