package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/wippyai/decodergen"
	"github.com/wippyai/decodergen/assembler"
	"github.com/wippyai/decodergen/sandbox"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	portStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	codecStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type interactiveModel struct {
	err      error
	decoder  *sandbox.Decoder
	log      *zap.Logger
	opts     options
	result   string
	payload  string
	ports    []assembler.Port
	input    textinput.Model
	selected int
	size     int
	state    modelState
}

type modelState int

const (
	stateSelectPort modelState = iota
	stateInputPayload
	stateShowResult
)

func newInteractiveModel(opts options, log *zap.Logger) *interactiveModel {
	return &interactiveModel{
		opts:  opts,
		log:   log,
		state: stateSelectPort,
	}
}

type loadedMsg struct {
	err     error
	decoder *sandbox.Decoder
	ports   []assembler.Port
	size    int
}

type decodeResultMsg struct {
	err    error
	result string
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.loadDecoder
}

func (m *interactiveModel) loadDecoder() tea.Msg {
	ctx := context.Background()

	ports, shell, err := load(m.opts)
	if err != nil {
		return loadedMsg{err: err}
	}

	genOpts, err := generatorOptions(m.opts, m.log)
	if err != nil {
		return loadedMsg{err: err}
	}
	transpiled, err := decodergen.New(genOpts...).Transpile(ctx, ports)
	if err != nil {
		return loadedMsg{err: err}
	}
	src, err := assembler.Assemble(shell, transpiled)
	if err != nil {
		return loadedMsg{err: err}
	}

	dec, err := sandbox.Load(src, shell)
	if err != nil {
		return loadedMsg{err: err}
	}
	return loadedMsg{decoder: dec, ports: transpiled, size: len(src)}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state != stateInputPayload {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelectPort && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectPort && m.selected < len(m.ports)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectPort:
				if len(m.ports) == 0 {
					return m, nil
				}
				m.prepareInput()
				m.state = stateInputPayload
				return m, textinput.Blink

			case stateInputPayload:
				m.payload = m.input.Value()
				return m, m.decode

			case stateShowResult:
				m.state = stateSelectPort
				m.result = ""
				m.err = nil
			}

		case "esc":
			switch m.state {
			case stateInputPayload, stateShowResult:
				m.state = stateSelectPort
				m.result = ""
				m.err = nil
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.decoder = msg.decoder
		m.ports = msg.ports
		m.size = msg.size

	case decodeResultMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult
	}

	if m.state == stateInputPayload {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *interactiveModel) prepareInput() {
	ti := textinput.New()
	ti.Placeholder = "34 12"
	ti.Prompt = "payload (hex): "
	ti.Width = 48
	ti.SetValue(m.payload)
	ti.Focus()
	m.input = ti
}

func (m *interactiveModel) decode() tea.Msg {
	payload, err := parsePayload(m.input.Value())
	if err != nil {
		return decodeResultMsg{err: err}
	}
	out, err := m.decoder.DecodeJSON(context.Background(), m.ports[m.selected].Number, payload)
	if err != nil {
		return decodeResultMsg{err: err}
	}
	return decodeResultMsg{result: out}
}

func (m *interactiveModel) View() string {
	if m.err != nil && m.state != stateShowResult {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if m.decoder == nil {
		return "Generating decoder..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Decoder Tester"))
	b.WriteString(" ")
	b.WriteString(m.opts.manifest)
	b.WriteString(fmt.Sprintf(" • %s • %d bytes", m.decoder.Shell().EntryPoint(), m.size))
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectPort:
		b.WriteString("Select a port:\n\n")
		for i, p := range m.ports {
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + m.formatPort(p)))
			} else {
				b.WriteString("  " + m.formatPort(p))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter decode • q quit"))

	case stateInputPayload:
		p := m.ports[m.selected]
		b.WriteString(fmt.Sprintf("Decoding with %s\n\n", portStyle.Render(assembler.FuncName(p.Number))))
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter decode • esc back"))

	case stateShowResult:
		p := m.ports[m.selected]
		b.WriteString(fmt.Sprintf("fPort %s, payload [%s]:\n\n", portStyle.Render(fmt.Sprint(p.Number)), m.payload))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func (m *interactiveModel) formatPort(p assembler.Port) string {
	return portStyle.Render(fmt.Sprintf("%-5d", p.Number)) + " " + codecStyle.Render(p.Result.Readers.String())
}

func runInteractive(opts options, log *zap.Logger) error {
	p := tea.NewProgram(newInteractiveModel(opts, log), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
