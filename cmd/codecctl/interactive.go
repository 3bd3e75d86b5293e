package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/textcodec"
	"github.com/wippyai/textcodec/bom"
	"github.com/wippyai/textcodec/codec"
	"github.com/wippyai/textcodec/detect"
	"github.com/wippyai/textcodec/normalize"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	opStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#98FB98"))

	hintStyle = lipgloss.NewStyle().
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

type opInfo struct {
	name   string
	hint   string
	fields []fieldInfo
}

type fieldInfo struct {
	name        string
	placeholder string
}

var operations = []opInfo{
	{"encode", "bytes to text", []fieldInfo{
		{"format", "base64, base64url, base32, hex, ..."},
		{"input", "raw payload"},
	}},
	{"decode", "text to bytes", []fieldInfo{
		{"format", "base64, hex, utf8, utf16le, ..."},
		{"on-error", "strict, replace, ignore"},
		{"input", "encoded text"},
	}},
	{"transcode", "between character encodings", []fieldInfo{
		{"from", "utf8, utf16le, latin1, cp1252, ascii"},
		{"to", "utf8, utf16be, latin1, ..."},
		{"input", "source bytes"},
	}},
	{"detect", "guess the encoding", []fieldInfo{
		{"input", "byte sample"},
	}},
	{"normalize", "unicode normalization", []fieldInfo{
		{"profile", "nfc, nfd, nfkc, nfkd, text_safe"},
		{"input", "utf-8 text"},
	}},
	{"bom", "reconcile byte-order marks", []fieldInfo{
		{"policy", "prefer_no_bom, add_if_missing"},
		{"expected", "utf8, utf16le, ... (optional)"},
		{"input", "raw bytes"},
	}},
}

type modelState int

const (
	stateSelectOp modelState = iota
	stateInputArgs
	stateShowResult
)

type interactiveModel struct {
	err      error
	result   string
	inputs   []textinput.Model
	selected int
	focusIdx int
	state    modelState
}

type callResultMsg struct {
	err    error
	result string
}

func newInteractiveModel() *interactiveModel {
	return &interactiveModel{state: stateSelectOp}
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state != stateInputArgs {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelectOp && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectOp && m.selected < len(operations)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectOp:
				m.prepareInputs()
				m.state = stateInputArgs

			case stateInputArgs:
				return m, m.callOperation

			case stateShowResult:
				m.state = stateSelectOp
				m.result = ""
				m.err = nil
			}

		case "tab":
			if m.state == stateInputArgs && len(m.inputs) > 1 {
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}

		case "esc":
			switch m.state {
			case stateInputArgs:
				m.state = stateSelectOp
				m.inputs = nil
			case stateShowResult:
				m.state = stateSelectOp
				m.result = ""
				m.err = nil
			}
		}

	case callResultMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult
	}

	if m.state == stateInputArgs {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m *interactiveModel) prepareInputs() {
	op := operations[m.selected]
	m.inputs = make([]textinput.Model, len(op.fields))
	for i, f := range op.fields {
		ti := textinput.New()
		ti.Placeholder = f.placeholder
		ti.Prompt = f.name + ": "
		ti.Width = 60
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0
}

func (m *interactiveModel) callOperation() tea.Msg {
	op := operations[m.selected]
	values := map[string]string{}
	for i, f := range op.fields {
		values[f.name] = m.inputs[i].Value()
	}

	result, err := runOperation(op.name, values)
	if err != nil {
		return callResultMsg{err: err}
	}
	return callResultMsg{result: result}
}

func runOperation(name string, values map[string]string) (string, error) {
	input := []byte(values["input"])

	switch name {
	case "encode":
		f, ok := textcodec.ParseFormat(values["format"])
		if !ok {
			return "", fmt.Errorf("unknown format %q", values["format"])
		}
		res, err := codec.Encode(input, f, textcodec.EncodeOptions{})
		if err != nil {
			return "", err
		}
		return res.Text, nil

	case "decode":
		f, ok := textcodec.ParseFormat(values["format"])
		if !ok {
			return "", fmt.Errorf("unknown format %q", values["format"])
		}
		opts := textcodec.DecodeOptions{OnError: textcodec.OnError(values["on-error"])}
		if opts.OnError == "" {
			opts.OnError = textcodec.OnErrorStrict
		}
		var res textcodec.DecodeResult
		var err error
		if f.IsCharEncoding() {
			res, err = codec.DecodeBytes(input, f, opts)
		} else {
			res, err = codec.Decode(string(input), f, opts)
		}
		if err != nil {
			return "", err
		}
		out := fmt.Sprintf("%q", res.Bytes)
		if res.CorrectionsApplied > 0 {
			out += fmt.Sprintf("  (%d corrections)", res.CorrectionsApplied)
		}
		return out, nil

	case "transcode":
		from, ok := textcodec.ParseFormat(values["from"])
		if !ok {
			return "", fmt.Errorf("unknown format %q", values["from"])
		}
		to, ok := textcodec.ParseFormat(values["to"])
		if !ok {
			return "", fmt.Errorf("unknown format %q", values["to"])
		}
		res, err := codec.Transcode(input, from, to, textcodec.DecodeOptions{})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("% x", res.Bytes), nil

	case "detect":
		res, err := detect.Detect(input, textcodec.DetectOptions{})
		if err != nil {
			return "", err
		}
		var b strings.Builder
		fmt.Fprintf(&b, "%s (confidence %.2f, tier %s)", res.Encoding, res.Confidence, res.ConfidenceTier)
		for _, c := range res.Candidates {
			fmt.Fprintf(&b, "\n  %-10s %.2f  %s", c.Encoding, c.Confidence, c.Reason)
		}
		return b.String(), nil

	case "normalize":
		profile := normalize.Profile(values["profile"])
		if profile == "" {
			profile = normalize.NFC
		}
		res, err := normalize.Normalize(string(input), profile, textcodec.NormalizeOptions{})
		if err != nil {
			return "", err
		}
		out := res.Text
		for _, c := range res.SemanticChanges {
			out += fmt.Sprintf("\n  %s -> %s (%s)", c.Original, c.Normalized, c.Reason)
		}
		return out, nil

	case "bom":
		opts := textcodec.BomOptions{Policy: textcodec.BomPolicy(values["policy"])}
		if opts.Policy == "" {
			opts.Policy = textcodec.PreferNoBom
		}
		if values["expected"] != "" {
			f, ok := textcodec.ParseFormat(values["expected"])
			if !ok {
				return "", fmt.Errorf("unknown format %q", values["expected"])
			}
			opts.Expected = f
		}
		out, res, err := bom.Correct(input, opts)
		if err != nil {
			return "", err
		}
		if res.Present() {
			return fmt.Sprintf("%q  (had %s BOM)", out, res.BomType), nil
		}
		return fmt.Sprintf("%q  (no BOM)", out), nil

	default:
		return "", fmt.Errorf("unknown operation %q", name)
	}
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("codecctl"))
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectOp:
		b.WriteString("Select an operation:\n\n")
		for i, op := range operations {
			line := opStyle.Render(op.name) + "  " + hintStyle.Render(op.hint)
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + op.name + "  " + op.hint))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter choose • q quit"))

	case stateInputArgs:
		op := operations[m.selected]
		b.WriteString(fmt.Sprintf("%s\n\n", opStyle.Render(op.name)))
		for i := range m.inputs {
			b.WriteString(m.inputs[i].View())
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter run • esc back"))

	case stateShowResult:
		op := operations[m.selected]
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", opStyle.Render(op.name)))
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

func runInteractive() error {
	p := tea.NewProgram(newInteractiveModel(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
