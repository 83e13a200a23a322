package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/aexpr/lang"
	"github.com/ardnew/aexpr/log"
)

// editedMsg carries the assignments decoded from the editor.
type editedMsg struct{ values map[string]any }

// editCancelledMsg is sent when the user emptied the editor content.
type editCancelledMsg struct{}

// editDeclinedMsg is sent when the user declined to edit again after a
// decode error.
type editDeclinedMsg struct{}

// editErrorMsg is sent when the editor could not be run.
type editErrorMsg struct{ err error }

const (
	evalPrompt = "➜ "
	ctrlPrompt = " :"
)

const helpMessage = `
: Commands (press Esc to toggle mode):

  help              Print this cruft
  keys [prefix]     List the variables in scope
  set name=value    Assign a session variable
  unset name...     Remove session variables
  usage             Show the variables used by templates so far
  edit              Edit session variables in external $EDITOR
  clear             Clear screen
  quit              Exit REPL

Usage:
  Type an expression to evaluate it, e.g. user.name + "!"
  Text containing ${...} is rendered as a template instead
  Completions appear automatically as you type
  Press Tab / Shift-Tab to cycle through candidates
  Press Space to accept the current candidate
  Press Esc to toggle between eval and command modes
  Use Up/Down arrows for history navigation (mode switches automatically)
  Use Shift+Up/Shift+Down for history navigation within current mode only
  Use Alt+Up/Alt+Down to navigate command history
    (restores original mode when reaching end of history)
  Press Ctrl+C on empty line or Ctrl+D to exit
`

// inputMode represents the current input mode.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	matchStyle      = suggestionStyle.Bold(true)
	selectedStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
	selectedMatchStyle = selectedStyle.Bold(true)

	signatureStyle     = hintStyle
	signatureNameStyle = promptStyle
	currentParamStyle  = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
)

func formatCommand(mode inputMode, input string) string {
	if mode == modeCtrl {
		return ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input)
	}

	return promptStyle.Render(evalPrompt) + inputStyle.Render(input)
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc func() context.Context
	engine  *lang.Engine
	vars    *lang.Context  // session scope shared by every evaluation
	assign  map[string]any // values assigned with set or edit
	input   textinput.Model
	logger  log.Logger
	history *History

	historyIdx       int
	matches          fuzzy.Matches   // current fuzzy match results
	funcs            map[string]bool // candidates that are callable
	wordStart        int             // byte offset of current word start
	wordEnd          int             // byte offset of current word end
	suggIdx          int             // selected candidate index
	tabActive        bool            // whether user is tab-cycling
	preTabText       string          // input text before tab-cycling began
	preTabCursor     int             // cursor position before tab-cycling began
	altNavActive     bool            // whether user is in Alt+Up/Down navigation
	altNavOrigMode   inputMode       // original mode before Alt navigation
	altNavOrigText   string          // original text before Alt navigation
	altNavOrigCursor int             // original cursor position before Alt navigation
	width            int             // terminal width for ellipsization
	quitting         bool
	mode             inputMode
	evalText         string
	evalCursor       int
	ctrlText         string
	ctrlCursor       int
}

// Run starts an interactive session evaluating against a new Context of
// engine. History is kept in cacheDir, or in memory only if cacheDir is
// empty.
func Run(
	ctx context.Context,
	engine *lang.Engine,
	cacheDir string,
	logger log.Logger,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger.TraceContext(ctx, "repl start", slog.String("cache_dir", cacheDir))

	var historyPath string
	if cacheDir != "" {
		historyPath = filepath.Join(cacheDir, baseHistory)
	}

	history := NewHistory(historyPath)
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "could not load history",
			slog.String("path", historyPath),
			slog.Any("error", err))
	}

	logger.TraceContext(ctx, "repl history loaded",
		slog.Int("entry_count", history.Len()))

	p := tea.NewProgram(
		newModel(ctx, engine, history, logger),
		tea.WithContext(ctx),
	)
	_, err = p.Run()

	return err
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	engine *lang.Engine,
	history *History,
	logger log.Logger,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(evalPrompt)
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = defaultWidth

	return model{
		ctxFunc:    func() context.Context { return ctx },
		engine:     engine,
		vars:       engine.NewContext(),
		assign:     make(map[string]any),
		input:      ti,
		logger:     logger,
		history:    history,
		historyIdx: history.Len(),
		width:      defaultWidth,
		mode:       modeEval,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(evalPrompt) - 2

		return m, nil

	case editedMsg:
		m.applyEdit(msg.values)

		return m, tea.Println(resultStyle.Render(
			fmt.Sprintf("✔ %d variable(s) assigned", len(m.assign))))

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("🗴 edit cancelled"))

	case editDeclinedMsg:
		m.quitting = true

		return m, tea.Quit

	case editErrorMsg:
		return m, tea.Println(errorStyle.Render("🗴 error: " + msg.err.Error()))
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	input := m.input.Value()
	call := detectFunctionCall(input, m.input.Position())

	switch {
	case m.historyIdx < m.history.Len():
		hint := fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len())
		b.WriteString(hintStyle.Render(hint))

	case strings.TrimSpace(input) == "":
		hint := "Type an expression or press Esc for commands"
		if m.mode == modeCtrl {
			hint = "Type: " + strings.Join(ctrlCommands, ", ") +
				" (press Esc to return)"
		}

		b.WriteString(hintStyle.Render(hint))

	case call.inCall && m.mode == modeEval:
		if signature, params := getSignature(m.vars, call.name); signature != "" {
			b.WriteString(renderSignatureHint(signature, params, call.argIndex))

			break
		}

		fallthrough

	default:
		b.WriteString(renderCandidateBar(
			m.matches, m.funcs, m.suggIdx, m.tabActive, m.width))
	}

	b.WriteString("\n")

	return b.String()
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(m.ctxFunc(), "repl keypress",
		slog.String("key", msg.String()))

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.altNavActive = false
		m.historyIdx = m.history.Len()
		refreshMatches(&m, false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		m.altNavActive = false

		if !m.tabActive || len(m.matches) == 0 {
			return m.executeInput()
		}

		// Lock in the current tab candidate without executing.
		m.tabActive = false
		refreshMatches(&m, true)

		return m, nil

	case tea.KeyTab:
		return m.cycle(+1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		if msg.Alt {
			return m.historyCtrl(-1), nil
		}

		return m.historyStep(-1, false), nil

	case tea.KeyDown:
		if msg.Alt {
			return m.historyCtrl(+1), nil
		}

		return m.historyStep(+1, false), nil

	case tea.KeyShiftUp:
		return m.historyStep(-1, true), nil

	case tea.KeyShiftDown:
		return m.historyStep(+1, true), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			refreshMatches(&m, false)

			return m, nil
		}

		m.altNavActive = false

		if m.mode == modeEval {
			return m.switchToMode(modeCtrl), nil
		}

		return m.switchToMode(modeEval), nil

	case tea.KeyRunes, tea.KeySpace:
		if m.tabActive && msg.String() == " " {
			m.tabActive = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		refreshMatches(&m, true)

		return m, cmd
	}

	// Editing and cursor keys never auto-confirm a completion.
	var cmd tea.Cmd

	m.tabActive = false
	m.altNavActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	refreshMatches(&m, false)

	return m, cmd
}

// cycle moves the tab selection by step, wrapping at either end.
// A single candidate is completed and confirmed immediately.
func (m model) cycle(step int) model {
	switch len(m.matches) {
	case 0:
		return m

	case 1:
		replaceCurrentWord(&m, m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m
	}

	if m.tabActive {
		m.suggIdx = (m.suggIdx + step + len(m.matches)) % len(m.matches)
	} else {
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()
		m.suggIdx = 0

		if step < 0 {
			m.suggIdx = len(m.matches) - 1
		}
	}

	replaceCurrentWord(&m, m.matches[m.suggIdx].Str)

	return m
}

// replaceCurrentWord replaces the current word with replacement and moves
// the cursor after it.
func replaceCurrentWord(m *model, replacement string) {
	input := m.input.Value()
	cursor := m.wordStart + len(replacement)

	m.input.SetValue(input[:m.wordStart] + replacement + input[m.wordEnd:])
	m.input.SetCursor(cursor)

	m.wordEnd = cursor
}

// refreshMatches recomputes the matches for the current input. With
// autoConfirm set, a sole candidate equal to the typed word is accepted.
// Deletions and cursor movement pass false so that editing never completes
// unexpectedly.
func refreshMatches(m *model, autoConfirm bool) {
	m.matches, m.funcs, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	if m.input.Value()[m.wordStart:m.wordEnd] == m.matches[0].Str {
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil
	}
}

func (m model) executeInput() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	m.evalText, m.evalCursor = "", 0
	m.ctrlText, m.ctrlCursor = "", 0
	m.input.SetValue("")

	if err := m.history.Add(input, m.mode); err != nil {
		m.logger.WarnContext(m.ctxFunc(), "could not save history",
			slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	echo := tea.Println(formatCommand(m.mode, input))

	if m.mode == modeCtrl {
		return m.executeCommand(input, echo)
	}

	result, err := m.evaluate(input)
	if err != nil {
		return m, tea.Sequence(echo,
			tea.Println(errorStyle.Render("error: "+err.Error())))
	}

	return m, tea.Sequence(echo,
		tea.Println(resultStyle.Render(lang.FormatResult(result))))
}

// evaluate renders input as a template if it embeds delimited expressions
// and evaluates it as a single expression otherwise.
func (m model) evaluate(input string) (result any, err error) {
	if lang.HasExpression(input) {
		result, err = m.engine.Substitute(input, m.vars)
	} else {
		result, err = m.engine.Evaluate(input, m.vars)
	}

	attrs := []slog.Attr{slog.String("input", input)}
	if err != nil {
		attrs = append(attrs, slog.Any("error", err))
	} else {
		attrs = append(attrs, slog.String("result_type", fmt.Sprintf("%T", result)))
	}

	m.logger.TraceContext(m.ctxFunc(), "repl eval", attrs...)

	return result, err
}

func (m model) executeCommand(input string, echo tea.Cmd) (model, tea.Cmd) {
	name, args, _ := strings.Cut(input, " ")
	args = strings.TrimSpace(args)

	m.logger.TraceContext(m.ctxFunc(), "repl command",
		slog.String("command", name),
		slog.String("args", args))

	var (
		out string
		err error
	)

	switch name {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case "c", "clear":
		return m, tea.ClearScreen

	case "e", "edit":
		return m, tea.Sequence(echo, m.edit())

	case "h", "help":
		out = helpMessage

	case "k", "keys":
		out = m.listKeys(args)

	case "s", "set":
		err = m.set(args)

	case "u", "unset":
		err = m.unset(args)

	case "usage":
		out = m.listUsage()

	default:
		err = fmt.Errorf("%w: %s (try 'help')", ErrUnknownCommand, name)
	}

	switch {
	case err != nil:
		return m, tea.Sequence(echo, tea.Println(errorStyle.Render(err.Error())))
	case out != "":
		return m, tea.Sequence(echo, tea.Println(out))
	default:
		return m, echo
	}
}

// set assigns a session variable from a name=value argument.
func (m model) set(arg string) error {
	name, value, err := lang.ParseAssignment(arg)
	if err != nil {
		return err
	}

	m.vars.Set(name, value)
	m.assign[name] = value

	return nil
}

func (m model) unset(args string) error {
	names := strings.Fields(args)
	if len(names) == 0 {
		return fmt.Errorf("%w: unset name...", ErrMissingArgument)
	}

	m.vars.Unset(names...)

	for _, name := range names {
		delete(m.assign, name)
	}

	return nil
}

// applyEdit makes values the complete set of session assignments.
func (m *model) applyEdit(values map[string]any) {
	for name := range m.assign {
		if _, ok := values[name]; !ok {
			m.vars.Unset(name)
		}
	}

	for name, value := range values {
		m.vars.Set(name, value)
	}

	m.assign = values

	m.logger.TraceContext(m.ctxFunc(), "repl edit complete",
		slog.Int("assigned", len(values)))
}

func (m model) edit() tea.Cmd {
	cmd := &editCommand{
		ctx:      m.ctxFunc(),
		logger:   m.logger,
		assigned: maps.Clone(m.assign),
	}

	return tea.Exec(cmd, func(err error) tea.Msg {
		switch {
		case errors.Is(err, ErrEditDeclined):
			return editDeclinedMsg{}
		case err != nil:
			return editErrorMsg{err: err}
		case cmd.edited == nil:
			return editCancelledMsg{}
		default:
			return editedMsg{values: cmd.edited}
		}
	})
}

// listKeys lists the variables whose names start with prefix, each with a
// short preview of its value.
func (m model) listKeys(prefix string) string {
	var b strings.Builder

	for _, key := range m.vars.Keys() {
		if !strings.HasPrefix(key, prefix) {
			continue
		}

		marker := " "
		if _, ok := m.assign[key]; ok {
			marker = "*"
		}

		v, _ := m.vars.Get(key)
		fmt.Fprintf(&b, " %s %s %s\n", marker, key, hintStyle.Render(preview(v)))
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// listUsage lists the values recorded for each variable used by a template.
func (m model) listUsage() string {
	usage := m.engine.Tracker().Usage()
	if len(usage) == 0 {
		return hintStyle.Render("no variables used")
	}

	var b strings.Builder

	for _, name := range slices.Sorted(maps.Keys(usage)) {
		fmt.Fprintf(&b, "  %s\n", name)

		for _, value := range slices.Sorted(maps.Keys(usage[name])) {
			fmt.Fprintf(&b, "    %s %s\n",
				value, hintStyle.Render("×"+strconv.Itoa(usage[name][value])))
		}
	}

	return strings.TrimSuffix(b.String(), "\n")
}

const previewWidth = 40

// preview formats a value on one line, truncated to previewWidth.
func preview(v any) string {
	s := strings.Join(strings.Fields(lang.Stringify(v)), " ")
	if len(s) > previewWidth {
		return s[:previewWidth-3] + "..."
	}

	return s
}

// historyStep moves through history by step. In mode-only navigation
// entries of the other mode are skipped. Otherwise the mode follows the
// entry. Stepping past the newest entry clears the input.
func (m model) historyStep(step int, sameMode bool) model {
	for i := m.historyIdx + step; i >= 0 && i < m.history.Len(); i += step {
		entry, err := m.history.Entry(i)
		if err != nil || (sameMode && entry.Mode != m.mode) {
			continue
		}

		if entry.Mode != m.mode {
			m = m.switchToMode(entry.Mode)
		}

		m.historyIdx = i
		m.setInput(entry.Line, len(entry.Line))

		return m
	}

	if step > 0 && m.historyIdx < m.history.Len() {
		m.historyIdx = m.history.Len()
		m.setInput("", 0)
	}

	return m
}

// historyCtrl moves through command history only. The mode and input in
// effect before navigation began are restored once either end is passed.
func (m model) historyCtrl(step int) model {
	if !m.altNavActive {
		m.altNavActive = true
		m.altNavOrigMode = m.mode
		m.altNavOrigText = m.input.Value()
		m.altNavOrigCursor = m.input.Position()

		if m.mode != modeCtrl {
			m = m.switchToMode(modeCtrl)
		}
	}

	for i := m.historyIdx + step; i >= 0 && i < m.history.Len(); i += step {
		if entry, err := m.history.Entry(i); err == nil && entry.Mode == modeCtrl {
			m.historyIdx = i
			m.setInput(entry.Line, len(entry.Line))

			return m
		}
	}

	m.altNavActive = false
	if m.altNavOrigMode != m.mode {
		m = m.switchToMode(m.altNavOrigMode)
	}

	m.historyIdx = m.history.Len()
	m.setInput(m.altNavOrigText, m.altNavOrigCursor)

	return m
}

func (m *model) setInput(text string, cursor int) {
	m.input.SetValue(text)
	m.input.SetCursor(cursor)
	refreshMatches(m, false)
}

// switchToMode switches to mode, saving the input of the mode left behind
// and restoring the input of the mode entered.
func (m model) switchToMode(mode inputMode) model {
	if m.mode == modeEval {
		m.evalText, m.evalCursor = m.input.Value(), m.input.Position()
	} else {
		m.ctrlText, m.ctrlCursor = m.input.Value(), m.input.Position()
	}

	m.mode = mode

	if mode == modeEval {
		m.input.Prompt = promptStyle.Render(evalPrompt)
		m.setInput(m.evalText, m.evalCursor)
	} else {
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
		m.setInput(m.ctrlText, m.ctrlCursor)
	}

	return m
}
