// Package tui is an interactive theme picker. It lists the themes on the
// card, activates the highlighted one on enter and shows its preview below
// the list, the same way the device switches themes from its settings page.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"charm.land/bubbles/v2/table"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/oakwood-commons/sdtheme/internal/preview"
	"github.com/oakwood-commons/sdtheme/pkg/logger"
	"github.com/oakwood-commons/sdtheme/pkg/manager"
)

const (
	nameColumnWidth = 28
	maxTableHeight  = 10
)

// Options configures the picker.
type Options struct {
	NoColor bool
	// Initial is highlighted when the picker opens, if present.
	Initial string
}

// activatedMsg carries the outcome of an activation started from the list.
type activatedMsg struct {
	name string
	snap *manager.Snapshot
	err  error
}

// Model is the bubbletea model behind the picker.
type Model struct {
	ctx     context.Context
	mgr     *manager.Manager
	names   []string
	tbl     table.Model
	noColor bool

	active  string
	err     error
	pending string
}

// NewModel builds a picker over names. Activation goes through mgr, so a
// failure leaves the previously shown theme in place.
func NewModel(ctx context.Context, mgr *manager.Manager, names []string, opts Options) *Model {
	rows := make([]table.Row, len(names))
	cursor := 0
	for i, n := range names {
		rows[i] = table.Row{n}
		if n == opts.Initial {
			cursor = i
		}
	}
	t := table.New(
		table.WithColumns([]table.Column{{Title: "THEME", Width: nameColumnWidth}}),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(min(len(rows), maxTableHeight)+1),
	)
	s := table.DefaultStyles()
	if opts.NoColor {
		s.Selected = lipgloss.NewStyle().Reverse(true)
		s.Header = lipgloss.NewStyle().Bold(true)
	}
	t.SetStyles(s)
	t.SetCursor(cursor)

	return &Model{
		ctx:     ctx,
		mgr:     mgr,
		names:   names,
		tbl:     t,
		noColor: opts.NoColor,
	}
}

// Active is the name of the last theme that activated cleanly.
func (m *Model) Active() string {
	return m.active
}

// Selected is the highlighted theme name.
func (m *Model) Selected() string {
	cur := m.tbl.Cursor()
	if cur < 0 || cur >= len(m.names) {
		return ""
	}
	return m.names[cur]
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case activatedMsg:
		m.pending = ""
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.active = msg.name
		return m, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "enter":
			name := m.Selected()
			if name == "" || m.pending != "" {
				return m, nil
			}
			m.pending = name
			return m, m.activate(name)
		}
	}

	var cmd tea.Cmd
	m.tbl, cmd = m.tbl.Update(msg)
	return m, cmd
}

func (m *Model) activate(name string) tea.Cmd {
	ctx, mgr := m.ctx, m.mgr
	return func() tea.Msg {
		snap, err := mgr.Activate(ctx, name)
		return activatedMsg{name: name, snap: snap, err: err}
	}
}

func (m *Model) View() tea.View {
	return tea.NewView(m.render())
}

func (m *Model) render() string {
	var b strings.Builder
	b.WriteString(m.tbl.View())
	b.WriteString("\n\n")

	switch {
	case m.pending != "":
		fmt.Fprintf(&b, "loading %s...\n", m.pending)
	case m.err != nil:
		fmt.Fprintf(&b, "could not activate: %v\n", m.err)
	}
	if err := preview.Render(&b, m.mgr.Current(), preview.Options{NoColor: m.noColor}); err != nil {
		fmt.Fprintf(&b, "preview: %v\n", err)
	}
	b.WriteString("\nenter: activate  q: quit\n")
	return b.String()
}

// Run opens the picker on in/out and returns the theme that was active when
// the user quit. It returns "" when nothing was activated.
func Run(ctx context.Context, mgr *manager.Manager, names []string, opts Options, in io.Reader, out io.Writer) (string, error) {
	lgr := logger.FromContext(ctx)
	m := NewModel(ctx, mgr, names, opts)
	progOpts := append([]tea.ProgramOption{tea.WithContext(ctx)}, WithIO(in, out)...)
	final, err := tea.NewProgram(m, progOpts...).Run()
	if err != nil {
		return "", fmt.Errorf("theme picker: %w", err)
	}
	if fm, ok := final.(*Model); ok && fm != nil {
		lgr.V(1).Info("picker closed", logger.ThemeKey, fm.Active())
		return fm.Active(), nil
	}
	return m.Active(), nil
}

// WithIO returns tea.ProgramOptions to set custom input/output.
func WithIO(in io.Reader, out io.Writer) []tea.ProgramOption {
	opts := []tea.ProgramOption{}
	if in != nil {
		opts = append(opts, tea.WithInput(in))
	}
	if out != nil {
		opts = append(opts, tea.WithOutput(out))
	}
	return opts
}
