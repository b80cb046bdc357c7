package ui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bnema/wayosk/internal/imservice"
	"github.com/bnema/wayosk/internal/session"
)

const (
	headerRows = 2
	logRows    = 6
	footerRows = 2
	minKbRows  = 4
)

var previewPurposes = []imservice.ContentPurpose{
	imservice.PurposeNormal,
	imservice.PurposeNumber,
	imservice.PurposeTerminal,
}

type previewKeyMap struct {
	ToggleIM key.Binding
	Purpose  key.Binding
	Layout   key.Binding
	Clear    key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func (k previewKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ToggleIM, k.Purpose, k.Layout, k.Help, k.Quit}
}

func (k previewKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ToggleIM, k.Purpose, k.Layout},
		{k.Clear, k.Help, k.Quit},
	}
}

var defaultPreviewKeys = previewKeyMap{
	ToggleIM: key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "focus text field")),
	Purpose:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "cycle purpose")),
	Layout:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next layout")),
	Clear:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear text")),
	Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// Preview drives a session from the terminal: mouse events become pointer
// events and a Recorder plays the compositor.
type Preview struct {
	sess     *session.Session
	rec      *Recorder
	keys     previewKeyMap
	help     help.Model
	layouts  []string
	layoutAt int
	purpose  int
	focused  bool
	notice   string

	width, height int
	kbRows        int
	time          uint32
}

// NewPreview builds a session wired to a Recorder. Options fields for the
// protocols and callbacks are overwritten.
func NewPreview(opts session.Options) (*Preview, error) {
	p := &Preview{
		rec:  NewRecorder(logRows),
		keys: defaultPreviewKeys,
		help: help.New(),
	}
	opts.VirtualKeyboard = p.rec
	opts.InputMethod = p.rec
	opts.OnPreferences = func() { p.notice = "preferences requested" }
	opts.OnVisibilityChange = func(visible bool) {
		if visible {
			p.notice = "panel shown"
		} else {
			p.notice = "panel hidden"
		}
	}

	sess, err := session.New(opts)
	if err != nil {
		return nil, err
	}
	p.sess = sess
	if opts.Loader != nil {
		p.layouts = opts.Loader.Names()
	}
	if i := slices.Index(p.layouts, sess.State().LayoutName); i >= 0 {
		p.layoutAt = i
	}
	return p, nil
}

// Session returns the driven session.
func (p *Preview) Session() *session.Session { return p.sess }

// Recorder returns the fake compositor.
func (p *Preview) Recorder() *Recorder { return p.rec }

// Init implements tea.Model
func (p *Preview) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (p *Preview) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.resize(msg.Width, msg.Height)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keys.Quit):
			p.sess.Dispatch(session.Unmap{Time: p.tick()})
			return p, tea.Quit
		case key.Matches(msg, p.keys.ToggleIM):
			p.toggleFocus()
		case key.Matches(msg, p.keys.Purpose):
			p.purpose = (p.purpose + 1) % len(previewPurposes)
			if p.focused {
				p.sendContentType()
				p.sess.Dispatch(session.IMDone{})
			}
		case key.Matches(msg, p.keys.Layout):
			p.nextLayout()
		case key.Matches(msg, p.keys.Clear):
			p.rec.Reset()
			p.echo()
		case key.Matches(msg, p.keys.Help):
			p.help.ShowAll = !p.help.ShowAll
		}

	case tea.MouseMsg:
		p.mouse(msg)
	}
	return p, nil
}

func (p *Preview) tick() uint32 {
	p.time += 10
	return p.time
}

func (p *Preview) resize(width, height int) {
	p.width, p.height = width, height
	p.help.Width = width
	p.kbRows = height - headerRows - logRows - footerRows
	if p.kbRows < minKbRows {
		p.kbRows = minKbRows
	}
	w, h := WidgetSize(width, p.kbRows)
	p.sess.Dispatch(session.Resize{Width: w, Height: h})
}

func (p *Preview) mouse(msg tea.MouseMsg) {
	row := msg.Y - headerRows
	x, y := CellToWidget(msg.X, row)
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		if row < 0 || row >= p.kbRows {
			return
		}
		p.sess.Dispatch(session.PointerDown{X: x, Y: y, Time: p.tick()})
	case tea.MouseActionMotion:
		p.sess.Dispatch(session.PointerMove{X: x, Y: y, Time: p.tick()})
	case tea.MouseActionRelease:
		p.sess.Dispatch(session.PointerUp{Time: p.tick()})
	}
	p.echo()
}

// echo plays the text field's side of the protocol: after a change the
// compositor reports the new surrounding text.
func (p *Preview) echo() {
	if !p.rec.TakeDirty() || !p.focused {
		return
	}
	text := p.rec.Text()
	end := uint32(len(text))
	p.sess.Dispatch(session.IMSurroundingText{Text: text, Cursor: end, Anchor: end})
	p.sess.Dispatch(session.IMDone{})
}

func (p *Preview) toggleFocus() {
	p.focused = !p.focused
	if p.focused {
		p.sess.Dispatch(session.IMActivate{})
		p.sendContentType()
		text := p.rec.Text()
		end := uint32(len(text))
		p.sess.Dispatch(session.IMSurroundingText{Text: text, Cursor: end, Anchor: end})
	} else {
		p.sess.Dispatch(session.IMDeactivate{})
	}
	p.sess.Dispatch(session.IMDone{})
}

func (p *Preview) sendContentType() {
	p.sess.Dispatch(session.IMContentType{Purpose: uint32(previewPurposes[p.purpose])})
}

func (p *Preview) nextLayout() {
	if len(p.layouts) == 0 {
		return
	}
	p.layoutAt = (p.layoutAt + 1) % len(p.layouts)
	reply := make(chan error, 1)
	p.sess.Dispatch(session.LayoutSwitch{Name: p.layouts[p.layoutAt], Reply: reply})
	if err := <-reply; err != nil {
		p.notice = err.Error()
	}
}

// View implements tea.Model
func (p *Preview) View() string {
	st := p.sess.Status()

	var b strings.Builder
	focus := FormatControl("i", "focus text field")
	if p.focused {
		focus = "focused"
	}
	header := fmt.Sprintf("%s / %s [%s]  purpose %s  %s  %s",
		st.Layout, st.View, st.Arrangement, previewPurposes[p.purpose], focus,
		FormatIndicator(st.Visible, "visible"))
	b.WriteString(TitleStyle.Render("wayosk preview") + " " + header)
	if p.notice != "" {
		b.WriteString("  " + InfoStyle.Render(p.notice))
	}
	b.WriteString("\n")
	b.WriteString(SubtleStyle.Render("text> ") + TextStyle.Render(strings.ReplaceAll(p.rec.Text(), "\n", "⏎")))
	b.WriteString("\n")

	if p.width > 0 {
		grid := RasterizeView(p.sess.Layout(), p.sess.Machine().Geometry().WidgetToLayout, p.width, p.kbRows)
		b.WriteString(grid.Render())
		b.WriteString("\n")
	}

	b.WriteString(CreateSeparator(p.width, "─"))
	b.WriteString("\n")
	lines := p.rec.Lines()
	for i := 0; i < logRows; i++ {
		if i < len(lines) {
			b.WriteString(SubtleStyle.Render(lines[i]))
		}
		b.WriteString("\n")
	}
	b.WriteString(p.help.View(p.keys))
	return b.String()
}
