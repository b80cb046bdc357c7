package layout

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bnema/wayosk/internal/geometry"
	"github.com/bnema/wayosk/internal/keymap"
)

const defaultOutline = "default"

type rawLayout struct {
	Margins  rawMargins            `yaml:"margins"`
	Outlines map[string]rawOutline `yaml:"outlines"`
	Views    map[string][]string   `yaml:"views"`
	Buttons  map[string]rawButton  `yaml:"buttons"`
}

type rawMargins struct {
	Top    float64 `yaml:"top"`
	Bottom float64 `yaml:"bottom"`
	Side   float64 `yaml:"side"`
}

type rawOutline struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type rawButton struct {
	Action   *rawAction `yaml:"action"`
	Keysym   string     `yaml:"keysym"`
	Text     string     `yaml:"text"`
	Modifier string     `yaml:"modifier"`
	Label    string     `yaml:"label"`
	Icon     string     `yaml:"icon"`
	Outline  string     `yaml:"outline"`
}

type rawLocking struct {
	LockView        string   `yaml:"lock_view"`
	UnlockView      string   `yaml:"unlock_view"`
	Pops            bool     `yaml:"pops"`
	LooksLockedFrom []string `yaml:"looks_locked_from"`
}

// rawAction is either a bare word (erase, show_prefs) or a mapping.
type rawAction struct {
	Simple  string
	SetView string      `yaml:"set_view"`
	Locking *rawLocking `yaml:"locking"`
}

func (a *rawAction) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		a.Simple = node.Value
		return nil
	}
	var m struct {
		SetView string      `yaml:"set_view"`
		Locking *rawLocking `yaml:"locking"`
	}
	if err := node.Decode(&m); err != nil {
		return err
	}
	a.SetView = m.SetView
	a.Locking = m.Locking
	return nil
}

// Parse validates and builds a layout from a YAML document.
func Parse(name string, data []byte) (*Layout, error) {
	if err := Validate(data); err != nil {
		return nil, fmt.Errorf("layout %s: %w", name, err)
	}

	var raw rawLayout
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("layout %s: %w: %v", name, ErrInvalidLayout, err)
	}

	l, err := build(name, &raw)
	if err != nil {
		return nil, fmt.Errorf("layout %s: %w", name, err)
	}
	return l, nil
}

func build(name string, raw *rawLayout) (*Layout, error) {
	l := &Layout{
		Name: name,
		Margins: Margins{
			Top:    raw.Margins.Top,
			Bottom: raw.Margins.Bottom,
			Side:   raw.Margins.Side,
		},
		Views:       make(map[string]*View, len(raw.Views)),
		Keys:        make(map[string]*Key),
		currentView: BaseView,
		pressed:     make(map[string]bool),
	}

	for viewName, rows := range raw.Views {
		view, err := l.buildView(viewName, rows, raw)
		if err != nil {
			return nil, err
		}
		l.Views[viewName] = view
	}

	for _, key := range l.Keys {
		if err := l.checkViews(key); err != nil {
			return nil, err
		}
	}

	var syms []keymap.KeySym
	for _, key := range l.Keys {
		syms = append(syms, key.Action.Keys...)
	}
	set, err := keymap.Generate(syms)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLayout, err)
	}
	l.Keymaps = set
	for _, key := range l.Keys {
		for _, sym := range key.Action.Keys {
			code, _ := set.Lookup(sym)
			key.Keycodes = append(key.Keycodes, code)
		}
	}
	return l, nil
}

func (l *Layout) buildView(name string, rows []string, raw *rawLayout) (*View, error) {
	view := &View{Name: name}
	var contentWidth float64
	y := l.Margins.Top

	for _, line := range rows {
		row := Row{}
		var x, height float64
		for _, id := range strings.Fields(line) {
			rb := raw.Buttons[id]
			outlineName := rb.Outline
			if outlineName == "" {
				outlineName = defaultOutline
			}
			outline, ok := raw.Outlines[outlineName]
			if !ok {
				return nil, fmt.Errorf("%w: button %q uses unknown outline %q", ErrInvalidLayout, id, outlineName)
			}
			if _, ok := l.Keys[id]; !ok {
				action, err := buildAction(id, rb)
				if err != nil {
					return nil, err
				}
				l.Keys[id] = &Key{ID: id, Action: action}
			}
			row.Buttons = append(row.Buttons, Button{
				KeyID:   id,
				Label:   rb.Label,
				Icon:    rb.Icon,
				Outline: outlineName,
				Bounds:  geometry.Bounds{X: x, Y: y, Width: outline.Width, Height: outline.Height},
			})
			x += outline.Width
			height = max(height, outline.Height)
		}
		row.Bounds = geometry.Bounds{Y: y, Width: x, Height: height}
		contentWidth = max(contentWidth, x)
		view.Rows = append(view.Rows, row)
		y += height
	}

	// Centre rows horizontally inside the widest one.
	for ri := range view.Rows {
		row := &view.Rows[ri]
		offset := l.Margins.Side + (contentWidth-row.Bounds.Width)/2
		row.Bounds.X = offset
		for bi := range row.Buttons {
			row.Buttons[bi].Bounds.X += offset
		}
	}

	view.Size = geometry.Size{
		Width:  contentWidth + 2*l.Margins.Side,
		Height: y + l.Margins.Bottom,
	}
	return view, nil
}

func buildAction(id string, rb rawButton) (Action, error) {
	set := 0
	for _, present := range []bool{rb.Action != nil, rb.Keysym != "", rb.Text != "", rb.Modifier != ""} {
		if present {
			set++
		}
	}
	if set > 1 {
		return Action{}, fmt.Errorf("%w: button %q mixes action, keysym, text and modifier", ErrInvalidLayout, id)
	}

	switch {
	case rb.Action != nil:
		return buildExplicitAction(id, rb.Action)
	case rb.Keysym != "":
		if !keymap.Valid(rb.Keysym) {
			return Action{}, fmt.Errorf("%w: button %q has unknown keysym %q", ErrInvalidLayout, id, rb.Keysym)
		}
		return Action{Kind: ActionSubmit, Keys: []keymap.KeySym{keymap.KeySym(rb.Keysym)}}, nil
	case rb.Modifier != "":
		mod, err := ParseModifier(rb.Modifier)
		if err != nil {
			return Action{}, fmt.Errorf("%w: button %q: %v", ErrInvalidLayout, id, err)
		}
		return Action{Kind: ActionApplyModifier, Modifier: mod}, nil
	case rb.Text != "":
		return textAction(rb.Text), nil
	}
	return textAction(id), nil
}

func textAction(text string) Action {
	a := Action{Kind: ActionSubmit, Text: text}
	if sym, ok := keymap.ForText(text); ok {
		a.Keys = []keymap.KeySym{sym}
	}
	return a
}

func buildExplicitAction(id string, ra *rawAction) (Action, error) {
	switch {
	case ra.Simple == "erase":
		return Action{Kind: ActionErase, Keys: []keymap.KeySym{"BackSpace"}}, nil
	case ra.Simple == "show_prefs":
		return Action{Kind: ActionShowPreferences}, nil
	case ra.Simple != "":
		return Action{}, fmt.Errorf("%w: button %q has unknown action %q", ErrInvalidLayout, id, ra.Simple)
	case ra.SetView != "":
		return Action{Kind: ActionSetView, View: ra.SetView}, nil
	case ra.Locking != nil:
		return Action{Kind: ActionLockView, Lock: LockSpec{
			LockView:        ra.Locking.LockView,
			UnlockView:      ra.Locking.UnlockView,
			Pops:            ra.Locking.Pops,
			LooksLockedFrom: ra.Locking.LooksLockedFrom,
		}}, nil
	}
	return Action{}, fmt.Errorf("%w: button %q has an empty action", ErrInvalidLayout, id)
}

func (l *Layout) checkViews(k *Key) error {
	var names []string
	switch k.Action.Kind {
	case ActionSetView:
		names = []string{k.Action.View}
	case ActionLockView:
		names = []string{k.Action.Lock.LockView, k.Action.Lock.UnlockView}
	}
	for _, n := range names {
		if _, ok := l.Views[n]; !ok {
			return fmt.Errorf("%w: key %q refers to missing view %q", ErrInvalidLayout, k.ID, n)
		}
	}
	return nil
}
