package layout

import "github.com/bnema/wayosk/internal/imservice"

// Arrangement is the physical shape class of the panel.
type Arrangement int

const (
	ArrangementBase Arrangement = iota
	ArrangementWide
)

func (a Arrangement) String() string {
	if a == ArrangementWide {
		return "wide"
	}
	return "base"
}

// DefaultName is the layout used when nothing else is configured or found.
const DefaultName = "us"

// State holds everything that decides which layout is shown.
type State struct {
	Arrangement Arrangement
	Purpose     imservice.ContentPurpose
	Hint        imservice.ContentHint
	LayoutName  string
	OverlayName string
}

// SelectLayout returns the layout name to load. An overlay chosen by the user
// wins, then layouts bound to the content purpose, then the user layout.
func (s State) SelectLayout() string {
	if s.OverlayName != "" {
		return s.OverlayName
	}
	switch s.Purpose {
	case imservice.PurposeNumber, imservice.PurposeDigits,
		imservice.PurposePhone, imservice.PurposePin:
		return "number"
	case imservice.PurposeTerminal:
		return "terminal"
	}
	if s.LayoutName == "" {
		return DefaultName
	}
	return s.LayoutName
}

// Candidates lists file names to try for the selected layout, most specific
// first.
func (s State) Candidates() []string {
	name := s.SelectLayout()
	if s.Arrangement == ArrangementWide {
		return []string{name + "_wide", name}
	}
	return []string{name}
}
