package session

import (
	"github.com/bnema/wayosk/internal/outputs"
	"github.com/bnema/wayosk/internal/visibility"
)

// Event is anything the session loop consumes.
type Event interface {
	isEvent()
}

// Pointer stream, in widget pixels.
type (
	PointerDown struct {
		X, Y float64
		Time uint32
	}
	PointerMove struct {
		X, Y float64
		Time uint32
	}
	PointerUp struct {
		Time uint32
	}
	// PointerLeave is sent when the pointer leaves the panel surface.
	PointerLeave struct {
		Time uint32
	}
)

// Touch stream, in widget pixels.
type (
	TouchBegin struct {
		Seq  uint64
		X, Y float64
		Time uint32
	}
	TouchUpdate struct {
		Seq  uint64
		X, Y float64
		Time uint32
	}
	TouchEnd struct {
		Seq  uint64
		Time uint32
	}
	TouchCancel struct {
		Seq  uint64
		Time uint32
	}
)

// Surface lifecycle.
type (
	Resize struct {
		Width, Height float64
	}
	Unmap struct {
		Time uint32
	}
)

// Input-method protocol events.
type (
	IMActivate        struct{}
	IMDeactivate      struct{}
	IMSurroundingText struct {
		Text           string
		Cursor, Anchor uint32
	}
	IMContentType struct {
		Hint, Purpose uint32
	}
	IMTextChangeCause struct {
		Cause uint32
	}
	IMDone        struct{}
	IMUnavailable struct{}
)

// Outputs.
type (
	OutputAdded struct {
		Output outputs.Output
	}
	OutputRemoved struct {
		ID uint32
	}
)

// Control requests. Reply channels must be buffered.
type (
	SetVisibility struct {
		Mode visibility.Mode
	}
	LayoutSwitch struct {
		Name    string
		Overlay string
		Reply   chan error
	}
	// LayoutReload rebuilds the active layout when Name is empty or matches it.
	LayoutReload struct {
		Name string
	}
	StatusRequest struct {
		Reply chan Status
	}
	PressKey struct {
		ID    string
		Reply chan error
	}
)

func (PointerDown) isEvent()       {}
func (PointerMove) isEvent()       {}
func (PointerUp) isEvent()         {}
func (PointerLeave) isEvent()      {}
func (TouchBegin) isEvent()        {}
func (TouchUpdate) isEvent()       {}
func (TouchEnd) isEvent()          {}
func (TouchCancel) isEvent()       {}
func (Resize) isEvent()            {}
func (Unmap) isEvent()             {}
func (IMActivate) isEvent()        {}
func (IMDeactivate) isEvent()      {}
func (IMSurroundingText) isEvent() {}
func (IMContentType) isEvent()     {}
func (IMTextChangeCause) isEvent() {}
func (IMDone) isEvent()            {}
func (IMUnavailable) isEvent()     {}
func (OutputAdded) isEvent()       {}
func (OutputRemoved) isEvent()     {}
func (SetVisibility) isEvent()     {}
func (LayoutSwitch) isEvent()      {}
func (LayoutReload) isEvent()      {}
func (StatusRequest) isEvent()     {}
func (PressKey) isEvent()          {}
