// Package outputs tracks the compositor's outputs and derives the panel
// arrangement from the current one.
package outputs

import (
	"fmt"
	"sort"

	"github.com/bnema/wayosk/internal/logger"
)

// Transform mirrors wl_output.transform. Rotated outputs swap width and height.
type Transform int32

const (
	TransformNormal Transform = iota
	Transform90
	Transform180
	Transform270
	TransformFlipped
	TransformFlipped90
	TransformFlipped180
	TransformFlipped270
)

func (t Transform) rotated() bool {
	switch t {
	case Transform90, Transform270, TransformFlipped90, TransformFlipped270:
		return true
	}
	return false
}

// Output is one display as announced by the compositor.
type Output struct {
	ID       uint32 // registry global name
	Name     string
	Make     string
	Model    string
	PhysWMM  int32
	PhysHMM  int32
	Width    int32 // current mode, pixels
	Height   int32
	Scale    int32
	Rotation Transform
}

// PerceptualWidth is the logical width in pixels after scale and rotation.
func (o *Output) PerceptualWidth() float64 {
	w := o.Width
	if o.Rotation.rotated() {
		w = o.Height
	}
	scale := o.Scale
	if scale <= 0 {
		scale = 1
	}
	return float64(w) / float64(scale)
}

func (o *Output) String() string {
	name := o.Name
	if name == "" {
		name = fmt.Sprintf("output-%d", o.ID)
	}
	return fmt.Sprintf("%s %dx%d@%dx", name, o.Width, o.Height, o.Scale)
}

// Tracker keeps registered outputs in registration order.
type Tracker struct {
	outputs []*Output
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Register adds an output or replaces one with the same ID. The registered
// output becomes the current one.
func (t *Tracker) Register(o Output) {
	t.Unregister(o.ID)
	out := o
	t.outputs = append(t.outputs, &out)
	logger.Debugf("Output registered: %s", out.String())
}

// Unregister removes an output. It reports whether it was known.
func (t *Tracker) Unregister(id uint32) bool {
	for i, o := range t.outputs {
		if o.ID == id {
			t.outputs = append(t.outputs[:i], t.outputs[i+1:]...)
			logger.Debugf("Output removed: %s", o.String())
			return true
		}
	}
	return false
}

// Current returns the most recently registered output that is still present.
func (t *Tracker) Current() *Output {
	if len(t.outputs) == 0 {
		return nil
	}
	return t.outputs[len(t.outputs)-1]
}

// All returns a copy of every output sorted by ID.
func (t *Tracker) All() []Output {
	all := make([]Output, 0, len(t.outputs))
	for _, o := range t.outputs {
		all = append(all, *o)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}

// IsWide reports whether the current output is wider than threshold logical
// pixels. Without any output the base arrangement is assumed.
func (t *Tracker) IsWide(threshold float64) bool {
	cur := t.Current()
	if cur == nil {
		return false
	}
	return cur.PerceptualWidth() > threshold
}
