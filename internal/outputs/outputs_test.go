package outputs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPerceptualWidth(t *testing.T) {
	tests := []struct {
		name   string
		output Output
		want   float64
	}{
		{"plain", Output{Width: 1920, Height: 1080, Scale: 1}, 1920},
		{"scaled", Output{Width: 1440, Height: 720, Scale: 2}, 720},
		{"portrait phone", Output{Width: 720, Height: 1440, Scale: 2}, 360},
		{"rotated", Output{Width: 1440, Height: 720, Scale: 2, Rotation: Transform90}, 360},
		{"missing scale", Output{Width: 800, Height: 600}, 800},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.output.PerceptualWidth())
		})
	}
}

func TestTrackerCurrent(t *testing.T) {
	tr := NewTracker()
	assert.Nil(t, tr.Current())
	assert.False(t, tr.IsWide(540))

	tr.Register(Output{ID: 1, Width: 720, Height: 1440, Scale: 2})
	tr.Register(Output{ID: 2, Width: 1920, Height: 1080, Scale: 1})
	assert.Equal(t, uint32(2), tr.Current().ID)
	assert.True(t, tr.IsWide(540))

	assert.True(t, tr.Unregister(2))
	assert.False(t, tr.Unregister(2))
	assert.Equal(t, uint32(1), tr.Current().ID)
	assert.False(t, tr.IsWide(540))

	// re-registering makes an output current again
	tr.Register(Output{ID: 3, Width: 1000, Height: 500, Scale: 1})
	tr.Register(Output{ID: 1, Width: 720, Height: 1440, Scale: 1})
	assert.Equal(t, uint32(1), tr.Current().ID)
	assert.Len(t, tr.All(), 2)
	assert.Equal(t, uint32(1), tr.All()[0].ID)
}
