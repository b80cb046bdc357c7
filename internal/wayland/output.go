package wayland

import (
	"github.com/rajveermalviya/go-wayland/wayland/client"

	"github.com/bnema/wayosk/internal/outputs"
)

// wl_output.mode flags
const outputModeCurrent = 0x1

type outputProxy struct {
	proxy    *client.Output
	info     outputs.Output
	complete bool
}

func (c *Conn) bindOutput(name, version uint32) {
	o := &outputProxy{
		proxy: client.NewOutput(c.display.Context()),
		info:  outputs.Output{ID: name, Scale: 1},
	}
	o.proxy.SetGeometryHandler(func(e client.OutputGeometryEvent) {
		o.info.PhysWMM = e.PhysicalWidth
		o.info.PhysHMM = e.PhysicalHeight
		o.info.Make = e.Make
		o.info.Model = e.Model
		o.info.Rotation = outputs.Transform(e.Transform)
	})
	o.proxy.SetModeHandler(func(e client.OutputModeEvent) {
		if e.Flags&outputModeCurrent != 0 {
			o.info.Width = e.Width
			o.info.Height = e.Height
		}
	})
	o.proxy.SetScaleHandler(func(e client.OutputScaleEvent) {
		o.info.Scale = e.Factor
	})
	o.proxy.SetDoneHandler(func(client.OutputDoneEvent) {
		c.outputDone(o)
	})

	if err := c.registry.Bind(name, "wl_output", min(version, 2), o.proxy); err != nil {
		c.log.Warn("Cannot bind output", "name", name, "err", err)
		return
	}
	c.mu.Lock()
	c.outputs[name] = o
	c.mu.Unlock()
}

func (c *Conn) outputDone(o *outputProxy) {
	c.mu.Lock()
	o.complete = true
	info := o.info
	l := c.outputListener
	c.mu.Unlock()
	if l != nil {
		l.OutputAdded(info)
	}
}

func (c *Conn) removeOutput(name uint32) {
	c.mu.Lock()
	o, ok := c.outputs[name]
	delete(c.outputs, name)
	l := c.outputListener
	c.mu.Unlock()
	if !ok {
		return
	}
	o.proxy.Context().Unregister(o.proxy)
	if l != nil {
		l.OutputRemoved(name)
	}
}
