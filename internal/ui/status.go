package ui

import (
	"fmt"
	"strings"

	"github.com/bnema/wayosk/internal/ipc"
)

// RenderStatus formats a status reply for the terminal.
func RenderStatus(st *ipc.Status) string {
	var b strings.Builder

	b.WriteString(HeaderStyle.Render("wayosk"))
	b.WriteString("\n")

	visible := "hidden"
	if st.Visible {
		visible = "visible"
	}
	lines := []string{
		FormatField("Panel", FormatIndicator(st.Visible, fmt.Sprintf("%s (%s)", visible, st.Visibility))),
		FormatField("Input method", imLine(st)),
		FormatField("Layout", layoutLine(st)),
		FormatField("Purpose", st.Purpose),
		FormatField("Hint", st.Hint),
		FormatField("Modifiers", st.Modifiers),
		FormatField("Pressed", strings.Join(st.Pressed, " ")),
		FormatField("Virtual kbd", FormatIndicator(st.VirtualKeyboard, "")),
		FormatField("Outputs", strings.Join(st.Outputs, ", ")),
	}
	b.WriteString(BoxStyle.Render(strings.Join(lines, "\n")))
	return b.String()
}

func imLine(st *ipc.Status) string {
	if !st.InputMethodBound {
		return WarningStyle.Render(IconWarning) + " unavailable"
	}
	return FormatIndicator(st.InputMethodActive, fmt.Sprintf("%s (serial %d)", st.InputMethod, st.Serial))
}

func layoutLine(st *ipc.Status) string {
	if st.Layout == "" {
		return ""
	}
	return fmt.Sprintf("%s / %s [%s]", st.Layout, st.View, st.Arrangement)
}
