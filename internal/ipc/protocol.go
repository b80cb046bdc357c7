package ipc

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

// Commands understood by the control socket.
const (
	CmdShow   = "show"
	CmdHide   = "hide"
	CmdAuto   = "auto"
	CmdStatus = "status"
	CmdLayout = "layout"
	CmdPress  = "press"
)

// ErrUnknownCommand is returned for requests with an unrecognized "cmd".
var ErrUnknownCommand = errors.New("unknown command")

// Status mirrors the running keyboard's state on the wire.
type Status struct {
	Visible           bool
	Visibility        string
	InputMethod       string
	Serial            uint32
	VirtualKeyboard   bool
	InputMethodBound  bool
	InputMethodActive bool
	Layout            string
	View              string
	Arrangement       string
	Purpose           string
	Hint              string
	Modifiers         string
	Pressed           []string
	Outputs           []string
}

// NewRequest builds a request message for cmd with optional string arguments.
func NewRequest(cmd string, args map[string]string) (*structpb.Struct, error) {
	fields := map[string]any{"cmd": cmd}
	for k, v := range args {
		fields[k] = v
	}
	msg, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", cmd, err)
	}
	return msg, nil
}

// Command returns the request's "cmd" field.
func Command(msg *structpb.Struct) string {
	return stringField(msg, "cmd")
}

// Arg returns a string argument of a request.
func Arg(msg *structpb.Struct, name string) string {
	return stringField(msg, name)
}

// NewOKResponse builds a successful response, optionally carrying a status.
func NewOKResponse(st *Status) *structpb.Struct {
	resp := &structpb.Struct{Fields: map[string]*structpb.Value{
		"ok": structpb.NewBoolValue(true),
	}}
	if st != nil {
		resp.Fields["status"] = structpb.NewStructValue(statusToStruct(st))
	}
	return resp
}

// NewErrorResponse builds a failed response.
func NewErrorResponse(msg string) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"ok":    structpb.NewBoolValue(false),
		"error": structpb.NewStringValue(msg),
	}}
}

// ResponseError returns the server-side error carried by resp, if any.
func ResponseError(resp *structpb.Struct) error {
	if resp == nil {
		return errors.New("empty response")
	}
	ok, found := resp.Fields["ok"]
	if found && ok.GetBoolValue() {
		return nil
	}
	if msg := stringField(resp, "error"); msg != "" {
		return fmt.Errorf("server error: %s", msg)
	}
	return errors.New("server error: request failed")
}

// GetStatus extracts the status carried by a response.
func GetStatus(resp *structpb.Struct) (*Status, error) {
	if err := ResponseError(resp); err != nil {
		return nil, err
	}
	v, ok := resp.Fields["status"]
	if !ok || v.GetStructValue() == nil {
		return nil, errors.New("response carries no status")
	}
	return statusFromStruct(v.GetStructValue()), nil
}

func statusToStruct(st *Status) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"visible":             structpb.NewBoolValue(st.Visible),
		"visibility":          structpb.NewStringValue(st.Visibility),
		"input_method":        structpb.NewStringValue(st.InputMethod),
		"serial":              structpb.NewNumberValue(float64(st.Serial)),
		"virtual_keyboard":    structpb.NewBoolValue(st.VirtualKeyboard),
		"input_method_bound":  structpb.NewBoolValue(st.InputMethodBound),
		"input_method_active": structpb.NewBoolValue(st.InputMethodActive),
		"layout":              structpb.NewStringValue(st.Layout),
		"view":                structpb.NewStringValue(st.View),
		"arrangement":         structpb.NewStringValue(st.Arrangement),
		"purpose":             structpb.NewStringValue(st.Purpose),
		"hint":                structpb.NewStringValue(st.Hint),
		"modifiers":           structpb.NewStringValue(st.Modifiers),
		"pressed":             stringList(st.Pressed),
		"outputs":             stringList(st.Outputs),
	}}
}

func statusFromStruct(s *structpb.Struct) *Status {
	return &Status{
		Visible:           boolField(s, "visible"),
		Visibility:        stringField(s, "visibility"),
		InputMethod:       stringField(s, "input_method"),
		Serial:            uint32(s.Fields["serial"].GetNumberValue()),
		VirtualKeyboard:   boolField(s, "virtual_keyboard"),
		InputMethodBound:  boolField(s, "input_method_bound"),
		InputMethodActive: boolField(s, "input_method_active"),
		Layout:            stringField(s, "layout"),
		View:              stringField(s, "view"),
		Arrangement:       stringField(s, "arrangement"),
		Purpose:           stringField(s, "purpose"),
		Hint:              stringField(s, "hint"),
		Modifiers:         stringField(s, "modifiers"),
		Pressed:           listField(s, "pressed"),
		Outputs:           listField(s, "outputs"),
	}
}

func stringList(items []string) *structpb.Value {
	values := make([]*structpb.Value, 0, len(items))
	for _, item := range items {
		values = append(values, structpb.NewStringValue(item))
	}
	return structpb.NewListValue(&structpb.ListValue{Values: values})
}

func stringField(s *structpb.Struct, name string) string {
	if s == nil {
		return ""
	}
	return s.Fields[name].GetStringValue()
}

func boolField(s *structpb.Struct, name string) bool {
	return s.Fields[name].GetBoolValue()
}

func listField(s *structpb.Struct, name string) []string {
	list := s.Fields[name].GetListValue()
	if list == nil {
		return nil
	}
	out := make([]string, 0, len(list.Values))
	for _, v := range list.Values {
		out = append(out, v.GetStringValue())
	}
	return out
}
