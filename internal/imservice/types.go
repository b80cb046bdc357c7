package imservice

import "strings"

// ContentHint is a bitfield describing how the focused text field expects to
// be filled.
type ContentHint uint32

const (
	HintNone               ContentHint = 0x0
	HintCompletion         ContentHint = 0x1
	HintSpellcheck         ContentHint = 0x2
	HintAutoCapitalization ContentHint = 0x4
	HintLowercase          ContentHint = 0x8
	HintUppercase          ContentHint = 0x10
	HintTitlecase          ContentHint = 0x20
	HintHiddenText         ContentHint = 0x40
	HintSensitiveData      ContentHint = 0x80
	HintLatin              ContentHint = 0x100
	HintMultiline          ContentHint = 0x200

	hintAll ContentHint = 0x3ff
)

var hintNames = []struct {
	bit  ContentHint
	name string
}{
	{HintCompletion, "completion"},
	{HintSpellcheck, "spellcheck"},
	{HintAutoCapitalization, "auto_capitalization"},
	{HintLowercase, "lowercase"},
	{HintUppercase, "uppercase"},
	{HintTitlecase, "titlecase"},
	{HintHiddenText, "hidden_text"},
	{HintSensitiveData, "sensitive_data"},
	{HintLatin, "latin"},
	{HintMultiline, "multiline"},
}

// HintFromWire validates a raw hint value. Unknown bits make the whole value
// invalid.
func HintFromWire(raw uint32) (ContentHint, bool) {
	h := ContentHint(raw)
	if h&^hintAll != 0 {
		return HintNone, false
	}
	return h, true
}

// Has reports whether every bit of flag is set.
func (h ContentHint) Has(flag ContentHint) bool {
	return h&flag == flag
}

func (h ContentHint) String() string {
	if h == HintNone {
		return "none"
	}
	var parts []string
	for _, n := range hintNames {
		if h.Has(n.bit) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// ContentPurpose is the semantic kind of the focused text field.
type ContentPurpose uint32

const (
	PurposeNormal ContentPurpose = iota
	PurposeAlpha
	PurposeDigits
	PurposeNumber
	PurposePhone
	PurposeURL
	PurposeEmail
	PurposeName
	PurposePassword
	PurposePin
	PurposeDate
	PurposeTime
	PurposeDatetime
	PurposeTerminal
)

var purposeNames = [...]string{
	"normal", "alpha", "digits", "number", "phone", "url", "email",
	"name", "password", "pin", "date", "time", "datetime", "terminal",
}

// PurposeFromWire validates a raw purpose value.
func PurposeFromWire(raw uint32) (ContentPurpose, bool) {
	if raw >= uint32(len(purposeNames)) {
		return PurposeNormal, false
	}
	return ContentPurpose(raw), true
}

// ParsePurpose maps a lowercase purpose name back to its value.
func ParsePurpose(name string) (ContentPurpose, bool) {
	for i, n := range purposeNames {
		if n == name {
			return ContentPurpose(i), true
		}
	}
	return PurposeNormal, false
}

func (p ContentPurpose) String() string {
	if int(p) < len(purposeNames) {
		return purposeNames[p]
	}
	return "unknown"
}

// ChangeCause tells whether the last text change came from this input method.
type ChangeCause uint32

const (
	CauseInputMethod ChangeCause = iota
	CauseOther
)

// ChangeCauseFromWire validates a raw change cause.
func ChangeCauseFromWire(raw uint32) (ChangeCause, bool) {
	switch ChangeCause(raw) {
	case CauseInputMethod, CauseOther:
		return ChangeCause(raw), true
	}
	return CauseInputMethod, false
}

func (c ChangeCause) String() string {
	if c == CauseOther {
		return "other"
	}
	return "input_method"
}
