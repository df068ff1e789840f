// internal/status/code.go
package status

import (
	"fmt"
	"strings"
)

// Code is the three-valued fatigue level.
type Code int

const (
	Normal      Code = 0
	MildFatigue Code = 1
	Drowsy      Code = 2
)

// UnknownLabel is reported for codes outside the known set.
const UnknownLabel = "unknown"

// labels are the texts the detector and the snapshot writers emit.
var labels = map[Code]string{
	Normal:      "正常",
	MildFatigue: "轻微疲劳",
	Drowsy:      "瞌睡",
}

// aliases are accepted on input in addition to labels.
var aliases = map[string]Code{
	"normal":       Normal,
	"mild fatigue": MildFatigue,
	"drowsy":       Drowsy,
}

// Valid reports whether c is one of the known codes.
func (c Code) Valid() bool {
	_, ok := labels[c]
	return ok
}

// Label returns the human readable text for c, or UnknownLabel.
func (c Code) Label() string {
	if l, ok := labels[c]; ok {
		return l
	}
	return UnknownLabel
}

// IsAlert is true for every level above Normal.
func (c Code) IsAlert() bool {
	return c >= MildFatigue
}

func (c Code) String() string {
	return fmt.Sprintf("%d(%s)", int(c), c.Label())
}

// LabelOf looks up the label of a raw value without coercing it.
func LabelOf(v int) (string, bool) {
	l, ok := labels[Code(v)]
	if !ok {
		return UnknownLabel, false
	}
	return l, true
}

// ParseCode validates a raw value.
func ParseCode(v int) (Code, error) {
	c := Code(v)
	if !c.Valid() {
		return 0, &ValidationError{Field: "status_code", Value: v, Reason: "must be 0, 1 or 2"}
	}
	return c, nil
}

// CodeForLabel maps a label, or its English alias, back to its code.
// Unknown labels are rejected.
func CodeForLabel(text string) (Code, error) {
	for c, l := range labels {
		if l == text {
			return c, nil
		}
	}
	if c, ok := aliases[strings.ToLower(strings.TrimSpace(text))]; ok {
		return c, nil
	}
	return 0, &ValidationError{Field: "status_text", Value: text, Reason: "unknown label"}
}

// Describes reports whether text is a label or alias of c.
func (c Code) Describes(text string) bool {
	got, err := CodeForLabel(text)
	return err == nil && got == c
}

// ValidationError reports a value that is not a valid state.
type ValidationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("status: invalid %s %v: %s", e.Field, e.Value, e.Reason)
}
