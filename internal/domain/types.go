package domain

import (
	"errors"
	"strings"

	"github.com/goccy/go-json"
)

// --- Shared Custom Types ---

// AssignedValue holds either a scalar (text, number, boolean, select) or an
// ordered set of labels (multiselect). On the wire it is a string or an array.
type AssignedValue struct {
	Scalar string
	Set    []string
	Multi  bool
}

func ScalarValue(s string) AssignedValue {
	return AssignedValue{Scalar: s}
}

func SetValue(items ...string) AssignedValue {
	return AssignedValue{Set: append([]string{}, items...), Multi: true}
}

// IsEmpty treats whitespace-only scalars as empty.
func (v AssignedValue) IsEmpty() bool {
	if v.Multi {
		return len(v.Set) == 0
	}
	return strings.TrimSpace(v.Scalar) == ""
}

func (v AssignedValue) Contains(item string) bool {
	for _, s := range v.Set {
		if s == item {
			return true
		}
	}
	return false
}

func (v AssignedValue) MarshalJSON() ([]byte, error) {
	if v.Multi {
		if v.Set == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.Set)
	}
	return json.Marshal(v.Scalar)
}

func (v *AssignedValue) UnmarshalJSON(data []byte) error {
	if v == nil {
		return errors.New("AssignedValue: UnmarshalJSON on nil pointer")
	}
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var set []string
		if err := json.Unmarshal(data, &set); err != nil {
			return err
		}
		*v = SetValue(set...)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*v = ScalarValue(s)
	return nil
}

// AttributeAssignment maps attribute id to its assigned value.
type AttributeAssignment map[string]AssignedValue

// Clone deep-copies the assignment so callers can mutate freely.
func (a AttributeAssignment) Clone() AttributeAssignment {
	out := make(AttributeAssignment, len(a))
	for k, v := range a {
		if v.Multi {
			v.Set = append([]string{}, v.Set...)
		}
		out[k] = v
	}
	return out
}
