package domain

import (
	"fmt"
	"strings"
)

// AttributeInput owns the parse/validate/serialize discipline of one attribute type.
type AttributeInput interface {
	// Normalize converts raw input into the stored value, rejecting malformed input.
	Normalize(attr Attribute, raw string) (AssignedValue, error)
	// Validate checks a stored value. Emptiness is checked by the caller.
	Validate(attr Attribute, value AssignedValue) error
}

// Toggler is implemented by inputs holding a set of values.
type Toggler interface {
	Toggle(attr Attribute, current AssignedValue, option string) (AssignedValue, error)
}

var attributeInputs = map[AttributeType]AttributeInput{
	AttributeText:        textInput{},
	AttributeNumber:      numberInput{},
	AttributeBoolean:     booleanInput{},
	AttributeSelect:      selectInput{},
	AttributeMultiSelect: multiSelectInput{},
}

// InputFor returns the input discipline of attr. Unknown types fall back to free text.
func InputFor(attr Attribute) AttributeInput {
	if in, ok := attributeInputs[attr.Type]; ok {
		return in
	}
	return textInput{}
}

func attrField(attr Attribute) string {
	return "attributes." + attr.ID
}

// --- text ---

type textInput struct{}

func (textInput) Normalize(_ Attribute, raw string) (AssignedValue, error) {
	return ScalarValue(raw), nil
}

func (textInput) Validate(Attribute, AssignedValue) error { return nil }

// --- number ---

type numberInput struct{}

func (numberInput) Normalize(attr Attribute, raw string) (AssignedValue, error) {
	for _, r := range raw {
		if !isNumericRune(r) {
			return AssignedValue{}, FieldInvalid(attrField(attr), "%s accepts numbers only", attr.Name)
		}
	}
	// Stored as typed; the catalog parses it.
	return ScalarValue(raw), nil
}

func (n numberInput) Validate(attr Attribute, value AssignedValue) error {
	_, err := n.Normalize(attr, value.Scalar)
	return err
}

func isNumericRune(r rune) bool {
	return (r >= '0' && r <= '9') || strings.ContainsRune(".,+-eE ", r)
}

// --- boolean ---

type booleanInput struct{}

// Normalize accepts "" as the unset third state of the toggle.
func (booleanInput) Normalize(attr Attribute, raw string) (AssignedValue, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return ScalarValue(""), nil
	case "true", "yes", "1":
		return ScalarValue("true"), nil
	case "false", "no", "0":
		return ScalarValue("false"), nil
	}
	return AssignedValue{}, FieldInvalid(attrField(attr), "%s must be yes or no", attr.Name)
}

func (booleanInput) Validate(attr Attribute, value AssignedValue) error {
	if value.Scalar != "true" && value.Scalar != "false" {
		return FieldInvalid(attrField(attr), "%s must be yes or no", attr.Name)
	}
	return nil
}

// --- select ---

type selectInput struct{}

// Normalize stores the option label, even when the caller sent the code.
func (selectInput) Normalize(attr Attribute, raw string) (AssignedValue, error) {
	if strings.TrimSpace(raw) == "" {
		return ScalarValue(""), nil
	}
	opt, ok := attr.MatchOption(raw)
	if !ok {
		return AssignedValue{}, notAnOption(attr, raw)
	}
	return ScalarValue(opt.Label), nil
}

func (selectInput) Validate(attr Attribute, value AssignedValue) error {
	if _, ok := attr.MatchOption(value.Scalar); !ok {
		return notAnOption(attr, value.Scalar)
	}
	return nil
}

// --- multiselect ---

type multiSelectInput struct{}

// Normalize reads a comma separated list of labels or codes.
func (multiSelectInput) Normalize(attr Attribute, raw string) (AssignedValue, error) {
	out := SetValue()
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		opt, ok := attr.MatchOption(part)
		if !ok {
			return AssignedValue{}, notAnOption(attr, part)
		}
		if !out.Contains(opt.Label) {
			out.Set = append(out.Set, opt.Label)
		}
	}
	return out, nil
}

func (multiSelectInput) Validate(attr Attribute, value AssignedValue) error {
	items := value.Set
	if !value.Multi {
		items = []string{value.Scalar}
	}
	for _, item := range items {
		if _, ok := attr.MatchOption(item); !ok {
			return notAnOption(attr, item)
		}
	}
	return nil
}

// Toggle adds option when absent and removes it when present, keeping insertion order.
func (multiSelectInput) Toggle(attr Attribute, current AssignedValue, option string) (AssignedValue, error) {
	opt, ok := attr.MatchOption(option)
	if !ok {
		return AssignedValue{}, notAnOption(attr, option)
	}
	next := SetValue()
	removed := false
	for _, item := range current.Set {
		if item == opt.Label {
			removed = true
			continue
		}
		next.Set = append(next.Set, item)
	}
	if !removed {
		next.Set = append(next.Set, opt.Label)
	}
	return next, nil
}

func notAnOption(attr Attribute, raw string) error {
	return FieldInvalid(attrField(attr), "%q is not a valid option for %s", raw, attr.Name)
}

// --- Assignment Level ---

// AssignAttribute normalizes raw through the attribute's input and stores it.
// An empty normalized value removes the assignment.
func AssignAttribute(assignment AttributeAssignment, attr Attribute, raw string) error {
	value, err := InputFor(attr).Normalize(attr, raw)
	if err != nil {
		return err
	}
	if value.IsEmpty() {
		delete(assignment, attr.ID)
		return nil
	}
	assignment[attr.ID] = value
	return nil
}

// ToggleAttribute flips one option of a multiselect attribute.
func ToggleAttribute(assignment AttributeAssignment, attr Attribute, option string) error {
	toggler, ok := InputFor(attr).(Toggler)
	if !ok {
		return FieldInvalid(attrField(attr), "%s does not accept multiple values", attr.Name)
	}
	value, err := toggler.Toggle(attr, assignment[attr.ID], option)
	if err != nil {
		return err
	}
	if value.IsEmpty() {
		delete(assignment, attr.ID)
		return nil
	}
	assignment[attr.ID] = value
	return nil
}

// ValidateAssignment returns one FieldError per failing attribute, in schema order.
// requireAll toggles the required-attribute check (variants only check membership).
func ValidateAssignment(schema []Attribute, assignment AttributeAssignment, requireAll bool) []FieldError {
	var fields []FieldError
	for _, attr := range schema {
		value, ok := assignment[attr.ID]
		if !ok || value.IsEmpty() {
			if attr.Required && requireAll {
				fields = append(fields, FieldError{
					Field:   attrField(attr),
					Message: fmt.Sprintf("%s is required", attr.Name),
				})
			}
			continue
		}
		if err := InputFor(attr).Validate(attr, value); err != nil {
			fields = append(fields, FieldError{Field: attrField(attr), Message: UserMessage(err)})
		}
	}
	return fields
}
