package domain

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	colorAttr = Attribute{
		ID: "1", Name: "Color", Type: AttributeSelect, Required: true,
		Values: []AttributeValueOption{{Code: "red", Label: "Red"}, {Code: "blue", Label: "Blue"}},
	}
	sizeAttr = Attribute{
		ID: "2", Name: "Size", Type: AttributeMultiSelect,
		Values: []AttributeValueOption{{Code: "s", Label: "S"}, {Code: "m", Label: "M"}, {Code: "l", Label: "L"}},
	}
	weightAttr   = Attribute{ID: "3", Name: "Net weight", Type: AttributeNumber}
	organicAttr  = Attribute{ID: "4", Name: "Organic", Type: AttributeBoolean, Required: true}
	materialAttr = Attribute{ID: "5", Name: "Material", Type: AttributeText}
)

func TestInputFor_FallsBackToText(t *testing.T) {
	assert.IsType(t, textInput{}, InputFor(Attribute{Type: "rating"}))
	assert.IsType(t, multiSelectInput{}, InputFor(sizeAttr))
}

func TestAssignAttribute_Select(t *testing.T) {
	a := AttributeAssignment{}

	require.NoError(t, AssignAttribute(a, colorAttr, "Red"))
	assert.Equal(t, ScalarValue("Red"), a["1"])

	require.NoError(t, AssignAttribute(a, colorAttr, "blue"))
	assert.Equal(t, ScalarValue("Blue"), a["1"], "codes are stored as their label")

	err := AssignAttribute(a, colorAttr, "Green")
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "attributes.1", valErr.Fields[0].Field)
	assert.Equal(t, ScalarValue("Blue"), a["1"], "rejected input leaves the value untouched")

	require.NoError(t, AssignAttribute(a, colorAttr, ""))
	assert.NotContains(t, a, "1")
}

func TestAssignAttribute_Number(t *testing.T) {
	a := AttributeAssignment{}
	require.NoError(t, AssignAttribute(a, weightAttr, "12.5"))
	assert.Equal(t, "12.5", a["3"].Scalar)

	assert.Error(t, AssignAttribute(a, weightAttr, "12kg"))
	assert.Equal(t, "12.5", a["3"].Scalar)
}

func TestAssignAttribute_Boolean(t *testing.T) {
	a := AttributeAssignment{}
	require.NoError(t, AssignAttribute(a, organicAttr, "Yes"))
	assert.Equal(t, "true", a["4"].Scalar)

	require.NoError(t, AssignAttribute(a, organicAttr, "0"))
	assert.Equal(t, "false", a["4"].Scalar)

	require.NoError(t, AssignAttribute(a, organicAttr, ""))
	assert.NotContains(t, a, "4", "empty is the unset state")

	assert.Error(t, AssignAttribute(a, organicAttr, "maybe"))
}

func TestAssignAttribute_MultiSelect(t *testing.T) {
	a := AttributeAssignment{}
	require.NoError(t, AssignAttribute(a, sizeAttr, "M, s, M"))
	assert.Equal(t, []string{"M", "S"}, a["2"].Set)

	assert.Error(t, AssignAttribute(a, sizeAttr, "M, XXL"))
}

func TestToggleAttribute(t *testing.T) {
	a := AttributeAssignment{}

	require.NoError(t, ToggleAttribute(a, sizeAttr, "L"))
	require.NoError(t, ToggleAttribute(a, sizeAttr, "s"))
	require.NoError(t, ToggleAttribute(a, sizeAttr, "M"))
	assert.Equal(t, []string{"L", "S", "M"}, a["2"].Set)

	require.NoError(t, ToggleAttribute(a, sizeAttr, "S"))
	assert.Equal(t, []string{"L", "M"}, a["2"].Set)

	require.NoError(t, ToggleAttribute(a, sizeAttr, "L"))
	require.NoError(t, ToggleAttribute(a, sizeAttr, "M"))
	assert.NotContains(t, a, "2")

	assert.Error(t, ToggleAttribute(a, colorAttr, "Red"), "single select cannot be toggled")
	assert.Error(t, ToggleAttribute(a, sizeAttr, "XXL"))
}

func TestValidateAssignment(t *testing.T) {
	schema := []Attribute{colorAttr, sizeAttr, weightAttr, organicAttr, materialAttr}

	t.Run("required attributes reported in schema order", func(t *testing.T) {
		fields := ValidateAssignment(schema, AttributeAssignment{}, true)
		require.Len(t, fields, 2)
		assert.Equal(t, FieldError{Field: "attributes.1", Message: "Color is required"}, fields[0])
		assert.Equal(t, "attributes.4", fields[1].Field)
	})

	t.Run("membership only", func(t *testing.T) {
		assert.Empty(t, ValidateAssignment(schema, AttributeAssignment{}, false))
	})

	t.Run("stale values are flagged", func(t *testing.T) {
		fields := ValidateAssignment(schema, AttributeAssignment{
			"1": ScalarValue("Green"),
			"2": SetValue("S", "XXL"),
			"4": ScalarValue("true"),
		}, true)
		require.Len(t, fields, 2)
		assert.Equal(t, "attributes.1", fields[0].Field)
		assert.Equal(t, "attributes.2", fields[1].Field)
	})

	t.Run("multiselect given a scalar", func(t *testing.T) {
		fields := ValidateAssignment([]Attribute{sizeAttr}, AttributeAssignment{"2": ScalarValue("XXL")}, false)
		require.Len(t, fields, 1)
	})

	t.Run("valid assignment", func(t *testing.T) {
		assert.Empty(t, ValidateAssignment(schema, AttributeAssignment{
			"1": ScalarValue("Red"),
			"2": SetValue("S"),
			"3": ScalarValue("1.2"),
			"4": ScalarValue("false"),
			"5": ScalarValue("Linen"),
		}, true))
	})
}

func TestAssignedValue_JSON(t *testing.T) {
	in := AttributeAssignment{
		"1": ScalarValue("Red"),
		"2": SetValue("S", "M"),
		"3": SetValue(),
	}
	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"1":"Red","2":["S","M"],"3":[]}`, string(data))

	var out AttributeAssignment
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)

	assert.Error(t, json.Unmarshal([]byte(`{"1":7}`), &out))
}
