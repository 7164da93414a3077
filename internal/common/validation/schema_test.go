package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testSchema() JSONSchema {
	return JSONSchema{
		Type:     "object",
		Required: []string{"lat", "lon"},
		Properties: map[string]Property{
			"lat":      {Type: "number", Minimum: Float(-90), Maximum: Float(90)},
			"lon":      {Type: "number", Minimum: Float(-180), Maximum: Float(180)},
			"timeSlot": {Type: "string", Enum: []string{"", "lunch", "dinner"}},
			"rating":   {Type: "integer", Minimum: Float(1), Maximum: Float(5)},
		},
		AdditionalProperties: Bool(true),
	}
}

func TestValidateInput(t *testing.T) {
	tests := []struct {
		name      string
		input     map[string]interface{}
		valid     bool
		errorOn   string
		errorCode string
	}{
		{
			name:  "valid",
			input: map[string]interface{}{"lat": 37.56, "lon": 126.97, "timeSlot": "lunch", "extra": true},
			valid: true,
		},
		{
			name:      "missing lon",
			input:     map[string]interface{}{"lat": 37.56},
			errorOn:   "lon",
			errorCode: "REQUIRED",
		},
		{
			name:      "latitude out of range",
			input:     map[string]interface{}{"lat": 91.0, "lon": 0.0},
			errorOn:   "lat",
			errorCode: "NUMBER_LTE",
		},
		{
			name:      "wrong type",
			input:     map[string]interface{}{"lat": "north", "lon": 0.0},
			errorOn:   "lat",
			errorCode: "INVALID_TYPE",
		},
		{
			name:      "unknown slot",
			input:     map[string]interface{}{"lat": 1.0, "lon": 1.0, "timeSlot": "brunch"},
			errorOn:   "timeSlot",
			errorCode: "ENUM",
		},
		{
			name:      "fractional integer",
			input:     map[string]interface{}{"lat": 1.0, "lon": 1.0, "rating": 4.5},
			errorOn:   "rating",
			errorCode: "INVALID_TYPE",
		},
		{
			name:  "integral float is an integer",
			input: map[string]interface{}{"lat": 1.0, "lon": 1.0, "rating": 4.0},
			valid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateInput(tt.input, testSchema())
			assert.Equal(t, tt.valid, result.Valid, result.GetErrorMessages())
			if tt.errorOn != "" {
				assert.True(t, result.HasErrors(tt.errorOn), result.GetErrorMessages())
				assert.Equal(t, tt.errorCode, result.Errors[0].Code)
			}
		})
	}
}

func TestValidateInput_RejectsAdditionalProperties(t *testing.T) {
	schema := testSchema()
	schema.AdditionalProperties = Bool(false)

	result := ValidateInput(map[string]interface{}{"lat": 1.0, "lon": 1.0, "unexpected": 1}, schema)
	assert.False(t, result.Valid)
	assert.Len(t, result.GetErrorMessages(), 1)
}

func TestToMap(t *testing.T) {
	m := testSchema().ToMap()
	assert.Equal(t, "object", m["type"])
	assert.Equal(t, true, m["additionalProperties"])
	assert.Contains(t, m["properties"], "timeSlot")
}
