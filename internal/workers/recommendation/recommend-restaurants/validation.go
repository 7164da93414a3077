package recommendrestaurants

import "reco-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"lat", "lon"},
		Properties: map[string]validation.Property{
			"userId": {
				Type:        "string",
				Description: "User identifier (phone number); empty for anonymous requests",
				MaxLength:   validation.Int(64),
			},
			"timeSlot": {
				Type:        "string",
				Description: "Meal time slot scoping the category affinity",
				Enum:        []string{"", "breakfast", "lunch", "dinner", "late_night"},
			},
			"lat": {
				Type:        "number",
				Description: "Latitude of the search origin",
				Minimum:     validation.Float(-90),
				Maximum:     validation.Float(90),
			},
			"lon": {
				Type:        "number",
				Description: "Longitude of the search origin",
				Minimum:     validation.Float(-180),
				Maximum:     validation.Float(180),
			},
		},
		AdditionalProperties: validation.Bool(true),
	}
}

func GetOutputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"recommendations", "recommendationCount", "requestId"},
		Properties: map[string]validation.Property{
			"recommendations": {
				Type:        "array",
				Description: "Selected restaurants, without scores",
				Items:       &validation.Property{Type: "object", Required: []string{"name", "secondaryProviderId"}},
			},
			"recommendationCount": {
				Type:        "integer",
				Description: "Number of recommendations returned",
				Minimum:     validation.Float(0),
			},
			"requestId": {
				Type:        "string",
				Description: "Correlation id logged with the request",
			},
		},
	}
}
