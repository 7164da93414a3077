package recordfeedback

import "reco-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"userId", "restaurantName", "source"},
		Properties: map[string]validation.Property{
			"userId": {
				Type:      "string",
				MinLength: validation.Int(1),
				MaxLength: validation.Int(64),
			},
			"restaurantName": {
				Type:      "string",
				MinLength: validation.Int(1),
				MaxLength: validation.Int(200),
			},
			"category": {Type: "string"},
			"timeSlot": {
				Type: "string",
				Enum: []string{"", "breakfast", "lunch", "dinner", "late_night"},
			},
			"internalPlaceId": {Type: "integer"},
			"source": {
				Type:        "string",
				Description: "quick for like/dislike, form for a 1-5 rating",
				Enum:        []string{"quick", "form"},
			},
			"liked":   {Type: "boolean"},
			"rating":  {Type: "integer"},
			"comment": {Type: "string", MaxLength: validation.Int(1000)},
		},
		AdditionalProperties: validation.Bool(true),
	}
}

func GetOutputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"feedbackRecorded", "feedbackRating"},
		Properties: map[string]validation.Property{
			"feedbackRecorded": {Type: "boolean"},
			"feedbackRating":   {Type: "integer", Minimum: validation.Float(1), Maximum: validation.Float(5)},
		},
	}
}
