package googleplaces

type searchNearbyRequest struct {
	IncludedTypes       []string `json:"includedTypes"`
	MaxResultCount      int      `json:"maxResultCount"`
	LanguageCode        string   `json:"languageCode,omitempty"`
	LocationRestriction struct {
		Circle struct {
			Center struct {
				Latitude  float64 `json:"latitude"`
				Longitude float64 `json:"longitude"`
			} `json:"center"`
			Radius float64 `json:"radius"`
		} `json:"circle"`
	} `json:"locationRestriction"`
}

type searchNearbyResponse struct {
	Places []place `json:"places"`
}

type localizedText struct {
	Text string `json:"text"`
}

type place struct {
	ID          string        `json:"id"`
	DisplayName localizedText `json:"displayName"`
	Location    *struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"location"`
	Rating                 *float64      `json:"rating"`
	UserRatingCount        int           `json:"userRatingCount"`
	ShortFormattedAddress  string        `json:"shortFormattedAddress"`
	CurrentOpeningHours    *openingHours `json:"currentOpeningHours"`
	RegularOpeningHours    *openingHours `json:"regularOpeningHours"`
	PrimaryTypeDisplayName localizedText `json:"primaryTypeDisplayName"`
	Photos                 []struct {
		Name string `json:"name"`
	} `json:"photos"`
	Reviews []struct {
		Text localizedText `json:"text"`
	} `json:"reviews"`
}

type openingHours struct {
	OpenNow             *bool    `json:"openNow"`
	WeekdayDescriptions []string `json:"weekdayDescriptions"`
	Periods             []period `json:"periods"`
}

type period struct {
	Open  *point `json:"open"`
	Close *point `json:"close"`
}

type point struct {
	Day    *int `json:"day"`
	Hour   *int `json:"hour"`
	Minute *int `json:"minute"`
}
