// internal/models/place.go
package models

// ProviderPlace is a raw nearby-search record from the primary places provider.
type ProviderPlace struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	Lat                 *float64 `json:"lat,omitempty"`
	Lon                 *float64 `json:"lon,omitempty"`
	Rating              *float64 `json:"rating,omitempty"`
	UserRatingCount     int      `json:"userRatingCount"`
	ShortAddress        string   `json:"shortAddress"`
	CategoryLabel       string   `json:"categoryLabel"`
	WeekdayDescriptions []string `json:"weekdayDescriptions,omitempty"`
	Periods             []Period `json:"periods,omitempty"`
	OpenNow             *bool    `json:"openNow,omitempty"`
	PhotoURLs           []string `json:"photoUrls,omitempty"`
	Reviews             []string `json:"reviews,omitempty"`
}

// SecondaryPlace is a keyword or category search hit from the secondary
// places provider.
type SecondaryPlace struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Address        string  `json:"address"`
	DistanceMeters int     `json:"distanceMeters"`
	Lat            float64 `json:"lat"`
	Lon            float64 `json:"lon"`
}

// SecondaryDetail is the optional basic-info lookup for a matched place.
type SecondaryDetail struct {
	Address  string `json:"address"`
	OpenInfo string `json:"openInfo"`
	OpenNow  *bool  `json:"openNow,omitempty"`
}

// PlaceCandidate is the canonical per-request record built from both providers.
type PlaceCandidate struct {
	PrimaryID           string         `json:"primaryId"`
	PrimaryName         string         `json:"primaryName"`
	CanonicalName       string         `json:"canonicalName"`
	SecondaryProviderID string         `json:"secondaryProviderId"`
	Lat                 float64        `json:"lat"`
	Lon                 float64        `json:"lon"`
	Category            string         `json:"category"`
	Rating              *float64       `json:"rating,omitempty"`
	ReviewCount         int            `json:"reviewCount"`
	Address             string         `json:"address"`
	DistanceKm          float64        `json:"distanceKm"`
	OpenNow             *bool          `json:"openNow,omitempty"`
	OpenInOneHour       *bool          `json:"openInOneHour,omitempty"`
	Photos              []string       `json:"photos,omitempty"`
	ReviewSnippets      []string       `json:"reviewSnippets,omitempty"`
	HoursText           string         `json:"hoursText"`
	Schedule            WeeklySchedule `json:"schedule"`
	InternalPlaceID     *int64         `json:"internalPlaceId,omitempty"`

	Score     float64  `json:"-"`
	Preferred bool     `json:"preferred"`
	Reasons   []string `json:"reasons,omitempty"`
}

// Name returns the canonical name, or the primary provider's name before matching.
func (c *PlaceCandidate) Name() string {
	if c.CanonicalName != "" {
		return c.CanonicalName
	}
	return c.PrimaryName
}

// ExplicitlyClosedInOneHour is true only when the schedule says closed, not when unknown.
func (c *PlaceCandidate) ExplicitlyClosedInOneHour() bool {
	return c.OpenInOneHour != nil && !*c.OpenInOneHour
}

// CatalogEntry is the row written to the place catalog.
type CatalogEntry struct {
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Address     string   `json:"address"`
	Lat         float64  `json:"lat"`
	Lon         float64  `json:"lon"`
	Rating      *float64 `json:"rating,omitempty"`
	ReviewCount int      `json:"reviewCount"`
	PlaceID     string   `json:"placeId,omitempty"`
}

func CatalogEntryFrom(c *PlaceCandidate) CatalogEntry {
	return CatalogEntry{
		Name:        c.Name(),
		Category:    c.Category,
		Address:     c.Address,
		Lat:         c.Lat,
		Lon:         c.Lon,
		Rating:      c.Rating,
		ReviewCount: c.ReviewCount,
		PlaceID:     c.SecondaryProviderID,
	}
}
