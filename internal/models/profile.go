// internal/models/profile.go
package models

import "time"

type TimeSlot string

const (
	TimeSlotAny       TimeSlot = ""
	TimeSlotBreakfast TimeSlot = "breakfast"
	TimeSlotLunch     TimeSlot = "lunch"
	TimeSlotDinner    TimeSlot = "dinner"
	TimeSlotLateNight TimeSlot = "late_night"
)

func (t TimeSlot) Valid() bool {
	switch t {
	case TimeSlotAny, TimeSlotBreakfast, TimeSlotLunch, TimeSlotDinner, TimeSlotLateNight:
		return true
	}
	return false
}

// UserPreferenceProfile holds the signals the scorer reads. CategoryAffinity
// is already scoped to the request's time slot.
type UserPreferenceProfile struct {
	SignupCategories   []string           `json:"signupCategories"`
	CategoryAffinity   map[string]float64 `json:"categoryAffinity"`
	RestaurantAffinity map[string]float64 `json:"restaurantAffinity"`
}

func EmptyProfile() UserPreferenceProfile {
	return UserPreferenceProfile{
		CategoryAffinity:   map[string]float64{},
		RestaurantAffinity: map[string]float64{},
	}
}

// LedgerEntry records that a place was shown to a user.
type LedgerEntry struct {
	UserID          string    `json:"userId"`
	PlaceID         string    `json:"placeId"`
	PlaceName       string    `json:"placeName"`
	InternalPlaceID *int64    `json:"internalPlaceId,omitempty"`
	TimeSlot        TimeSlot  `json:"timeSlot"`
	ShownAt         time.Time `json:"shownAt"`
}

// RecentlyShown is the set of places shown within the recency window.
type RecentlyShown struct {
	IDs   map[string]struct{}
	Names map[string]struct{}
}

func NewRecentlyShown() RecentlyShown {
	return RecentlyShown{IDs: map[string]struct{}{}, Names: map[string]struct{}{}}
}

func (r RecentlyShown) Add(id, name string) {
	if id != "" {
		r.IDs[id] = struct{}{}
	}
	if name != "" {
		r.Names[name] = struct{}{}
	}
}

func (r RecentlyShown) Len() int {
	return len(r.IDs) + len(r.Names)
}

// Contains matches by identifier first and falls back to exact name.
func (r RecentlyShown) Contains(id, name string) bool {
	if id != "" {
		if _, ok := r.IDs[id]; ok {
			return true
		}
	}
	if name != "" {
		if _, ok := r.Names[name]; ok {
			return true
		}
	}
	return false
}
