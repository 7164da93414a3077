// Package normalize turns primary-provider records into canonical place
// candidates and builds the text shown with each recommendation.
package normalize

import (
	"math"
	"strings"

	"reco-workers/internal/models"
)

const (
	EarthRadiusKm = 6371.0
	MaxPhotos     = 5
	UnnamedPlace  = "이름 없음"
)

type Normalizer struct {
	maxReviews int
}

func New(maxReviews int) *Normalizer {
	return &Normalizer{maxReviews: maxReviews}
}

// Normalize converts a provider record. It reports false when the record has
// no coordinates. The secondary identifier is left empty for the matcher.
func (n *Normalizer) Normalize(p models.ProviderPlace, originLat, originLon float64) (models.PlaceCandidate, bool) {
	if p.Lat == nil || p.Lon == nil {
		return models.PlaceCandidate{}, false
	}

	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = UnnamedPlace
	}

	c := models.PlaceCandidate{
		PrimaryID:   p.ID,
		PrimaryName: name,
		Lat:         *p.Lat,
		Lon:         *p.Lon,
		Category:    TranslateCategory(p.CategoryLabel),
		Rating:      p.Rating,
		ReviewCount: p.UserRatingCount,
		Address:     strings.TrimSpace(p.ShortAddress),
		DistanceKm:  RoundTenth(Haversine(originLat, originLon, *p.Lat, *p.Lon)),
		HoursText:   HoursText(p.WeekdayDescriptions),
		Schedule:    models.WeeklySchedule{Periods: p.Periods},
		OpenNow:     p.OpenNow,
	}

	for _, u := range p.PhotoURLs {
		if len(c.Photos) >= MaxPhotos {
			break
		}
		c.Photos = append(c.Photos, u)
	}
	for _, r := range p.Reviews {
		if n.maxReviews > 0 && len(c.ReviewSnippets) >= n.maxReviews {
			break
		}
		if r = strings.TrimSpace(r); r != "" {
			c.ReviewSnippets = append(c.ReviewSnippets, r)
		}
	}
	return c, true
}

// Haversine returns the great-circle distance in kilometres.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func RoundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

var dayNames = map[string]string{
	"Monday":    "월요일",
	"Tuesday":   "화요일",
	"Wednesday": "수요일",
	"Thursday":  "목요일",
	"Friday":    "금요일",
	"Saturday":  "토요일",
	"Sunday":    "일요일",
}

// HoursText summarises weekday descriptions ("Monday: 11:00 AM – 9:00 PM")
// as closed days plus the first open range. Empty input yields "".
func HoursText(descriptions []string) string {
	if len(descriptions) == 0 {
		return ""
	}

	var closed, ranges []string
	for _, line := range descriptions {
		day, info := "", strings.TrimSpace(line)
		if i := strings.Index(line, ":"); i >= 0 {
			day = strings.TrimSpace(line[:i])
			info = strings.TrimSpace(line[i+1:])
		}
		if strings.Contains(info, "Closed") || strings.Contains(info, "closed") {
			if kr, ok := dayNames[day]; ok {
				day = kr
			}
			closed = append(closed, day)
			continue
		}
		if info != "" {
			ranges = append(ranges, info)
		}
	}

	closedText := "별도 휴무일 정보 없음"
	if len(closed) > 0 {
		closedText = strings.Join(closed, ", ")
	}
	hours := "영업 시간 정보 없음"
	if len(ranges) > 0 {
		hours = ranges[0]
	}
	return "휴무 요일: " + closedText + ", 영업 시간: " + hours
}
