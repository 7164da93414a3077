package kakaolocal

import (
	"bytes"
	"strconv"
	"strings"

	"reco-workers/internal/models"
)

type searchResponse struct {
	Documents []document `json:"documents"`
}

type document struct {
	ID              string `json:"id"`
	PlaceName       string `json:"place_name"`
	RoadAddressName string `json:"road_address_name"`
	AddressName     string `json:"address_name"`
	Distance        string `json:"distance"`
	X               string `json:"x"`
	Y               string `json:"y"`
}

func (d document) toPlace() models.SecondaryPlace {
	addr := strings.TrimSpace(d.RoadAddressName)
	if addr == "" {
		addr = strings.TrimSpace(d.AddressName)
	}
	dist, _ := strconv.Atoi(d.Distance)
	lon, _ := strconv.ParseFloat(d.X, 64)
	lat, _ := strconv.ParseFloat(d.Y, 64)
	return models.SecondaryPlace{
		ID:             d.ID,
		Name:           d.PlaceName,
		Address:        addr,
		DistanceMeters: dist,
		Lat:            lat,
		Lon:            lon,
	}
}

type detailResponse struct {
	BasicInfo struct {
		Address struct {
			NewAddr string `json:"newAddr"`
		} `json:"address"`
		OpenInfo struct {
			OpenInfo string   `json:"openInfo"`
			OpenFlag flexFlag `json:"openFlag"`
		} `json:"openInfo"`
	} `json:"basicInfo"`
}

// flexFlag accepts the open flag as a string, number or bool.
type flexFlag string

func (f *flexFlag) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		s, err := strconv.Unquote(string(b))
		if err != nil {
			return err
		}
		*f = flexFlag(s)
		return nil
	}
	if string(b) == "null" {
		*f = ""
		return nil
	}
	*f = flexFlag(b)
	return nil
}
