package storage

import (
	"context"
	"strconv"

	"reco-workers/internal/common/database"
	"reco-workers/internal/models"
)

const catalogMapping = `{
  "mappings": {
    "properties": {
      "name":        {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
      "category":    {"type": "keyword"},
      "address":     {"type": "text"},
      "location":    {"type": "geo_point"},
      "rating":      {"type": "float"},
      "reviewCount": {"type": "integer"},
      "placeId":     {"type": "keyword"}
    }
  }
}`

type catalogDocument struct {
	Name        string      `json:"name"`
	Category    string      `json:"category"`
	Address     string      `json:"address"`
	Location    geoLocation `json:"location"`
	Rating      *float64    `json:"rating,omitempty"`
	ReviewCount int         `json:"reviewCount"`
	PlaceID     string      `json:"placeId,omitempty"`
}

type geoLocation struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// CatalogIndex mirrors catalog rows into Elasticsearch, keyed by internal id.
type CatalogIndex struct {
	es    *database.ElasticsearchClient
	index string
}

func NewCatalogIndex(es *database.ElasticsearchClient, index string) *CatalogIndex {
	return &CatalogIndex{es: es, index: index}
}

func (i *CatalogIndex) EnsureIndex(ctx context.Context) error {
	return i.es.EnsureIndex(ctx, i.index, catalogMapping)
}

func (i *CatalogIndex) Index(ctx context.Context, internalID int64, e models.CatalogEntry) error {
	doc := catalogDocument{
		Name:        e.Name,
		Category:    e.Category,
		Address:     e.Address,
		Location:    geoLocation{Lat: e.Lat, Lon: e.Lon},
		Rating:      e.Rating,
		ReviewCount: e.ReviewCount,
		PlaceID:     e.PlaceID,
	}
	return i.es.IndexDocument(ctx, i.index, strconv.FormatInt(internalID, 10), doc)
}
