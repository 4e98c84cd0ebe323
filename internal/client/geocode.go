package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/kjstillabower/health-advisory-service/internal/models"
)

// Geocoder resolves free-text place names to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (models.Coordinates, error)
}

// NominatimGeocoder queries an OpenStreetMap Nominatim search endpoint.
type NominatimGeocoder struct {
	searchURL string
	up        *upstream
}

// NewNominatimGeocoder returns a geocoder for searchURL. Nominatim's usage policy
// requires an identifying User-Agent, so an empty opts.UserAgent is an error.
func NewNominatimGeocoder(searchURL string, opts Options) (*NominatimGeocoder, error) {
	if _, err := url.Parse(searchURL); err != nil {
		return nil, fmt.Errorf("invalid geocoder URL: %w", err)
	}
	if strings.TrimSpace(opts.UserAgent) == "" {
		return nil, fmt.Errorf("geocoder user agent is required")
	}
	return &NominatimGeocoder{searchURL: searchURL, up: &upstream{opts: opts.withDefaults()}}, nil
}

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocode returns the best match for query or ErrLocationNotFound.
func (g *NominatimGeocoder) Geocode(ctx context.Context, query string) (models.Coordinates, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("limit", "1")

	var places []nominatimPlace
	if err := g.up.getJSON(ctx, "geocode", g.searchURL+"?"+q.Encode(), &places); err != nil {
		return models.Coordinates{}, err
	}
	if len(places) == 0 {
		return models.Coordinates{}, fmt.Errorf("geocode %q: %w", query, ErrLocationNotFound)
	}
	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return models.Coordinates{}, fmt.Errorf("geocode: %w: latitude %q", ErrBadResponse, places[0].Lat)
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return models.Coordinates{}, fmt.Errorf("geocode: %w: longitude %q", ErrBadResponse, places[0].Lon)
	}
	return models.Coordinates{Latitude: lat, Longitude: lon, DisplayName: places[0].DisplayName}, nil
}
