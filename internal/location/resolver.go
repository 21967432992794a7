// Package location normalizes a candidate's geographic fields into a
// city/state/country triple with optional coordinates. Deterministic data
// always wins: the dial-code table resolves the country, and the completion
// service is consulted only when the triple is still incomplete.
package location

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/hiresight/resume-ingest/internal/adapter/ai"
	"github.com/hiresight/resume-ingest/internal/domain"
)

// Resolver resolves location triples. The geocoder is optional; a nil
// geocoder skips coordinate resolution.
type Resolver struct {
	ai       *ai.Completions
	geocoder domain.Geocoder
}

// NewResolver creates a Resolver.
func NewResolver(completions *ai.Completions, geocoder domain.Geocoder) *Resolver {
	return &Resolver{ai: completions, geocoder: geocoder}
}

// Resolve normalizes (city, state, countryCode) into a Location.
//  1. The country comes from the static dial-code table.
//  2. When city, state and country are all non-empty the triple is returned
//     as is, without a completion call.
//  3. Otherwise one completion normalizes the partial triple; an unusable
//     response falls back to the raw inputs.
//  4. The geocoder then tries triple, city+country, country, in that order.
func (r *Resolver) Resolve(ctx context.Context, city, state, countryCode string) domain.Location {
	loc := domain.Location{
		City:    strings.TrimSpace(city),
		State:   strings.TrimSpace(state),
		Country: CountryName(countryCode),
	}

	if loc.City == "" || loc.State == "" || loc.Country == "" {
		loc = r.normalize(ctx, loc, countryCode)
	}

	loc.Coordinates = r.geocode(ctx, loc)
	return loc
}

// normalize asks the model to complete the partial triple. On any failure
// the raw inputs survive, with the unmapped dial code standing in for the
// country when the table had no entry.
func (r *Resolver) normalize(ctx context.Context, loc domain.Location, countryCode string) domain.Location {
	fallback := loc
	if fallback.Country == "" {
		fallback.Country = strings.TrimSpace(countryCode)
	}

	var normalized struct {
		City    string `json:"city"`
		State   string `json:"state"`
		Country string `json:"country"`
	}
	prompt := fmt.Sprintf(`Normalize the following location into a JSON object with exactly the keys "city", "state" and "country". Fill in missing values where they can be inferred. Return None if nothing can be inferred.

city: %s
state: %s
country: %s`, loc.City, loc.State, loc.Country)
	if !r.ai.CompleteJSON(ctx, "location.normalize", prompt, &normalized) {
		return fallback
	}

	out := domain.Location{
		City:    strings.TrimSpace(normalized.City),
		State:   strings.TrimSpace(normalized.State),
		Country: strings.TrimSpace(normalized.Country),
	}
	// the model never overrides known values
	if loc.City != "" {
		out.City = loc.City
	}
	if loc.State != "" {
		out.State = loc.State
	}
	if loc.Country != "" {
		out.Country = loc.Country
	}
	return out
}

// geocode cascades from most to least specific query, returning the first
// hit or nil.
func (r *Resolver) geocode(ctx context.Context, loc domain.Location) *domain.Coordinates {
	if r.geocoder == nil {
		return nil
	}
	attempts := [][3]string{
		{loc.City, loc.State, loc.Country},
		{loc.City, "", loc.Country},
		{"", "", loc.Country},
	}
	tried := make(map[[3]string]struct{}, len(attempts))
	for _, a := range attempts {
		if a[0] == "" && a[1] == "" && a[2] == "" {
			continue
		}
		// empty city/state collapse later attempts onto earlier ones
		if _, ok := tried[a]; ok {
			continue
		}
		tried[a] = struct{}{}
		coords, err := r.geocoder.Coordinates(ctx, a[0], a[1], a[2])
		if err == nil && coords != nil {
			return coords
		}
	}
	return nil
}

const earthRadiusKm = 6371.0

// Distance returns the great-circle distance between two points in
// kilometers, rounded to 2 decimals. Nil when either point lacks
// coordinates.
func Distance(a, b *domain.Coordinates) *float64 {
	if a == nil || b == nil {
		return nil
	}
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	d := 2 * earthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	d = math.Round(d*100) / 100
	return &d
}
