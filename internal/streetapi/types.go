package streetapi

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Envelope is the wrapper every endpoint responds with.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
	Detail  string          `json:"detail"`
}

// failure returns the most specific error text carried by the envelope.
func (e Envelope) failure() string {
	for _, s := range []string{e.Error, e.Message, e.Detail} {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

// DescriptionKind picks the description endpoint.
type DescriptionKind int

const (
	StandardDescription DescriptionKind = iota
	DetailedDescription
)

func (k DescriptionKind) path() string {
	if k == DetailedDescription {
		return "detailed-description"
	}
	return "description"
}

// Description is the payload of the description endpoints.
type Description struct {
	Text     string `json:"description"`
	Language string `json:"language"`
}

// Location is a street-level panorama the API picked.
type Location struct {
	PanoID           string  `json:"pano_id"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	FormattedAddress string  `json:"formatted_address"`
	Country          string  `json:"country"`
	City             string  `json:"city"`
}

// DisplayAddress prefers the formatted address, then city and country, then
// raw coordinates.
func (l Location) DisplayAddress() string {
	if addr := strings.TrimSpace(l.FormattedAddress); addr != "" {
		return addr
	}
	var parts []string
	if city := strings.TrimSpace(l.City); city != "" {
		parts = append(parts, city)
	}
	if country := strings.TrimSpace(l.Country); country != "" {
		parts = append(parts, country)
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%.6f, %.6f", l.Latitude, l.Longitude)
	}
	return strings.Join(parts, ", ")
}

// wireLocation accepts coordinates as numbers or numeric strings.
type wireLocation struct {
	PanoID           string          `json:"pano_id"`
	LocationID       string          `json:"location_id"`
	Latitude         json.RawMessage `json:"latitude"`
	Longitude        json.RawMessage `json:"longitude"`
	FormattedAddress string          `json:"formatted_address"`
	Country          string          `json:"country"`
	City             string          `json:"city"`
}

func (w wireLocation) location() (Location, error) {
	lat, err := parseCoordinate(w.Latitude)
	if err != nil {
		return Location{}, fmt.Errorf("invalid latitude: %w", err)
	}
	lng, err := parseCoordinate(w.Longitude)
	if err != nil {
		return Location{}, fmt.Errorf("invalid longitude: %w", err)
	}
	id := strings.TrimSpace(w.PanoID)
	if id == "" {
		id = strings.TrimSpace(w.LocationID)
	}
	return Location{
		PanoID:           id,
		Latitude:         lat,
		Longitude:        lng,
		FormattedAddress: w.FormattedAddress,
		Country:          w.Country,
		City:             w.City,
	}, nil
}

func parseCoordinate(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, fmt.Errorf("missing")
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("not a number: %s", raw)
	}
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// locationPayload covers both {"location": {...}} and a bare location.
type locationPayload struct {
	wireLocation
	Location *wireLocation `json:"location"`
}

type explorationRequest struct {
	Interest string `json:"interest"`
}
