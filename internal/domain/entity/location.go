package entity

import (
	"strconv"
	"strings"
)

// Location identifies the building under analysis. Either Address or the
// coordinate pair must be set. Immutable once a run has started.
type Location struct {
	Address   string  `json:"address,omitempty"`
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
}

func NewLocation(address string) Location {
	return Location{Address: strings.TrimSpace(address)}
}

func (l Location) Validate() error {
	if l.Address == "" && l.Latitude == 0 && l.Longitude == 0 {
		return ErrEmptyLocation
	}
	return nil
}

// Query returns the text typed into the estimation tool's address field.
func (l Location) Query() string {
	if l.Address != "" {
		return l.Address
	}
	return formatCoords(l.Latitude, l.Longitude)
}

func formatCoords(lat, lon float64) string {
	return strconv.FormatFloat(lat, 'f', -1, 64) + ", " + strconv.FormatFloat(lon, 'f', -1, 64)
}
