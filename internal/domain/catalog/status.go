package catalog

import "strings"

type ArtworkStatus string

const (
	StatusAvailable ArtworkStatus = "AVAILABLE"
	StatusSold      ArtworkStatus = "SOLD"
	StatusReserved  ArtworkStatus = "RESERVED"
)

// StatusAll is only meaningful as a list filter: it disables status filtering.
const StatusAll = "ALL"

func (s ArtworkStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusSold, StatusReserved:
		return true
	}
	return false
}

// ParseStatus accepts any casing ("sold", "Sold", "SOLD").
func ParseStatus(raw string) (ArtworkStatus, bool) {
	s := ArtworkStatus(strings.ToUpper(strings.TrimSpace(raw)))
	return s, s.Valid()
}
