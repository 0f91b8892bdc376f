package artworks

import (
	"net/url"
	"strconv"
	"strings"

	"gallery-api/internal/apperr"
	"gallery-api/internal/domain/catalog"
	"gallery-api/internal/repository"
	"gallery-api/internal/service"

	"github.com/google/uuid"
)

var sortKeys = map[string]bool{
	repository.SortNewest:    true,
	repository.SortOldest:    true,
	repository.SortPriceLow:  true,
	repository.SortPriceHigh: true,
	repository.SortPopular:   true,
}

// parseListQuery reads ?category&status&featured&search&sort&limit&offset.
// status defaults to AVAILABLE; status=ALL lists every status.
func parseListQuery(v url.Values) (service.ArtworkQuery, error) {
	q := service.DefaultArtworkQuery()

	if cat := strings.TrimSpace(v.Get("category")); cat != "" {
		if _, err := uuid.Parse(cat); err != nil {
			return q, apperr.Validation("category must be a valid id")
		}
		q.CategoryID = cat
	}

	switch raw := strings.TrimSpace(v.Get("status")); {
	case raw == "":
	case strings.EqualFold(raw, catalog.StatusAll):
		q.Status = ""
	default:
		s, ok := catalog.ParseStatus(raw)
		if !ok {
			return q, apperr.Validation("status must be AVAILABLE, SOLD, RESERVED or ALL")
		}
		q.Status = s
	}

	if raw := strings.TrimSpace(v.Get("featured")); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return q, apperr.Validation("featured must be true or false")
		}
		q.Featured = &b
	}

	q.Search = strings.TrimSpace(v.Get("search"))

	if raw := strings.ToLower(strings.TrimSpace(v.Get("sort"))); raw != "" {
		if !sortKeys[raw] {
			return q, apperr.Validation("sort must be one of newest, oldest, price-low, price-high, popular")
		}
		q.Sort = raw
	}

	var err error
	if q.Limit, err = intParam(v, "limit", service.DefaultPageSize, 1); err != nil {
		return q, err
	}
	if q.Offset, err = intParam(v, "offset", 0, 0); err != nil {
		return q, err
	}
	return q, nil
}

func intParam(v url.Values, name string, def, least int) (int, error) {
	raw := strings.TrimSpace(v.Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < least {
		return 0, apperr.Validation(name + " must be an integer of at least " + strconv.Itoa(least))
	}
	return n, nil
}
