package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/artworks", "200"))
	RecordHTTPRequest("GET", "/api/artworks", 200, 12*time.Millisecond)
	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/artworks", "200"))
	assert.Equal(t, before+1, after)
}

func TestRecordHTTPRequestUnmatchedRoute(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404"))
	RecordHTTPRequest("GET", "", 404, time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404")))
}

func TestRecordCacheLookup(t *testing.T) {
	tests := []struct {
		hit    bool
		result string
	}{
		{hit: true, result: "hit"},
		{hit: false, result: "miss"},
	}
	for _, tt := range tests {
		t.Run(tt.result, func(t *testing.T) {
			c := CacheRequests.WithLabelValues("categories", tt.result)
			before := testutil.ToFloat64(c)
			RecordCacheLookup("categories", tt.hit)
			assert.Equal(t, before+1, testutil.ToFloat64(c))
		})
	}
}

func TestRecordUpload(t *testing.T) {
	stored := UploadsTotal.WithLabelValues("stored")
	rejected := UploadsTotal.WithLabelValues("rejected")
	s0, r0 := testutil.ToFloat64(stored), testutil.ToFloat64(rejected)

	RecordUpload(true)
	RecordUpload(false)
	RecordUpload(false)

	assert.Equal(t, s0+1, testutil.ToFloat64(stored))
	assert.Equal(t, r0+2, testutil.ToFloat64(rejected))
}
