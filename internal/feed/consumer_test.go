package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToCrimePointComputesAgeFromOccurredAt(t *testing.T) {
	occurred := time.Now().Add(-3 * time.Hour)
	rec := wireRecord{Lat: 1, Lng: 2, Severity: 8, CrimeType: "burglary", OccurredAt: occurred}

	cp := toCrimePoint(rec)
	assert.Equal(t, 1.0, cp.Lat)
	assert.Equal(t, 2.0, cp.Lng)
	assert.Equal(t, 8, cp.Severity)
	assert.InDelta(t, 3.0, cp.AgeHours, 0.01)
}
