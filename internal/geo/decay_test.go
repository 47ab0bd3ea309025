package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeverityWeightTable(t *testing.T) {
	assert.InDelta(t, 0.1, SeverityWeight(1), 1e-9)
	assert.InDelta(t, 0.5, SeverityWeight(5), 1e-9)
	assert.InDelta(t, 0.7, SeverityWeight(6), 1e-9)
	assert.InDelta(t, 0.8, SeverityWeight(7), 1e-9)
	assert.InDelta(t, 0.9, SeverityWeight(8), 1e-9)
	assert.InDelta(t, 1.0, SeverityWeight(9), 1e-9)
	assert.InDelta(t, 1.0, SeverityWeight(10), 1e-9)
	assert.InDelta(t, 0.5, SeverityWeight(0), 1e-9)
	assert.InDelta(t, 0.5, SeverityWeight(11), 1e-9)
}

func TestTimeDecayMonotonicity(t *testing.T) {
	assert.Equal(t, TimeDecay(1), TimeDecay(23)) // within [0,24h]: constant
	assert.Greater(t, TimeDecay(23), TimeDecay(25))
	assert.Greater(t, TimeDecay(6*24.0), TimeDecay(10*24.0))
	assert.Greater(t, TimeDecay(29*24.0), TimeDecay(31*24.0))
	assert.Greater(t, TimeDecay(89*24.0), TimeDecay(91*24.0))
}

func TestTimeDecayBoundaries(t *testing.T) {
	assert.Equal(t, 10_000.0, TimeDecay(24))
	assert.Equal(t, 10.0, TimeDecay(24.0001))
	assert.Equal(t, 10.0, TimeDecay(7*24))
	assert.Equal(t, 1.0, TimeDecay(7*24+0.001))
	assert.Equal(t, 1.0, TimeDecay(30*24))
	assert.Equal(t, 0.3, TimeDecay(30*24+0.001))
	assert.Equal(t, 0.3, TimeDecay(90*24))
	assert.Equal(t, 0.1, TimeDecay(90*24+0.001))
}
