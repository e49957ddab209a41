package metric

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromSlug(t *testing.T) {
	for _, m := range All() {
		parsed, err := FromSlug(m.Slug())
		require.NoError(t, err)
		assert.Equal(t, m, parsed)
	}

	_, err := FromSlug("heart-rate")
	assert.ErrorIs(t, err, ErrUnknownMetric)
}

func TestBetter(t *testing.T) {
	assert.True(t, Distance.Better(20, 10))
	assert.False(t, Distance.Better(10, 10))
	assert.True(t, Pace.Better(4.5, 5))
	assert.False(t, Pace.Better(5, 4.5))
}

func TestEveryMetricIsDefined(t *testing.T) {
	for _, m := range All() {
		def := m.Definition()
		assert.NotEmpty(t, def.Name)
		assert.NotEmpty(t, def.Slug)
		assert.NotEmpty(t, def.Phrase)
		assert.NotZero(t, def.ChartScale)
		assert.NotNil(t, def.Format)
	}
	assert.False(t, Metric(99).Valid())
	assert.Equal(t, "Metric(99)", Metric(99).String())
}

func TestMetricJSON(t *testing.T) {
	raw, err := json.Marshal(map[string]Metric{"metric": MovingTime})
	require.NoError(t, err)
	assert.JSONEq(t, `{"metric":"moving-time"}`, string(raw))

	var out struct {
		Metric Metric `json:"metric"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"metric":"elevation-gain"}`), &out))
	assert.Equal(t, ElevationGain, out.Metric)

	assert.Error(t, json.Unmarshal([]byte(`{"metric":"speed"}`), &out))
}
