package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, c.Write(m))
	return m.GetCounter().GetValue()
}

func TestObserveOutbound(t *testing.T) {
	counter := OutboundRequests.WithLabelValues(ServiceWiki, OutcomeNotFound)
	before := counterValue(t, counter)

	ObserveOutbound(ServiceWiki, OutcomeNotFound, 20*time.Millisecond)

	assert.Equal(t, before+1, counterValue(t, counter))
}
