package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestProviderCallsTotal(t *testing.T) {
	c := ProviderCallsTotal.WithLabelValues("abuseipdb", OutcomeOK)
	before := testutil.ToFloat64(c)

	c.Inc()

	assert.Equal(t, before+1, testutil.ToFloat64(c))
}

func TestCollectorsLint(t *testing.T) {
	HTTPRequestsTotal.WithLabelValues("/api/alerts", "GET", "200").Inc()

	problems, err := testutil.CollectAndLint(HTTPRequestsTotal)
	assert.NoError(t, err)
	assert.Empty(t, problems)
}
