package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInstrumentationWithRegisterer(t *testing.T) {
	reg := prometheus.NewRegistry()
	instr := NewInstrumentationWithRegisterer("api", reg)

	instr.CounterSignups.Inc()
	instr.CounterLogins.WithLabelValues("success").Add(2)
	instr.CounterRequests.WithLabelValues("GET", "/api/sessions", "200").Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(instr.CounterSignups))
	assert.Equal(t, 2.0, testutil.ToFloat64(instr.CounterLogins.WithLabelValues("success")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["trainlog_api_signups_total"])
	assert.True(t, names["trainlog_api_requests_total"])
}

func TestNewTestInstrumentation_Isolated(t *testing.T) {
	// Two test instrumentations must not clash on registration.
	a := NewTestInstrumentation()
	b := NewTestInstrumentation()
	a.CounterExports.Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(a.CounterExports))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.CounterExports))
}
