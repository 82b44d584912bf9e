package metrics

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusSink(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPrometheusSink(reg)
	require.NoError(t, err)

	ctx := context.Background()
	ok := rec("a", true)
	ok.Features = []string{"filters"}
	ok.WarningCount = 3
	require.NoError(t, sink.Record(ctx, ok))
	require.NoError(t, sink.Record(ctx, rec("b", true)))
	require.NoError(t, sink.Record(ctx, rec("c", false)))

	assert.InDelta(t, 2, testutil.ToFloat64(sink.compilations.WithLabelValues("true", "done", "")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(sink.compilations.WithLabelValues("false", "ir_validation", "SCHEMA")), 1e-9)
	assert.InDelta(t, 3, testutil.ToFloat64(sink.warnings), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(sink.features.WithLabelValues("filters")), 1e-9)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["flowc_compilations_total"])
	assert.True(t, names["flowc_compilation_duration_milliseconds"])
	assert.True(t, names["flowc_workflow_steps"])
}

func TestPrometheusSinkDoubleRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheusSink(reg)
	require.NoError(t, err)

	_, err = NewPrometheusSink(reg)
	assert.Error(t, err)
}
