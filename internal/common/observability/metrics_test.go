package observability

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reco-workers/internal/common/config"
	"reco-workers/internal/common/logger"
)

func TestObservability_RecordsIntoRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	o := newWithRegisterer(config.ObservabilityConfig{ServiceName: "reco-test"}, logger.NewNoOpLogger(), reg)
	defer o.Shutdown()

	ctx := context.Background()
	o.RecordJobProcessed(ctx, "recommend-restaurants", "success")
	o.RecordJobDuration(ctx, "recommend-restaurants", 120*time.Millisecond, "success")
	o.RecordCandidates(ctx, 7)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["jobs_processed_total"], "got %v", names)
}

func TestObservability_StartSpan(t *testing.T) {
	o := newWithRegisterer(config.ObservabilityConfig{}, logger.NewNoOpLogger(), prometheus.NewRegistry())
	defer o.Shutdown()

	ctx, span := o.StartSpan(context.Background(), "recommend")
	require.NotNil(t, span)
	assert.True(t, span.SpanContext().IsValid())
	assert.NotNil(t, ctx)
	span.End()

	var nilObs *Observability
	_, span = nilObs.StartSpan(context.Background(), "noop")
	span.End()
}
