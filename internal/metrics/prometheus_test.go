package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propboard/internal/app"
	"propboard/internal/infra/memory"
	"propboard/internal/registry"
)

func TestPrometheusCountsMutations(t *testing.T) {
	m := NewPrometheus()
	board := app.NewBoard(registry.SuperBowlLX(), memory.NewBlobStore(), app.WithMetrics(m))
	ctx := context.Background()

	require.NoError(t, board.OpenSession(true).SetAnswer(ctx, 2, "Heads"))
	require.NoError(t, board.OpenSession(false).SetAnswer(ctx, 2, "Tails"))
	require.Error(t, board.OpenSession(true).SetPick(ctx, "bob", 2, "Edge"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.mutations.WithLabelValues("answer", app.OutcomeApplied)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.mutations.WithLabelValues("answer", app.OutcomeUnauthorized)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.mutations.WithLabelValues("pick", app.OutcomeRejected)))
}

func TestPrometheusTracksSubscribers(t *testing.T) {
	m := NewPrometheus()
	m.SubscribersChanged(1)
	m.SubscribersChanged(1)
	m.SubscribersChanged(-1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.subscribers))
}

func TestNewPrometheusTwice(t *testing.T) {
	// Separate registries must not collide.
	a, b := NewPrometheus(), NewPrometheus()
	a.StoreObserved("get", time.Millisecond)
	b.StoreObserved("get", time.Millisecond)

	count, err := testutil.GatherAndCount(a.Registry(), "propboard_store_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
