package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestManager_ObserveJob(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveJob("auction-rollover", "completed", 20*time.Millisecond)
	m.ObserveJob("auction-rollover", "completed", 0)
	m.ObserveJob("auction-rollover", "failed", 0)

	require.Equal(t, 2.0, testutil.ToFloat64(m.jobRuns.WithLabelValues("auction-rollover", "completed")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.jobRuns.WithLabelValues("auction-rollover", "failed")))
}

func TestManager_ObserveStoreWriteAndRollover(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveStoreWrite(nil)
	m.ObserveStoreWrite(errors.New("disk full"))
	m.ObserveRollover(3, 5, 2)

	require.Equal(t, 1.0, testutil.ToFloat64(m.storeWrites.WithLabelValues("ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.storeWrites.WithLabelValues("error")))
	require.Equal(t, 3.0, testutil.ToFloat64(m.auctionsResolved))
	require.Equal(t, 5.0, testutil.ToFloat64(m.bidsCleared))
	require.Equal(t, 2.0, testutil.ToFloat64(m.playersSigned))
}

func TestManager_NilIsNoop(t *testing.T) {
	t.Parallel()

	var m *Manager
	m.ObserveJob("x", "y", time.Second)
	m.ObserveStoreWrite(nil)
	m.ObserveSnapshot("auto")
	m.ObserveNotification("saveLeague")
	m.ObserveRollover(1, 1, 1)
	require.Nil(t, m.Registry())
}
