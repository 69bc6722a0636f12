package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestUnregisteredCollectorsAreNoops(t *testing.T) {
	c := New()
	require.NotPanics(t, func() {
		c.ObserveSegmentCreated()
		c.ObserveSegmentOpened()
		c.ObserveSegmentClosed()
		c.ObserveTableState(3, 128)
	})
}

func TestNilCollectorsAreNoops(t *testing.T) {
	var c *Collectors
	require.NotPanics(t, func() {
		c.ObserveSegmentCreated()
		c.ObserveTableState(3, 128)
	})
}

func TestRegisteredCollectorsRecordObservations(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New()
	require.NoError(t, c.Register(reg))

	c.ObserveSegmentCreated()
	c.ObserveSegmentCreated()
	c.ObserveSegmentOpened()

	require.EqualValues(t, 2, testutil.ToFloat64(c.segmentsCreated))
	require.EqualValues(t, 1, testutil.ToFloat64(c.segmentsOpened))
	require.EqualValues(t, 0, testutil.ToFloat64(c.segmentsClosed))
}

func TestDoubleRegisterFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New()
	require.NoError(t, c.Register(reg))
	require.Error(t, c.Register(reg))
}
