package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestInitIsIdempotent(t *testing.T) {
	Init()
	require.NotPanics(t, Init)
}

func TestObserveBeforeInitDoesNotPanic(t *testing.T) {
	require.NotPanics(t, func() {
		ObserveDomain("candidate")
		ObserveHTTPRequest("GET", "/healthz", 200, time.Millisecond)
	})
}

func TestCountersAccumulate(t *testing.T) {
	Init()

	before := testutil.ToFloat64(domainsTotal.WithLabelValues("social"))
	ObserveDomain("social")
	ObserveDomain("social")
	require.Equal(t, before+2, testutil.ToFloat64(domainsTotal.WithLabelValues("social")))

	ObserveContacts("email", 0)
	got := testutil.ToFloat64(contactsTotal.WithLabelValues("email"))
	ObserveContacts("email", 3)
	require.Equal(t, got+3, testutil.ToFloat64(contactsTotal.WithLabelValues("email")))
}

func TestStageUnits(t *testing.T) {
	Init()

	before := testutil.ToFloat64(stageUnits.WithLabelValues("probe"))
	ObserveStageUnit("probe")
	require.Equal(t, before+1, testutil.ToFloat64(stageUnits.WithLabelValues("probe")))
}
