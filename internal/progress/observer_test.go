package progress

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestObserverFuncForwards(t *testing.T) {
	t.Parallel()

	var gotStage string
	var gotCompleted, gotTotal int
	f := ObserverFunc(func(stage string, completed, total int) {
		gotStage, gotCompleted, gotTotal = stage, completed, total
	})
	f.OnProgress(StageProbe, 3, 10)

	require.Equal(t, StageProbe, gotStage)
	require.Equal(t, 3, gotCompleted)
	require.Equal(t, 10, gotTotal)
}

func TestLogObserverThrottles(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	o := NewLogObserver(zap.New(core), 5)

	for i := 1; i <= 12; i++ {
		o.OnProgress(StageFetch, i, 12)
	}

	// 5, 10, and the final 12.
	require.Equal(t, 3, logs.Len())
	last := logs.All()[logs.Len()-1]
	require.Equal(t, int64(12), last.ContextMap()["completed"])
}

func TestLogObserverNilLoggerIsSafe(t *testing.T) {
	t.Parallel()

	o := NewLogObserver(nil, 0)
	require.NotPanics(t, func() { o.OnProgress(StageRecheck, 1, 1) })
}
