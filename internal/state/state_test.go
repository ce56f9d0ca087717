package state

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/vzahanych/weather-display/internal/weather"
)

func report(name string) *weather.Report {
	return &weather.Report{
		Snapshot: weather.Snapshot{LocationName: name, ConditionCode: "01d"},
		Forecast: []weather.ForecastEntry{{TimestampUnixSeconds: 1, ConditionCode: "01d"}},
	}
}

func TestReduce_HappyPath(t *testing.T) {
	s := State{UseCelsius: true}

	s, ok := Reduce(s, FetchStarted{Token: 1})
	require.True(t, ok)
	assert.Equal(t, StatusLoading, s.Status)

	r := report("Lviv")
	s, ok = Reduce(s, FetchSucceeded{Token: 1, Report: r})
	require.True(t, ok)
	assert.Equal(t, StatusSuccess, s.Status)
	assert.Same(t, r, s.Report)
	assert.Empty(t, s.Err)
}

func TestReduce_FailureKeepsLastReport(t *testing.T) {
	r := report("Lviv")
	s := State{Status: StatusSuccess, Token: 1, Report: r}

	s, _ = Reduce(s, FetchStarted{Token: 2})
	assert.Same(t, r, s.Report, "previous report stays visible while loading")

	s, ok := Reduce(s, FetchFailed{Token: 2, Message: "Failed to fetch weather data"})
	require.True(t, ok)
	assert.Equal(t, StatusError, s.Status)
	assert.Equal(t, "Failed to fetch weather data", s.Err)
	assert.Same(t, r, s.Report)

	s, _ = Reduce(s, FetchStarted{Token: 3})
	s, _ = Reduce(s, FetchSucceeded{Token: 3, Report: report("Odesa")})
	assert.Empty(t, s.Err, "success clears the error")
}

func TestReduce_StaleResultsDiscarded(t *testing.T) {
	s := State{}
	s, _ = Reduce(s, FetchStarted{Token: 1})
	s, _ = Reduce(s, FetchStarted{Token: 2})

	next, ok := Reduce(s, FetchSucceeded{Token: 1, Report: report("old")})
	assert.False(t, ok)
	assert.Equal(t, s, next)

	_, ok = Reduce(s, FetchFailed{Token: 1, Message: "late"})
	assert.False(t, ok)

	s, ok = Reduce(s, FetchSucceeded{Token: 2, Report: report("new")})
	require.True(t, ok)

	_, ok = Reduce(s, FetchSucceeded{Token: 2, Report: report("duplicate")})
	assert.False(t, ok, "results are only accepted while loading")
}

func TestReduce_TokensMustIncrease(t *testing.T) {
	s := State{Token: 5, Status: StatusSuccess}

	_, ok := Reduce(s, FetchStarted{Token: 5})
	assert.False(t, ok)
	_, ok = Reduce(s, FetchStarted{Token: 4})
	assert.False(t, ok)
}

func TestReduce_NilReportRejected(t *testing.T) {
	s := State{Token: 1, Status: StatusLoading}
	_, ok := Reduce(s, FetchSucceeded{Token: 1})
	assert.False(t, ok)
}

func TestReduce_UnitsToggleInAnyStatus(t *testing.T) {
	for _, status := range []Status{StatusIdle, StatusLoading, StatusSuccess, StatusError} {
		s, ok := Reduce(State{Status: status, UseCelsius: true}, UnitsToggled{})
		require.True(t, ok)
		assert.False(t, s.UseCelsius)
		assert.Equal(t, status, s.Status)
	}
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "idle", StatusIdle.String())
	assert.Equal(t, "loading", StatusLoading.String())
	assert.Equal(t, "success", StatusSuccess.String())
	assert.Equal(t, "error", StatusError.String())
}

func TestStore_BeginIssuesIncreasingTokens(t *testing.T) {
	store := NewStore(true, zaptest.NewLogger(t))

	const n = 50
	tokens := make(chan uint64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tokens <- store.Begin()
		}()
	}
	wg.Wait()
	close(tokens)

	seen := make(map[uint64]bool)
	for tok := range tokens {
		assert.False(t, seen[tok], "token %d issued twice", tok)
		seen[tok] = true
	}
	assert.Len(t, seen, n)
	assert.Equal(t, uint64(n), store.Current().Token)
}

func TestStore_OutOfOrderCompletion(t *testing.T) {
	store := NewStore(true, zaptest.NewLogger(t))

	first := store.Begin()
	second := store.Begin()

	require.True(t, store.Dispatch(FetchSucceeded{Token: second, Report: report("Paris")}))
	assert.False(t, store.Dispatch(FetchSucceeded{Token: first, Report: report("London")}))

	cur := store.Current()
	assert.Equal(t, StatusSuccess, cur.Status)
	assert.Equal(t, "Paris", cur.Report.Snapshot.LocationName)
}

func TestStore_Subscribe(t *testing.T) {
	store := NewStore(true, zaptest.NewLogger(t))

	ch, cancel := store.Subscribe()
	initial := <-ch
	assert.Equal(t, StatusIdle, initial.Status)

	token := store.Begin()
	store.Dispatch(FetchSucceeded{Token: token, Report: report("Rome")})

	latest := <-ch
	assert.Equal(t, StatusSuccess, latest.Status, "slow readers only see the latest state")

	cancel()
	cancel()
	_, open := <-ch
	assert.False(t, open)

	store.Dispatch(UnitsToggled{})
}
