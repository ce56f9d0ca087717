package cmd

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProvider(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/data/2.5/weather", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "Atlantis" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"cod":"404","message":"city not found"}`))
			return
		}
		_, _ = w.Write([]byte(`{"name":"Kyiv","main":{"temp":20,"humidity":40},"weather":[{"icon":"01d","description":"clear sky"}],"wind":{"speed":2}}`))
	})
	mux.HandleFunc("/data/2.5/forecast", func(w http.ResponseWriter, r *http.Request) {
		items := make([]string, 40)
		for i := range items {
			items[i] = fmt.Sprintf(`{"dt":%d,"main":{"temp":10},"weather":[{"icon":"10d"}]}`, 1700000000+i*10800)
		}
		_, _ = w.Write([]byte(`{"list":[` + strings.Join(items, ",") + `]}`))
	})

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func setupEnv(t *testing.T, baseURL string) {
	t.Helper()
	chdir(t, t.TempDir())
	t.Setenv("WDA_WEATHER_BASE_URL", baseURL)
	t.Setenv("WDA_WEATHER_API_KEY", "test-key")
	t.Setenv("WDA_LOGGING_LEVEL", "error")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestCityCommand(t *testing.T) {
	setupEnv(t, newProvider(t).URL+"/data/2.5")

	out, err := execute(t, "city", "Kyiv")

	require.NoError(t, err)
	assert.Contains(t, out, "Kyiv")
	assert.Contains(t, out, "°C")
	assert.Contains(t, out, "20°")
	assert.Contains(t, out, "Next 5 Days")
}

func TestCityCommand_Fahrenheit(t *testing.T) {
	setupEnv(t, newProvider(t).URL+"/data/2.5")

	out, err := execute(t, "city", "Kyiv", "--fahrenheit")

	require.NoError(t, err)
	assert.Contains(t, out, "°F")
	assert.Contains(t, out, "68°")
}

func TestCityCommand_ProviderFailure(t *testing.T) {
	setupEnv(t, newProvider(t).URL+"/data/2.5")

	out, err := execute(t, "city", "Atlantis")

	require.Error(t, err)
	assert.Contains(t, out, "Failed to fetch weather data")
}

func TestLocateCommand_FixedLocation(t *testing.T) {
	setupEnv(t, newProvider(t).URL+"/data/2.5")
	t.Setenv("WDA_LOCATION_PERMISSION_GRANTED", "true")
	t.Setenv("WDA_LOCATION_SOURCE", "fixed")
	t.Setenv("WDA_LOCATION_LATITUDE", "50.45")
	t.Setenv("WDA_LOCATION_LONGITUDE", "30.52")

	out, err := execute(t, "locate")

	require.NoError(t, err)
	assert.Contains(t, out, "Kyiv")
}

func TestLocateCommand_PermissionDenied(t *testing.T) {
	setupEnv(t, newProvider(t).URL+"/data/2.5")

	out, err := execute(t, "locate")

	require.Error(t, err)
	assert.Contains(t, out, "Permission to access location was denied")
}

func TestMissingAPIKey(t *testing.T) {
	setupEnv(t, newProvider(t).URL+"/data/2.5")
	t.Setenv("WDA_WEATHER_API_KEY", "")
	t.Setenv("OPENWEATHER_API_KEY", "")

	_, err := execute(t, "city", "Kyiv")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchCommand(t *testing.T) {
	setupEnv(t, newProvider(t).URL+"/data/2.5")
	t.Setenv("WDA_REFRESH_SCHEDULE", "@every 1s")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := &syncBuffer{}
	cmd := rootCmd()
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"watch", "--city", "Kyiv"})

	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Next 5 Days")
	}, 5*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("watch did not stop after cancellation")
	}

	assert.Contains(t, out.String(), "Kyiv")
}
