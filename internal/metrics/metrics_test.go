package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

// TestObserveDownload checks counters by status and byte totals.
func TestObserveDownload(t *testing.T) {
	t.Parallel()

	c := New()
	c.ObserveDownload("paper", 100, nil)
	c.ObserveDownload("paper", 50, nil)
	c.ObserveDownload("paper", 0, errors.New("reset"))

	expected := `
		# HELP servo_downloads_total Total number of artifact downloads
		# TYPE servo_downloads_total counter
		servo_downloads_total{kind="paper",status="error"} 1
		servo_downloads_total{kind="paper",status="success"} 2
		# HELP servo_download_bytes_total Total number of artifact bytes read from the registry
		# TYPE servo_download_bytes_total counter
		servo_download_bytes_total{kind="paper"} 150
	`

	err := testutil.GatherAndCompare(c.Registry(), strings.NewReader(expected),
		"servo_downloads_total", "servo_download_bytes_total")
	require.NoError(t, err)
}

// TestObserveRefresh checks refresh outcomes.
func TestObserveRefresh(t *testing.T) {
	t.Parallel()

	c := New()
	c.ObserveRefresh(true, nil)
	c.ObserveRefresh(false, nil)
	c.ObserveRefresh(false, nil)
	c.ObserveRefresh(false, errors.New("boom"))

	require.InDelta(t, 1, testutil.ToFloat64(c.refreshUnits.WithLabelValues(OutcomeDownloaded)), 0)
	require.InDelta(t, 2, testutil.ToFloat64(c.refreshUnits.WithLabelValues(OutcomeCurrent)), 0)
	require.InDelta(t, 1, testutil.ToFloat64(c.refreshUnits.WithLabelValues(OutcomeFailed)), 0)

	count, err := testutil.GatherAndCount(c.Registry(), "servo_refresh_units_total")
	require.NoError(t, err)
	require.Equal(t, 3, count)
}

// TestHandler checks the exposition endpoint.
func TestHandler(t *testing.T) {
	t.Parallel()

	c := New()
	c.ObserveRequest("http", "/server/:name", http.StatusNotFound)

	srv := httptest.NewServer(c.Handler())
	t.Cleanup(srv.Close)

	response, err := http.Get(srv.URL) //nolint:noctx // Test request.
	require.NoError(t, err)

	defer func() {
		_ = response.Body.Close()
	}()

	body, err := io.ReadAll(response.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, response.StatusCode)
	require.Contains(t, string(body), `servo_api_requests_total{api="http",code="404",route="/server/:name"} 1`)
	require.Contains(t, string(body), "go_goroutines")
}
