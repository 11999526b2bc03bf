package metrics

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveStore(t *testing.T) {
	before := testutil.ToFloat64(StoreOps.WithLabelValues("metrics_test", "list", "error"))
	ObserveStore("metrics_test", "list", time.Now(), errors.New("down"))
	after := testutil.ToFloat64(StoreOps.WithLabelValues("metrics_test", "list", "error"))
	assert.Equal(t, before+1, after)
}

func TestSetPrefetchState(t *testing.T) {
	SetPrefetchState("ready", []string{"idle", "loading", "ready", "failed"})
	assert.Equal(t, 1.0, testutil.ToFloat64(PrefetchState.WithLabelValues("ready")))
	assert.Equal(t, 0.0, testutil.ToFloat64(PrefetchState.WithLabelValues("loading")))
}

func TestHandlerServesText(t *testing.T) {
	ObserveStore("tours", "get", time.Now(), nil)
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "tourdesk_store_operations_total")
}
