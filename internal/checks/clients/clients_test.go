package clients

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/gymclub-checker/internal/config"
	"github.com/magabrotheeeer/gymclub-checker/internal/gymapi"
	"github.com/magabrotheeeer/gymclub-checker/internal/gymapi/gymapitest"
	"github.com/magabrotheeeer/gymclub-checker/internal/models"
)

func newTestSuite(t *testing.T, backend http.Handler) *Suite {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	api := gymapi.New(config.Target{
		BaseURL:        srv.URL,
		RequestTimeout: 5 * time.Second,
		RateLimit:      100,
		RateBurst:      100,
	}, log)
	return New(log, api)
}

func TestRun_AllChecksPass(t *testing.T) {
	backend := gymapitest.NewServer()
	suite := newTestSuite(t, backend)

	results := suite.Run(context.Background())

	require.Len(t, results, 5)
	for _, res := range results {
		assert.Equal(t, models.CheckPassed, res.Status, "%s: %s", res.Name, res.Details)
		assert.Equal(t, "clients", res.Suite)
	}
	assert.Equal(t, 0, backend.ClientCount())
}

func TestRun_DeleteDoesNotDelete(t *testing.T) {
	backend := gymapitest.NewServer()
	backend.KeepDeleted = true
	suite := newTestSuite(t, backend)

	results := suite.Run(context.Background())

	require.Len(t, results, 5)
	last := results[len(results)-1]
	assert.Equal(t, "read after delete", last.Name)
	assert.Equal(t, models.CheckFailed, last.Status)
	assert.Contains(t, last.Details, "still readable")
}

func TestRun_BackendDown(t *testing.T) {
	backend := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	suite := newTestSuite(t, backend)

	results := suite.Run(context.Background())

	require.Len(t, results, 1)
	assert.Equal(t, "create client", results[0].Name)
	assert.Equal(t, models.CheckFailed, results[0].Status)
}
