package membership

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

func newTestSuite(t *testing.T, backend http.Handler, expected []string) *Suite {
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
	return New(log, api, expected)
}

func TestRun_AllChecksPass(t *testing.T) {
	backend := gymapitest.NewServer()
	suite := newTestSuite(t, backend, []string{"monthly", "quarterly", "yearly"})

	results := suite.Run(context.Background())

	// Справочник + по одной проверке на тип + негативная проверка.
	require.Len(t, results, 5)
	for _, res := range results {
		assert.Equal(t, models.CheckPassed, res.Status, "%s: %s", res.Name, res.Details)
		assert.Equal(t, "membership", res.Suite)
	}
	assert.Equal(t, 0, backend.ClientCount())
}

func TestRun_MissingExpectedType(t *testing.T) {
	backend := gymapitest.NewServer()
	backend.Types = []models.MembershipType{
		{Name: "monthly", DurationMonth: 1, Price: 50},
	}
	suite := newTestSuite(t, backend, []string{"monthly", "yearly"})

	results := suite.Run(context.Background())

	require.NotEmpty(t, results)
	catalog := results[0]
	assert.Equal(t, "list membership types", catalog.Name)
	assert.Equal(t, models.CheckFailed, catalog.Status)
	assert.Contains(t, catalog.Details, "yearly")

	byName := make(map[string]models.CheckResult, len(results))
	for _, res := range results {
		byName[res.Name] = res
	}
	assert.Equal(t, models.CheckPassed, byName["accepts type monthly"].Status)
	assert.Equal(t, models.CheckFailed, byName["accepts type yearly"].Status)
}

func TestRun_BogusTypeAccepted(t *testing.T) {
	backend := gymapitest.NewServer()
	// Бекенд, принимающий любой тип абонемента.
	backend.Types = append(backend.Types, models.MembershipType{
		Name: bogusMembershipType, DurationMonth: 1, Price: 1,
	})
	suite := newTestSuite(t, backend, []string{"monthly"})

	results := suite.Run(context.Background())

	last := results[len(results)-1]
	assert.Equal(t, "rejects unknown type", last.Name)
	assert.Equal(t, models.CheckFailed, last.Status)
	assert.Contains(t, last.Details, bogusMembershipType)
	// Запись, созданную негативной проверкой, сьют убирает за собой.
	assert.Equal(t, 0, backend.ClientCount())
}
