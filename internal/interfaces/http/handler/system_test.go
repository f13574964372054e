package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	eventapp "github.com/freightcore/backend/internal/application/event"
	"github.com/freightcore/backend/internal/domain/tenancy"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct{ err error }

func (s stubPinger) PingContext(context.Context) error { return s.err }

func serveHealth(t *testing.T, db Pinger) (int, HealthResponse) {
	t.Helper()
	h := NewSystemHandler(db, nil, "1.2.3")
	r := gin.New()
	r.GET("/health", h.Health)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	var resp APIResponse[HealthResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp.Data
}

func TestSystemHandler_Health(t *testing.T) {
	code, body := serveHealth(t, stubPinger{})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "1.2.3", body.Version)

	code, body = serveHealth(t, stubPinger{err: errors.New("connection refused")})
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "down", body.Database)
}

func TestSystemHandler_OutboxStats(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/v1/system/outbox", env.tokens[tenancy.RoleOrgAdmin], nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	root := env.issue(tenancy.Principal{UserID: uuid.New(), Role: tenancy.RoleSuperAdmin}, "root")
	w = env.do(http.MethodGet, "/api/v1/system/outbox", root, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	stats := decode[eventapp.OutboxStatsDTO](t, w)
	// activating the seeded contract queued one event
	assert.GreaterOrEqual(t, stats.Pending, int64(1))
	assert.Equal(t, stats.Total, stats.Pending)
}
