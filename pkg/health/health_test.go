package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(context.Context) error   { return nil }
func down(context.Context) error { return errors.New("connection refused") }

func ready(t *testing.T, h *Handler) (int, Response) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec.Code, resp
}

func TestLivenessHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHandler().LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestReadiness(t *testing.T) {
	tests := []struct {
		name       string
		critical   map[string]Checker
		optional   map[string]Checker
		wantCode   int
		wantStatus Status
	}{
		{"no checks", nil, nil, http.StatusOK, StatusUp},
		{"all up", map[string]Checker{"redis": ok}, map[string]Checker{"kafka": ok}, http.StatusOK, StatusUp},
		{"optional down", map[string]Checker{"redis": ok}, map[string]Checker{"kafka": down}, http.StatusOK, StatusDegraded},
		{"critical down", map[string]Checker{"redis": down}, map[string]Checker{"kafka": ok}, http.StatusServiceUnavailable, StatusDown},
		{"both down", map[string]Checker{"redis": down}, map[string]Checker{"kafka": down}, http.StatusServiceUnavailable, StatusDown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler()
			for name, fn := range tt.critical {
				h.Register(name, fn)
			}
			for name, fn := range tt.optional {
				h.RegisterOptional(name, fn)
			}

			code, resp := ready(t, h)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Len(t, resp.Checks, len(tt.critical)+len(tt.optional))
		})
	}
}

func TestReadiness_ReportsErrors(t *testing.T) {
	h := NewHandler()
	h.Register("redis", down)

	_, resp := ready(t, h)
	require.Contains(t, resp.Checks, "redis")
	assert.Equal(t, StatusDown, resp.Checks["redis"].Status)
	assert.True(t, resp.Checks["redis"].Critical)
	assert.Equal(t, "connection refused", resp.Checks["redis"].Error)
}

func TestRegister_Overwrites(t *testing.T) {
	h := NewHandler()
	h.Register("redis", down)
	h.Register("redis", ok)

	code, _ := ready(t, h)
	assert.Equal(t, http.StatusOK, code)
}
