package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobsonar/internal/store"
	"jobsonar/pkg/models"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func doRequest(t *testing.T, handler echo.HandlerFunc, method, target, body string, params ...string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	for i := 0; i+1 < len(params); i += 2 {
		c.SetParamNames(params[i])
		c.SetParamValues(params[i+1])
	}
	require.NoError(t, handler(c))
	return rec
}

func TestHealthHandler(t *testing.T) {
	rec := doRequest(t, HealthHandler, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp models.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "ok", resp.Checks["api"])
}

func TestReadinessHandler(t *testing.T) {
	st := newTestStore(t)

	rec := doRequest(t, ReadinessHandler(st, nil), http.MethodGet, "/health/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp models.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ready", resp.Status)
	assert.Equal(t, "ok", resp.Checks["store"])
	assert.NotContains(t, resp.Checks, "redis")
}

func TestChannelHandlers(t *testing.T) {
	st := newTestStore(t)

	rec := doRequest(t, AddChannelHandler(st), http.MethodPost, "/api/v1/channels",
		`{"channel_id": "-1001234", "channel_name": "Go Jobs"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	// Second registration conflicts
	rec = doRequest(t, AddChannelHandler(st), http.MethodPost, "/api/v1/channels",
		`{"channel_id": "-1001234", "channel_name": "Go Jobs"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Missing channel_id fails validation
	rec = doRequest(t, AddChannelHandler(st), http.MethodPost, "/api/v1/channels",
		`{"channel_name": "Go Jobs"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, ListChannelsHandler(st), http.MethodGet, "/api/v1/channels", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	var list models.ChannelsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Equal(t, 1, list.Count)
	assert.Equal(t, "-1001234", list.Channels[0].ChannelID)

	rec = doRequest(t, RemoveChannelHandler(st), http.MethodDelete, "/api/v1/channels/-1001234", "",
		"id", "-1001234")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, RemoveChannelHandler(st), http.MethodDelete, "/api/v1/channels/-1001234", "",
		"id", "-1001234")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFilterHandlers(t *testing.T) {
	st := newTestStore(t)

	rec := doRequest(t, AddFilterHandler(st), http.MethodPost, "/api/v1/filters",
		`{"kind": "keyword", "value": "golang"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var created models.Filter
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, models.FilterKeyword, created.Kind)
	require.NotZero(t, created.ID)

	// Unknown kind rejected before it reaches the store
	rec = doRequest(t, AddFilterHandler(st), http.MethodPost, "/api/v1/filters",
		`{"kind": "salary", "value": "100k"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, ListFiltersHandler(st), http.MethodGet, "/api/v1/filters", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	var list models.FiltersResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Filters, 1)
	assert.Equal(t, []string{"golang"}, list.Set.Keywords)

	rec = doRequest(t, RemoveFilterHandler(st), http.MethodDelete, "/api/v1/filters/1", "",
		"id", "abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, RemoveFilterHandler(st), http.MethodDelete, "/api/v1/filters/1", "",
		"id", "1")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRecentMatchesHandler(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		job := &models.MatchedJob{
			ChannelID: "-100ch",
			MessageID: i,
			Fields:    models.JobFields{RoleTitle: "Backend Engineer", RawText: "text"},
			Result:    models.MatchResult{Score: 80},
			CreatedAt: time.Now().Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, st.AddMatchedJob(ctx, job))
	}

	rec := doRequest(t, RecentMatchesHandler(st), http.MethodGet, "/api/v1/matches/recent?limit=2", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp models.MatchesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
}

func TestStatsHandler(t *testing.T) {
	st := newTestStore(t)

	handler := StatsHandler(st,
		func() int { return 70 },
		func() bool { return true },
		func() bool { return false },
	)
	rec := doRequest(t, handler, http.MethodGet, "/api/v1/stats", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp models.StatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Status.IsPaused)
	assert.False(t, resp.Status.HasProfile)
	assert.Equal(t, 70, resp.Status.MatchThreshold)
}
