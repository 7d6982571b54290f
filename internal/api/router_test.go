package api

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/LJTian/MedAIRadar/internal/config"
	"github.com/LJTian/MedAIRadar/internal/processor"
	"github.com/LJTian/MedAIRadar/internal/storage"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNews struct {
	records []processor.Record
	calls   atomic.Int32
	days    atomic.Int32
}

func (f *fakeNews) News(ctx context.Context, days int) []processor.Record {
	f.calls.Add(1)
	f.days.Store(int32(days))
	return f.records
}

func day(d int) time.Time {
	return time.Date(2025, 4, d, 0, 0, 0, 0, time.UTC)
}

func record(title, source string, date time.Time) processor.Record {
	return processor.Record{
		Title:  title,
		Link:   "https://example.com/" + strings.ReplaceAll(title, " ", "-"),
		Date:   date,
		Source: source,
		Topics: processor.Classify(title, ""),
	}
}

func testRecords() []processor.Record {
	return []processor.Record{
		record("Genome sequencing advance", "Nature", day(18)),
		record("MRI reading assistant", "ScienceDaily", day(15)),
		record("Hospital budget news", "Nature", day(10)),
	}
}

type envelope struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T, news NewsSource) (*gin.Engine, *storage.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	store := &storage.Store{Redis: rdb}

	cfg := &config.Config{NewsDays: 30, CacheTTL: time.Hour}
	r := gin.New()
	NewServer(store, news, cfg).RegisterRoutes(r)
	return r, store
}

func do(t *testing.T, r http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeRecords(t *testing.T, w *httptest.ResponseRecorder) []processor.Record {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.Equal(t, "ok", env.Code)
	var records []processor.Record
	require.NoError(t, json.Unmarshal(env.Data, &records))
	return records
}

func titles(records []processor.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Title)
	}
	return out
}

func TestHealth(t *testing.T) {
	r, _ := newTestServer(t, &fakeNews{})
	w := do(t, r, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestListNewsUsesDefaultDaysAndCache(t *testing.T) {
	news := &fakeNews{records: testRecords()}
	r, _ := newTestServer(t, news)

	w := do(t, r, http.MethodGet, "/api/v1/news")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeRecords(t, w), 3)
	assert.EqualValues(t, 30, news.days.Load())

	w = do(t, r, http.MethodGet, "/api/v1/news")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeRecords(t, w), 3)
	assert.EqualValues(t, 1, news.calls.Load(), "second request should be served from cache")
}

func TestListNewsDaysParam(t *testing.T) {
	news := &fakeNews{records: testRecords()}
	r, _ := newTestServer(t, news)

	do(t, r, http.MethodGet, "/api/v1/news?days=7")
	assert.EqualValues(t, 7, news.days.Load())

	do(t, r, http.MethodGet, "/api/v1/news?days=abc")
	assert.EqualValues(t, 30, news.days.Load())

	do(t, r, http.MethodGet, "/api/v1/news?days=10000")
	assert.EqualValues(t, maxDays, news.days.Load())
}

func TestListNewsFilters(t *testing.T) {
	news := &fakeNews{records: testRecords()}
	r, _ := newTestServer(t, news)

	cases := []struct {
		name  string
		query string
		want  []string
	}{
		{"source", "source=Nature", []string{"Genome sequencing advance", "Hospital budget news"}},
		{"source all", "source=All", []string{"Genome sequencing advance", "MRI reading assistant", "Hospital budget news"}},
		{"topic", "topic=Medical+Imaging", []string{"MRI reading assistant"}},
		{"topic any", "topic=Medical+Imaging,Genomics", []string{"Genome sequencing advance", "MRI reading assistant"}},
		{"range", "from=2025-04-12&to=2025-04-15", []string{"MRI reading assistant"}},
		{"combined", "source=Nature&from=2025-04-11", []string{"Genome sequencing advance"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(t, r, http.MethodGet, "/api/v1/news?"+tc.query)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tc.want, titles(decodeRecords(t, w)))
		})
	}
}

func TestListNewsBadDate(t *testing.T) {
	r, _ := newTestServer(t, &fakeNews{})

	w := do(t, r, http.MethodGet, "/api/v1/news?from=04/12/2025")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/news?from=2025-04-20&to=2025-04-10")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListNewsEmptyResultIsArray(t *testing.T) {
	r, _ := newTestServer(t, &fakeNews{records: []processor.Record{}})

	w := do(t, r, http.MethodGet, "/api/v1/news")
	require.Equal(t, http.StatusOK, w.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "[]", string(env.Data))
}

func TestListNewsCSV(t *testing.T) {
	r, _ := newTestServer(t, &fakeNews{records: testRecords()})

	w := do(t, r, http.MethodGet, "/api/v1/news?format=csv&source=ScienceDaily")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")

	rows, err := csv.NewReader(w.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2025-04-15", rows[1][0])
	assert.Equal(t, "MRI reading assistant", rows[1][1])
}

func TestRefreshClearsCache(t *testing.T) {
	news := &fakeNews{records: testRecords()}
	r, _ := newTestServer(t, news)

	do(t, r, http.MethodGet, "/api/v1/news")
	require.EqualValues(t, 1, news.calls.Load())

	w := do(t, r, http.MethodPost, "/api/v1/refresh")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"code":"ok","message":"success","data":{"cleared":1}}`, w.Body.String())

	do(t, r, http.MethodGet, "/api/v1/news")
	assert.EqualValues(t, 2, news.calls.Load())
}

func TestCacheDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	news := &fakeNews{records: testRecords()}
	r := gin.New()
	NewServer(&storage.Store{}, news, &config.Config{NewsDays: 30}).RegisterRoutes(r)

	w := do(t, r, http.MethodPost, "/api/v1/refresh")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"code":"ok","message":"success","data":{"cleared":0}}`, w.Body.String())

	// 无缓存时每次请求都重新采集
	for i := 0; i < 2; i++ {
		w = do(t, r, http.MethodGet, "/api/v1/news")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decodeRecords(t, w), 3)
	}
	assert.EqualValues(t, 2, news.calls.Load())
}

func TestTopicsAndSources(t *testing.T) {
	r, _ := newTestServer(t, &fakeNews{})

	w := do(t, r, http.MethodGet, "/api/v1/topics")
	require.Equal(t, http.StatusOK, w.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var topics []string
	require.NoError(t, json.Unmarshal(env.Data, &topics))
	assert.Equal(t, processor.TopicNames(), topics)

	w = do(t, r, http.MethodGet, "/api/v1/sources")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var sources []string
	require.NoError(t, json.Unmarshal(env.Data, &sources))
	assert.Equal(t, config.Sources(), sources)
	assert.Contains(t, sources, config.ArxivSource)
}

func TestRunsWithoutArchive(t *testing.T) {
	r, _ := newTestServer(t, &fakeNews{})

	w := do(t, r, http.MethodGet, "/api/v1/runs")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/runs/abc/articles")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	r, _ := newTestServer(t, &fakeNews{})
	w := do(t, r, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestFilterToIsEndOfDay(t *testing.T) {
	q, err := parseQuery("", "2025-04-15", nil, nil)
	require.NoError(t, err)

	late := record("late entry", "Nature", day(15).Add(23*time.Hour))
	next := record("next day", "Nature", day(16))
	got := Filter([]processor.Record{late, next}, q)
	assert.Equal(t, []string{"late entry"}, titles(got))
}

func TestParseQueryValues(t *testing.T) {
	q, err := parseQuery("", "", []string{"Nature, STAT News", "All"}, []string{"Genomics", ""})
	require.NoError(t, err)
	assert.Nil(t, q.Sources)
	assert.Equal(t, []string{"Genomics"}, q.Topics)

	q, err = parseQuery("", "", []string{"Nature, STAT News"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Nature", "STAT News"}, q.Sources)
}
