package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ghstatus-dashboard/internal/domain/entity"
	"ghstatus-dashboard/internal/handler/http/middleware"
	"ghstatus-dashboard/internal/usecase/incident"
	"ghstatus-dashboard/pkg/security/csp"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var evalTime = time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)

type stubLoader struct {
	dash  incident.Dashboard
	calls int
}

func (s *stubLoader) Load(context.Context) incident.Dashboard {
	s.calls++
	return s.dash
}

func twoIncidents() incident.Dashboard {
	incs := []entity.Incident{
		{
			Title:      "Incident with Actions",
			UpdatedRaw: "2024-03-05T11:30:00Z",
			Updated:    evalTime.Add(-30 * time.Minute),
			Date:       "Mar 05, 2024",
			TimeRange:  "11:05 - 11:30",
		},
		{
			Title:      "Disruption with <Pages>",
			UpdatedRaw: "2024-03-04T09:00:00Z",
			Updated:    evalTime.Add(-27 * time.Hour),
			Date:       "Mar 04, 2024",
			TimeRange:  "N/A - N/A",
		},
	}
	d := incident.Build(incs, evalTime)
	d.WindowStart = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	return d
}

func failedLoad() incident.Dashboard {
	d := incident.Build(nil, evalTime)
	d.WindowStart = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	d.Err = errors.Join(incident.ErrFetchFailure, errors.New("dial tcp: refused"))
	return d
}

func TestAPIHandler(t *testing.T) {
	tests := []struct {
		name          string
		dash          incident.Dashboard
		wantStatus    entity.Status
		wantLabel     string
		wantColor     string
		wantIncidents int
		wantCounts    []entity.DateCount
		wantError     string
	}{
		{
			name:          "incidents with recent update",
			dash:          twoIncidents(),
			wantStatus:    entity.StatusIssues,
			wantLabel:     "Experiencing issues ⚠️",
			wantColor:     "bg-red-500",
			wantIncidents: 2,
			wantCounts: []entity.DateCount{
				{Date: "Mar 05, 2024", Count: 1},
				{Date: "Mar 04, 2024", Count: 1},
			},
		},
		{
			name:          "fetch failure is still 200 with empty state",
			dash:          failedLoad(),
			wantStatus:    entity.StatusOperational,
			wantLabel:     "All Systems Operational",
			wantColor:     "bg-green-500",
			wantIncidents: 0,
			wantCounts:    []entity.DateCount{},
			wantError:     errorMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			APIHandler{Svc: &stubLoader{dash: tt.dash}}.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

			var got DTO
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.wantLabel, got.StatusLabel)
			assert.Equal(t, tt.wantColor, got.StatusColor)
			assert.Len(t, got.Incidents, tt.wantIncidents)
			if diff := cmp.Diff(tt.wantCounts, got.CountsByDate); diff != "" {
				t.Errorf("counts_by_date mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tt.wantError, got.Error)
			assert.Len(t, got.Chart.Tooltips, tt.wantIncidents)
		})
	}
}

func TestAPIHandler_EmptyStateArraysNotNull(t *testing.T) {
	rec := httptest.NewRecorder()
	APIHandler{Svc: &stubLoader{dash: failedLoad()}}.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))

	body := rec.Body.String()
	assert.Contains(t, body, `"incidents":[]`)
	assert.Contains(t, body, `"counts_by_date":[]`)
	assert.Contains(t, body, `"labels":[]`)
	assert.Contains(t, body, `"tooltips":[]`)
	assert.NotContains(t, body, "dial tcp")
}

func TestAPIHandler_LoadsOncePerRequest(t *testing.T) {
	loader := &stubLoader{dash: twoIncidents()}
	h := APIHandler{Svc: loader}
	for i := 0; i < 3; i++ {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	}
	assert.Equal(t, 3, loader.calls)
}

func renderPage(t *testing.T, dash incident.Dashboard, wrap func(http.Handler) http.Handler) (*httptest.ResponseRecorder, *goquery.Document) {
	t.Helper()
	var h http.Handler = PageHandler{Svc: &stubLoader{dash: dash}}
	if wrap != nil {
		h = wrap(h)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rec.Body.String()))
	require.NoError(t, err)
	return rec, doc
}

func TestPageHandler_Issues(t *testing.T) {
	rec, doc := renderPage(t, twoIncidents(), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "GitHub Status", doc.Find("title").Text())
	assert.Equal(t, "GitHub Status", doc.Find("h1").Text())

	status := doc.Find("#current-status")
	assert.Equal(t, "Experiencing issues ⚠️", status.Text())
	assert.True(t, status.HasClass("bg-red-500"))
	assert.Equal(t, "Incidents in the last month", doc.Find("#chart-title").Text())
	assert.Contains(t, doc.Find("#window-start").Text(), "Feb 01, 2024")
	assert.Zero(t, doc.Find("#feed-unavailable").Length())
	assert.Equal(t, 1, doc.Find("canvas#incidents").Length())
}

func TestPageHandler_EmbedsChartConfig(t *testing.T) {
	_, doc := renderPage(t, twoIncidents(), nil)

	raw := doc.Find("script#chart-config").Text()
	var chart entity.ChartSeries
	require.NoError(t, json.Unmarshal([]byte(raw), &chart))

	assert.Equal(t, []string{"Mar 05, 2024", "Mar 04, 2024"}, chart.Labels)
	assert.Equal(t, entity.ChartDatasetLabel, chart.Dataset.Label)
	assert.Equal(t, []entity.ChartPoint{{X: "Mar 05, 2024", Y: 1}, {X: "Mar 04, 2024", Y: 1}}, chart.Dataset.Points)
	assert.Equal(t, []string{
		"11:05 - 11:30, Incident with Actions",
		"N/A - N/A, Disruption with <Pages>",
	}, chart.Tooltips)
	assert.NotContains(t, raw, "<Pages>", "markup in titles must be escaped inside the script block")
}

func TestPageHandler_FetchFailureRendersEmptyState(t *testing.T) {
	rec, doc := renderPage(t, failedLoad(), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	status := doc.Find("#current-status")
	assert.Equal(t, "All Systems Operational", status.Text())
	assert.True(t, status.HasClass("bg-green-500"))
	assert.Equal(t, 1, doc.Find("#feed-unavailable").Length())

	var chart entity.ChartSeries
	require.NoError(t, json.Unmarshal([]byte(doc.Find("script#chart-config").Text()), &chart))
	assert.Empty(t, chart.Labels)
	assert.Empty(t, chart.Tooltips)
}

func TestPageHandler_StampsCSPNonce(t *testing.T) {
	mw := middleware.NewCSP(middleware.CSPConfig{Enabled: true, DefaultPolicy: csp.DashboardPolicy()}, nil)
	rec, doc := renderPage(t, twoIncidents(), mw.Handler)

	header := rec.Header().Get("Content-Security-Policy")
	var nonces []string
	doc.Find("script[nonce]").Each(func(_ int, s *goquery.Selection) {
		n, _ := s.Attr("nonce")
		nonces = append(nonces, n)
	})

	require.Len(t, nonces, 1)
	require.NotEmpty(t, nonces[0])
	assert.Contains(t, header, "'nonce-"+nonces[0]+"'")
}

func TestPageHandler_UnknownPath(t *testing.T) {
	rec := httptest.NewRecorder()
	PageHandler{Svc: &stubLoader{}}.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRegister_Routes(t *testing.T) {
	mux := http.NewServeMux()
	Register(mux, &stubLoader{dash: twoIncidents()}, nil)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{method: http.MethodGet, path: "/", want: http.StatusOK},
		{method: http.MethodGet, path: "/api/dashboard", want: http.StatusOK},
		{method: http.MethodPost, path: "/api/dashboard", want: http.StatusMethodNotAllowed},
		{method: http.MethodGet, path: "/missing", want: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
