package dashboard

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"ghstatus-dashboard/internal/domain/entity"
	"ghstatus-dashboard/internal/handler/http/middleware"
	"ghstatus-dashboard/internal/handler/http/requestid"
	"ghstatus-dashboard/internal/handler/http/respond"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html.tmpl"))

// Chart.js bundle pinned by version.
const chartJSURL = "https://cdn.jsdelivr.net/npm/chart.js@4.4.1/dist/chart.umd.min.js"

type pageData struct {
	StatusLabel string
	StatusColor string
	WindowStart string
	Incidents   int
	Chart       entity.ChartSeries
	Unavailable bool
	Nonce       string
	ChartJSURL  string
	SourceURL   string
	SourceName  string
}

// PageHandler serves GET / as server-rendered HTML.
type PageHandler struct {
	Svc    Loader
	Logger *slog.Logger
}

func (h PageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	dto := NewDTO(h.Svc.Load(r.Context()))
	data := pageData{
		StatusLabel: dto.StatusLabel,
		StatusColor: dto.StatusColor,
		Incidents:   len(dto.Incidents),
		Chart:       dto.Chart,
		Unavailable: dto.Error != "",
		Nonce:       middleware.NonceFromContext(r.Context()),
		ChartJSURL:  chartJSURL,
		SourceURL:   "https://www.githubstatus.com/",
		SourceName:  "GitHub Status",
	}
	if !dto.WindowStart.IsZero() {
		data.WindowStart = dto.WindowStart.Format(entity.DisplayDateLayout)
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		h.logger().Error("render dashboard page",
			slog.String("request_id", requestid.FromContext(r.Context())),
			slog.Any("error", err))
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h PageHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}
