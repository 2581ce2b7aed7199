package http

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	apierrors "crimerisk/internal/errors"
)

// NoDataMessage is shown when the selected area and year have no row
const NoDataMessage = "No data available for selected parameters"

var pageTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8">
    <title>Crime Risk Estimator</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 40px; }
        form { margin-bottom: 20px; }
        label { margin-right: 12px; }
        .result { padding: 10px; border-radius: 4px; }
        .ok { background-color: #d4edda; color: #155724; }
        .info { background-color: #d1ecf1; color: #0c5460; }
        .error { background-color: #f8d7da; color: #721c24; }
    </style>
</head>
<body>
    <h1>Crime Risk Estimator</h1>
    <form method="get" action="/">
        <label>Area
            <select name="area">
            {{- range .Areas}}
                <option value="{{.}}"{{if eq . $.Area}} selected{{end}}>{{.}}</option>
            {{- end}}
            </select>
        </label>
        <label>Year
            <select name="year">
            {{- range .Years}}
                <option value="{{.}}"{{if eq . $.Year}} selected{{end}}>{{.}}</option>
            {{- end}}
            </select>
        </label>
        <button type="submit">Predict</button>
    </form>
    {{- if .Submitted}}
    {{- if .Error}}
    <div class="result error">{{.Error}}</div>
    {{- else if .HasValue}}
    <div class="result ok">Predicted value for <strong>{{.Area}}</strong> in {{.Year}}: <strong>{{printf "%.2f" .Value}}</strong></div>
    {{- else}}
    <div class="result info">{{.NoData}}</div>
    {{- end}}
    {{- end}}
</body>
</html>
`))

// HTMLHandler renders the selector form and the inline prediction result
type HTMLHandler struct {
	service PredictionServiceInterface
	logger  *slog.Logger
}

type pageData struct {
	Areas     []string
	Years     []int
	Area      string
	Year      int
	Submitted bool
	HasValue  bool
	Value     float64
	NoData    string
	Error     string
}

// NewHTMLHandler creates a new HTML handler
func NewHTMLHandler(service PredictionServiceInterface, logger *slog.Logger) *HTMLHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTMLHandler{
		service: service,
		logger:  logger.With(slog.String("component", "html_handler")),
	}
}

// ServeIndex handles GET /
func (h *HTMLHandler) ServeIndex(w http.ResponseWriter, r *http.Request) {
	opts := h.service.Options()
	data := pageData{Areas: opts.Areas, Years: opts.Years, NoData: NoDataMessage}

	q := r.URL.Query()
	area := q.Get("area")
	rawYear := strings.TrimSpace(q.Get("year"))
	if area != "" || rawYear != "" {
		data.Submitted = true
		data.Area = area
		h.predict(r, &data, rawYear)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render page", slog.String("error", err.Error()))
	}
}

func (h *HTMLHandler) predict(r *http.Request, data *pageData, rawYear string) {
	year, err := strconv.Atoi(rawYear)
	if err != nil || data.Area == "" {
		data.Error = "Select an area and a valid year"
		return
	}
	data.Year = year

	p, err := h.service.Predict(r.Context(), data.Area, year)
	switch {
	case errors.Is(err, apierrors.ErrArtifactNotFound):
		data.Error = "No trained model is loaded"
	case err != nil:
		h.logger.ErrorContext(r.Context(), "prediction failed", slog.String("error", err.Error()))
		data.Error = "Prediction failed"
	case p.HasValue():
		data.HasValue = true
		data.Value = *p.Value
	}
}
