package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/couchcryptid/ocean-series-service/internal/dashboard"
	"github.com/couchcryptid/ocean-series-service/internal/domain"
	"github.com/couchcryptid/ocean-series-service/internal/export"
	"github.com/couchcryptid/ocean-series-service/internal/render"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePNG  = "image/png"
	contentTypeHTML = "text/html; charset=utf-8"
)

// parseQuery overlays URL parameters on def. Labels may be repeated or
// comma-separated.
func parseQuery(values url.Values, def dashboard.Query) (dashboard.Query, error) {
	q := def
	var err error

	if q.Range.Start, err = intParam(values, "start", q.Range.Start); err != nil {
		return dashboard.Query{}, err
	}
	if q.Range.End, err = intParam(values, "end", q.Range.End); err != nil {
		return dashboard.Query{}, err
	}
	if q.Window, err = intParam(values, "window", q.Window); err != nil {
		return dashboard.Query{}, err
	}
	if v := values.Get("seed"); v != "" {
		if q.Seed, err = strconv.ParseUint(v, 10, 64); err != nil {
			return dashboard.Query{}, fmt.Errorf("%w: seed %q", domain.ErrInvalidParameter, v)
		}
	}
	if v := values.Get("scenario"); v != "" {
		if q.Scenario, err = domain.ParseScenario(v); err != nil {
			return dashboard.Query{}, err
		}
	}
	if v := values.Get("trend"); v != "" {
		if q.Trend, err = strconv.ParseBool(v); err != nil {
			return dashboard.Query{}, fmt.Errorf("%w: trend %q", domain.ErrInvalidParameter, v)
		}
	}

	for _, raw := range values["label"] {
		for _, label := range strings.Split(raw, ",") {
			if label = strings.TrimSpace(label); label != "" {
				q.Labels = append(q.Labels, label)
			}
		}
	}
	return q, nil
}

func intParam(values url.Values, key string, def int) (int, error) {
	v := values.Get(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not an integer", domain.ErrInvalidParameter, key, v)
	}
	return n, nil
}

// view parses the request and builds the view, writing the error response
// itself when either step fails.
func (s *Server) view(w http.ResponseWriter, r *http.Request) (dashboard.View, bool) {
	q, err := parseQuery(r.URL.Query(), s.svc.DefaultQuery())
	if err != nil {
		s.writeError(w, r, err)
		return dashboard.View{}, false
	}
	v, err := s.svc.Build(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return dashboard.View{}, false
	}
	return v, true
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	v, ok := s.view(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleCSV(w http.ResponseWriter, r *http.Request) {
	v, ok := s.view(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, v.Series); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeFile(w, contentTypeCSV, filename(v, "csv"), buf.Bytes())
}

func (s *Server) handleXLSX(w http.ResponseWriter, r *http.Request) {
	v, ok := s.view(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, v.Series, v.Trends); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeFile(w, contentTypeXLSX, filename(v, "xlsx"), buf.Bytes())
}

func (s *Server) handlePNG(w http.ResponseWriter, r *http.Request) {
	v, ok := s.view(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := render.WritePNG(&buf, subtitle(v), v.Series, v.Trends); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeFile(w, contentTypePNG, "", buf.Bytes())
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	v, ok := s.view(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	err := render.WriteHTML(&buf, render.Dashboard{
		Title:       "Ocean impact dashboard",
		Subtitle:    subtitle(v),
		Series:      v.Series,
		Trends:      v.Trends,
		Regions:     s.svc.Regions(),
		Derivations: s.svc.Derivations(),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeFile(w, contentTypeHTML, "", buf.Bytes())
}

func subtitle(v dashboard.View) string {
	return fmt.Sprintf("%s scenario, %s, seed %d", v.Query.Scenario, v.Query.Range, v.Query.Seed)
}

func filename(v dashboard.View, ext string) string {
	return fmt.Sprintf("ocean-series-%s-%s-%d.%s", v.Query.Scenario, v.Query.Range, v.Query.Seed, ext)
}

func writeFile(w http.ResponseWriter, contentType, attachment string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	if attachment != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", attachment))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// writeError maps domain errors to 400 and everything else to 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case domain.IsClientError(err), errors.Is(err, render.ErrNothingToPlot):
		status = http.StatusBadRequest
	default:
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
