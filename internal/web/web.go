package web

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"moonday/internal/config"
	appLog "moonday/internal/log"
	"moonday/internal/moonday"
	"moonday/internal/refresh"
)

// Server exposes the generated moonday calendar over HTTP.
type Server struct {
	refresher *refresh.Refresher
	mux       *http.ServeMux
	now       func() time.Time
}

// NewServer routes the endpoints that read from r.
func NewServer(r *refresh.Refresher) *Server {
	s := &Server{
		refresher: r,
		mux:       http.NewServeMux(),
		now:       time.Now,
	}
	s.registerRoutes()
	return s
}

// Handler returns the routed handler, behind basic auth when the config
// carries credentials.
func (s *Server) Handler() http.Handler {
	cfg := s.refresher.Config()
	user, pass, ok := credentials(cfg)
	if !ok {
		return s.mux
	}
	appLog.Info("HTTP basic auth enabled", "listen", "http://"+cfg.Listen)
	return requireBasicAuth(s.mux, user, pass, "/health")
}

// LoopbackHandler returns the routes without basic auth. Mount it only on
// listeners private to this process, such as the one behind capture.
func (s *Server) LoopbackHandler() http.Handler {
	return s.mux
}

// Serve runs an HTTP server on cfg.Listen until ctx is canceled, then shuts
// it down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	listen := s.refresher.Config().Listen
	srv := &http.Server{
		Addr:              listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	appLog.Info("HTTP server stopped")
	return nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/moondays", s.handleMoondays)
	s.mux.HandleFunc("/api/config", s.handleConfig)
	s.mux.HandleFunc("/api/refresh", s.handleRefresh)
	s.mux.HandleFunc("/moondays.ics", s.handleCalendar)
	s.mux.HandleFunc("/preview", s.handlePreview)
	s.mux.HandleFunc("/{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/preview", http.StatusFound)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// moondaysResponse is the JSON response shape for /api/moondays.
type moondaysResponse struct {
	Moondays    []moondayDTO `json:"moondays"`
	Total       int          `json:"total"`
	UpToYear    int          `json:"up_to_year"`
	RangeEnd    time.Time    `json:"range_end"`
	TimeZone    string       `json:"timezone"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// moondayDTO is a JSON-friendly view of one preview row.
type moondayDTO struct {
	Label    string     `json:"label"`
	Phase    string     `json:"phase"`
	Shift    int        `json:"shift"`
	Title    string     `json:"title"`
	Date     string     `json:"date"`
	Start    time.Time  `json:"start"`
	Peak     time.Time  `json:"peak"`
	Reminder *time.Time `json:"reminder,omitempty"`
}

// handleMoondays returns the preview (first 50 moondays) as JSON.
//
// GET /api/moondays?up_to_year=2026&avoid_peak_time=true&practice_time=06:00
//
// Without query parameters the cached snapshot is served. Any generation
// parameter runs a one-off generation that does not touch the cache.
func (s *Server) handleMoondays(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	snap, ok := s.snapshotFor(w, r)
	if !ok {
		return
	}

	rows := snap.Preview()
	dtos := make([]moondayDTO, 0, len(rows))
	for i, row := range rows {
		ev := snap.Events[i]
		dto := moondayDTO{
			Label: row.Label,
			Phase: ev.Kind.String(),
			Shift: ev.Shift,
			Title: ev.Title,
			Date:  row.Display,
			Start: ev.Start,
			Peak:  ev.Peak,
		}
		if ev.Reminder != nil {
			at := ev.Reminder.TriggerBefore
			dto.Reminder = &at
		}
		dtos = append(dtos, dto)
	}

	writeJSON(w, http.StatusOK, moondaysResponse{
		Moondays:    dtos,
		Total:       len(snap.Events),
		UpToYear:    snap.Options.UpToYear,
		RangeEnd:    snap.Options.RangeEnd(),
		TimeZone:    snap.Options.Location.String(),
		GeneratedAt: snap.GeneratedAt,
	})
}

// configResponse is the JSON response shape for /api/config.
type configResponse struct {
	Generation      config.GenerationConfig `json:"generation"`
	Timezone        string                  `json:"timezone"`
	CalendarName    string                  `json:"calendar_name"`
	Refresh         string                  `json:"refresh"`
	PracticeTimes   []string                `json:"practice_times"`
	MinYear         int                     `json:"min_year"`
	MaxYear         int                     `json:"max_year"`
	ReminderChoices []int                   `json:"reminder_choices"`
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	cfg := s.refresher.Config()
	year := s.now().Year()
	if loc, err := cfg.Location(); err == nil {
		year = s.now().In(loc).Year()
	}
	writeJSON(w, http.StatusOK, configResponse{
		Generation:      cfg.Generation,
		Timezone:        cfg.Timezone,
		CalendarName:    cfg.CalendarName,
		Refresh:         cfg.RefreshCron,
		PracticeTimes:   config.PracticeTimes(),
		MinYear:         year,
		MaxYear:         year + cfg.MaxHorizonYears,
		ReminderChoices: []int{1, 2},
	})
}

// handleRefresh forces a regeneration of the cached calendar.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	snap, err := s.refresher.Refresh()
	if err != nil {
		writeGenerationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"events":       len(snap.Events),
		"generated_at": snap.GeneratedAt,
	})
}

// handleCalendar serves the calendar file for download or subscription.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	snap, ok := s.snapshotFor(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="moondays.ics"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(snap.ICS)))
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(snap.ICS)
}

var previewTemplate = template.Must(template.New("preview").Parse(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Name}} preview</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 4px 12px; text-align: left; }
tr:nth-child(even) { background: #f4f4f4; }
</style>
</head>
<body>
<div data-ready="true">
<h1>{{.Name}}</h1>
<p>Listing up to {{.Limit}} moondays of {{.Total}} through {{.UpToYear}} ({{.TimeZone}}).</p>
<table>
<thead><tr><th>Moon Phase</th><th>Date</th></tr></thead>
<tbody>
{{range .Rows}}<tr><td>{{.Label}}</td><td>{{.Display}}</td></tr>
{{end}}</tbody>
</table>
<p><a href="/moondays.ics">Download moonday events</a></p>
</div>
</body>
</html>
`))

// handlePreview renders the preview table as HTML. The root element carries
// data-ready="true" so headless capture can wait for it.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshotFor(w, r)
	if !ok {
		return
	}

	data := struct {
		Name     string
		Limit    int
		Total    int
		UpToYear int
		TimeZone string
		Rows     []moonday.PreviewRow
	}{
		Name:     snap.Config.CalendarName,
		Limit:    moonday.PreviewLimit,
		Total:    len(snap.Events),
		UpToYear: snap.Options.UpToYear,
		TimeZone: snap.Options.Location.String(),
		Rows:     snap.Preview(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := previewTemplate.Execute(w, data); err != nil {
		appLog.Error("preview render failed", err)
	}
}

// snapshotFor returns the cached snapshot, or a one-off snapshot when the
// request carries generation overrides. On failure it writes the error
// response and returns false.
func (s *Server) snapshotFor(w http.ResponseWriter, r *http.Request) (*refresh.Snapshot, bool) {
	q := r.URL.Query()
	if !hasOverrides(q) {
		snap, err := s.refresher.Snapshot()
		if err != nil {
			writeGenerationError(w, err)
			return nil, false
		}
		return snap, true
	}

	cfg := s.refresher.Config()
	if err := applyOverrides(cfg, q); err != nil {
		writeGenerationError(w, err)
		return nil, false
	}

	appLog.Debug("one-off generation", "query", r.URL.RawQuery)
	snap, err := refresh.Generate(s.refresher.Generator(), cfg, s.now())
	if err != nil {
		writeGenerationError(w, err)
		return nil, false
	}
	return snap, true
}

func writeGenerationError(w http.ResponseWriter, err error) {
	var cfgErr *moonday.ConfigurationError
	if errors.As(err, &cfgErr) {
		writeError(w, http.StatusBadRequest, cfgErr.Error())
		return
	}
	appLog.Error("generation failed", err)
	writeError(w, http.StatusInternalServerError, "failed to generate moondays")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
