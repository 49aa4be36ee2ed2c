// Package web serves a localhost-only single-user dashboard; it has no auth
// or CSRF protection in this mode.
package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"goplot/chart"
	"goplot/importer"
	"goplot/internal/failure"
	"goplot/output"
	"goplot/render"
	"goplot/storage"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

//go:embed templates/*.html
var templateFS embed.FS

const maxUploadBytes = 32 << 20

// Recorder stores one history row per rendered chart.
type Recorder interface {
	InsertRender(record storage.RenderRecord) (int64, error)
}

type Options struct {
	Load     importer.Options
	Selector chart.Selector
	Render   render.Options
	HeadRows int
	// Recorder may be nil when history is disabled.
	Recorder Recorder
	Logger   *slog.Logger
}

type loadedTable struct {
	ID       string
	Name     string
	Table    *importer.Table
	LoadedAt time.Time
}

// Server keeps uploaded tables in memory. Tables are read-only once stored;
// only the map itself is locked.
type Server struct {
	opts   Options
	router *chi.Mux
	logger *slog.Logger

	mu     sync.RWMutex
	tables map[string]*loadedTable
}

func NewServer(opts Options) *Server {
	if opts.HeadRows <= 0 {
		opts.HeadRows = 10
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Server{
		opts:   opts,
		router: chi.NewRouter(),
		logger: logger,
		tables: make(map[string]*loadedTable),
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.requestLogger)

	s.router.Get("/", s.handleIndex)
	s.router.Post("/upload", s.handleUpload)
	s.router.Get("/table/{id}", s.handleTable)
	s.router.Get("/table/{id}/chart.png", s.handleChart)
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/tables", s.handleAPITables)
		r.Get("/table/{id}", s.handleAPITable)
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// AddTable registers an already loaded table and returns its session ID.
func (s *Server) AddTable(name string, table *importer.Table) string {
	id := uuid.NewString()
	s.mu.Lock()
	s.tables[id] = &loadedTable{ID: id, Name: name, Table: table, LoadedAt: time.Now()}
	s.mu.Unlock()
	return id
}

func (s *Server) lookup(id string) (*loadedTable, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.tables[id]
	return entry, ok
}

func (s *Server) list() []*loadedTable {
	s.mu.RLock()
	out := make([]*loadedTable, 0, len(s.tables))
	for _, entry := range s.tables {
		out = append(out, entry)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].LoadedAt.After(out[j].LoadedAt)
	})
	return out
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	view := indexPageView{Title: "goplot", Tables: buildTableRows(s.list())}
	if err := renderTemplate(w, "index.html", view); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, fmt.Sprintf("parse multipart form: %v", err), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file upload", http.StatusBadRequest)
		return
	}
	defer file.Close()

	tmp, err := os.CreateTemp("", tempUploadPattern(header.Filename))
	if err != nil {
		http.Error(w, fmt.Sprintf("create temp upload: %v", err), http.StatusInternalServerError)
		return
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, file); err != nil {
		_ = tmp.Close()
		http.Error(w, fmt.Sprintf("save upload: %v", err), http.StatusInternalServerError)
		return
	}
	if err := tmp.Close(); err != nil {
		http.Error(w, fmt.Sprintf("close upload temp file: %v", err), http.StatusInternalServerError)
		return
	}

	table, err := importer.Load(tmpPath, strings.TrimSpace(r.FormValue("format")), s.opts.Load)
	if err != nil {
		http.Error(w, err.Error(), errorStatus(err))
		return
	}
	name := filepath.Base(header.Filename)
	table.Source = name

	id := s.AddTable(name, table)
	requestLogger(r, s.logger).Info("table uploaded",
		"table_id", id,
		"file", name,
		"rows", table.NumRows(),
		"columns", table.NumColumns(),
		"delimiter", table.Delimiter.String(),
	)
	http.Redirect(w, r, "/table/"+id, http.StatusSeeOther)
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.lookup(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "table not found", http.StatusNotFound)
		return
	}

	summary, err := output.Describe(entry.Table, s.opts.HeadRows)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	view := buildTablePageView(entry, summary, chartRequestFromQuery(r))
	if err := renderTemplate(w, "table.html", view); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.lookup(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "table not found", http.StatusNotFound)
		return
	}

	req := chartRequestFromQuery(r)
	kind, err := chart.ParseKind(string(req.Kind))
	if err != nil {
		http.Error(w, err.Error(), errorStatus(err))
		return
	}
	req.Kind = kind

	plan, err := s.opts.Selector.Select(entry.Table.ColumnNames(), req)
	if err != nil {
		http.Error(w, err.Error(), errorStatus(err))
		return
	}
	plan = plan.WithDefaultTitle(entry.Name)

	var buf bytes.Buffer
	if err := render.NewPNG(s.opts.Render).Render(&buf, entry.Table, plan); err != nil {
		requestLogger(r, s.logger).Warn("chart render failed", "table_id", entry.ID, "kind", plan.Kind, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.record(r, entry, plan)
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) record(r *http.Request, entry *loadedTable, plan chart.Plan) {
	if s.opts.Recorder == nil {
		return
	}
	_, err := s.opts.Recorder.InsertRender(storage.RenderRecord{
		SourceFile: entry.Name,
		Kind:       string(plan.Kind),
		Title:      plan.Title,
		Columns:    plan.ColumnNames(),
		Rows:       entry.Table.NumRows(),
		Target:     "web",
	})
	if err != nil {
		requestLogger(r, s.logger).Warn("record render history", "error", err)
	}
}

func (s *Server) handleAPITables(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildTableRows(s.list()))
}

func (s *Server) handleAPITable(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.lookup(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "table not found"})
		return
	}

	summary, err := output.Describe(entry.Table, s.opts.HeadRows)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, buildAPITable(entry, summary))
}

// requestLogger logs one line per request with the chi request ID.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		requestLogger(r, s.logger).Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func requestLogger(r *http.Request, logger *slog.Logger) *slog.Logger {
	if reqID := middleware.GetReqID(r.Context()); reqID != "" {
		return logger.With("request_id", reqID)
	}
	return logger
}

func chartRequestFromQuery(r *http.Request) chart.Request {
	query := r.URL.Query()
	kind := strings.TrimSpace(query.Get("kind"))
	if kind == "" {
		kind = string(chart.Line)
	}
	return chart.Request{
		Kind:  chart.Kind(kind),
		X:     strings.TrimSpace(query.Get("x")),
		Y:     strings.TrimSpace(query.Get("y")),
		Title: strings.TrimSpace(query.Get("title")),
	}
}

func errorStatus(err error) int {
	switch failure.KindOf(err) {
	case failure.KindFileNotFound:
		return http.StatusNotFound
	case failure.KindUnreadableFormat:
		return http.StatusBadRequest
	case failure.KindInsufficientColumns, failure.KindInvalidSelection:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func renderTemplate(w http.ResponseWriter, pageTemplate string, data any) error {
	tmpl, err := template.New("base.html").Funcs(template.FuncMap{
		"fmtTime": func(value time.Time) string {
			return value.Format("2006-01-02 15:04:05")
		},
	}).ParseFS(templateFS, "templates/base.html", "templates/"+pageTemplate)
	if err != nil {
		return fmt.Errorf("parse template %s: %w", pageTemplate, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		return fmt.Errorf("render template %s: %w", pageTemplate, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err = buf.WriteTo(w)
	return err
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func tempUploadPattern(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" || strings.ContainsAny(ext, `*/\`) {
		return "goplot-upload-*"
	}
	return "goplot-upload-*" + ext
}
