// Command sample demonstrates github.com/bjaus/docroute with a small notes
// API assembled from nested and merged routers.
//
// Run:
//
//	go run ./cmd/sample
//
// Generate the OpenAPI document:
//
//	go run ./cmd/sample -spec                  # JSON to stdout
//	go run ./cmd/sample -spec -yaml            # YAML to stdout
//	go run ./cmd/sample -spec -o openapi.json  # write to file
//
// Configuration comes from the environment (or a .env file): DOCROUTE_ADDR,
// DOCROUTE_TITLE, DOCROUTE_VERSION, DOCROUTE_LOG_LEVEL, DOCROUTE_RATE and
// DOCROUTE_BURST.
//
// Then explore:
//
//	GET    http://localhost:8080/openapi.json       # OpenAPI document
//	GET    http://localhost:8080/docs               # docs UI
//	GET    http://localhost:8080/v1/health          # health check
//	GET    http://localhost:8080/v1/notes           # list notes
//	POST   http://localhost:8080/v1/notes           # create note
//	GET    http://localhost:8080/v1/notes/{id}      # get note
//	DELETE http://localhost:8080/v1/notes/{id}      # delete note
package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/bjaus/docroute"
)

func main() {
	specFlag := flag.Bool("spec", false, "Print the OpenAPI document and exit")
	yamlFlag := flag.Bool("yaml", false, "Print the document as YAML (requires -spec)")
	outFlag := flag.String("o", "", "Output file for the document (requires -spec)")
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		slog.Error("configuration failed", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.level()}))
	slog.SetDefault(logger)

	svc := newService(cfg, logger)

	if err := svc.Document().Validate(); err != nil {
		logger.Error("document has unresolved references", "err", err)
		os.Exit(1)
	}

	if *specFlag {
		if err := writeSpec(svc, *outFlag, *yamlFlag); err != nil {
			logger.Error("spec generation failed", "err", err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("starting server", "addr", cfg.Addr, "paths", len(svc.Document().Paths))

	if err := svc.ListenAndServe(ctx, cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "err", err)
	}

	logger.Info("server stopped")
}

func newService(cfg config, logger *slog.Logger) *docroute.Service {
	notes := docroute.New(docroute.WithLogger(logger)).
		Route("/notes", docroute.
			Get(docroute.Handle(handleListNotes,
				docroute.WithSummary("List notes"),
				docroute.WithTags("notes"),
			)).
			Post(docroute.Handle(handleCreateNote,
				docroute.WithStatus(http.StatusCreated),
				docroute.WithSummary("Create note"),
				docroute.WithTags("notes"),
				docroute.WithSecurity("bearer"),
				docroute.WithErrors(http.StatusBadRequest),
			))).
		Route("/notes/{id}", docroute.
			Get(docroute.Handle(handleGetNote,
				docroute.WithSummary("Get note by ID"),
				docroute.WithTags("notes"),
				docroute.WithErrors(http.StatusNotFound),
			)).
			Delete(docroute.Handle(handleDeleteNote,
				docroute.WithSummary("Delete note"),
				docroute.WithTags("notes"),
				docroute.WithSecurity("bearer"),
				docroute.WithErrors(http.StatusNotFound),
			)))

	ops := docroute.New(docroute.WithLogger(logger)).
		Route("/health", docroute.Get(docroute.Handle(handleHealth,
			docroute.WithSummary("Health check"),
			docroute.WithTags("ops"),
		))).
		Route("/legacy", docroute.Any(docroute.Raw(http.HandlerFunc(handleLegacy),
			docroute.WithSummary("Legacy endpoint"),
			docroute.WithDeprecated(),
			docroute.WithTags("ops"),
			docroute.WithResponse(http.StatusGone, "Gone"),
		)))

	v1 := notes.Merge(ops).Fallback(docroute.Handle(handleNotFound,
		docroute.WithStatus(http.StatusNotFound),
	))

	return docroute.New(
		docroute.WithLogger(logger),
		docroute.WithSecurityScheme("bearer", docroute.SecurityScheme{
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "opaque",
		}),
	).
		Nest("/v1", v1).
		Finalize(docroute.Info{Title: cfg.Title, Version: cfg.Version},
			docroute.WithServers(docroute.Server{URL: "http://localhost" + cfg.Addr}),
			docroute.WithTagDescriptions(map[string]string{
				"notes": "Note management",
				"ops":   "Operational endpoints",
			}),
			docroute.WithSpecRoute("/openapi.json"),
			docroute.WithSpecYAMLRoute("/openapi.yaml"),
			docroute.WithDocsRoute("/docs"),
			docroute.WithMiddleware(
				docroute.Recovery(logger),
				docroute.Logger(logger),
				docroute.RateLimit(docroute.RateLimitConfig{Rate: cfg.Rate, Burst: cfg.Burst}),
			),
		)
}

func writeSpec(svc *docroute.Service, outFile string, asYAML bool) error {
	var w io.Writer = os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile) //nolint:gosec // user-provided CLI flag
		if err != nil {
			return err
		}
		defer func() {
			if err := f.Close(); err != nil {
				slog.Error("failed to close output file", "err", err)
			}
		}()
		w = f
	}
	if asYAML {
		return svc.WriteSpecYAML(w)
	}
	return svc.WriteSpec(w)
}

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// Note is a stored note.
type Note struct {
	ID        string    `json:"id" required:"true"`
	Text      string    `json:"text" required:"true" doc:"note body"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ListNotesReq filters the note list.
type ListNotesReq struct {
	Tag   string `query:"tag" doc:"only notes with this tag"`
	Limit int    `query:"limit" default:"50"`
}

// NoteList is a page of notes.
type NoteList struct {
	Notes []Note `json:"notes"`
	Total int    `json:"total"`
}

// CreateNoteReq is the body of a create request.
type CreateNoteReq struct {
	Body struct {
		Text string   `json:"text" required:"true"`
		Tags []string `json:"tags,omitempty"`
	}
}

// NoteIDReq addresses a single note.
type NoteIDReq struct {
	ID string `path:"id"`
}

// Health is the health check response.
type Health struct {
	Status string    `json:"status" enum:"ok,degraded"`
	Time   time.Time `json:"time"`
}

// ---------------------------------------------------------------------------
// Handlers
// ---------------------------------------------------------------------------

func handleHealth(_ context.Context, _ *docroute.Void) (*Health, error) {
	return &Health{Status: "ok", Time: time.Now().UTC()}, nil
}

func handleListNotes(_ context.Context, req *ListNotesReq) (*NoteList, error) {
	notes := store.list(req.Tag)
	total := len(notes)
	if req.Limit > 0 && len(notes) > req.Limit {
		notes = notes[:req.Limit]
	}
	return &NoteList{Notes: notes, Total: total}, nil
}

func handleCreateNote(_ context.Context, req *CreateNoteReq) (*Note, error) {
	if req.Body.Text == "" {
		return nil, docroute.Error(http.StatusBadRequest, "text is required")
	}
	n := store.create(req.Body.Text, req.Body.Tags)
	return &n, nil
}

func handleGetNote(_ context.Context, req *NoteIDReq) (*Note, error) {
	n, ok := store.get(req.ID)
	if !ok {
		return nil, docroute.Errorf(http.StatusNotFound, "note %s not found", req.ID)
	}
	return &n, nil
}

func handleDeleteNote(_ context.Context, req *NoteIDReq) (*docroute.Void, error) {
	if !store.delete(req.ID) {
		return nil, docroute.Errorf(http.StatusNotFound, "note %s not found", req.ID)
	}
	return nil, nil
}

func handleLegacy(w http.ResponseWriter, _ *http.Request) {
	http.Error(w, "this endpoint has been removed; use /v1/notes", http.StatusGone)
}

func handleNotFound(_ context.Context, _ *docroute.Void) (*docroute.ProblemDetail, error) {
	return &docroute.ProblemDetail{
		Type:   "about:blank",
		Title:  http.StatusText(http.StatusNotFound),
		Status: http.StatusNotFound,
		Detail: "no such endpoint under /v1",
	}, nil
}

// ---------------------------------------------------------------------------
// In-memory store
// ---------------------------------------------------------------------------

var store = &noteStore{
	notes: map[string]Note{
		"1": {ID: "1", Text: "Buy milk", Tags: []string{"errands"}, CreatedAt: time.Now().UTC()},
	},
	nextID: 2,
}

type noteStore struct {
	mu     sync.RWMutex
	notes  map[string]Note
	nextID int
}

func (s *noteStore) list(tag string) []Note {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Note, 0, len(s.notes))
	for _, n := range s.notes {
		if tag != "" && !contains(n.Tags, tag) {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *noteStore) get(id string) (Note, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.notes[id]
	return n, ok
}

func (s *noteStore) create(text string, tags []string) Note {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := Note{
		ID:        strconv.Itoa(s.nextID),
		Text:      text,
		Tags:      tags,
		CreatedAt: time.Now().UTC(),
	}
	s.nextID++
	s.notes[n.ID] = n
	return n
}

func (s *noteStore) delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notes[id]; !ok {
		return false
	}
	delete(s.notes, id)
	return true
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
