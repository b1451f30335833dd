package docroute

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// Service is a finalized Router: a read-only Document and the handler
// that serves the documented paths. It implements http.Handler.
type Service struct {
	doc     Document
	mux     *http.ServeMux
	handler http.Handler
}

// ServiceOption configures the Service produced by Router.Finalize.
type ServiceOption func(*serviceConfig)

type serviceConfig struct {
	servers    []Server
	security   []string
	tagDescs   map[string]string
	specJSON   string
	specYAML   string
	docsPath   string
	docsOpts   []DocsOption
	middleware []Middleware
}

// WithServers sets the OpenAPI servers array.
func WithServers(servers ...Server) ServiceOption {
	return func(c *serviceConfig) {
		c.servers = servers
	}
}

// WithGlobalSecurity sets global security requirements by scheme name. Each
// scheme is an alternative requirement.
func WithGlobalSecurity(schemes ...string) ServiceOption {
	return func(c *serviceConfig) {
		c.security = append(c.security, schemes...)
	}
}

// WithTagDescriptions sets tag descriptions for the document.
func WithTagDescriptions(descs map[string]string) ServiceOption {
	return func(c *serviceConfig) {
		c.tagDescs = descs
	}
}

// WithSpecRoute serves the document as JSON with GET at pattern.
func WithSpecRoute(pattern string) ServiceOption {
	return func(c *serviceConfig) {
		c.specJSON = pattern
	}
}

// WithSpecYAMLRoute serves the document as YAML with GET at pattern.
func WithSpecYAMLRoute(pattern string) ServiceOption {
	return func(c *serviceConfig) {
		c.specYAML = pattern
	}
}

// WithMiddleware wraps the service handler. Middleware is applied in the
// order given, the first being outermost. The document is not affected.
func WithMiddleware(mw ...Middleware) ServiceOption {
	return func(c *serviceConfig) {
		c.middleware = append(c.middleware, mw...)
	}
}

func newServiceConfig(opts []ServiceOption) *serviceConfig {
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// tags returns the tag descriptions sorted by name.
func (c *serviceConfig) tags() []Tag {
	if len(c.tagDescs) == 0 {
		return nil
	}
	tags := make([]Tag, 0, len(c.tagDescs))
	for name, desc := range c.tagDescs {
		tags = append(tags, Tag{Name: name, Description: desc})
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags
}

func newService(doc Document, mux *http.ServeMux, cfg *serviceConfig) *Service {
	s := &Service{doc: doc, mux: mux}

	if cfg.specJSON != "" {
		mux.HandleFunc("GET "+cfg.specJSON, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			//nolint:errcheck,gosec // best-effort after WriteHeader
			json.NewEncoder(w).Encode(s.doc)
		})
	}
	if cfg.specYAML != "" {
		mux.HandleFunc("GET "+cfg.specYAML, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/yaml")
			//nolint:errcheck,gosec // best-effort after WriteHeader
			yaml.NewEncoder(w).Encode(s.doc)
		})
	}
	if cfg.docsPath != "" {
		s.serveDocs(cfg.docsPath, cfg.docsOpts, cfg.specJSON)
	}

	handler := http.Handler(mux)
	for i := len(cfg.middleware) - 1; i >= 0; i-- {
		handler = cfg.middleware[i](handler)
	}
	s.handler = handler
	return s
}

// ServeHTTP implements http.Handler.
func (s *Service) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	s.handler.ServeHTTP(w, req)
}

// Document returns the assembled OpenAPI document. It must not be modified.
func (s *Service) Document() Document {
	return s.doc
}

// WriteSpec writes the document as indented JSON to w.
func (s *Service) WriteSpec(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s.doc)
}

// WriteSpecYAML writes the document as YAML to w.
func (s *Service) WriteSpecYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(s.doc)
}

// ListenAndServe starts an HTTP server on the given address.
// It blocks until the context is cancelled, then shuts down gracefully.
func (s *Service) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
