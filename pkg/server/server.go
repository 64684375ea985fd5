package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/alecthomas/repr"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/atomic77/esfilter/pkg/dsl"
	"github.com/atomic77/esfilter/pkg/mapping"
	"github.com/atomic77/esfilter/pkg/store"
	"github.com/atomic77/esfilter/pkg/transform"
)

// Requests carrying this header get their decoded DSL logged at debug level.
const dslDumpHeader = "X-Esfilter-Dsl-Dump"

func New(cfg Config, log *zap.Logger) *Server {
	return &Server{
		Cfg:         cfg,
		log:         log,
		metrics:     newMetrics(),
		translators: map[string]*transform.Translator{},
	}
}

func (s *Server) registerRoutes() {
	r := mux.NewRouter()
	r.HandleFunc("/{collection:[a-zA-Z0-9_\\-]+}/_translate", s.TranslateHandler).Methods("POST")
	r.HandleFunc("/{collection:[a-zA-Z0-9_\\-]+}/_mtranslate", s.MTranslateHandler).Methods("POST")
	r.HandleFunc("/_mtranslate", s.MTranslateHandler).Methods("POST")

	// Profiles
	r.HandleFunc("/_profile/{collection:[a-zA-Z0-9_\\-]+}", s.PutProfileHandler).Methods("PUT")
	r.HandleFunc("/_profile/{collection:[a-zA-Z0-9_\\-]+}", s.GetProfileHandler).Methods("GET")
	r.HandleFunc("/_profile/{collection:[a-zA-Z0-9_\\-]+}", s.DeleteProfileHandler).Methods("DELETE")
	r.HandleFunc("/_cat/profiles", s.CatalogProfilesHandler).Methods("GET")

	// Template-related
	r.HandleFunc("/_template/{collection:[a-zA-Z0-9_\\-]+}", s.CreateTemplateHandler).Methods("PUT")

	// Administrative functions
	r.HandleFunc("/", s.HeadHandler).Methods("HEAD")
	r.HandleFunc("/", s.StatusHandler).Methods("GET")
	r.Handle("/metrics", s.metrics.handler()).Methods("GET")

	r.PathPrefix("/").HandlerFunc(s.DefaultHandler)
	r.Use(s.metrics.middleware)
	if s.Cfg.Debug {
		r.Use(s.debugMiddleware)
	}

	loggedRouter := handlers.LoggingHandler(os.Stdout, r)
	s.Router = loggedRouter
}

// Init opens the profile store and sets up the routes.
func (s *Server) Init() error {
	st, err := store.Open(s.Cfg.DbLocation)
	if err != nil {
		return err
	}
	s.store = st
	s.registerRoutes()
	return nil
}

func (s *Server) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.Cfg.ListenAddr, s.Cfg.Port),
		Handler: s.Router,
	}
	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", srv.Addr))
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) debugMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		s.log.Debug("request",
			zap.String("uri", r.RequestURI),
			zap.ByteString("body", b),
		)
		r.Body = io.NopCloser(bytes.NewBuffer(b))
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	j, _ := json.Marshal(v)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(j)
}

// translator returns the Translator for a collection, building it from the
// stored profile on first use. The lock is held across the store read so a
// concurrent forget cannot be followed by caching the old profile.
func (s *Server) translator(ctx context.Context, collection string) (*transform.Translator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tr, ok := s.translators[collection]; ok {
		return tr, nil
	}

	p, err := s.store.Get(ctx, collection)
	if err != nil {
		return nil, err
	}
	tr, err := transform.FromProfile(p)
	if err != nil {
		return nil, err
	}
	s.translators[collection] = tr
	return tr, nil
}

func (s *Server) forget(collection string) {
	s.mu.Lock()
	delete(s.translators, collection)
	s.mu.Unlock()
}

func (s *Server) translate(ctx context.Context, collection string, body []byte, dump bool) (transform.Result, error) {
	tr, err := s.translator(ctx, collection)
	if err != nil {
		return transform.Result{}, err
	}
	req, err := dsl.Parse(body)
	if err != nil {
		return transform.Result{}, badRequest("parsing_exception", err)
	}
	if dump {
		s.log.Debug("decoded request", zap.String("collection", collection), zap.String("dsl", repr.String(req)))
	}
	res := tr.TranslateRequest(req)
	s.metrics.observe(collection, res)
	return res, nil
}

func (s *Server) TranslateHandler(w http.ResponseWriter, r *http.Request) {
	collection := mux.Vars(r)["collection"]

	b, err := io.ReadAll(r.Body)
	if err != nil {
		s.handleErrorResponse(w, err)
		return
	}
	res, err := s.translate(r.Context(), collection, b, r.Header.Get(dslDumpHeader) != "")
	if err != nil {
		s.handleErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Similar to _msearch: newline delimited pairs of a header naming the
// collection and a search body.
// https://www.elastic.co/guide/en/elasticsearch/reference/7.17/search-multi-search.html
func (s *Server) MTranslateHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	collection := mux.Vars(r)["collection"]
	dump := r.Header.Get(dslDumpHeader) != ""

	decoder := json.NewDecoder(r.Body)
	responses := make([]interface{}, 0)

	for {
		header := MTranslateHeader{}
		err := decoder.Decode(&header)
		if err == io.EOF {
			break
		}
		if err != nil {
			s.handleErrorResponse(w, badRequest("parsing_exception", fmt.Errorf("header %d: %w", len(responses), err)))
			return
		}

		var body json.RawMessage
		if err := decoder.Decode(&body); err != nil {
			s.handleErrorResponse(w, badRequest("parsing_exception", fmt.Errorf("body %d: %w", len(responses), err)))
			return
		}

		target := collection
		if header.Index != nil {
			target = *header.Index
		} else if len(header.Indices) > 0 && header.Indices[0] != nil {
			// Only one collection can be translated for; take the first.
			target = *header.Indices[0]
		}
		if target == "" {
			responses = append(responses, errorResponse(badRequest("action_request_validation_exception", errors.New("no collection given"))))
			continue
		}

		res, err := s.translate(r.Context(), target, body, dump)
		if err != nil {
			responses = append(responses, errorResponse(err))
			continue
		}
		responses = append(responses, res)
	}
	writeJSON(w, http.StatusOK, &MTranslateResponse{
		Took:      int(time.Since(start).Milliseconds()),
		Responses: responses,
	})
}

func (s *Server) putProfile(r *http.Request, p *mapping.Profile) error {
	if err := s.store.Put(r.Context(), p); err != nil {
		return err
	}
	s.forget(p.Collection)
	s.log.Info("stored profile", zap.String("collection", p.Collection))
	return nil
}

// PutProfileHandler accepts a profile as YAML or JSON.
func (s *Server) PutProfileHandler(w http.ResponseWriter, r *http.Request) {
	collection := mux.Vars(r)["collection"]

	b, err := io.ReadAll(r.Body)
	if err != nil {
		s.handleErrorResponse(w, err)
		return
	}
	p, err := mapping.ParseCollection(collection, b)
	if err != nil {
		s.handleErrorResponse(w, badRequest("profile_parsing_exception", err))
		return
	}
	// Catch a profile that cannot be turned into a translator before it is
	// stored.
	if _, err := transform.FromProfile(p); err != nil {
		s.handleErrorResponse(w, badRequest("profile_parsing_exception", err))
		return
	}
	if err := s.putProfile(r, p); err != nil {
		s.handleErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, &AcknowledgedResponse{Acknowledged: true, Collection: collection})
}

func (s *Server) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	collection := mux.Vars(r)["collection"]
	p, err := s.store.Get(r.Context(), collection)
	if err != nil {
		s.handleErrorResponse(w, err)
		return
	}
	tr, err := s.translator(r.Context(), collection)
	if err != nil {
		s.handleErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, &ProfileResponse{Profile: p, EffectiveMapping: tr.PropertyMapping()})
}

func (s *Server) DeleteProfileHandler(w http.ResponseWriter, r *http.Request) {
	collection := mux.Vars(r)["collection"]
	if err := s.store.Delete(r.Context(), collection); err != nil {
		s.handleErrorResponse(w, err)
		return
	}
	s.forget(collection)
	writeJSON(w, http.StatusOK, &AcknowledgedResponse{Acknowledged: true, Collection: collection})
}

func (s *Server) CatalogProfilesHandler(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.List(r.Context())
	if err != nil {
		s.handleErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
