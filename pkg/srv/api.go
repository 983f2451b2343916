/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package srv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-openapi/loads"
	"github.com/go-openapi/runtime/middleware"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"jinr.ru/greenlab/go-cpap/pkg/config"
	"jinr.ru/greenlab/go-cpap/pkg/extract"
	"jinr.ru/greenlab/go-cpap/pkg/layers"
	"jinr.ru/greenlab/go-cpap/pkg/log"
	"jinr.ru/greenlab/go-cpap/pkg/packet"
	"jinr.ru/greenlab/go-cpap/pkg/schema"
	"jinr.ru/greenlab/go-cpap/pkg/sink"
	"jinr.ru/greenlab/go-cpap/pkg/store"
	"jinr.ru/greenlab/go-cpap/pkg/stream"
)

const (
	ApiPrefix       = "/api"
	SourceHeader    = "X-Source-Name"
	DefaultSource   = "upload"
	MaxUploadSize   = 64 << 20
	ShutdownTimeout = 5 * time.Second
)

type ApiServer struct {
	context.Context
	*config.Config
	*mux.Router
	defaultSet *schema.Set
	delimiter  []byte
	state      *store.State
	swagger    *loads.Document
}

// NewApiServer prepares the router. state may be nil, the session endpoints
// then answer 503.
func NewApiServer(ctx context.Context, cfg *config.Config, state *store.State) (*ApiServer, error) {
	log.Info("Initializing API server with address: %s port: %d", cfg.Api.Address, cfg.Api.Port)

	set, err := schema.Resolve(cfg.Extract.SchemaSet, cfg.Extract.SchemaFile)
	if err != nil {
		return nil, err
	}
	delimiter, err := packet.ParseDelimiter(cfg.Extract.Delimiter)
	if err != nil {
		return nil, err
	}
	swagger, err := LoadSwagger()
	if err != nil {
		return nil, err
	}

	s := &ApiServer{
		Context:    ctx,
		Config:     cfg,
		defaultSet: set,
		delimiter:  delimiter,
		state:      state,
		swagger:    swagger,
	}
	s.configureRouter()
	return s, nil
}

// Run serves until the context is canceled.
func (s *ApiServer) Run() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Api.Address, s.Config.Api.Port)
	log.Debug("Starting API server: %s", addr)

	accessLog := log.Writer()
	defer accessLog.Close()
	httpServer := &http.Server{
		Handler: s.Handler(accessLog),
		Addr:    addr,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-s.Context.Done():
		log.Info("Shutting down API server")
		ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(ctx)
	}
}

type recoveryLogger struct{}

func (recoveryLogger) Println(v ...interface{}) {
	log.Error("%s", fmt.Sprint(v...))
}

// Handler wraps the router with access logging and panic recovery.
func (s *ApiServer) Handler(accessLog io.Writer) http.Handler {
	recovery := handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{}))
	return recovery(handlers.LoggingHandler(accessLog, s.Router))
}

func (s *ApiServer) configureRouter() {
	s.Router = mux.NewRouter()
	subRouter := s.Router.PathPrefix(ApiPrefix).Subrouter()
	subRouter.HandleFunc("/extract", s.handleExtract()).Methods("POST")
	subRouter.HandleFunc("/schemas", s.handleListSchemas()).Methods("GET")
	subRouter.HandleFunc("/schemas/{name}", s.handleGetSchema()).Methods("GET")
	subRouter.HandleFunc("/sessions", s.handleListSessions()).Methods("GET")
	subRouter.HandleFunc("/sessions/{id:[0-9]+}", s.handleFindSessions()).Methods("GET")
	subRouter.HandleFunc("/swagger.json", s.handleSwagger()).Methods("GET")

	docs := middleware.Redoc(middleware.RedocOpts{
		BasePath: ApiPrefix,
		Path:     "docs",
		SpecURL:  ApiPrefix + "/swagger.json",
		Title:    s.swagger.Spec().Info.Title,
	}, http.NotFoundHandler())
	subRouter.Handle("/docs", docs).Methods("GET")
}

// Sets returns the built-in schema sets followed by the configured one when
// it comes from a file.
func (s *ApiServer) Sets() []*schema.Set {
	var sets []*schema.Set
	custom := true
	for _, name := range schema.Names() {
		set, err := schema.Lookup(name)
		if err != nil {
			continue
		}
		if name == s.defaultSet.Name {
			set = s.defaultSet
			custom = false
		}
		sets = append(sets, set)
	}
	if custom {
		sets = append(sets, s.defaultSet)
	}
	return sets
}

func (s *ApiServer) lookupSet(name string) (*schema.Set, error) {
	if name == "" || name == s.defaultSet.Name {
		return s.defaultSet, nil
	}
	return schema.Lookup(name)
}

func boolParam(r *http.Request, name string, def bool) (bool, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return def, nil
	}
	return strconv.ParseBool(value)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Error while encoding response: %s", err)
	}
}

// extractStatus maps an extraction error to the response code.
func extractStatus(err error) int {
	var noPackets extract.ErrNoPackets
	var truncated layers.ErrTruncatedPacket
	switch {
	case errors.As(err, &noPackets), errors.As(err, &truncated):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *ApiServer) handleExtract() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		set, err := s.lookupSet(r.URL.Query().Get("schema"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		decodeBody, err := boolParam(r, "decodeBody", s.Config.Extract.DecodeBody)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		index, err := boolParam(r, "index", false)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxUploadSize))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		source := r.Header.Get(SourceHeader)
		if source == "" {
			source = DefaultSource
		}
		pipeline, err := extract.NewPipeline(extract.Options{
			Delimiter:  s.delimiter,
			Set:        set,
			DecodeBody: decodeBody,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		e, err := pipeline.Extract(source, stream.FromBytes(data))
		if err != nil {
			log.Warning("Error while extracting %s: %s", source, err)
			http.Error(w, err.Error(), extractStatus(err))
			return
		}
		if index && s.state != nil {
			if err := s.state.PutSession(store.NewSession(e, "")); err != nil {
				log.Warning("Error while indexing %s: %s", source, err)
			}
		}
		writeJSON(w, sink.NewDocument(e))
	}
}

func (s *ApiServer) handleListSchemas() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, s.Sets())
	}
}

func (s *ApiServer) handleGetSchema() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		for _, set := range s.Sets() {
			if set.Name == vars["name"] {
				writeJSON(w, set)
				return
			}
		}
		http.Error(w, schema.ErrSetNotFound{Name: vars["name"]}.Error(), http.StatusNotFound)
	}
}

func (s *ApiServer) handleListSessions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.state == nil {
			http.Error(w, ErrIndexDisabled{}.Error(), http.StatusServiceUnavailable)
			return
		}
		sessions, err := s.state.ListSessions()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if sessions == nil {
			sessions = []*store.Session{}
		}
		writeJSON(w, sessions)
	}
}

func (s *ApiServer) handleFindSessions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.state == nil {
			http.Error(w, ErrIndexDisabled{}.Error(), http.StatusServiceUnavailable)
			return
		}
		id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		sessions, err := s.state.FindSessions(id)
		if err != nil {
			var notFound store.ErrSessionNotFound
			if errors.As(err, &notFound) {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, sessions)
	}
}

func (s *ApiServer) handleSwagger() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(s.swagger.Raw())
	}
}
