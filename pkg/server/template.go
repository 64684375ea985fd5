package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/atomic77/esfilter/pkg/mapping"
	"github.com/atomic77/esfilter/pkg/store"
)

// CreateTemplateRequest covers both legacy (_template) and composable
// (_index_template) bodies; only the mappings are kept.
// Jaeger example template:
// https://github.com/jaegertracing/jaeger/blob/458c1ce7ef7e0a3d374711187d96514600689754/plugin/storage/es/mappings/jaeger-span.json
type CreateTemplateRequest struct {
	IndexPatterns interface{}            `json:"index_patterns"`
	Mappings      *mapping.ElasticSchema `json:"mappings"`
	Template      *struct {
		Mappings *mapping.ElasticSchema `json:"mappings"`
	} `json:"template"`
}

func (r *CreateTemplateRequest) schema() *mapping.ElasticSchema {
	if r.Mappings != nil {
		return r.Mappings
	}
	if r.Template != nil {
		return r.Template.Mappings
	}
	return nil
}

// CreateTemplateHandler stores the mappings of an index template as the
// Elasticsearch schema of the collection's profile, creating the profile if
// there is none yet.
func (s *Server) CreateTemplateHandler(w http.ResponseWriter, r *http.Request) {
	collection := mux.Vars(r)["collection"]

	b, err := io.ReadAll(r.Body)
	if err != nil {
		s.handleErrorResponse(w, err)
		return
	}
	req := CreateTemplateRequest{}
	if err := json.Unmarshal(b, &req); err != nil {
		s.handleErrorResponse(w, badRequest("parsing_exception", err))
		return
	}
	schema := req.schema()
	if schema == nil || len(schema.Properties) == 0 {
		s.handleErrorResponse(w, badRequest("mapper_parsing_exception", fmt.Errorf("template for %s has no mapping properties", collection)))
		return
	}

	p, err := s.store.Get(r.Context(), collection)
	if errors.Is(err, store.ErrNotFound) {
		p, err = mapping.ParseCollection(collection, []byte("{}"))
	}
	if err != nil {
		s.handleErrorResponse(w, err)
		return
	}
	p.ElasticSchema = schema
	if err := s.putProfile(r, p); err != nil {
		s.handleErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, &AcknowledgedResponse{Acknowledged: true, Collection: collection})
}
