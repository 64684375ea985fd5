package server

import (
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/atomic77/esfilter/pkg/mapping"
	"github.com/atomic77/esfilter/pkg/store"
	"github.com/atomic77/esfilter/pkg/transform"
)

type Config struct {
	DbLocation string
	ListenAddr string
	Port       int
	// Debug logs every request body.
	Debug bool
}

type Server struct {
	store   *store.Store
	Router  http.Handler
	Cfg     Config
	log     *zap.Logger
	metrics *metrics

	mu sync.Mutex
	// Translators built from stored profiles, by collection. Dropped when
	// the profile changes.
	translators map[string]*transform.Translator
}

type AcknowledgedResponse struct {
	Acknowledged bool   `json:"acknowledged"`
	Collection   string `json:"collection,omitempty"`
}

// ProfileResponse wraps a stored profile together with the field mapping
// that is in effect once auto mapping has run.
type ProfileResponse struct {
	Profile          *mapping.Profile  `json:"profile"`
	EffectiveMapping map[string]string `json:"effectiveMapping"`
}

type MTranslateHeader struct {
	Index *string `json:"index"`
	// Can't find any documentation about this, but appears to be supported by ES
	// in use in the wild
	Indices []*string `json:"indices"`
}

type MTranslateResponse struct {
	Took int `json:"took"`
	// Each entry is a transform.Result or an ErrorResponse.
	Responses []interface{} `json:"responses"`
}
