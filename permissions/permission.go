package permissions

import (
	_ "embed"
	"encoding/json"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

//go:embed permissions.json
var permissionsData []byte

type Permission struct {
	Permissions []string `json:"permissions"`
	Path        string   `json:"path"`
	Method      string   `json:"method"`
	Skip        bool     `json:"skip"`
}

type route struct {
	method string
	path   string
}

// PermissionData is the route table. Lookups go through an index keyed by method and
// normalized path, built on first use; the first entry for a route wins.
type PermissionData struct {
	Endpoints []Permission `json:"endpoints"`
	Skip      bool         `json:"skip"`

	once  sync.Once
	index map[route]Permission
}

// FindPermissions looks up a chi route pattern. A trailing slash is ignored so "/v1/bookings/"
// matches "/v1/bookings". Unknown routes return the zero Permission.
func (r *PermissionData) FindPermissions(path, method string) Permission {
	r.once.Do(r.build)

	return r.index[routeOf(method, path)]
}

func (r *PermissionData) build() {
	r.index = make(map[route]Permission, len(r.Endpoints))

	for _, endpoint := range r.Endpoints {
		key := routeOf(endpoint.Method, endpoint.Path)
		if _, seen := r.index[key]; seen {
			log.Warn().Str("method", key.method).Str("path", key.path).Msg("duplicate permission entry ignored")

			continue
		}

		r.index[key] = endpoint
	}
}

func Get() *PermissionData {
	var data PermissionData

	if err := json.Unmarshal(permissionsData, &data); err != nil {
		log.Err(err).Msg("Failed to decode embedded permissions")

		return nil
	}

	data.once.Do(data.build)

	log.Info().Int("routes", len(data.index)).Msg("Loaded embedded permissions")

	return &data
}

func routeOf(method, path string) route {
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}

	return route{method: strings.ToUpper(method), path: path}
}
