// Package permissions holds the role-based access table for every
// versioned endpoint. The table ships inside the binary, so route
// protection cannot drift from the deployed code.
package permissions

import (
	_ "embed"
	"encoding/json"
	"slices"

	"github.com/rs/zerolog/log"
)

//go:embed permissions.json
var permissionsData []byte

// Permission lists the roles allowed to call one route. Skip marks
// routes that take no bearer token at all, such as login and register.
type Permission struct {
	Permissions []string `json:"permissions"`
	Path        string   `json:"path"`
	Method      string   `json:"method"`
	Skip        bool     `json:"skip"`
}

type PermissionData struct {
	Endpoints []Permission `json:"endpoints"`
	Skip      bool         `json:"skip"`
}

// FindPermissions returns the entry matching the route pattern and
// method. An unknown route yields the zero Permission, which allows no
// role, so unlisted endpoints are denied rather than left open.
func (p *PermissionData) FindPermissions(path, method string) Permission {
	idx := slices.IndexFunc(p.Endpoints, func(entry Permission) bool {
		return entry.Path == path && entry.Method == method
	})

	if idx == -1 {
		return Permission{}
	}

	return p.Endpoints[idx]
}

func Get() *PermissionData {
	var permissions PermissionData

	if err := json.Unmarshal(permissionsData, &permissions); err != nil {
		log.Err(err).Msg("failed to decode embedded permissions")

		return nil
	}

	log.Info().Int("endpoints", len(permissions.Endpoints)).Msg("loaded endpoint permissions")

	return &permissions
}
