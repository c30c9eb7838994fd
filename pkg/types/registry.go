package types

import "time"

// PlatformLinuxAMD64 es la plataforma canónica preferida al seleccionar digests
const PlatformLinuxAMD64 = "linux/amd64"

// TagRecord representa un tag publicado en el registro con sus digests por plataforma.
// Es una instantánea inmutable del registro en el momento de la consulta.
type TagRecord struct {
	Name            string            `json:"name"`
	PlatformDigests map[string]string `json:"platform_digests,omitempty"`
	LastUpdated     time.Time         `json:"last_updated,omitzero"`
}

// ResolvedVersion representa la última versión resuelta para un repositorio
type ResolvedVersion struct {
	Repository  string    `json:"repository"`
	Tag         string    `json:"tag"`
	Digest      string    `json:"digest"`
	LastUpdated time.Time `json:"last_updated,omitzero"`
}
