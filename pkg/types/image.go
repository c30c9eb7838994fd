package types

import "fmt"

// LocalImageRef representa una imagen observada localmente con su repositorio, tag y digest
type LocalImageRef struct {
	Repository    string `json:"repository"`
	Tag           string `json:"tag"`
	Digest        string `json:"digest"`
	ContainerID   string `json:"container_id,omitempty"`
	ContainerName string `json:"container_name,omitempty"`
}

// String devuelve la representación repositorio:tag de la imagen
func (r LocalImageRef) String() string {
	return fmt.Sprintf("%s:%s", r.Repository, r.Tag)
}

// Key devuelve la clave usada en el estado persistido (repositorio:tag)
func (r LocalImageRef) Key() string {
	return fmt.Sprintf("%s:%s", r.Repository, r.Tag)
}

// IsValid verifica si la imagen tiene los campos requeridos
func (r LocalImageRef) IsValid() bool {
	return r.Repository != "" && r.Tag != ""
}
