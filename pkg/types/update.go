package types

import "time"

// UpdateStatus representa la clasificación de una imagen local frente a la última versión
type UpdateStatus string

const (
	StatusUpToDate        UpdateStatus = "up-to-date"
	StatusUpdateAvailable UpdateStatus = "update-available"
	StatusDigestDrift     UpdateStatus = "digest-drift"
)

// String devuelve la representación string del estado
func (s UpdateStatus) String() string {
	return string(s)
}

// UpdateKind representa la magnitud de una actualización disponible
type UpdateKind string

const (
	UpdateKindMajor   UpdateKind = "major"
	UpdateKindMinor   UpdateKind = "minor"
	UpdateKindPatch   UpdateKind = "patch"
	UpdateKindDigest  UpdateKind = "digest"
	UpdateKindUnknown UpdateKind = "unknown"
)

// Update representa una actualización detectada y aceptada para notificación
type Update struct {
	Repository    string       `json:"repository"`
	CurrentTag    string       `json:"current_tag"`
	LatestTag     string       `json:"latest_tag"`
	CurrentDigest string       `json:"current_digest"`
	LatestDigest  string       `json:"latest_digest"`
	ContainerName string       `json:"container_name,omitempty"`
	Status        UpdateStatus `json:"status"`
	Kind          UpdateKind   `json:"kind"`
	DetectedAt    time.Time    `json:"detected_at"`
}

// IsSignificant determina si la actualización es significativa (major o minor)
func (u Update) IsSignificant() bool {
	return u.Kind == UpdateKindMajor || u.Kind == UpdateKindMinor
}
