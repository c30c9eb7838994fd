package types

import (
	"fmt"
	"time"
)

// RunResult representa el resultado completo de una pasada de verificación
type RunResult struct {
	Timestamp      time.Time `json:"timestamp"`
	ImagesChecked  int       `json:"images_checked"`
	Updates        []Update  `json:"updates"`
	UpToDate       []string  `json:"up_to_date"`
	Skipped        []string  `json:"skipped"`
	Suppressed     []string  `json:"suppressed"`
	Errors         []string  `json:"errors"`
	NotificationOK bool      `json:"notification_ok"`
}

// HasUpdates indica si hay actualizaciones aceptadas para notificar
func (r RunResult) HasUpdates() bool {
	return len(r.Updates) > 0
}

// HasErrors indica si hubo errores durante la pasada
func (r RunResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// Summary devuelve un resumen del resultado de la pasada
func (r RunResult) Summary() string {
	if r.HasUpdates() {
		return fmt.Sprintf("%d updates to notify, %d images up to date",
			len(r.Updates), len(r.UpToDate))
	}
	return fmt.Sprintf("All %d checked images are up to date or already notified", r.ImagesChecked)
}
