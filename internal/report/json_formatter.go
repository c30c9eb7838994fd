package report

import (
	"encoding/json"

	"github.com/user/docker-version-fetcher/pkg/errors"
	"github.com/user/docker-version-fetcher/pkg/types"
)

// JSONFormatter serializa el resultado de una pasada en formato JSON, pensado
// para integraciones y scripting sobre la salida del comando check
type JSONFormatter struct{}

// Format genera la representación JSON del resultado
func (f *JSONFormatter) Format(result *types.RunResult) (string, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", errors.Wrap("report.Format", err)
	}
	return string(data), nil
}
