package report

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/user/docker-version-fetcher/pkg/types"
)

func TestJSONFormatter(t *testing.T) {
	result := &types.RunResult{
		Timestamp:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		ImagesChecked: 2,
		Updates: []types.Update{
			{
				Repository: "library/nginx",
				CurrentTag: "1.20",
				LatestTag:  "1.21",
				Status:     types.StatusUpdateAvailable,
				Kind:       types.UpdateKindMinor,
			},
		},
		UpToDate: []string{"library/redis:7.2"},
	}

	formatter := &JSONFormatter{}
	output, err := formatter.Format(result)
	if err != nil {
		t.Fatalf("Format() error: %v", err)
	}

	// La salida debe ser JSON válido y reversible
	var decoded types.RunResult
	if err := json.Unmarshal([]byte(output), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if decoded.ImagesChecked != 2 || len(decoded.Updates) != 1 {
		t.Errorf("round-trip mismatch: %+v", decoded)
	}
	if decoded.Updates[0].LatestTag != "1.21" {
		t.Errorf("expected latest tag in output, got %+v", decoded.Updates[0])
	}
	if !strings.Contains(output, "update-available") {
		t.Errorf("expected status string in output:\n%s", output)
	}
}
