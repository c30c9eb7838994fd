package notifier

import (
	"strings"
	"testing"
	"time"

	"github.com/user/docker-version-fetcher/pkg/types"
)

func TestComposeUpdatesMessage(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	updates := []types.Update{
		{
			Repository:    "library/nginx",
			CurrentTag:    "1.20",
			LatestTag:     "1.21",
			ContainerName: "web",
			Status:        types.StatusUpdateAvailable,
		},
		{
			Repository:    "library/nginx",
			CurrentTag:    "1.19",
			LatestTag:     "1.22",
			ContainerName: "web-old",
			Status:        types.StatusUpdateAvailable,
		},
		{
			Repository:    "library/redis",
			CurrentTag:    "7.0",
			LatestTag:     "7.2",
			ContainerName: "cache",
			Status:        types.StatusUpdateAvailable,
		},
	}

	title, message := ComposeUpdatesMessage(updates, now)

	if !strings.Contains(title, "3") {
		t.Errorf("expected update count in title, got %q", title)
	}

	// Agrupado por repositorio, con la versión más reciente del grupo
	if !strings.Contains(message, "library/nginx") || !strings.Contains(message, "library/redis") {
		t.Errorf("expected both repositories in message:\n%s", message)
	}
	if !strings.Contains(message, "Current versions: 1.19, 1.20") {
		t.Errorf("expected grouped current versions in message:\n%s", message)
	}
	if !strings.Contains(message, "New version available: 1.22") {
		t.Errorf("expected newest version of the nginx group in message:\n%s", message)
	}
	if !strings.Contains(message, "Affected containers: web, web-old") {
		t.Errorf("expected container names in message:\n%s", message)
	}
	if !strings.Contains(message, "docker pull") {
		t.Errorf("expected pull hint in message:\n%s", message)
	}

	// Los repositorios aparecen en orden alfabético
	if strings.Index(message, "library/nginx") > strings.Index(message, "library/redis") {
		t.Errorf("expected repositories sorted alphabetically:\n%s", message)
	}
}

func TestComposeUpdatesMessageSingle(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	updates := []types.Update{
		{
			Repository: "library/postgres",
			CurrentTag: "15.2",
			LatestTag:  "16.1",
			Status:     types.StatusUpdateAvailable,
		},
	}

	title, message := ComposeUpdatesMessage(updates, now)

	if !strings.Contains(title, "1") {
		t.Errorf("expected single update in title, got %q", title)
	}
	if !strings.Contains(message, "Current version: 15.2") {
		t.Errorf("expected singular current version line:\n%s", message)
	}
	// Sin nombre de contenedor no se añade la línea de contenedores
	if strings.Contains(message, "Affected containers") {
		t.Errorf("did not expect container line without names:\n%s", message)
	}
}
