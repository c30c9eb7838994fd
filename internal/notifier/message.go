package notifier

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/user/docker-version-fetcher/pkg/types"
	"github.com/user/docker-version-fetcher/pkg/version"
)

// ComposeUpdatesMessage construye el título y el cuerpo de la notificación
// para una lista de actualizaciones aceptadas, agrupadas por repositorio
func ComposeUpdatesMessage(updates []types.Update, now time.Time) (title, message string) {
	title = fmt.Sprintf("%d Docker image update(s) available", len(updates))

	var b strings.Builder
	fmt.Fprintf(&b, "**Docker image updates detected on %s**\n\n", now.Format("2006-01-02 15:04"))

	byRepository := make(map[string][]types.Update)
	for _, update := range updates {
		byRepository[update.Repository] = append(byRepository[update.Repository], update)
	}

	repositories := make([]string, 0, len(byRepository))
	for repository := range byRepository {
		repositories = append(repositories, repository)
	}
	sort.Strings(repositories)

	for _, repository := range repositories {
		group := byRepository[repository]
		fmt.Fprintf(&b, "📦 **%s**\n", repository)

		// La versión más reciente disponible entre las entradas del grupo
		latest := group[0].LatestTag
		for _, update := range group[1:] {
			if version.Compare(update.LatestTag, latest) > 0 {
				latest = update.LatestTag
			}
		}

		current := make([]string, 0, len(group))
		for _, update := range group {
			current = append(current, update.CurrentTag)
		}
		sort.Strings(current)

		if len(current) > 1 {
			fmt.Fprintf(&b, "  • Current versions: %s\n", strings.Join(current, ", "))
		} else {
			fmt.Fprintf(&b, "  • Current version: %s\n", current[0])
		}
		fmt.Fprintf(&b, "  • New version available: %s\n", latest)

		containers := make([]string, 0, len(group))
		for _, update := range group {
			if update.ContainerName != "" {
				containers = append(containers, update.ContainerName)
			}
		}
		if len(containers) == len(group) && len(containers) > 0 {
			sort.Strings(containers)
			fmt.Fprintf(&b, "  • Affected containers: %s\n", strings.Join(containers, ", "))
		}

		b.WriteString("\n")
	}

	b.WriteString("To update, run `docker pull [image]:[tag]` or update via Portainer.")

	return title, b.String()
}
