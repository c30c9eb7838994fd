package version

import (
	"fmt"
	"regexp"
	"strings"

	semver "github.com/Masterminds/semver/v3"

	"github.com/user/docker-version-fetcher/pkg/types"
)

// Regex helpers to allow padding numeric Docker tags like "18.1" or "19"
var (
	twoPartSemverRegex = regexp.MustCompile(`^v?\d+\.\d+$`)
	onePartSemverRegex = regexp.MustCompile(`^v?\d+$`)
)

// Kind classifies the magnitude of an update between two tags. It is used
// only to enrich notification text; the update decision itself relies on
// Compare. Tags that cannot be read as semantic versions yield UpdateKindUnknown.
func Kind(current, latest string) types.UpdateKind {
	currentSemver, err1 := parseFlexibleSemver(current)
	latestSemver, err2 := parseFlexibleSemver(latest)
	if err1 != nil || err2 != nil {
		return types.UpdateKindUnknown
	}

	if latestSemver.Compare(currentSemver) <= 0 {
		return types.UpdateKindUnknown
	}

	switch {
	case latestSemver.Major() > currentSemver.Major():
		return types.UpdateKindMajor
	case latestSemver.Minor() > currentSemver.Minor():
		return types.UpdateKindMinor
	}
	return types.UpdateKindPatch
}

// parseFlexibleSemver parses Docker tags that may omit patch or minor parts
// by padding them. Examples: "18.1" -> "18.1.0", "19" -> "19.0.0". The
// variant suffix is dropped before parsing ("1.2.3-alpine" -> "1.2.3").
func parseFlexibleSemver(tag string) (*semver.Version, error) {
	normalized := strings.TrimPrefix(tag, "v")
	if idx := strings.Index(normalized, "-"); idx >= 0 {
		normalized = normalized[:idx]
	}

	if sv, err := semver.NewVersion(normalized); err == nil {
		return sv, nil
	}

	if twoPartSemverRegex.MatchString(normalized) {
		return semver.NewVersion(normalized + ".0")
	}

	if onePartSemverRegex.MatchString(normalized) {
		return semver.NewVersion(normalized + ".0.0")
	}

	return nil, fmt.Errorf("tag is not a semantic version: %s", tag)
}
