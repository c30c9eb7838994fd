package resolver

import (
	"log/slog"
	"sort"

	"github.com/user/docker-version-fetcher/pkg/types"
	"github.com/user/docker-version-fetcher/pkg/version"
)

// SyntheticDigestPrefix marks a digest that was synthesized because the
// registry returned no platform entries for the resolved tag. Downstream
// comparison treats such a digest as "always different".
const SyntheticDigestPrefix = "unresolved:"

// Resolver determines the best candidate "latest" version for a repository
// and classifies locally observed images against it.
type Resolver struct {
	logger *slog.Logger
}

// New creates a new resolver
func New(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{logger: logger}
}

// ResolveLatest picks the newest candidate tag from the repository's published
// tag records. It returns nil when the record list is empty or contains no
// usable candidate; the caller skips the repository in that case.
func (r *Resolver) ResolveLatest(repository string, records []types.TagRecord) *types.ResolvedVersion {
	if len(records) == 0 {
		return nil
	}

	kept := make([]types.TagRecord, 0, len(records))
	for _, record := range records {
		if !version.IsPlatformExcluded(record.Name) {
			kept = append(kept, record)
		}
	}

	// Platform exclusion must never leave a repository with no result at all.
	if len(kept) == 0 {
		r.logger.Warn("Platform exclusion removed every tag, using unfiltered set",
			"repository", repository, "tags", len(records))
		kept = records
	}

	var latestRecord *types.TagRecord
	candidates := make([]types.TagRecord, 0, len(kept))
	for i := range kept {
		if kept[i].Name == "latest" {
			latestRecord = &kept[i]
			continue
		}
		if version.IsCandidateTag(kept[i].Name) {
			candidates = append(candidates, kept[i])
		}
	}

	if len(candidates) == 0 {
		// Last resort only: the floating "latest" tag is never ranked against
		// pinned versions, but a repository publishing nothing else still
		// resolves to it rather than to nothing.
		if latestRecord != nil {
			r.logger.Warn("No version candidates, falling back to the latest pseudo-tag",
				"repository", repository)
			resolved := r.resolvedFromRecord(repository, *latestRecord)
			return &resolved
		}
		return nil
	}

	names := make([]string, len(candidates))
	byName := make(map[string]types.TagRecord, len(candidates))
	for i, candidate := range candidates {
		names[i] = candidate.Name
		byName[candidate.Name] = candidate
	}
	sorted := version.SortDescending(names)

	resolved := r.resolvedFromRecord(repository, byName[sorted[0]])
	return &resolved
}

// Classify compares a local image against the resolved latest version.
func (r *Resolver) Classify(local types.LocalImageRef, latest types.ResolvedVersion) types.UpdateStatus {
	cmp := version.Compare(local.Tag, latest.Tag)
	switch {
	case cmp < 0:
		return types.StatusUpdateAvailable
	case cmp == 0 && local.Digest != latest.Digest:
		return types.StatusDigestDrift
	}
	return types.StatusUpToDate
}

func (r *Resolver) resolvedFromRecord(repository string, record types.TagRecord) types.ResolvedVersion {
	return types.ResolvedVersion{
		Repository:  repository,
		Tag:         record.Name,
		Digest:      r.PickDigest(repository, record),
		LastUpdated: record.LastUpdated,
	}
}

// PickDigest selects the digest for a tag record: the canonical linux/amd64
// entry when present, otherwise the first available platform, otherwise a
// synthesized placeholder so the digest is never left unset.
func (r *Resolver) PickDigest(repository string, record types.TagRecord) string {
	if digest, ok := record.PlatformDigests[types.PlatformLinuxAMD64]; ok && digest != "" {
		return digest
	}

	platforms := make([]string, 0, len(record.PlatformDigests))
	for platform, digest := range record.PlatformDigests {
		if digest != "" {
			platforms = append(platforms, platform)
		}
	}
	if len(platforms) > 0 {
		sort.Strings(platforms)
		return record.PlatformDigests[platforms[0]]
	}

	r.logger.Warn("Tag record has no platform digests, synthesizing placeholder",
		"repository", repository, "tag", record.Name)
	return SyntheticDigestPrefix + record.Name
}

// IsSyntheticDigest reports whether a digest is a synthesized placeholder
// rather than a content digest returned by the registry.
func IsSyntheticDigest(digest string) bool {
	return len(digest) > len(SyntheticDigestPrefix) && digest[:len(SyntheticDigestPrefix)] == SyntheticDigestPrefix
}
