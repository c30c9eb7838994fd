package checker

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/user/docker-version-fetcher/internal/notifier"
	"github.com/user/docker-version-fetcher/internal/registry"
	"github.com/user/docker-version-fetcher/internal/resolver"
	"github.com/user/docker-version-fetcher/internal/state"
	"github.com/user/docker-version-fetcher/pkg/types"
	"github.com/user/docker-version-fetcher/pkg/version"
)

// Service runs one full update-check pass: inventory, per-repository registry
// queries, latest-version resolution, classification and reminder-gated
// notification. Everything is sequential; the registry client enforces the
// pacing between outbound requests.
type Service struct {
	inventory types.InventorySource
	registry  types.RegistryClient
	resolver  *resolver.Resolver
	states    *state.Manager
	notify    *notifier.Service
	logger    *slog.Logger
}

// Options holds per-run behavior switches
type Options struct {
	// SelfImage excludes the project's own image from checks by substring
	// match against the repository name.
	SelfImage string
	// Priority is passed through to the notification sink.
	Priority int
	// Title is the notification title prefix; the composed title is used
	// when empty.
	Title string
	// DryRun reports what would be notified without sending or persisting.
	DryRun bool
}

// NewService creates a new checker service
func NewService(inventory types.InventorySource, registryClient types.RegistryClient,
	res *resolver.Resolver, states *state.Manager, notify *notifier.Service,
	logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		inventory: inventory,
		registry:  registryClient,
		resolver:  res,
		states:    states,
		notify:    notify,
		logger:    logger,
	}
}

// Run executes a single check pass. An inventory failure is fatal; every
// per-repository failure is logged, recorded in the result and skipped.
func (s *Service) Run(ctx context.Context, opts Options) (*types.RunResult, error) {
	now := time.Now()
	result := &types.RunResult{Timestamp: now}

	images, err := s.inventory.ListRunning(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing local images: %w", err)
	}

	eligible := s.filterEligible(images, opts.SelfImage, result)
	result.ImagesChecked = len(eligible)

	byRepository := groupByRepository(eligible)
	repositories := make([]string, 0, len(byRepository))
	for repository := range byRepository {
		repositories = append(repositories, repository)
	}
	sort.Strings(repositories)

	st := s.states.Load()

	var updates []types.Update
	for _, repository := range repositories {
		repoUpdates := s.checkRepository(ctx, repository, byRepository[repository], st, now, result)
		updates = append(updates, repoUpdates...)
	}
	result.Updates = updates

	if opts.DryRun {
		s.logger.Info("Dry run, skipping notification and state save",
			"updates", len(updates))
		return result, nil
	}

	if len(updates) > 0 && s.notify.HasClients() {
		title, message := notifier.ComposeUpdatesMessage(updates, now)
		if opts.Title != "" {
			title = opts.Title + ": " + title
		}
		if err := s.notify.Notify(ctx, title, message, opts.Priority); err != nil {
			// Delivery failure is not retried and does not roll back the
			// state mutation: renotification happens on the next reminder
			// window, not on the next run.
			s.logger.Error("Failed to send notifications", "error", err)
		} else {
			result.NotificationOK = true
			s.logger.Info("Notifications sent", "updates", len(updates))
		}
	} else if len(updates) == 0 {
		s.logger.Info("No new updates to notify")
	}

	if err := s.states.Save(st); err != nil {
		s.logger.Error("Failed to save state", "error", err)
		result.Errors = append(result.Errors, fmt.Sprintf("saving state: %v", err))
	}

	return result, nil
}

// filterEligible drops the project's own image and images pinned to floating
// tags; only candidate-pinned tags are evaluated for drift or updates.
func (s *Service) filterEligible(images []types.LocalImageRef, selfImage string, result *types.RunResult) []types.LocalImageRef {
	eligible := make([]types.LocalImageRef, 0, len(images))
	for _, image := range images {
		if selfImage != "" && strings.Contains(image.Repository, selfImage) {
			s.logger.Info("Skipping project's own image", "image", image.String())
			result.Skipped = append(result.Skipped, image.Key())
			continue
		}
		if !version.IsCandidateTag(image.Tag) {
			s.logger.Info("Skipping image with floating or non-version tag", "image", image.String())
			result.Skipped = append(result.Skipped, image.Key())
			continue
		}
		eligible = append(eligible, image)
	}
	return eligible
}

// checkRepository resolves the repository's latest version and classifies
// each locally observed image against it.
func (s *Service) checkRepository(ctx context.Context, repository string,
	locals []types.LocalImageRef, st *state.State, now time.Time,
	result *types.RunResult) []types.Update {

	s.logger.Info("Checking repository for updates", "repository", repository)

	exists, err := s.registry.RepositoryExists(ctx, repository)
	if err != nil {
		s.logger.Warn("Registry query failed, skipping repository",
			"repository", repository, "error", err)
		result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", repository, err))
		return nil
	}
	if !exists {
		s.logger.Warn("Repository not found in registry or private", "repository", repository)
		result.Errors = append(result.Errors, fmt.Sprintf("%s: repository not found", repository))
		return nil
	}

	records, err := s.registry.ListTags(ctx, repository)
	if err != nil {
		s.logger.Warn("Listing tags failed, skipping repository",
			"repository", repository, "error", err)
		result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", repository, err))
		return nil
	}

	latest := s.resolver.ResolveLatest(repository, records)
	if latest == nil {
		s.logger.Warn("Could not resolve a latest version", "repository", repository)
		result.Errors = append(result.Errors, fmt.Sprintf("%s: no resolvable latest version", repository))
		return nil
	}

	s.resolveDigestIfNeeded(ctx, latest)

	var updates []types.Update
	for _, local := range locals {
		status := s.resolver.Classify(local, *latest)
		if status == types.StatusUpToDate {
			s.logger.Debug("Image is up to date", "image", local.String())
			result.UpToDate = append(result.UpToDate, local.Key())
			continue
		}

		if !s.states.ShouldNotify(st, repository, local.Tag, latest.Digest, now) {
			result.Suppressed = append(result.Suppressed, local.Key())
			continue
		}

		update := types.Update{
			Repository:    repository,
			CurrentTag:    local.Tag,
			LatestTag:     latest.Tag,
			CurrentDigest: local.Digest,
			LatestDigest:  latest.Digest,
			ContainerName: local.ContainerName,
			Status:        status,
			DetectedAt:    now,
		}
		update.Kind = updateKind(status, local.Tag, latest.Tag)

		s.logger.Info("Update available",
			"image", local.String(), "latest", latest.Tag, "kind", update.Kind)

		updates = append(updates, update)
		s.states.UpdateImageState(st, repository, local.Tag, latest.Digest, latest.Tag, now)
	}

	return updates
}

// resolveDigestIfNeeded replaces a synthesized placeholder digest with real
// platform digests when the registry client supports on-demand resolution.
func (s *Service) resolveDigestIfNeeded(ctx context.Context, latest *types.ResolvedVersion) {
	if !resolver.IsSyntheticDigest(latest.Digest) {
		return
	}

	dr, ok := s.registry.(registry.DigestResolver)
	if !ok {
		return
	}

	digests, err := dr.ResolveDigest(ctx, latest.Repository, latest.Tag)
	if err != nil {
		s.logger.Warn("On-demand digest resolution failed, keeping placeholder",
			"repository", latest.Repository, "tag", latest.Tag, "error", err)
		return
	}

	record := types.TagRecord{Name: latest.Tag, PlatformDigests: digests}
	latest.Digest = s.resolver.PickDigest(latest.Repository, record)
}

// updateKind classifies the update magnitude for notification text
func updateKind(status types.UpdateStatus, currentTag, latestTag string) types.UpdateKind {
	if status == types.StatusDigestDrift {
		return types.UpdateKindDigest
	}
	return version.Kind(currentTag, latestTag)
}

// groupByRepository buckets local images by repository name
func groupByRepository(images []types.LocalImageRef) map[string][]types.LocalImageRef {
	grouped := make(map[string][]types.LocalImageRef)
	for _, image := range images {
		grouped[image.Repository] = append(grouped[image.Repository], image)
	}
	return grouped
}
