package docker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"

	"github.com/user/docker-version-fetcher/pkg/types"
)

// Client wraps Docker daemon client functionality
type Client struct {
	client *client.Client
	logger *slog.Logger
}

// NewClient creates a new Docker daemon client
func NewClient(logger *slog.Logger) (*Client, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("creating docker client: %w", err)
	}

	return &Client{
		client: cli,
		logger: logger,
	}, nil
}

// Close closes the Docker client connection
func (d *Client) Close() error {
	return d.client.Close()
}

// Ping tests connection to Docker daemon
func (d *Client) Ping(ctx context.Context) error {
	if _, err := d.client.Ping(ctx); err != nil {
		return fmt.Errorf("pinging docker daemon: %w", err)
	}
	return nil
}

// ListRunning returns one image reference per running container. A daemon
// transport failure here is fatal for the whole run: without an inventory
// there is nothing to check.
func (d *Client) ListRunning(ctx context.Context) ([]types.LocalImageRef, error) {
	d.logger.Info("Listing running containers via Docker daemon")

	containers, err := d.client.ContainerList(ctx, container.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("listing containers: %w", err)
	}

	if len(containers) == 0 {
		d.logger.Warn("No running containers found")
		return []types.LocalImageRef{}, nil
	}

	var refs []types.LocalImageRef
	for _, cont := range containers {
		ref, err := d.extractImageRef(ctx, cont)
		if err != nil {
			d.logger.Error("Failed to extract image from container",
				"container_id", shortID(cont.ID),
				"container_name", containerName(cont),
				"error", err)
			continue
		}
		refs = append(refs, ref)
	}

	d.logger.Info("Extracted images from running containers", "count", len(refs))
	return refs, nil
}

// extractImageRef builds a LocalImageRef from a container summary
func (d *Client) extractImageRef(ctx context.Context, cont container.Summary) (types.LocalImageRef, error) {
	inspect, err := d.client.ContainerInspect(ctx, cont.ID)
	if err != nil {
		return types.LocalImageRef{}, fmt.Errorf("inspecting container %s: %w", shortID(cont.ID), err)
	}

	repository, tag, digest, err := ParseImageRef(inspect.Config.Image)
	if err != nil {
		return types.LocalImageRef{}, fmt.Errorf("parsing image string %s: %w", inspect.Config.Image, err)
	}

	// The configured reference rarely carries a digest; the image ID from
	// the inspect response identifies the local content instead.
	if digest == "" {
		digest = inspect.Image
	}

	ref := types.LocalImageRef{
		Repository:    repository,
		Tag:           tag,
		Digest:        digest,
		ContainerID:   shortID(cont.ID),
		ContainerName: containerName(cont),
	}

	d.logger.Debug("Extracted image from container",
		"container", ref.ContainerName, "image", ref.String())

	return ref, nil
}

// ParseImageRef splits a Docker image reference into repository, tag and
// optional digest. The repository keeps any registry prefix as-is; whether a
// registry client can serve it is decided by configuration, not here.
func ParseImageRef(imageStr string) (repository, tag, digest string, err error) {
	imageStr = strings.TrimSpace(imageStr)
	if imageStr == "" {
		return "", "", "", fmt.Errorf("empty image string")
	}

	// Handle digest (@sha256:...)
	if strings.Contains(imageStr, "@") {
		parts := strings.Split(imageStr, "@")
		if len(parts) != 2 {
			return "", "", "", fmt.Errorf("invalid image format with digest: %s", imageStr)
		}
		imageStr = parts[0]
		digest = parts[1]
	}

	// The tag separator is a colon after the last slash; earlier colons
	// belong to a registry host:port prefix.
	lastSlash := strings.LastIndex(imageStr, "/")
	if colon := strings.LastIndex(imageStr, ":"); colon > lastSlash {
		tag = imageStr[colon+1:]
		imageStr = imageStr[:colon]
	} else {
		tag = "latest"
	}

	if imageStr == "" || tag == "" {
		return "", "", "", fmt.Errorf("invalid image reference")
	}

	return imageStr, tag, digest, nil
}

// containerName returns the first container name without leading slash
func containerName(cont container.Summary) string {
	if len(cont.Names) > 0 {
		return strings.TrimPrefix(cont.Names[0], "/")
	}
	return shortID(cont.ID)
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
