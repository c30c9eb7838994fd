package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/user/docker-version-fetcher/pkg/errors"
	"github.com/user/docker-version-fetcher/pkg/types"
)

// HubClient implementa RegistryClient para la API pública de Docker Hub
type HubClient struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	baseURL     string
}

// NewHubClient crea un nuevo cliente para Docker Hub. requestDelay es el
// intervalo mínimo entre peticiones salientes consecutivas.
func NewHubClient(timeout, requestDelay time.Duration) *HubClient {
	if requestDelay <= 0 {
		requestDelay = time.Second
	}
	return &HubClient{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		// La espera es bloqueante: cada petición aguarda el resto del
		// intervalo antes de salir, respetando los límites de la API
		rateLimiter: rate.NewLimiter(rate.Every(requestDelay), 1),
		baseURL:     "https://hub.docker.com/v2",
	}
}

// Name devuelve el nombre del registro
func (h *HubClient) Name() string {
	return "docker.io"
}

// RepositoryExists verifica si un repositorio existe en Docker Hub
func (h *HubClient) RepositoryExists(ctx context.Context, repository string) (bool, error) {
	if err := h.rateLimiter.Wait(ctx); err != nil {
		return false, errors.Wrap("hub.RepositoryExists", err)
	}

	url := fmt.Sprintf("%s/repositories/%s", h.baseURL, h.normalizeRepository(repository))

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return false, errors.Wrapf("hub.RepositoryExists", err, "creating request for %s", repository)
	}
	req.Header.Set("User-Agent", "docker-version-fetcher/1.0")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return false, errors.Wrapf("hub.RepositoryExists", errors.ErrRegistryUnavailable, "%v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	}
	return false, errors.Newf("hub.RepositoryExists", "unexpected status %d for %s", resp.StatusCode, repository)
}

// ListTags obtiene los tags publicados de un repositorio con sus digests por
// plataforma y la fecha de última actualización
func (h *HubClient) ListTags(ctx context.Context, repository string) ([]types.TagRecord, error) {
	if err := h.rateLimiter.Wait(ctx); err != nil {
		return nil, errors.Wrap("hub.ListTags", err)
	}

	normalized := h.normalizeRepository(repository)
	url := fmt.Sprintf("%s/repositories/%s/tags?page_size=100", h.baseURL, normalized)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, errors.Wrapf("hub.ListTags", err, "creating request for %s", repository)
	}
	req.Header.Set("User-Agent", "docker-version-fetcher/1.0")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf("hub.ListTags", errors.ErrRegistryUnavailable, "%v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errors.Wrapf("hub.ListTags", errors.ErrRepositoryNotFound, "%s", normalized)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf("hub.ListTags", "unexpected status %d for %s", resp.StatusCode, normalized)
	}

	var response hubTagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, errors.Wrapf("hub.ListTags", err, "decoding response for %s", normalized)
	}

	records := make([]types.TagRecord, 0, len(response.Results))
	for _, result := range response.Results {
		record := types.TagRecord{
			Name:        result.Name,
			LastUpdated: parseHubTime(result.LastUpdated),
		}
		if len(result.Images) > 0 {
			record.PlatformDigests = make(map[string]string, len(result.Images))
			for _, img := range result.Images {
				if img.Digest == "" {
					continue
				}
				record.PlatformDigests[platformKey(img.OS, img.Architecture)] = img.Digest
			}
		}
		records = append(records, record)
	}

	return records, nil
}

// normalizeRepository normaliza el nombre del repositorio para Docker Hub
func (h *HubClient) normalizeRepository(repository string) string {
	repository = strings.TrimPrefix(repository, "docker.io/")

	// Las imágenes oficiales viven bajo el namespace library/
	if !strings.Contains(repository, "/") {
		return "library/" + repository
	}

	return repository
}

// platformKey construye el identificador de plataforma os/arquitectura
func platformKey(os, arch string) string {
	if os == "" {
		os = "linux"
	}
	if arch == "" {
		arch = "unknown"
	}
	return os + "/" + arch
}

// parseHubTime parsea el formato de tiempo de Docker Hub
func parseHubTime(timeStr string) time.Time {
	if timeStr == "" {
		return time.Time{}
	}

	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05Z",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, timeStr); err == nil {
			return t
		}
	}

	return time.Time{}
}

// hubTagsResponse representa la respuesta de la API de tags de Docker Hub
type hubTagsResponse struct {
	Count    int          `json:"count"`
	Next     *string      `json:"next"`
	Previous *string      `json:"previous"`
	Results  []hubTagInfo `json:"results"`
}

// hubTagInfo representa la información de un tag en Docker Hub
type hubTagInfo struct {
	Name        string `json:"name"`
	LastUpdated string `json:"last_updated"`
	LastPushed  string `json:"last_pushed"`
	Images      []struct {
		Architecture string `json:"architecture"`
		OS           string `json:"os"`
		Digest       string `json:"digest"`
		Size         int64  `json:"size"`
	} `json:"images"`
}
