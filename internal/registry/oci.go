package registry

import (
	"context"
	"net/http"
	"time"

	"github.com/google/go-containerregistry/pkg/crane"
	"github.com/google/go-containerregistry/pkg/name"
	"github.com/google/go-containerregistry/pkg/v1/remote"
	"github.com/google/go-containerregistry/pkg/v1/remote/transport"
	"golang.org/x/time/rate"

	"github.com/user/docker-version-fetcher/pkg/errors"
	"github.com/user/docker-version-fetcher/pkg/types"
)

// DigestResolver es una capacidad opcional de un RegistryClient: resolver los
// digests por plataforma de un tag concreto bajo demanda. La usan los clientes
// cuya operación de listado no devuelve digests.
type DigestResolver interface {
	ResolveDigest(ctx context.Context, repository, tag string) (map[string]string, error)
}

// OCIClient implementa RegistryClient contra cualquier registro compatible
// con la Distribution API (ghcr.io, quay.io, registros privados). El listado
// de tags no incluye digests; estos se resuelven bajo demanda vía
// ResolveDigest para el tag ya elegido, evitando una petición por tag.
type OCIClient struct {
	timeout     time.Duration
	rateLimiter *rate.Limiter
}

// NewOCIClient crea un nuevo cliente genérico de registros OCI
func NewOCIClient(timeout, requestDelay time.Duration) *OCIClient {
	if requestDelay <= 0 {
		requestDelay = time.Second
	}
	return &OCIClient{
		timeout:     timeout,
		rateLimiter: rate.NewLimiter(rate.Every(requestDelay), 1),
	}
}

// Name devuelve el nombre del registro
func (c *OCIClient) Name() string {
	return "oci"
}

// RepositoryExists verifica si un repositorio existe en el registro
func (c *OCIClient) RepositoryExists(ctx context.Context, repository string) (bool, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return false, errors.Wrap("oci.RepositoryExists", err)
	}

	if _, err := name.NewRepository(repository); err != nil {
		return false, errors.Wrapf("oci.RepositoryExists", errors.ErrInvalidImage, "%s: %v", repository, err)
	}

	opCtx, cancel := c.boundedContext(ctx)
	defer cancel()

	if _, err := crane.ListTags(repository, crane.WithContext(opCtx)); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, errors.Wrapf("oci.RepositoryExists", errors.ErrRegistryUnavailable, "%v", err)
	}

	return true, nil
}

// ListTags obtiene los tags publicados de un repositorio. Los registros
// Distribution solo devuelven nombres de tags; los TagRecord resultantes no
// llevan digests y el digest del tag resuelto se obtiene con ResolveDigest.
func (c *OCIClient) ListTags(ctx context.Context, repository string) ([]types.TagRecord, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, errors.Wrap("oci.ListTags", err)
	}

	opCtx, cancel := c.boundedContext(ctx)
	defer cancel()

	tags, err := crane.ListTags(repository, crane.WithContext(opCtx))
	if err != nil {
		if isNotFound(err) {
			return nil, errors.Wrapf("oci.ListTags", errors.ErrRepositoryNotFound, "%s", repository)
		}
		return nil, errors.Wrapf("oci.ListTags", errors.ErrRegistryUnavailable, "%v", err)
	}

	records := make([]types.TagRecord, 0, len(tags))
	for _, tag := range tags {
		records = append(records, types.TagRecord{Name: tag})
	}

	return records, nil
}

// ResolveDigest obtiene los digests por plataforma del tag indicado. Para un
// índice multi-plataforma devuelve una entrada por manifiesto; para una
// imagen simple devuelve su digest bajo la plataforma canónica.
func (c *OCIClient) ResolveDigest(ctx context.Context, repository, tag string) (map[string]string, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, errors.Wrap("oci.ResolveDigest", err)
	}

	ref, err := name.ParseReference(repository + ":" + tag)
	if err != nil {
		return nil, errors.Wrapf("oci.ResolveDigest", errors.ErrInvalidImage, "%s:%s: %v", repository, tag, err)
	}

	opCtx, cancel := c.boundedContext(ctx)
	defer cancel()

	desc, err := remote.Get(ref, remote.WithContext(opCtx))
	if err != nil {
		return nil, errors.Wrapf("oci.ResolveDigest", errors.ErrRegistryUnavailable, "%v", err)
	}

	digests := make(map[string]string)

	if desc.MediaType.IsIndex() {
		index, err := desc.ImageIndex()
		if err != nil {
			return nil, errors.Wrapf("oci.ResolveDigest", err, "reading index for %s:%s", repository, tag)
		}
		manifest, err := index.IndexManifest()
		if err != nil {
			return nil, errors.Wrapf("oci.ResolveDigest", err, "reading index manifest for %s:%s", repository, tag)
		}
		for _, m := range manifest.Manifests {
			key := types.PlatformLinuxAMD64
			if m.Platform != nil {
				key = platformKey(m.Platform.OS, m.Platform.Architecture)
			}
			digests[key] = m.Digest.String()
		}
		return digests, nil
	}

	digests[types.PlatformLinuxAMD64] = desc.Digest.String()
	return digests, nil
}

// boundedContext limita cada operación saliente al timeout configurado
func (c *OCIClient) boundedContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// isNotFound determina si un error de transporte corresponde a un 404
func isNotFound(err error) bool {
	var terr *transport.Error
	if errors.AsType(err, &terr) {
		return terr.StatusCode == http.StatusNotFound
	}
	return false
}
