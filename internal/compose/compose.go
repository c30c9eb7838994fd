package compose

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	yaml "gopkg.in/yaml.v3"

	"github.com/user/docker-version-fetcher/internal/docker"
	"github.com/user/docker-version-fetcher/pkg/errors"
	"github.com/user/docker-version-fetcher/pkg/types"
)

// Patrones de nombre reconocidos como archivos docker-compose
var composeFilePatterns = []string{
	"docker-compose.yml",
	"docker-compose.yaml",
	"compose.yml",
	"compose.yaml",
}

// Source implementa types.InventorySource sobre archivos docker-compose,
// como alternativa al daemon de Docker: las imágenes declaradas en los
// servicios se verifican aunque los contenedores no estén en ejecución.
type Source struct {
	path   string
	logger *slog.Logger
}

// NewSource crea un inventario basado en archivos compose. path puede ser un
// archivo concreto o un directorio que los contenga.
func NewSource(path string, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{path: path, logger: logger}
}

// ListRunning devuelve las imágenes declaradas en los archivos compose
// encontrados. El nombre del servicio se usa como nombre de contenedor.
func (s *Source) ListRunning(ctx context.Context) ([]types.LocalImageRef, error) {
	files, err := s.findFiles()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.Newf("compose.ListRunning", "no compose files found in %s", s.path)
	}

	var images []types.LocalImageRef
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap("compose.ListRunning", err)
		}

		refs, err := s.parseFile(file)
		if err != nil {
			// Un archivo ilegible no impide procesar el resto
			s.logger.Warn("Skipping unreadable compose file", "file", file, "error", err)
			continue
		}
		images = append(images, refs...)
	}

	s.logger.Info("Compose inventory collected", "files", len(files), "images", len(images))
	return images, nil
}

// parseFile extrae las imágenes de los servicios de un archivo compose
func (s *Source) parseFile(filePath string) ([]types.LocalImageRef, error) {
	data, err := os.ReadFile(filePath) //nolint:gosec
	if err != nil {
		return nil, errors.Wrapf("compose.parseFile", err, "reading file %s", filePath)
	}

	var file composeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrapf("compose.parseFile", err, "parsing YAML file %s", filePath)
	}

	serviceNames := make([]string, 0, len(file.Services))
	for name := range file.Services {
		serviceNames = append(serviceNames, name)
	}
	sort.Strings(serviceNames)

	var images []types.LocalImageRef
	for _, serviceName := range serviceNames {
		service := file.Services[serviceName]
		if service.Image == "" {
			// Servicios con build: en lugar de image: no se verifican
			continue
		}

		repository, tag, digest, err := docker.ParseImageRef(service.Image)
		if err != nil {
			s.logger.Warn("Skipping service with invalid image reference",
				"service", serviceName, "image", service.Image, "error", err)
			continue
		}

		images = append(images, types.LocalImageRef{
			Repository:    repository,
			Tag:           tag,
			Digest:        digest,
			ContainerName: serviceName,
		})
	}

	return images, nil
}

// findFiles localiza los archivos compose bajo el path configurado
func (s *Source) findFiles() ([]string, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return nil, errors.Wrapf("compose.findFiles", err, "stat %s", s.path)
	}

	if !info.IsDir() {
		return []string{s.path}, nil
	}

	var files []string
	for _, pattern := range composeFilePatterns {
		candidate := filepath.Join(s.path, pattern)
		if _, err := os.Stat(candidate); err == nil {
			files = append(files, candidate)
		}
	}

	return files, nil
}

// IsComposeFile indica si el nombre de archivo corresponde a un compose file
func IsComposeFile(filePath string) bool {
	name := strings.ToLower(filepath.Base(filePath))
	for _, pattern := range composeFilePatterns {
		if name == pattern {
			return true
		}
	}
	return false
}

// composeFile representa la estructura mínima de un archivo docker-compose
type composeFile struct {
	Version  string                    `yaml:"version"`
	Services map[string]composeService `yaml:"services"`
}

// composeService representa un servicio dentro del archivo compose
type composeService struct {
	Image string      `yaml:"image"`
	Build interface{} `yaml:"build,omitempty"`
}
