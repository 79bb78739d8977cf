package repository

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/imyashkale/mcpdashboard/internal/config"
	"github.com/imyashkale/mcpdashboard/internal/database"
	"github.com/imyashkale/mcpdashboard/internal/logger"
	"github.com/imyashkale/mcpdashboard/internal/models"
)

// CatalogRepository lists server templates the user can add
type CatalogRepository interface {
	List(ctx context.Context) ([]models.CreateServerRequest, error)
}

// staticCatalog serves presets parsed from the environment
type staticCatalog struct {
	presets []config.ServerPreset
}

// NewStaticCatalog creates a catalog over fixed presets
func NewStaticCatalog(presets []config.ServerPreset) CatalogRepository {
	return &staticCatalog{presets: presets}
}

func (c *staticCatalog) List(ctx context.Context) ([]models.CreateServerRequest, error) {
	return presetsToTemplates(c.presets), nil
}

// catalogFile is the layout of MCP_SERVERS_FILE
type catalogFile struct {
	Servers []config.ServerPreset `yaml:"servers"`
}

// fileCatalog reads presets from a YAML file on every List
type fileCatalog struct {
	path string
}

// NewFileCatalog creates a catalog backed by a YAML file
func NewFileCatalog(path string) CatalogRepository {
	return &fileCatalog{path: path}
}

func (c *fileCatalog) List(ctx context.Context) ([]models.CreateServerRequest, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("invalid catalog file %s: %w", c.path, err)
	}

	valid := make([]config.ServerPreset, 0, len(file.Servers))
	for _, preset := range file.Servers {
		preset.Name = strings.TrimSpace(preset.Name)
		preset.Path = strings.TrimSpace(preset.Path)
		if preset.Name == "" || preset.Path == "" || !preset.Type.Valid() {
			logger.WithField("name", preset.Name).Warnf("Discarding incomplete catalog entry in %s", c.path)
			continue
		}
		valid = append(valid, preset)
	}
	return presetsToTemplates(valid), nil
}

// dynamoCatalog maps deployed servers in the registry table to
// container-image templates.
type dynamoCatalog struct {
	table *database.CatalogTable
}

// NewDynamoCatalog creates a catalog backed by the DynamoDB registry
func NewDynamoCatalog(table *database.CatalogTable) CatalogRepository {
	return &dynamoCatalog{table: table}
}

func (c *dynamoCatalog) List(ctx context.Context) ([]models.CreateServerRequest, error) {
	records, err := c.table.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	templates := make([]models.CreateServerRequest, 0, len(records))
	for _, record := range records {
		templates = append(templates, models.CreateServerRequest{
			Name:        record.Name,
			Description: record.Description,
			Path:        record.ImageRef(),
			Type:        models.ServerTypeDocker,
		})
	}
	return templates, nil
}

// multiCatalog merges several catalogs in order. A name seen in an earlier
// source shadows later ones. A failing source is logged and skipped.
type multiCatalog struct {
	sources []CatalogRepository
}

// NewMultiCatalog combines catalogs
func NewMultiCatalog(sources ...CatalogRepository) CatalogRepository {
	return &multiCatalog{sources: sources}
}

func (c *multiCatalog) List(ctx context.Context) ([]models.CreateServerRequest, error) {
	seen := make(map[string]bool)
	merged := make([]models.CreateServerRequest, 0)

	for _, source := range c.sources {
		templates, err := source.List(ctx)
		if err != nil {
			logger.WithField("error", err.Error()).Warnf("Skipping unavailable catalog source")
			continue
		}
		for _, tmpl := range templates {
			key := strings.ToLower(tmpl.Name)
			if seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, tmpl)
		}
	}
	return merged, nil
}

func presetsToTemplates(presets []config.ServerPreset) []models.CreateServerRequest {
	templates := make([]models.CreateServerRequest, 0, len(presets))
	for _, preset := range presets {
		templates = append(templates, models.CreateServerRequest{
			Name:        preset.Name,
			Description: preset.Description,
			Path:        preset.Path,
			Type:        preset.Type,
		})
	}
	return templates
}
