package config

import (
	"strings"

	"github.com/imyashkale/mcpdashboard/internal/models"
)

// ServerPreset is a server template supplied by configuration
type ServerPreset struct {
	Name        string            `yaml:"name"`
	Type        models.ServerType `yaml:"type"`
	Path        string            `yaml:"path"`
	Description string            `yaml:"description"`
}

// ParseServerPresets parses a comma-separated list of name:type:path
// triples. The path keeps any further colons (image tags, drive letters).
// Triples with a missing field or an unknown type are discarded.
func ParseServerPresets(raw string) []ServerPreset {
	presets := make([]ServerPreset, 0)
	for _, entry := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(entry), ":", 3)
		if len(parts) != 3 {
			continue
		}

		preset := ServerPreset{
			Name: strings.TrimSpace(parts[0]),
			Type: models.ServerType(strings.TrimSpace(parts[1])),
			Path: strings.TrimSpace(parts[2]),
		}
		if preset.Name == "" || preset.Path == "" || !preset.Type.Valid() {
			continue
		}
		presets = append(presets, preset)
	}
	return presets
}
