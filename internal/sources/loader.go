package sources

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jonesrussell/newsharvest/internal/domain"
)

// sourcesFile is the on-disk shape of the source registry file.
type sourcesFile struct {
	Sources []domain.Source `yaml:"sources"`
}

// LoadFile reads the YAML source registry file at path and builds a
// validated registry from it.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse builds a validated registry from raw YAML bytes.
func Parse(data []byte) (*Registry, error) {
	var file sourcesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse sources file: %w", err)
	}

	return NewRegistry(file.Sources)
}
