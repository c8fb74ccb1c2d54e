package localsite

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest records what one run exported, space by space.  It lands at the export
// root as manifest.yaml so later tooling (or a later run's curious operator) can see
// what's in the tree without crawling it.
type Manifest struct {
	GeneratedAt string        `yaml:"generated_at"`
	BaseURL     string        `yaml:"base_url,omitempty"`
	Spaces      []SpaceExport `yaml:"spaces"`
}

func WriteManifest(path string, manifest Manifest) error {
	raw, err := yaml.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("localsite: couldn't marshal manifest: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("localsite: couldn't create file %s: %w", path, err)
	}

	defer f.Close()
	if _, err = f.Write(raw); err != nil {
		return fmt.Errorf("localsite: couldn't write to file %s: %w", path, err)
	}

	return nil
}
