package processor

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/motivateai/rag/internal/models"
)

// LoadCatalog reads the metadata catalog: a YAML map from transcript
// filename to its metadata record.
func LoadCatalog(path string) (map[string]models.TranscriptMeta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading metadata catalog: %w", err)
	}

	catalog := make(map[string]models.TranscriptMeta)
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("error parsing metadata catalog: %w", err)
	}

	return catalog, nil
}
