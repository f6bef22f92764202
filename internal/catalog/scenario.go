package catalog

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is the YAML seed file loaded at startup: the initial satellite and
// debris population. Records follow the same field names as the REST API.
type Scenario struct {
	Name       string      `yaml:"name"`
	Satellites []Satellite `yaml:"satellites"`
	Debris     []Debris    `yaml:"debris"`
}

// LoadScenario reads and seeds a scenario file into the store. Invalid
// records are skipped with a warning rather than aborting the whole load, so
// one bad entry cannot take the service down at startup.
func LoadScenario(path string, store *Store, logger *slog.Logger) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("reading scenario file: %w", err)
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return Scenario{}, fmt.Errorf("parsing scenario file %s: %w", path, err)
	}

	var loaded, skipped int
	for _, sat := range sc.Satellites {
		if _, err := store.CreateSatellite(sat); err != nil {
			logger.Warn("skipping invalid scenario satellite", "name", sat.Name, "error", err)
			skipped++
			continue
		}
		loaded++
	}
	for _, d := range sc.Debris {
		if _, err := store.CreateDebris(d); err != nil {
			logger.Warn("skipping invalid scenario debris", "name", d.Name, "error", err)
			skipped++
			continue
		}
		loaded++
	}

	logger.Info("scenario loaded",
		"scenario", sc.Name,
		"path", path,
		"records", loaded,
		"skipped", skipped,
	)
	return sc, nil
}
