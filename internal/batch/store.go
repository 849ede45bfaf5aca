// Package batch reads scenarios from and writes solutions to configuration
// directories on disk.
package batch

import (
	"errors"
	"fmt"
	"os"

	"github.com/preston-bernstein/mister-service/internal/domain"
)

// LoadScenario reads {dir}/scenario.json.
func LoadScenario(dir string) (domain.Scenario, error) {
	if dir == "" {
		return domain.Scenario{}, errors.New("configuration directory required")
	}
	path := ScenarioPath(dir)
	f, err := os.Open(path)
	if err != nil {
		return domain.Scenario{}, err
	}
	defer f.Close()

	scenario, err := domain.DecodeScenario(f)
	if err != nil {
		return domain.Scenario{}, fmt.Errorf("%s: %w", path, err)
	}
	return scenario, nil
}
