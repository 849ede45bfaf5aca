package batch

import "path/filepath"

const (
	ScenarioFile = "scenario.json"
	SolutionFile = "solution.json"
)

// ScenarioPath is where a configuration directory keeps its scenario.
func ScenarioPath(dir string) string {
	return filepath.Join(dir, ScenarioFile)
}

// SolutionPath is where a configuration directory receives its solution.
func SolutionPath(dir string) string {
	return filepath.Join(dir, SolutionFile)
}
