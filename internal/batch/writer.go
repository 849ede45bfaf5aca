package batch

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"

	"github.com/preston-bernstein/mister-service/internal/domain"
)

// WriteSolution writes {dir}/solution.json as indented JSON. The file is
// replaced atomically and left untouched when the content is unchanged.
func WriteSolution(dir string, solution domain.Solution) (string, error) {
	if dir == "" {
		return "", errors.New("configuration directory required")
	}
	if solution.Teams == nil {
		solution.Teams = []domain.Team{}
	}
	data, err := json.MarshalIndent(solution, "", "  ")
	if err != nil {
		return "", err
	}
	data = append(data, '\n')

	target := SolutionPath(dir)
	if existing, err := os.ReadFile(target); err == nil && bytes.Equal(existing, data) {
		return target, nil
	}

	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	return target, nil
}
