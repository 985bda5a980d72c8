package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lendops/paydate/internal/domain/regress"
)

// File permission constants.
const (
	artifactFilePermission = 0o644
	artifactDirPermission  = 0o755
)

// Model bundles a fitted regressor with the ordered feature-column
// names it was trained against. The name list is authoritative: at
// inference time every engineered vector is reindexed to this exact
// column order. The two always load and swap together so no prediction
// can observe a regressor without its schema.
type Model struct {
	Regressor    regress.Regressor
	FeatureNames []string
}

// artifact is the persisted wire form of a Model. The regressor payload
// stays opaque; only the backend tag and the schema are inspectable.
type artifact struct {
	FeatureNames []string        `json:"feature_names"`
	Regressor    regress.Encoded `json:"regressor"`
}

// saveModel writes the artifact as a single atomic unit: a temp file in
// the destination directory followed by a rename, so a crash mid-write
// never leaves a truncated artifact behind.
func saveModel(m *Model, path string) error {
	enc, err := regress.Encode(m.Regressor)
	if err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	data, err := json.Marshal(artifact{FeatureNames: m.FeatureNames, Regressor: enc})
	if err != nil {
		return fmt.Errorf("save model: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, artifactDirPermission); err != nil {
		return fmt.Errorf("save model: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("save model: %w", err)
	}
	if err := tmp.Chmod(artifactFilePermission); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("save model: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("save model: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("save model: %w", err)
	}
	return nil
}

// loadModelFile reads and decodes an artifact from a resolved path.
func loadModelFile(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", path, err)
	}
	var a artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("load model %s: %w", path, err)
	}
	reg, err := regress.Decode(a.Regressor)
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", path, err)
	}
	return &Model{Regressor: reg, FeatureNames: a.FeatureNames}, nil
}

// resolveModelPath tries the candidate locations for a model artifact
// in order: the path as given, as absolute, relative to the working
// directory, relative to the executable's directory, and relative to
// that directory's parent. The last two cover being launched from a
// subdirectory of the installation.
func resolveModelPath(path string) (string, error) {
	candidates := []string{path}
	if abs, err := filepath.Abs(path); err == nil {
		candidates = append(candidates, abs)
	}
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, path))
	}
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		candidates = append(candidates,
			filepath.Join(exeDir, path),
			filepath.Join(filepath.Dir(exeDir), path),
		)
	}

	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %s (train a model first or supply the correct path)", ErrModelNotFound, path)
}
