package predictor

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/shipmind-ai/shipmind/core/model"
)

// ExportArtifacts copies the artifact tree into dst/models and, when the
// performance store is file-backed, snapshots its file next to it.
func (s *Service) ExportArtifacts(dst string) error {
	if dst == "" {
		return &model.ValidationError{Field: "path", Reason: "required"}
	}
	if _, err := os.Stat(s.cfg.ArtifactDir); err != nil {
		return fmt.Errorf("export artifacts: %w", err)
	}
	if err := copyTree(s.cfg.ArtifactDir, filepath.Join(dst, "models")); err != nil {
		return fmt.Errorf("export artifacts: %w", err)
	}
	if s.cfg.MetricsPath != "" {
		if err := copyFile(s.cfg.MetricsPath, filepath.Join(dst, filepath.Base(s.cfg.MetricsPath))); err != nil {
			return fmt.Errorf("export metrics store: %w", err)
		}
	}
	s.log.Infof("artifacts exported to %s", dst)
	return nil
}

// ImportArtifacts replaces the artifact tree from a previous export and
// re-initializes every model from the imported weights. The performance
// store snapshot is a backup only; it is never imported over a live store.
func (s *Service) ImportArtifacts(src string) error {
	if src == "" {
		return &model.ValidationError{Field: "path", Reason: "required"}
	}
	modelsDir := filepath.Join(src, "models")
	if _, err := os.Stat(modelsDir); err != nil {
		return fmt.Errorf("import artifacts: %w", err)
	}
	if err := copyTree(modelsDir, s.cfg.ArtifactDir); err != nil {
		return fmt.Errorf("import artifacts: %w", err)
	}
	s.log.Infof("artifacts imported from %s", src)
	return s.Initialize()
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
