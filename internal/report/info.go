package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/rcliao/dcmgroup/internal/model"
)

// File names inside an info directory.
const (
	TSVFile       = "dicominfo.tsv"
	FileGroupFile = "filegroup.json"
	AutoFile      = "auto.yaml"
	EditFile      = "edit.yaml"
)

// ErrNoOverride is returned by LoadOverride when no edited labels exist.
var ErrNoOverride = errors.New("report: no override document")

// InfoDir returns <outdir>/.dcmgroup/<subject>[/ses-<session>]/info.
func InfoDir(outdir, subject, session string) string {
	dir := filepath.Join(outdir, model.StateDir, subject)
	if session != "" {
		dir = filepath.Join(dir, "ses-"+session)
	}
	return filepath.Join(dir, "info")
}

// SaveFileGroups writes groups as an indented JSON object with sorted keys.
func SaveFileGroups(path string, groups model.FileGroupMap) error {
	var buf bytes.Buffer
	if err := EncodeFileGroups(&buf, groups); err != nil {
		return err
	}
	return writeFile(path, buf.Bytes())
}

// EncodeFileGroups writes the filegroup.json form of groups to w.
func EncodeFileGroups(w io.Writer, groups model.FileGroupMap) error {
	if groups == nil {
		groups = model.FileGroupMap{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(groups)
}

// LoadFileGroups reads a document written by SaveFileGroups.
func LoadFileGroups(path string) (model.FileGroupMap, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var groups model.FileGroupMap
	if err := json.Unmarshal(b, &groups); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return groups, nil
}

// SaveLabels writes labels as YAML.
func SaveLabels(path string, labels model.Labels) error {
	if labels == nil {
		labels = model.Labels{}
	}
	b, err := yaml.Marshal(labels)
	if err != nil {
		return err
	}
	return writeFile(path, b)
}

// LoadLabels reads a YAML label document.
func LoadLabels(path string) (model.Labels, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var labels model.Labels
	if err := yaml.Unmarshal(b, &labels); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return labels, nil
}

// WriteInfo persists the outputs of one pass into dir.
func WriteInfo(dir string, infos []model.SeqInfo, groups model.FileGroupMap, labels model.Labels) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create info dir: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, TSVFile))
	if err != nil {
		return err
	}
	if err := WriteTSV(f, infos); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", TSVFile, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := SaveFileGroups(filepath.Join(dir, FileGroupFile), groups); err != nil {
		return fmt.Errorf("write %s: %w", FileGroupFile, err)
	}
	if err := SaveLabels(filepath.Join(dir, AutoFile), labels); err != nil {
		return fmt.Errorf("write %s: %w", AutoFile, err)
	}
	return nil
}

// Override is a manually edited label document with the file groups it refers to.
type Override struct {
	Labels model.Labels
	Groups model.FileGroupMap
}

// LoadOverride loads edit.yaml and the persisted filegroup.json from dir.
// It returns ErrNoOverride when edit.yaml does not exist.
func LoadOverride(dir string) (*Override, error) {
	labels, err := LoadLabels(filepath.Join(dir, EditFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoOverride
	}
	if err != nil {
		return nil, err
	}
	groups, err := LoadFileGroups(filepath.Join(dir, FileGroupFile))
	if err != nil {
		return nil, fmt.Errorf("override needs %s: %w", FileGroupFile, err)
	}
	return &Override{Labels: labels, Groups: groups}, nil
}

func writeFile(path string, b []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
