// Package archive expands command-line inputs into an ordered file list and
// assigns each file its session.
package archive

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/rcliao/dcmgroup/internal/model"
	"github.com/rcliao/dcmgroup/internal/series"
)

var (
	// ErrInconsistentArchiveSet is returned when archives and plain inputs are mixed.
	ErrInconsistentArchiveSet = errors.New("archive: inputs mix tar archives and plain files")
	// ErrUnsafeMember is returned for archive members escaping the extraction dir.
	ErrUnsafeMember = errors.New("archive: unsafe member path")
)

// Set is the expanded input: Files[i] belongs to session Sessions[i].
type Set struct {
	Files    []string
	Sessions []int
}

// MultiSession reports whether more than one session index is present.
func (s *Set) MultiSession() bool {
	for _, sess := range s.Sessions {
		if sess != s.Sessions[0] {
			return true
		}
	}
	return false
}

// Inputs converts the set into classifier inputs, preserving order.
func (s *Set) Inputs() []series.Input {
	out := make([]series.Input, len(s.Files))
	for i, f := range s.Files {
		out[i] = series.Input{Index: i, Session: s.Sessions[i], Path: f}
	}
	return out
}

// IsArchive reports whether path names a tar archive by extension.
func IsArchive(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".tar") ||
		strings.HasSuffix(lower, ".tar.gz") ||
		strings.HasSuffix(lower, ".tgz")
}

// Expand resolves inputs. When every input is an archive, archive i is
// extracted under workDir and its members get session i. Otherwise all
// inputs must be plain files or directories and share session 0.
func Expand(ctx context.Context, inputs []string, workDir string) (*Set, error) {
	archives := 0
	for _, in := range inputs {
		if IsArchive(in) {
			archives++
		}
	}
	if archives > 0 && archives != len(inputs) {
		return nil, fmt.Errorf("%w: %d of %d inputs are archives", ErrInconsistentArchiveSet, archives, len(inputs))
	}

	set := &Set{}
	if archives > 0 {
		for i, in := range inputs {
			dest := filepath.Join(workDir, fmt.Sprintf("session-%03d", i))
			files, err := Extract(ctx, in, dest)
			if err != nil {
				return nil, err
			}
			for _, f := range files {
				set.Files = append(set.Files, f)
				set.Sessions = append(set.Sessions, i)
			}
		}
		return set, nil
	}

	for _, in := range inputs {
		files, err := listFiles(in)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			set.Files = append(set.Files, f)
			set.Sessions = append(set.Sessions, 0)
		}
	}
	return set, nil
}

// listFiles returns path itself, or every regular file below it in lexical
// order. State directories below path are skipped.
func listFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat input: %w", err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && p != path && d.Name() == model.StateDir {
			return fs.SkipDir
		}
		if d.Type().IsRegular() {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", path, err)
	}
	return files, nil
}

// Extract unpacks the tar (optionally gzip-compressed) archive at path into
// dest and returns the extracted regular files in archive order.
func Extract(ctx context.Context, path, dest string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".gz") || strings.HasSuffix(lower, ".tgz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("gzip %s: %w", path, err)
		}
		defer zr.Close()
		r = zr
	}

	var files []string
	tr := tar.NewReader(r)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		if !filepath.IsLocal(hdr.Name) {
			return nil, fmt.Errorf("%w: %q in %s", ErrUnsafeMember, hdr.Name, path)
		}

		target := filepath.Join(dest, hdr.Name)
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return nil, fmt.Errorf("create dir: %w", err)
		}
		if err := writeMember(target, tr); err != nil {
			return nil, err
		}
		files = append(files, target)
	}

	slog.Debug("extracted archive", "archive", path, "files", len(files))
	return files, nil
}

func writeMember(target string, r io.Reader) error {
	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create member: %w", err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return fmt.Errorf("write member: %w", err)
	}
	return out.Close()
}
