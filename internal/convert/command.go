package convert

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
)

// DefaultCommand is the external DICOM to NIfTI converter.
const DefaultCommand = "dcm2niix"

// CommandConverter runs an external converter for NIfTI outputs and copies
// the source files for the "dicom" format.
type CommandConverter struct {
	Command string
	Args    []string
	OutDir  string
}

func (c *CommandConverter) Convert(ctx context.Context, prefix, format string, files []string) error {
	target := filepath.Join(c.OutDir, prefix)
	switch format {
	case "dicom":
		return copyFiles(target, files)
	case "nii", "nii.gz":
		return c.runCommand(ctx, target, format == "nii.gz", files)
	}
	return fmt.Errorf("unsupported format %q", format)
}

func (c *CommandConverter) runCommand(ctx context.Context, target string, compress bool, files []string) error {
	command := c.Command
	if command == "" {
		command = DefaultCommand
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	// The converter reads a directory, so the group is staged as symlinks.
	stage, err := os.MkdirTemp("", "dcmgroup-stage-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(stage)
	for i, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return err
		}
		link := filepath.Join(stage, fmt.Sprintf("%06d-%s", i, filepath.Base(f)))
		if err := os.Symlink(abs, link); err != nil {
			return fmt.Errorf("stage %s: %w", f, err)
		}
	}

	z := "n"
	if compress {
		z = "y"
	}
	args := append(append([]string(nil), c.Args...),
		"-b", "y", "-z", z, "-f", filepath.Base(target), "-o", filepath.Dir(target), stage)
	out, err := exec.CommandContext(ctx, command, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", command, err, out)
	}
	return nil
}

func copyFiles(dir string, files []string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for i, f := range files {
		dst := filepath.Join(dir, fmt.Sprintf("%06d-%s", i, filepath.Base(f)))
		if err := copyFile(dst, f); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(dst, src string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
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
