package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rcliao/dcmgroup/internal/archive"
	"github.com/rcliao/dcmgroup/internal/convert"
	"github.com/rcliao/dcmgroup/internal/dicomfile"
	"github.com/rcliao/dcmgroup/internal/heuristic"
	"github.com/rcliao/dcmgroup/internal/model"
	"github.com/rcliao/dcmgroup/internal/report"
	"github.com/rcliao/dcmgroup/internal/series"
	"github.com/rcliao/dcmgroup/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "group <input>...",
		Short: "Group DICOM files into series",
		Long: "Group DICOM files, directories or tar archives into series. Writes dicominfo.tsv, " +
			"filegroup.json and auto.yaml under <outdir>/.dcmgroup/<subject>[/ses-<session>]/info. " +
			"When edit.yaml exists there, its labels are used as-is and nothing is regrouped.",
		Args: cobra.MinimumNArgs(1),
		Run:  runGroup,
	}

	cmd.Flags().StringP("subject", "s", "", "Subject id (required)")
	cmd.Flags().String("session", "", "Session label")
	cmd.Flags().StringP("outdir", "o", ".", "Output directory")
	cmd.Flags().String("heuristic", "", "Heuristic file (default: config heuristic, else one output per series)")
	cmd.Flags().IntP("workers", "w", 0, "Concurrent readers (default: config workers, else one per CPU)")
	cmd.Flags().String("base-dir", "", "Directory relative input paths are resolved against")
	cmd.Flags().Bool("convert", false, "Run the converter on the labeled series")

	cmd.MarkFlagRequired("subject")

	RootCmd.AddCommand(cmd)
}

// groupOptions configures one grouping pass.
type groupOptions struct {
	Inputs  []string
	Subject string
	Session string
	OutDir  string
	Workers int
	// BaseDir resolves relative inputs. Empty means the working directory.
	BaseDir string
}

// groupOutcome is what a pass produced, ready to be recorded.
type groupOutcome struct {
	InfoDir    string
	Files      int
	Infos      []model.SeqInfo
	Groups     model.FileGroupMap
	Labels     model.Labels
	Degraded   int
	MultiMatch int
	Override   bool
}

// groupPass runs a grouping pass, or loads the override document when one
// exists in the info directory.
func groupPass(ctx context.Context, opts groupOptions, ex dicomfile.Extractor, h *heuristic.Heuristic) (*groupOutcome, error) {
	infoDir := report.InfoDir(opts.OutDir, opts.Subject, opts.Session)

	ov, err := report.LoadOverride(infoDir)
	switch {
	case err == nil:
		slog.Info("using override", "dir", infoDir)
		return fromOverride(infoDir, ov)
	case !errors.Is(err, report.ErrNoOverride):
		return nil, fmt.Errorf("load override: %w", err)
	}

	workDir := filepath.Join(filepath.Dir(infoDir), "extracted")
	set, err := archive.Expand(ctx, resolveInputs(opts.BaseDir, opts.Inputs), workDir)
	if err != nil {
		return nil, err
	}

	records, err := dicomfile.ExtractAll(ctx, ex, set.Files, opts.Workers)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}

	c := &series.Classifier{Extractor: ex, Exclude: h.Excludes}
	res, err := c.ClassifyExtracted(ctx, set.Inputs(), records)
	if err != nil {
		return nil, err
	}
	infos, groups := series.Summarize(res)

	labels, err := h.Label(infos)
	if err != nil {
		return nil, fmt.Errorf("label: %w", err)
	}
	if err := report.WriteInfo(infoDir, infos, groups, labels); err != nil {
		return nil, err
	}

	slog.Info("grouped",
		"files", len(set.Files),
		"series", len(infos),
		"degraded", res.Degraded,
		"multi_match", res.MultiMatch,
		"multi_session", set.MultiSession())

	return &groupOutcome{
		InfoDir:    infoDir,
		Files:      len(set.Files),
		Infos:      infos,
		Groups:     groups,
		Labels:     labels,
		Degraded:   res.Degraded,
		MultiMatch: res.MultiMatch,
	}, nil
}

// resolveInputs joins relative inputs onto baseDir so expansion and
// extraction open the same files.
func resolveInputs(baseDir string, inputs []string) []string {
	if baseDir == "" {
		return inputs
	}
	out := make([]string, len(inputs))
	for i, in := range inputs {
		if filepath.IsAbs(in) {
			out[i] = in
		} else {
			out[i] = filepath.Join(baseDir, in)
		}
	}
	return out
}

func fromOverride(infoDir string, ov *report.Override) (*groupOutcome, error) {
	out := &groupOutcome{
		InfoDir:  infoDir,
		Groups:   ov.Groups,
		Labels:   ov.Labels,
		Override: true,
	}
	for _, files := range ov.Groups {
		out.Files += len(files)
	}

	f, err := os.Open(filepath.Join(infoDir, report.TSVFile))
	if errors.Is(err, os.ErrNotExist) {
		return out, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if out.Infos, err = report.ReadTSV(f); err != nil {
		return nil, fmt.Errorf("read %s: %w", report.TSVFile, err)
	}
	return out, nil
}

func loadHeuristic(path string) (*heuristic.Heuristic, error) {
	if path == "" {
		path = cfg.Heuristic
	}
	if path == "" {
		return heuristic.Default(), nil
	}
	return heuristic.Load(path)
}

func runGroup(cmd *cobra.Command, args []string) {
	subject, _ := cmd.Flags().GetString("subject")
	session, _ := cmd.Flags().GetString("session")
	outDir, _ := cmd.Flags().GetString("outdir")
	heuristicPath, _ := cmd.Flags().GetString("heuristic")
	workers, _ := cmd.Flags().GetInt("workers")
	baseDir, _ := cmd.Flags().GetString("base-dir")
	doConvert, _ := cmd.Flags().GetBool("convert")

	if workers == 0 {
		workers = cfg.Workers
	}

	h, err := loadHeuristic(heuristicPath)
	if err != nil {
		exitErr("heuristic", err)
	}

	ctx := cmd.Context()
	out, err := groupPass(ctx, groupOptions{
		Inputs:  args,
		Subject: subject,
		Session: session,
		OutDir:  outDir,
		Workers: workers,
		BaseDir: baseDir,
	}, dicomfile.NewReader(""), h)
	if err != nil {
		exitErr("group", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	run, err := s.SaveRun(ctx, store.SaveParams{
		Subject:    subject,
		Session:    session,
		OutDir:     outDir,
		Files:      out.Files,
		Degraded:   out.Degraded,
		MultiMatch: out.MultiMatch,
		Override:   out.Override,
		Infos:      out.Infos,
		Groups:     out.Groups,
	})
	if err != nil {
		exitErr("save run", err)
	}

	if doConvert {
		jobs, err := convert.Plan(out.Labels, out.Groups, convert.Vars{Subject: subject, Session: session})
		if err != nil {
			exitErr("plan", err)
		}
		conv := &convert.CommandConverter{
			Command: cfg.Converter.Command,
			Args:    cfg.Converter.Args,
			OutDir:  outDir,
		}
		if err := convert.Run(ctx, conv, jobs); err != nil {
			exitErr("convert", err)
		}
	}

	if formatFlag == "text" {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d files\t%d series\t%s\n", run.ID, run.Files, run.Series, out.InfoDir)
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"id":%q,"files":%d,"series":%d,"info_dir":%q}`+"\n",
		run.ID, run.Files, run.Series, out.InfoDir)
}
