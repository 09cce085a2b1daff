// Package convert hands labeled file groups to an external converter.
package convert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"time"

	"github.com/rcliao/dcmgroup/internal/model"
)

var (
	// ErrUnknownSeries is returned when a label names a series id missing
	// from the file group map.
	ErrUnknownSeries = errors.New("convert: unknown series id")
	// ErrTemplate is returned for templates with unknown placeholders.
	ErrTemplate = errors.New("convert: bad template")
)

// Converter turns one file list into one output at prefix in format.
type Converter interface {
	Convert(ctx context.Context, prefix, format string, files []string) error
}

// Job is one converter invocation.
type Job struct {
	Prefix string   `json:"prefix"`
	Format string   `json:"format"`
	Files  []string `json:"files"`
}

// Vars fills template placeholders that do not depend on the series.
type Vars struct {
	Subject string
	Session string
}

// Plan resolves labels into converter jobs. Series rendering to the same
// (prefix, format) pair share one job, their files concatenated in label order.
func Plan(labels model.Labels, groups model.FileGroupMap, vars Vars) ([]Job, error) {
	type pair struct{ prefix, format string }
	index := make(map[pair]int)
	var jobs []Job

	for _, l := range labels {
		for i, id := range l.Series {
			files, ok := groups[id]
			if !ok {
				return nil, fmt.Errorf("%w: %q in %q", ErrUnknownSeries, id, l.Template)
			}
			prefix, err := Render(l.Template, vars, id, i+1)
			if err != nil {
				return nil, err
			}
			for _, format := range l.Formats {
				k := pair{prefix, format}
				if j, ok := index[k]; ok {
					jobs[j].Files = append(jobs[j].Files, files...)
					continue
				}
				index[k] = len(jobs)
				jobs = append(jobs, Job{Prefix: prefix, Format: format, Files: append([]string(nil), files...)})
			}
		}
	}
	return jobs, nil
}

var placeholder = regexp.MustCompile(`\{(\w+)(?::0?(\d+)d)?\}`)

// Render expands {subject}, {session}, {series} and {item} (optionally
// zero-padded, e.g. {item:02d}) in tmpl.
func Render(tmpl string, vars Vars, seriesID string, item int) (string, error) {
	var bad error
	out := placeholder.ReplaceAllStringFunc(tmpl, func(m string) string {
		sub := placeholder.FindStringSubmatch(m)
		switch sub[1] {
		case "subject":
			return vars.Subject
		case "session":
			return vars.Session
		case "series":
			return seriesID
		case "item":
			if sub[2] == "" {
				return strconv.Itoa(item)
			}
			width, _ := strconv.Atoi(sub[2])
			return fmt.Sprintf("%0*d", width, item)
		}
		bad = fmt.Errorf("%w: unknown placeholder %s in %q", ErrTemplate, m, tmpl)
		return m
	})
	if bad != nil {
		return "", bad
	}
	return out, nil
}

// Run executes jobs in order and stops at the first failure.
func Run(ctx context.Context, conv Converter, jobs []Job) error {
	for _, j := range jobs {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		if err := conv.Convert(ctx, j.Prefix, j.Format, j.Files); err != nil {
			return fmt.Errorf("convert %s (%s): %w", j.Prefix, j.Format, err)
		}
		slog.Info("converted", "prefix", j.Prefix, "format", j.Format,
			"files", len(j.Files), "dur", time.Since(start).Round(time.Millisecond))
	}
	return nil
}
