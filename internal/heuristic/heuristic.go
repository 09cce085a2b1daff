// Package heuristic implements the caller-side classification policy: which
// records to exclude before grouping and which output template each
// surviving series is written to.
package heuristic

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rcliao/dcmgroup/internal/model"
)

// Condition matches one field against a regular expression.
type Condition struct {
	Field   string `yaml:"field"`
	Pattern string `yaml:"pattern"`

	re *regexp.Regexp
}

// Rule matches when every condition matches. An empty rule matches everything.
type Rule struct {
	Name  string      `yaml:"name,omitempty"`
	Match []Condition `yaml:"match"`
}

// Output sends every matching series to Template.
type Output struct {
	Template string      `yaml:"template"`
	Formats  []string    `yaml:"formats"`
	Match    []Condition `yaml:"match"`
}

// Heuristic is a YAML-defined classification policy.
type Heuristic struct {
	Exclude []Rule   `yaml:"exclude"`
	Outputs []Output `yaml:"outputs"`
}

// Default sends every series to its own directory as compressed NIfTI.
func Default() *Heuristic {
	return &Heuristic{
		Outputs: []Output{{Template: "sub-{subject}/{series}", Formats: []string{"nii.gz"}}},
	}
}

// Load reads and compiles a heuristic file.
func Load(path string) (*Heuristic, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read heuristic: %w", err)
	}
	return Parse(b)
}

// Parse decodes and compiles a heuristic document. Unknown keys are rejected.
func Parse(b []byte) (*Heuristic, error) {
	var h Heuristic
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&h); err != nil {
		return nil, fmt.Errorf("parse heuristic: %w", err)
	}
	if err := h.Compile(); err != nil {
		return nil, err
	}
	return &h, nil
}

// Compile validates field names and compiles every pattern.
func (h *Heuristic) Compile() error {
	for i := range h.Exclude {
		if err := compile(h.Exclude[i].Match, metadataField); err != nil {
			return fmt.Errorf("exclude[%d]: %w", i, err)
		}
	}
	for i := range h.Outputs {
		o := &h.Outputs[i]
		if o.Template == "" {
			return fmt.Errorf("outputs[%d]: template is required", i)
		}
		if len(o.Formats) == 0 {
			o.Formats = []string{"nii.gz"}
		}
		if err := compile(o.Match, seqInfoField); err != nil {
			return fmt.Errorf("outputs[%d]: %w", i, err)
		}
	}
	return nil
}

func compile[T any](conds []Condition, lookup func(*T, string) (string, bool)) error {
	for i := range conds {
		c := &conds[i]
		if _, ok := lookup(new(T), c.Field); !ok {
			return fmt.Errorf("unknown field %q", c.Field)
		}
		re, err := regexp.Compile(c.Pattern)
		if err != nil {
			return fmt.Errorf("field %s: %w", c.Field, err)
		}
		c.re = re
	}
	return nil
}

func matches[T any](conds []Condition, v *T, lookup func(*T, string) (string, bool)) (bool, error) {
	for _, c := range conds {
		if c.re == nil {
			return false, fmt.Errorf("condition on %q is not compiled", c.Field)
		}
		s, ok := lookup(v, c.Field)
		if !ok {
			return false, fmt.Errorf("unknown field %q", c.Field)
		}
		if !c.re.MatchString(s) {
			return false, nil
		}
	}
	return true, nil
}

// Excludes reports whether md matches any exclude rule. It has the shape of
// series.ExcludeFunc.
func (h *Heuristic) Excludes(md *model.Metadata) (bool, error) {
	for _, r := range h.Exclude {
		ok, err := matches(r.Match, md, metadataField)
		if err != nil {
			return false, fmt.Errorf("exclude rule %q: %w", r.Name, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// Label assigns each record to the first output it matches. Outputs without
// series are omitted; series matching no output are left unlabeled.
func (h *Heuristic) Label(infos []model.SeqInfo) (model.Labels, error) {
	assigned := make([][]string, len(h.Outputs))
	for i := range infos {
		for j, o := range h.Outputs {
			ok, err := matches(o.Match, &infos[i], seqInfoField)
			if err != nil {
				return nil, fmt.Errorf("output %q: %w", o.Template, err)
			}
			if ok {
				assigned[j] = append(assigned[j], infos[i].SeriesID)
				break
			}
		}
	}

	var labels model.Labels
	for j, o := range h.Outputs {
		if len(assigned[j]) == 0 {
			continue
		}
		labels = append(labels, model.Label{
			Template: o.Template,
			Formats:  append([]string(nil), o.Formats...),
			Series:   assigned[j],
		})
	}
	return labels, nil
}

func metadataField(md *model.Metadata, field string) (string, bool) {
	switch field {
	case "protocol_name":
		return md.ProtocolName, true
	case "series_description":
		return md.SeriesDescription, true
	case "sop_class":
		return md.SOPClass, true
	case "image_type":
		return strings.Join(md.ImageType, "\\"), true
	case "patient_id":
		return md.PatientID, true
	case "study_description":
		return md.StudyDescription, true
	case "sequence_name":
		return md.SequenceName, true
	case "series_number":
		if md.SeriesNumber == nil {
			return "", true
		}
		return strconv.Itoa(*md.SeriesNumber), true
	}
	return "", false
}

func seqInfoField(s *model.SeqInfo, field string) (string, bool) {
	switch field {
	case "series_id":
		return s.SeriesID, true
	case "protocol_name":
		return s.ProtocolName, true
	case "series_description":
		return s.SeriesDescription, true
	case "image_type":
		return strings.Join(s.ImageType, "\\"), true
	case "patient_id":
		return s.PatientID, true
	case "study_description":
		return s.StudyDescription, true
	case "sequence_name":
		return s.SequenceName, true
	case "dim1", "dim2", "dim3", "dim4":
		i := int(field[3] - '1')
		return strconv.Itoa(s.Dims[i]), true
	case "tr":
		return model.FormatSeconds(s.TR), true
	case "te":
		return model.FormatSeconds(s.TE), true
	case "is_derived":
		return strconv.FormatBool(s.Derived), true
	case "is_motion_corrected":
		return strconv.FormatBool(s.MotionCorrected), true
	}
	return "", false
}
