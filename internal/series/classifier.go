package series

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/rcliao/dcmgroup/internal/dicomfile"
	"github.com/rcliao/dcmgroup/internal/model"
)

// ExcludeFunc returns true to force a record into the sentinel bucket.
type ExcludeFunc func(md *model.Metadata) (bool, error)

// deniedSOPClasses are structurally valid objects that never hold image data.
var deniedSOPClasses = map[string]bool{
	"Raw Data Storage": true,
	"Grayscale Softcopy Presentation State Storage": true,
}

// Input is one file to classify.
type Input struct {
	Index   int
	Session int
	Path    string
}

// Group is a candidate series. Its key may change when later files
// are shown to belong to an earlier group.
type Group struct {
	Rep   *model.Metadata
	Sig   Signature
	Key   model.GroupKey
	Files []string
}

// Assignment records where one input file landed.
type Assignment struct {
	Input
	Key   model.GroupKey
	Group int
}

// Result is the finalized state of one classification pass.
type Result struct {
	Groups      []*Group
	Assignments []Assignment
	// Index maps each distinct key to its group handle.
	Index map[model.GroupKey]int
	// Keys lists Index's keys in canonical order.
	Keys []model.GroupKey

	MultiSession bool
	// MultiMatch counts files whose signature matched more than one group.
	MultiMatch int
	Degraded   int
}

// Classifier partitions files into groups in a single sequential pass.
type Classifier struct {
	Extractor dicomfile.Extractor
	Exclude   ExcludeFunc
}

// Classify extracts and classifies inputs in the order given.
func (c *Classifier) Classify(ctx context.Context, inputs []Input) (*Result, error) {
	return c.run(ctx, inputs, func(i int) *model.Metadata {
		return c.Extractor.Extract(inputs[i].Path)
	})
}

// ClassifyExtracted classifies inputs whose records were extracted up front,
// records[i] belonging to inputs[i].
func (c *Classifier) ClassifyExtracted(ctx context.Context, inputs []Input, records []*model.Metadata) (*Result, error) {
	if len(records) != len(inputs) {
		return nil, fmt.Errorf("classify: %d records for %d inputs", len(records), len(inputs))
	}
	return c.run(ctx, inputs, func(i int) *model.Metadata { return records[i] })
}

func (c *Classifier) run(ctx context.Context, inputs []Input, extract func(int) *model.Metadata) (*Result, error) {
	res := &Result{Index: make(map[model.GroupKey]int)}
	sessions := make(map[int]bool)

	for i, in := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sessions[in.Session] = true

		md := extract(i)
		if md == nil {
			md = model.Degrade(in.Path)
		}
		if md.Degraded {
			res.Degraded++
		}

		key, err := c.tentativeKey(in, md)
		if err != nil {
			return nil, err
		}

		handle := -1
		if !key.IsExcluded() {
			sig := SignatureOf(md)
			for g, grp := range res.Groups {
				if grp.Key.Session != in.Session || !grp.Sig.Equal(sig) {
					continue
				}
				if handle >= 0 {
					// First match keeps the file; later ones are only counted.
					res.MultiMatch++
					slog.Warn("file matches more than one group",
						"path", in.Path, "kept", res.Groups[handle].Key.String(), "also", grp.Key.String())
					break
				}
				handle = g
				if !grp.Key.IsExcluded() {
					key = grp.Key
				}
			}
		}

		if handle < 0 {
			res.Groups = append(res.Groups, &Group{Rep: md, Sig: SignatureOf(md), Key: key})
			handle = len(res.Groups) - 1
		}
		res.Groups[handle].Files = append(res.Groups[handle].Files, in.Path)
		res.Assignments = append(res.Assignments, Assignment{Input: in, Key: key, Group: handle})
	}

	// Last write wins for keys seen more than once.
	for _, a := range res.Assignments {
		res.Index[a.Key] = a.Group
	}
	res.Keys = make([]model.GroupKey, 0, len(res.Index))
	for k := range res.Index {
		res.Keys = append(res.Keys, k)
	}
	slices.SortFunc(res.Keys, func(a, b model.GroupKey) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		}
		return 0
	})
	res.MultiSession = len(sessions) > 1

	slog.Info("classified files",
		"files", len(inputs), "groups", len(res.Groups), "keys", len(res.Keys),
		"degraded", res.Degraded, "multi_match", res.MultiMatch)
	return res, nil
}

func (c *Classifier) tentativeKey(in Input, md *model.Metadata) (model.GroupKey, error) {
	if md.SeriesNumber == nil {
		return model.GroupKey{Session: in.Session, SeriesNumber: model.ExcludedSeries, Protocol: model.NoProtocol}, nil
	}
	protocol := md.ProtocolName
	if protocol == "" {
		protocol = model.NoProtocol
	}
	key := model.GroupKey{Session: in.Session, SeriesNumber: *md.SeriesNumber, Protocol: protocol}
	if key.IsExcluded() {
		return key, nil
	}

	exclude := false
	if c.Exclude != nil {
		var err error
		exclude, err = c.Exclude(md)
		if err != nil {
			return key, &PolicyError{Path: in.Path, Err: err}
		}
	}
	if exclude || deniedSOPClasses[md.SOPClass] {
		key.SeriesNumber = model.ExcludedSeries
	}
	return key, nil
}
