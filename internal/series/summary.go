package series

import (
	"path/filepath"
	"strings"

	"github.com/rcliao/dcmgroup/internal/model"
)

// Summarize builds one SeqInfo per surviving group, in canonical key order,
// together with the file list of each rendered series id.
func Summarize(res *Result) ([]model.SeqInfo, model.FileGroupMap) {
	infos := make([]model.SeqInfo, 0, len(res.Keys))
	groups := make(model.FileGroupMap, len(res.Keys))

	total := 0
	for _, key := range res.Keys {
		if key.IsExcluded() {
			continue
		}
		rep := res.Groups[res.Index[key]].Rep
		if !rep.HasShape() {
			continue
		}

		var files []string
		for _, a := range res.Assignments {
			if a.Key == key {
				files = append(files, a.Path)
			}
		}
		id := key.Render(res.MultiSession)
		groups[id] = files
		total += len(files)

		nslices := 1
		if rep.Slices != nil {
			nslices = *rep.Slices
		}
		tr, te := -1.0, -1.0
		if rep.RepetitionTime != nil {
			tr = *rep.RepetitionTime / 1000
		}
		if rep.EchoTime != nil {
			te = *rep.EchoTime
		}
		physician := "-"
		if rep.ReferringPhysician != nil {
			physician = *rep.ReferringPhysician
		}

		infos = append(infos, model.SeqInfo{
			TotalFilesTillNow:  total,
			ExampleFile:        filepath.Base(files[0]),
			SeriesID:           id,
			DirName:            filepath.Base(filepath.Dir(files[0])),
			Dims:               [4]int{*rep.Rows, *rep.Columns, nslices, len(files)},
			TR:                 tr,
			TE:                 te,
			ProtocolName:       rep.ProtocolName,
			MotionCorrected:    strings.Contains(rep.SeriesDescription, "MoCo"),
			Derived:            isDerived(rep.ImageType),
			PatientID:          rep.PatientID,
			StudyDescription:   rep.StudyDescription,
			ReferringPhysician: physician,
			SeriesDescription:  rep.SeriesDescription,
			ImageType:          rep.ImageType,
			SeriesUID:          rep.SeriesUID,
			SequenceName:       rep.SequenceName,
		})
	}
	return infos, groups
}

func isDerived(imageType []string) bool {
	for _, t := range imageType {
		if strings.EqualFold(t, "derived") {
			return true
		}
	}
	return false
}
