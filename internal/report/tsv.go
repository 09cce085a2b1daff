// Package report persists the artifacts of a grouping pass: the tab-separated
// series listing, the file group document and the label documents.
package report

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rcliao/dcmgroup/internal/model"
)

// Columns is the header line of dicominfo.tsv.
var Columns = []string{
	"total_files_till_now",
	"example_dcm_file",
	"series_id",
	"dcm_dir_name",
	"dim1",
	"dim2",
	"dim3",
	"dim4",
	"TR",
	"TE",
	"protocol_name",
	"is_motion_corrected",
	"is_derived",
	"patient_id",
	"study_description",
	"referring_physician_name",
	"series_description",
	"image_type",
	"series_uid",
	"sequence_name",
}

var cellCleaner = strings.NewReplacer("\t", " ", "\r", " ", "\n", " ")

// WriteTSV writes the header and one line per record in the given order.
func WriteTSV(w io.Writer, infos []model.SeqInfo) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(Columns, "\t") + "\n"); err != nil {
		return err
	}
	for _, s := range infos {
		row := []string{
			strconv.Itoa(s.TotalFilesTillNow),
			s.ExampleFile,
			s.SeriesID,
			s.DirName,
			strconv.Itoa(s.Dims[0]),
			strconv.Itoa(s.Dims[1]),
			strconv.Itoa(s.Dims[2]),
			strconv.Itoa(s.Dims[3]),
			model.FormatSeconds(s.TR),
			model.FormatSeconds(s.TE),
			s.ProtocolName,
			strconv.FormatBool(s.MotionCorrected),
			strconv.FormatBool(s.Derived),
			s.PatientID,
			s.StudyDescription,
			s.ReferringPhysician,
			s.SeriesDescription,
			strings.Join(s.ImageType, "\\"),
			s.SeriesUID,
			s.SequenceName,
		}
		for i := range row {
			row[i] = cellCleaner.Replace(row[i])
		}
		if _, err := bw.WriteString(strings.Join(row, "\t") + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadTSV parses a file written by WriteTSV.
func ReadTSV(r io.Reader) ([]model.SeqInfo, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("tsv: missing header")
	}
	if got := sc.Text(); got != strings.Join(Columns, "\t") {
		return nil, fmt.Errorf("tsv: unexpected header %q", got)
	}

	var infos []model.SeqInfo
	line := 1
	for sc.Scan() {
		line++
		if sc.Text() == "" {
			continue
		}
		f := strings.Split(sc.Text(), "\t")
		if len(f) != len(Columns) {
			return nil, fmt.Errorf("tsv: line %d has %d fields, want %d", line, len(f), len(Columns))
		}
		s, err := parseRow(f)
		if err != nil {
			return nil, fmt.Errorf("tsv: line %d: %w", line, err)
		}
		infos = append(infos, s)
	}
	return infos, sc.Err()
}

func parseRow(f []string) (model.SeqInfo, error) {
	var s model.SeqInfo
	var err error
	ints := []*int{&s.TotalFilesTillNow, &s.Dims[0], &s.Dims[1], &s.Dims[2], &s.Dims[3]}
	for i, idx := range []int{0, 4, 5, 6, 7} {
		if *ints[i], err = strconv.Atoi(f[idx]); err != nil {
			return s, fmt.Errorf("%s: %w", Columns[idx], err)
		}
	}
	if s.TR, err = strconv.ParseFloat(f[8], 64); err != nil {
		return s, fmt.Errorf("TR: %w", err)
	}
	if s.TE, err = strconv.ParseFloat(f[9], 64); err != nil {
		return s, fmt.Errorf("TE: %w", err)
	}
	if s.MotionCorrected, err = strconv.ParseBool(f[11]); err != nil {
		return s, fmt.Errorf("is_motion_corrected: %w", err)
	}
	if s.Derived, err = strconv.ParseBool(f[12]); err != nil {
		return s, fmt.Errorf("is_derived: %w", err)
	}
	s.ExampleFile = f[1]
	s.SeriesID = f[2]
	s.DirName = f[3]
	s.ProtocolName = f[10]
	s.PatientID = f[13]
	s.StudyDescription = f[14]
	s.ReferringPhysician = f[15]
	s.SeriesDescription = f[16]
	if f[17] != "" {
		s.ImageType = strings.Split(f[17], "\\")
	}
	s.SeriesUID = f[18]
	s.SequenceName = f[19]
	return s, nil
}
