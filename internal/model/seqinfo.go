package model

import (
	"fmt"
	"strconv"
)

// ExcludedSeries is the reserved series number for files that are tracked
// but never summarized.
const ExcludedSeries = -1

// NoProtocol labels files whose protocol name could not be read.
const NoProtocol = "none"

// StateDir holds per-subject grouping state under an output directory.
const StateDir = ".dcmgroup"

// GroupKey identifies a group. Keys order lexicographically by
// (Session, SeriesNumber, Protocol) and that order is the output order.
type GroupKey struct {
	Session      int    `json:"session"`
	SeriesNumber int    `json:"series_number"`
	Protocol     string `json:"protocol"`
}

// IsExcluded reports whether the key is in the sentinel bucket.
func (k GroupKey) IsExcluded() bool {
	return k.SeriesNumber == ExcludedSeries
}

// Less orders keys by session, then series number, then protocol name.
func (k GroupKey) Less(o GroupKey) bool {
	if k.Session != o.Session {
		return k.Session < o.Session
	}
	if k.SeriesNumber != o.SeriesNumber {
		return k.SeriesNumber < o.SeriesNumber
	}
	return k.Protocol < o.Protocol
}

// Render returns the series id used in reports and the file group map.
// The session prefix is only present when more than one session is in play.
func (k GroupKey) Render(multiSession bool) string {
	if multiSession {
		return fmt.Sprintf("%d-%d-%s", k.Session, k.SeriesNumber, k.Protocol)
	}
	return fmt.Sprintf("%d-%s", k.SeriesNumber, k.Protocol)
}

func (k GroupKey) String() string {
	return fmt.Sprintf("(%d, %d, %q)", k.Session, k.SeriesNumber, k.Protocol)
}

// SeqInfo is the summary record of one surviving group.
type SeqInfo struct {
	TotalFilesTillNow  int      `json:"total_files_till_now"`
	ExampleFile        string   `json:"example_dcm_file"`
	SeriesID           string   `json:"series_id"`
	DirName            string   `json:"dcm_dir_name"`
	Dims               [4]int   `json:"dims"`
	TR                 float64  `json:"tr"`
	TE                 float64  `json:"te"`
	ProtocolName       string   `json:"protocol_name"`
	MotionCorrected    bool     `json:"is_motion_corrected"`
	Derived            bool     `json:"is_derived"`
	PatientID          string   `json:"patient_id"`
	StudyDescription   string   `json:"study_description"`
	ReferringPhysician string   `json:"referring_physician_name"`
	SeriesDescription  string   `json:"series_description"`
	ImageType          []string `json:"image_type"`
	SeriesUID          string   `json:"series_uid,omitempty"`
	SequenceName       string   `json:"sequence_name,omitempty"`
}

// FileGroupMap maps a rendered series id to its files in arrival order.
type FileGroupMap map[string][]string

// FormatSeconds renders a timing value, keeping one decimal for whole numbers
// so that 2 prints as "2.0". The -1 sentinel prints as "-1".
func FormatSeconds(v float64) string {
	if v == -1 {
		return "-1"
	}
	if v == float64(int64(v)) {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
