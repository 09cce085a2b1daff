// Package dicomfile reads the grouping metadata out of DICOM Part 10 files.
package dicomfile

import (
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/rcliao/dcmgroup/internal/model"
)

// Extractor turns one file into a metadata record. Implementations never
// fail: unreadable files yield a degraded record.
type Extractor interface {
	Extract(path string) *model.Metadata
}

// Tags read by the extractor.
var (
	tagSOPClassUID          = tag.Tag{Group: 0x0008, Element: 0x0016}
	tagStudyDate            = tag.Tag{Group: 0x0008, Element: 0x0020}
	tagAccessionNumber      = tag.Tag{Group: 0x0008, Element: 0x0050}
	tagImageType            = tag.Tag{Group: 0x0008, Element: 0x0008}
	tagReferringPhysician   = tag.Tag{Group: 0x0008, Element: 0x0090}
	tagStudyDescription     = tag.Tag{Group: 0x0008, Element: 0x1030}
	tagSeriesDescription    = tag.Tag{Group: 0x0008, Element: 0x103E}
	tagPatientID            = tag.Tag{Group: 0x0010, Element: 0x0020}
	tagMRAcquisitionType    = tag.Tag{Group: 0x0018, Element: 0x0023}
	tagSequenceName         = tag.Tag{Group: 0x0018, Element: 0x0024}
	tagSliceThickness       = tag.Tag{Group: 0x0018, Element: 0x0050}
	tagRepetitionTime       = tag.Tag{Group: 0x0018, Element: 0x0080}
	tagEchoTime             = tag.Tag{Group: 0x0018, Element: 0x0081}
	tagEchoNumbers          = tag.Tag{Group: 0x0018, Element: 0x0086}
	tagProtocolName         = tag.Tag{Group: 0x0018, Element: 0x1030}
	tagSeriesInstanceUID    = tag.Tag{Group: 0x0020, Element: 0x000E}
	tagSeriesNumber         = tag.Tag{Group: 0x0020, Element: 0x0011}
	tagImageOrientation     = tag.Tag{Group: 0x0020, Element: 0x0037}
	tagDimensionIndexValues = tag.Tag{Group: 0x0020, Element: 0x9157}
	tagNumberOfFrames       = tag.Tag{Group: 0x0028, Element: 0x0008}
	tagRows                 = tag.Tag{Group: 0x0028, Element: 0x0010}
	tagColumns              = tag.Tag{Group: 0x0028, Element: 0x0011}
	tagPixelSpacing         = tag.Tag{Group: 0x0028, Element: 0x0030}
)

// Reader extracts metadata with github.com/suyashkumar/dicom.
type Reader struct {
	// BaseDir, when set, is prepended to relative paths before reading.
	BaseDir string
}

// NewReader returns a Reader resolving relative paths against baseDir.
func NewReader(baseDir string) *Reader {
	return &Reader{BaseDir: baseDir}
}

// Extract parses path and returns its metadata record. Parse failures are
// logged at debug level and produce a degraded record.
func (r *Reader) Extract(path string) *model.Metadata {
	full := path
	if r.BaseDir != "" && !filepath.IsAbs(path) {
		full = filepath.Join(r.BaseDir, path)
	}

	ds, err := dicom.ParseFile(full, nil, dicom.SkipPixelData())
	if err != nil {
		slog.Debug("extraction failed", "path", full, "error", err)
		return model.Degrade(path)
	}
	return fromDataset(path, &ds)
}

func fromDataset(path string, ds *dicom.Dataset) *model.Metadata {
	md := &model.Metadata{
		Path:              path,
		ProtocolName:      first(ds, tagProtocolName),
		SOPClass:          SOPClassName(first(ds, tagSOPClassUID)),
		ImageType:         values(ds, tagImageType),
		SeriesDescription: first(ds, tagSeriesDescription),
		PatientID:         first(ds, tagPatientID),
		StudyDescription:  first(ds, tagStudyDescription),
		SeriesUID:         first(ds, tagSeriesInstanceUID),
		SequenceName:      first(ds, tagSequenceName),
		AccessionNumber:   first(ds, tagAccessionNumber),
		StudyDate:         first(ds, tagStudyDate),
		SeriesNumber:      intOf(ds, tagSeriesNumber),
		RepetitionTime:    floatOf(ds, tagRepetitionTime),
		EchoTime:          floatOf(ds, tagEchoTime),
		Rows:              intOf(ds, tagRows),
		Columns:           intOf(ds, tagColumns),
		Slices:            intOf(ds, tagNumberOfFrames),
	}
	if vs := values(ds, tagReferringPhysician); len(vs) > 0 && vs[0] != "" {
		name := strings.Join(vs, "\\")
		md.ReferringPhysician = &name
	}

	attrs := map[string]string{
		model.AttrSeriesUID:       md.SeriesUID,
		model.AttrImageType:       strings.Join(md.ImageType, "\\"),
		model.AttrOrientation:     joined(ds, tagImageOrientation),
		model.AttrDeviceDims:      joined(ds, tagDimensionIndexValues),
		model.AttrPulseSequence:   md.SequenceName,
		model.AttrVoxelSize:       joined(ds, tagPixelSpacing) + "/" + first(ds, tagSliceThickness),
		model.AttrEchoNumber:      first(ds, tagEchoNumbers),
		model.AttrAcquisitionType: first(ds, tagMRAcquisitionType),
	}
	if md.SeriesNumber != nil {
		attrs[model.AttrSeriesNumber] = strconv.Itoa(*md.SeriesNumber)
	}
	if md.HasShape() {
		attrs[model.AttrImageShape] = shapeString(md)
	}
	md.Attributes = attrs
	return md
}

func shapeString(md *model.Metadata) string {
	s := strconv.Itoa(*md.Rows) + "x" + strconv.Itoa(*md.Columns)
	if md.Slices != nil {
		s += "x" + strconv.Itoa(*md.Slices)
	}
	return s
}

// values returns every value of an element as trimmed strings.
func values(ds *dicom.Dataset, t tag.Tag) []string {
	el, err := ds.FindElementByTag(t)
	if err != nil || el == nil || el.Value == nil {
		return nil
	}
	switch v := el.Value.GetValue().(type) {
	case []string:
		out := make([]string, 0, len(v))
		for _, s := range v {
			// Some writers leave multi-valued strings unsplit.
			for _, part := range strings.Split(s, "\\") {
				out = append(out, strings.TrimSpace(strings.TrimRight(part, "\x00")))
			}
		}
		return out
	case []int:
		out := make([]string, len(v))
		for i, n := range v {
			out[i] = strconv.Itoa(n)
		}
		return out
	case []float64:
		out := make([]string, len(v))
		for i, f := range v {
			out[i] = strconv.FormatFloat(f, 'g', -1, 64)
		}
		return out
	}
	return nil
}

func first(ds *dicom.Dataset, t tag.Tag) string {
	vs := values(ds, t)
	if len(vs) == 0 {
		return ""
	}
	return vs[0]
}

func joined(ds *dicom.Dataset, t tag.Tag) string {
	return strings.Join(values(ds, t), "\\")
}

func intOf(ds *dicom.Dataset, t tag.Tag) *int {
	s := first(ds, t)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return nil
		}
		n = int(f)
	}
	return &n
}

func floatOf(ds *dicom.Dataset, t tag.Tag) *float64 {
	s := first(ds, t)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}
