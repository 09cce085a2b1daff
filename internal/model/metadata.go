// Package model defines the core grouping data types.
package model

// Signature attribute names. The orientation, device-internal dimension and
// pulse-sequence name attributes vary across slices of a single series.
const (
	AttrSeriesUID       = "series_uid"
	AttrSeriesNumber    = "series_number"
	AttrImageType       = "image_type"
	AttrImageShape      = "image_shape"
	AttrVoxelSize       = "voxel_size"
	AttrOrientation     = "orientation"
	AttrDeviceDims      = "device_internal_dims"
	AttrPulseSequence   = "pulse_sequence_internal_name"
	AttrEchoNumber      = "echo_number"
	AttrAcquisitionType = "acquisition_type"
)

// Metadata is the per-file record produced by the extractor.
// It is created once per file and never modified afterwards.
type Metadata struct {
	Path string `json:"path"`

	SeriesNumber       *int     `json:"series_number,omitempty"`
	ProtocolName       string   `json:"protocol_name"`
	SOPClass           string   `json:"sop_class"`
	ImageType          []string `json:"image_type,omitempty"`
	SeriesDescription  string   `json:"series_description"`
	PatientID          string   `json:"patient_id"`
	StudyDescription   string   `json:"study_description"`
	ReferringPhysician *string  `json:"referring_physician,omitempty"`
	RepetitionTime     *float64 `json:"repetition_time,omitempty"`
	EchoTime           *float64 `json:"echo_time,omitempty"`

	Rows    *int `json:"rows,omitempty"`
	Columns *int `json:"columns,omitempty"`
	Slices  *int `json:"slices,omitempty"`

	SeriesUID       string `json:"series_uid,omitempty"`
	SequenceName    string `json:"sequence_name,omitempty"`
	AccessionNumber string `json:"accession_number,omitempty"`
	StudyDate       string `json:"study_date,omitempty"`

	// Attributes is compared only through the series signature.
	Attributes map[string]string `json:"attributes,omitempty"`

	// Degraded is set when the file could not be parsed.
	Degraded bool `json:"degraded,omitempty"`
}

// HasShape reports whether the record carries image dimensions.
func (m *Metadata) HasShape() bool {
	return m != nil && m.Rows != nil && m.Columns != nil
}

// Degrade returns a record with every grouping field absent.
func Degrade(path string) *Metadata {
	return &Metadata{Path: path, Degraded: true}
}
