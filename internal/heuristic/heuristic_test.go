package heuristic

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/dcmgroup/internal/model"
)

const sample = `
exclude:
  - name: scouts
    match:
      - field: protocol_name
        pattern: "(?i)localizer|scout"
outputs:
  - template: "sub-{subject}/anat/sub-{subject}_T1w"
    match:
      - field: protocol_name
        pattern: "(?i)mprage|t1"
      - field: is_derived
        pattern: "^false$"
  - template: "sub-{subject}/func/sub-{subject}_task-rest_run-{item:02d}_bold"
    formats: [nii.gz, dicom]
    match:
      - field: protocol_name
        pattern: "bold"
      - field: dim4
        pattern: "^[0-9]{2,}$"
`

func TestParseAndExclude(t *testing.T) {
	h, err := Parse([]byte(sample))
	require.NoError(t, err)
	require.Len(t, h.Outputs, 2)
	assert.Equal(t, []string{"nii.gz"}, h.Outputs[0].Formats)

	ok, err := h.Excludes(&model.Metadata{ProtocolName: "AAHead_Scout_32ch"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Excludes(&model.Metadata{ProtocolName: "MPRAGE"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLabel(t *testing.T) {
	h, err := Parse([]byte(sample))
	require.NoError(t, err)

	infos := []model.SeqInfo{
		{SeriesID: "2-MPRAGE", ProtocolName: "MPRAGE", Dims: [4]int{256, 256, 176, 1}},
		{SeriesID: "3-MPRAGE", ProtocolName: "MPRAGE", Derived: true},
		{SeriesID: "5-bold", ProtocolName: "bold", Dims: [4]int{64, 64, 36, 200}},
		{SeriesID: "6-bold", ProtocolName: "bold", Dims: [4]int{64, 64, 36, 3}},
		{SeriesID: "7-bold", ProtocolName: "bold", Dims: [4]int{64, 64, 36, 180}},
	}

	labels, err := h.Label(infos)
	require.NoError(t, err)

	assert.Equal(t, model.Labels{
		{Template: "sub-{subject}/anat/sub-{subject}_T1w", Formats: []string{"nii.gz"}, Series: []string{"2-MPRAGE"}},
		{Template: "sub-{subject}/func/sub-{subject}_task-rest_run-{item:02d}_bold", Formats: []string{"nii.gz", "dicom"}, Series: []string{"5-bold", "7-bold"}},
	}, labels)
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]string{
		"unknown key":   "outputs:\n  - template: x\n    bogus: 1\n",
		"unknown field": "exclude:\n  - match:\n      - field: nope\n        pattern: x\n",
		"bad regex":     "exclude:\n  - match:\n      - field: protocol_name\n        pattern: \"(\"\n",
		"no template":   "outputs:\n  - formats: [nii]\n",
		"seqinfo field": "exclude:\n  - match:\n      - field: dim4\n        pattern: x\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestExcludes_UncompiledRuleFails(t *testing.T) {
	h := &Heuristic{Exclude: []Rule{{Name: "raw", Match: []Condition{{Field: "protocol_name", Pattern: "x"}}}}}

	_, err := h.Excludes(&model.Metadata{ProtocolName: "x"})
	assert.Error(t, err)
}

func TestDefaultLabelsEverything(t *testing.T) {
	labels, err := Default().Label([]model.SeqInfo{{SeriesID: "1-a"}, {SeriesID: "2-b"}})
	require.NoError(t, err)
	require.Len(t, labels, 1)
	assert.Equal(t, []string{"1-a", "2-b"}, labels[0].Series)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "h.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	h, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, h.Exclude, 1)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
