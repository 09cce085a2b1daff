package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/dcmgroup/internal/model"
)

func sampleInfos() []model.SeqInfo {
	return []model.SeqInfo{
		{
			TotalFilesTillNow: 8, ExampleFile: "s00.dcm", SeriesID: "3-bold", DirName: "data",
			Dims: [4]int{64, 64, 36, 8}, TR: 2, TE: 30, ProtocolName: "bold",
			PatientID: "sub01", StudyDescription: "Brain", ReferringPhysician: "-",
			SeriesDescription: "bold\ttask", ImageType: []string{"ORIGINAL", "PRIMARY"},
			SeriesUID: "1.2.3",
		},
		{
			TotalFilesTillNow: 10, ExampleFile: "s04.dcm", SeriesID: "99-localizer", DirName: "data",
			Dims: [4]int{256, 256, 1, 2}, TR: -1, TE: -1, ProtocolName: "localizer",
			Derived: true, ReferringPhysician: "-",
		},
	}
}

func TestWriteTSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTSV(&buf, sampleInfos()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(Columns, "\t"), lines[0])
	for _, l := range lines[1:] {
		assert.Len(t, strings.Split(l, "\t"), len(Columns))
	}
	row := strings.Split(lines[1], "\t")
	assert.Equal(t, "2.0", row[8])
	assert.Equal(t, "30.0", row[9])
	assert.Equal(t, "bold task", row[16])
	assert.Equal(t, "-1", strings.Split(lines[2], "\t")[8])
}

func TestTSVRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTSV(&buf, sampleInfos()))

	got, err := ReadTSV(&buf)
	require.NoError(t, err)

	want := sampleInfos()
	want[0].SeriesDescription = "bold task"
	assert.Equal(t, want, got)
}

func TestReadTSV_BadHeader(t *testing.T) {
	_, err := ReadTSV(strings.NewReader("a\tb\n"))
	assert.Error(t, err)

	_, err = ReadTSV(strings.NewReader(""))
	assert.Error(t, err)
}

func TestWriteInfoAndOverride(t *testing.T) {
	dir := InfoDir(t.TempDir(), "sub01", "pre")
	assert.Equal(t, "info", filepath.Base(dir))
	assert.Equal(t, "ses-pre", filepath.Base(filepath.Dir(dir)))

	groups := model.FileGroupMap{"3-bold": {"a.dcm", "b.dcm"}, "1-t1": {"c.dcm"}}
	labels := model.Labels{{Template: "sub-{subject}/anat/sub-{subject}_T1w", Formats: []string{"nii.gz"}, Series: []string{"1-t1"}}}
	require.NoError(t, WriteInfo(dir, sampleInfos(), groups, labels))

	for _, name := range []string{TSVFile, FileGroupFile, AutoFile} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	_, err := LoadOverride(dir)
	assert.ErrorIs(t, err, ErrNoOverride)

	edited := model.Labels{{Template: "sub-{subject}/func/sub-{subject}_task-rest_bold", Formats: []string{"nii.gz"}, Series: []string{"3-bold"}}}
	require.NoError(t, SaveLabels(filepath.Join(dir, EditFile), edited))

	ov, err := LoadOverride(dir)
	require.NoError(t, err)
	assert.Equal(t, edited, ov.Labels)
	assert.Equal(t, groups, ov.Groups)

	auto, err := LoadLabels(filepath.Join(dir, AutoFile))
	require.NoError(t, err)
	assert.Equal(t, labels, auto)
}

func TestLoadOverride_MissingFileGroups(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, SaveLabels(filepath.Join(dir, EditFile), model.Labels{}))

	_, err := LoadOverride(dir)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoOverride)
}

func TestSaveFileGroups_SortedKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fg.json")
	require.NoError(t, SaveFileGroups(path, model.FileGroupMap{"b": {"2"}, "a": {"1"}}))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Less(t, strings.Index(string(b), `"a"`), strings.Index(string(b), `"b"`))
}
