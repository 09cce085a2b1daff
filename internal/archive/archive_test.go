package archive

import (
	"archive/tar"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTar(t *testing.T, path string, compress bool, members map[string]string, order ...string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	var tw *tar.Writer
	if compress {
		zw := gzip.NewWriter(f)
		defer zw.Close()
		tw = tar.NewWriter(zw)
	} else {
		tw = tar.NewWriter(f)
	}
	defer tw.Close()

	for _, name := range order {
		body := members[name]
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name: name, Mode: 0o644, Size: int64(len(body)), Typeflag: tar.TypeReg,
		}))
		_, err := tw.Write([]byte(body))
		require.NoError(t, err)
	}
}

func TestIsArchive(t *testing.T) {
	assert.True(t, IsArchive("a.tar"))
	assert.True(t, IsArchive("A.TAR.GZ"))
	assert.True(t, IsArchive("x.tgz"))
	assert.False(t, IsArchive("x.dcm"))
	assert.False(t, IsArchive("dir"))
}

func TestExpand_ArchivesGetOneSessionEach(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "visit1.tar")
	b := filepath.Join(dir, "visit2.tgz")
	writeTar(t, a, false, map[string]string{"s/2.dcm": "two", "s/1.dcm": "one"}, "s/2.dcm", "s/1.dcm")
	writeTar(t, b, true, map[string]string{"x.dcm": "x"}, "x.dcm")

	set, err := Expand(context.Background(), []string{a, b}, filepath.Join(dir, "work"))

	require.NoError(t, err)
	require.Len(t, set.Files, 3)
	assert.Equal(t, []int{0, 0, 1}, set.Sessions)
	assert.True(t, set.MultiSession())
	// Archive order is kept.
	assert.Equal(t, "2.dcm", filepath.Base(set.Files[0]))
	body, err := os.ReadFile(set.Files[2])
	require.NoError(t, err)
	assert.Equal(t, "x", string(body))

	in := set.Inputs()
	assert.Equal(t, 2, in[2].Index)
	assert.Equal(t, 1, in[2].Session)
}

func TestExpand_MixedInputsRejected(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "visit1.tar")
	writeTar(t, a, false, map[string]string{"1.dcm": "one"}, "1.dcm")
	plain := filepath.Join(dir, "loose.dcm")
	require.NoError(t, os.WriteFile(plain, []byte("x"), 0o644))

	_, err := Expand(context.Background(), []string{a, plain}, filepath.Join(dir, "work"))

	assert.ErrorIs(t, err, ErrInconsistentArchiveSet)
}

func TestExpand_DirectoriesAndFiles(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "series")
	require.NoError(t, os.MkdirAll(filepath.Join(sub, "nested"), 0o755))
	for _, name := range []string{"b.dcm", "a.dcm", "nested/c.dcm"} {
		require.NoError(t, os.WriteFile(filepath.Join(sub, name), []byte(name), 0o644))
	}
	loose := filepath.Join(dir, "z.dcm")
	require.NoError(t, os.WriteFile(loose, []byte("z"), 0o644))

	set, err := Expand(context.Background(), []string{loose, sub}, "")

	require.NoError(t, err)
	assert.Equal(t, []string{
		loose,
		filepath.Join(sub, "a.dcm"),
		filepath.Join(sub, "b.dcm"),
		filepath.Join(sub, "nested", "c.dcm"),
	}, set.Files)
	assert.Equal(t, []int{0, 0, 0, 0}, set.Sessions)
	assert.False(t, set.MultiSession())
}

func TestExpand_SkipsStateDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.dcm"), []byte("a"), 0o644))
	state := filepath.Join(dir, ".dcmgroup", "01", "extracted", "session-000")
	require.NoError(t, os.MkdirAll(state, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(state, "old.dcm"), []byte("old"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".dcmgroup", "01", "dicominfo.tsv"), nil, 0o644))

	set, err := Expand(context.Background(), []string{dir}, "")

	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.dcm")}, set.Files)
}

func TestExpand_MissingInput(t *testing.T) {
	_, err := Expand(context.Background(), []string{filepath.Join(t.TempDir(), "nope")}, "")
	assert.Error(t, err)
}

func TestExtract_RejectsEscapingMember(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "evil.tar")
	writeTar(t, a, false, map[string]string{"../escape.dcm": "x"}, "../escape.dcm")

	_, err := Extract(context.Background(), a, filepath.Join(dir, "work"))

	assert.ErrorIs(t, err, ErrUnsafeMember)
}
