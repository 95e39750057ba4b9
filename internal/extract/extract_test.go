package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ikvmbuild/internal/model"
	"github.com/roach88/ikvmbuild/internal/testutil"
)

func TestExtractAllKeepsOnlyClasses(t *testing.T) {
	dir := t.TempDir()
	a := testutil.WriteJar(t, filepath.Join(dir, "a.jar"), map[string]string{
		"META-INF/MANIFEST.MF":      "Manifest-Version: 1.0\n",
		"com/example/A.class":       "cafebabe-a",
		"com/example/icon.png":      "png",
		"com/example/inner/B.class": "cafebabe-b",
	})
	b := testutil.WriteJar(t, filepath.Join(dir, "b.jar"), map[string]string{
		"org/lib/C.class": "cafebabe-c",
		"org/lib/c.xml":   "<c/>",
	})
	dest := filepath.Join(dir, "target", "dll-classes")

	err := New(ClassFiles, nil).ExtractAll([]string{a, b}, dest)
	require.NoError(t, err)

	var files []string
	require.NoError(t, filepath.Walk(dest, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			rel, _ := filepath.Rel(dest, p)
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	}))
	assert.ElementsMatch(t, []string{
		"com/example/A.class",
		"com/example/inner/B.class",
		"org/lib/C.class",
	}, files)

	data, err := os.ReadFile(filepath.Join(dest, "org", "lib", "C.class"))
	require.NoError(t, err)
	assert.Equal(t, "cafebabe-c", string(data))
}

func TestExtractAllReusesDestination(t *testing.T) {
	dir := t.TempDir()
	jar := testutil.WriteJar(t, filepath.Join(dir, "a.jar"), map[string]string{"A.class": "v2"})
	dest := filepath.Join(dir, "dll-classes")
	testutil.WriteFile(t, filepath.Join(dest, "Stale.class"), "old")

	require.NoError(t, New(ClassFiles, nil).ExtractAll([]string{jar}, dest))
	require.NoError(t, New(ClassFiles, nil).ExtractAll([]string{jar}, dest))

	assert.FileExists(t, filepath.Join(dest, "Stale.class"))
	data, err := os.ReadFile(filepath.Join(dest, "A.class"))
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))
}

func TestExtractAllFailsOnBadArchive(t *testing.T) {
	dir := t.TempDir()
	good := testutil.WriteJar(t, filepath.Join(dir, "good.jar"), map[string]string{"A.class": "x"})
	bad := testutil.WriteFile(t, filepath.Join(dir, "bad.jar"), "not a zip")
	never := testutil.WriteJar(t, filepath.Join(dir, "never.jar"), map[string]string{"Z.class": "z"})
	dest := filepath.Join(dir, "out")

	err := New(ClassFiles, nil).ExtractAll([]string{good, bad, never}, dest)
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.ErrExtraction))
	assert.Contains(t, err.Error(), bad)
	assert.NoFileExists(t, filepath.Join(dest, "Z.class"))
}

func TestExtractAllMissingArchive(t *testing.T) {
	dir := t.TempDir()
	err := New(ClassFiles, nil).ExtractAll([]string{filepath.Join(dir, "nope.jar")}, filepath.Join(dir, "out"))
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.ErrExtraction))
}

func TestExtractRejectsEscapingEntries(t *testing.T) {
	dir := t.TempDir()
	jar := testutil.WriteJar(t, filepath.Join(dir, "evil.jar"), map[string]string{
		"../../escape.class": "x",
	})

	_, err := New(ClassFiles, nil).Extract(jar, filepath.Join(dir, "a", "b"))
	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "escape.class"))
}

func TestExtractPredicate(t *testing.T) {
	dir := t.TempDir()
	jar := testutil.WriteJar(t, filepath.Join(dir, "a.jar"), map[string]string{
		"A.class": "a",
		"a.txt":   "t",
	})

	n, err := New(All, nil).Extract(jar, filepath.Join(dir, "all"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = New(func(name string) bool { return name == "a.txt" }, nil).Extract(jar, filepath.Join(dir, "txt"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.FileExists(t, filepath.Join(dir, "txt", "a.txt"))
}

func TestClassFiles(t *testing.T) {
	assert.True(t, ClassFiles("a/B.class"))
	assert.False(t, ClassFiles("a/B.class.bak"))
	assert.False(t, ClassFiles("META-INF/MANIFEST.MF"))
}
