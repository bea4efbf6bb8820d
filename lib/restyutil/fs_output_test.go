package restyutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFilesystemOutput(t *testing.T) {
	dir := t.TempDir()

	output, err := NewFilesystemOutput(dir, 2)
	if err != nil {
		t.Fatal(err)
	}
	output.Write("0001-get-MyCourse.jsp", "GET /MyCourse.jsp")

	contents, err := os.ReadFile(filepath.Join(output.Session, "0001-get-MyCourse.jsp.http"))
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "GET /MyCourse.jsp", string(contents))
}

func TestPruneSessions(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"20121001-080000-1", "20121002-080000-1", "20121003-080000-1"} {
		err := os.Mkdir(filepath.Join(dir, name), 0700)
		if err != nil {
			t.Fatal(err)
		}
	}
	err := os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0600)
	if err != nil {
		t.Fatal(err)
	}

	err = pruneSessions(dir, 2)
	if err != nil {
		t.Fatal(err)
	}
	require.NoDirExists(t, filepath.Join(dir, "20121001-080000-1"))
	require.DirExists(t, filepath.Join(dir, "20121002-080000-1"))
	require.DirExists(t, filepath.Join(dir, "20121003-080000-1"))
	require.FileExists(t, filepath.Join(dir, "notes.txt"))

	require.NoError(t, pruneSessions(dir, 0))
	require.DirExists(t, filepath.Join(dir, "20121002-080000-1"))
}
