package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerceParam(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 42, coerceParam("42"))
	assert.Equal(t, true, coerceParam("true"))
	assert.Equal(t, false, coerceParam("false"))
	assert.Equal(t, "1.5mm", coerceParam("1.5mm"))
	assert.Equal(t, "hello", coerceParam("hello"))
}

func TestLocalPathFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		fname    string
		cubePath string
		destDir  string
		want     string
	}{
		{
			name:     "strips prefix",
			fname:    "alice/uploads/study/a.dcm",
			cubePath: "alice/uploads",
			destDir:  "out",
			want:     filepath.Join("out", "study", "a.dcm"),
		},
		{
			name:     "exact match falls back to base name",
			fname:    "alice/uploads/a.dcm",
			cubePath: "alice/uploads/a.dcm",
			destDir:  "out",
			want:     filepath.Join("out", "a.dcm"),
		},
		{
			name:     "dot destination",
			fname:    "alice/uploads/a.dcm",
			cubePath: "alice/uploads",
			destDir:  ".",
			want:     "a.dcm",
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, localPathFor(tt.fname, tt.cubePath, tt.destDir))
		})
	}
}

func TestCollectLocalFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "study", "nested"), 0750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "study", "a.dcm"), []byte("aa"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "study", "nested", "b.dcm"), []byte("bbb"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "single.txt"), []byte("s"), 0600))

	files, err := collectLocalFiles([]string{
		filepath.Join(dir, "study"),
		filepath.Join(dir, "single.txt"),
	})
	require.NoError(t, err)
	require.Len(t, files, 3)

	rels := make(map[string]int64)
	for _, f := range files {
		rels[f.rel] = f.size
	}

	assert.Equal(t, int64(2), rels["study/a.dcm"])
	assert.Equal(t, int64(3), rels["study/nested/b.dcm"])
	assert.Equal(t, int64(1), rels["single.txt"])
}

func TestCollectLocalFiles_Missing(t *testing.T) {
	t.Parallel()

	_, err := collectLocalFiles([]string{filepath.Join(t.TempDir(), "nope")})
	require.Error(t, err)
}
