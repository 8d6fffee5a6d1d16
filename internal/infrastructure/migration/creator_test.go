package migration

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add parcel index", "add_parcel_index"},
		{"Add-Parcel-Index", "add_parcel_index"},
		{"ADD__PARCEL__INDEX", "add_parcel_index"},
		{"  spaces  ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"_leading and trailing_", "leading_and_trailing"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestList_EmbeddedSchema(t *testing.T) {
	files, err := List(Source(""))
	require.NoError(t, err)
	require.Len(t, files, 4)

	names := make([]string, len(files))
	for i, f := range files {
		assert.Equal(t, uint(i+1), f.Version)
		names[i] = f.Name
	}
	assert.Equal(t, []string{"create_branches", "create_debts", "create_cash_transactions", "create_outbox_events"}, names)
	assert.Equal(t, "000002_create_debts", files[1].Base())
}

func TestList_Rejects(t *testing.T) {
	t.Run("missing down half", func(t *testing.T) {
		_, err := List(fstest.MapFS{
			"000001_a.up.sql": {Data: []byte("")},
		})
		assert.ErrorContains(t, err, "missing its up or down")
	})

	t.Run("duplicate version", func(t *testing.T) {
		_, err := List(fstest.MapFS{
			"000001_a.up.sql":   {},
			"000001_a.down.sql": {},
			"000001_b.up.sql":   {},
			"000001_b.down.sql": {},
		})
		assert.ErrorContains(t, err, "share version 1")
	})

	t.Run("no version", func(t *testing.T) {
		_, err := List(fstest.MapFS{"latest.up.sql": {}})
		assert.ErrorContains(t, err, "no version prefix")
	})

	t.Run("ignores other files", func(t *testing.T) {
		files, err := List(fstest.MapFS{"README.md": {}, "embed.go": {}})
		require.NoError(t, err)
		assert.Empty(t, files)
	})
}

func TestCreate(t *testing.T) {
	dir := t.TempDir()

	first, err := Create(dir, "Add parcel index", "speeds up parcel lookups")
	require.NoError(t, err)
	assert.Equal(t, uint(1), first.Version)
	assert.Equal(t, filepath.Join(dir, "000001_add_parcel_index.up.sql"), first.UpPath)

	up, err := os.ReadFile(first.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "-- 000001_add_parcel_index\n")
	assert.Contains(t, string(up), "-- speeds up parcel lookups")

	down, err := os.ReadFile(first.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "(rollback)")

	second, err := Create(dir, "drop old column", "")
	require.NoError(t, err)
	assert.Equal(t, uint(2), second.Version)

	files, err := List(os.DirFS(dir))
	require.NoError(t, err)
	assert.Len(t, files, 2)

	_, err = Create(dir, "!!!", "")
	assert.Error(t, err)
}
