package migrations

import (
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/require"
)

func TestMigrationFiles_ArePaired(t *testing.T) {
	entries, err := fs.ReadDir(MigrationFiles, ".")
	require.NoError(t, err)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}

	require.NotEmpty(t, ups)
	require.Equal(t, ups, downs)
}

func TestMigrationFiles_CreateBlobTable(t *testing.T) {
	content, err := fs.ReadFile(MigrationFiles, "000001_create_blobs_table.up.sql")
	require.NoError(t, err)
	require.Contains(t, string(content), "CREATE TABLE IF NOT EXISTS blobs")
	require.Contains(t, string(content), "key        TEXT PRIMARY KEY")
}

func TestLatestVersion(t *testing.T) {
	src, err := iofs.New(MigrationFiles, ".")
	require.NoError(t, err)

	latest, err := LatestVersion(src)
	require.NoError(t, err)
	require.Equal(t, uint(1), latest)
}

func TestPreviousVersion(t *testing.T) {
	tests := []struct {
		name  string
		files fstest.MapFS
		from  uint
		want  int
	}{
		{
			name: "first migration resets to no version",
			files: fstest.MapFS{
				"000001_create_blobs_table.up.sql":   {Data: []byte("SELECT 1;")},
				"000001_create_blobs_table.down.sql": {Data: []byte("SELECT 1;")},
			},
			from: 1,
			want: -1,
		},
		{
			name: "later migration resets one step",
			files: fstest.MapFS{
				"000001_create_blobs_table.up.sql":   {Data: []byte("SELECT 1;")},
				"000001_create_blobs_table.down.sql": {Data: []byte("SELECT 1;")},
				"000003_add_blob_index.up.sql":       {Data: []byte("SELECT 1;")},
				"000003_add_blob_index.down.sql":     {Data: []byte("SELECT 1;")},
			},
			from: 3,
			want: 1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			src, err := iofs.New(tc.files, ".")
			require.NoError(t, err)

			got, err := PreviousVersion(src, tc.from)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)

			latest, err := LatestVersion(src)
			require.NoError(t, err)
			require.Equal(t, tc.from, latest)
		})
	}
}
