package conf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMySQLDSN(t *testing.T) {
	t.Parallel()

	s := &Settings{}
	s.Output.MySQL.Username = "rosweb"
	s.Output.MySQL.Password = "p@ss"
	s.Output.MySQL.Host = "db.local"
	s.Output.MySQL.Port = "3307"
	s.Output.MySQL.Database = "robots"

	cfg, err := mysql.ParseDSN(s.MySQLDSN())
	require.NoError(t, err)
	assert.Equal(t, "rosweb", cfg.User)
	assert.Equal(t, "p@ss", cfg.Passwd)
	assert.Equal(t, "db.local:3307", cfg.Addr)
	assert.Equal(t, "robots", cfg.DBName)
	assert.True(t, cfg.ParseTime)
}

func TestGetBasePathCreatesDirectory(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "data")
	got := GetBasePath(dir + "/")
	assert.Equal(t, dir, got)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestGetDefaultConfigPaths(t *testing.T) {
	t.Parallel()

	paths, err := GetDefaultConfigPaths()
	require.NoError(t, err)
	require.NotEmpty(t, paths)
	for _, p := range paths {
		assert.Contains(t, p, appConfigDir)
	}
}
