// conf/utils.go various util functions for configuration package
package conf

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/go-sql-driver/mysql"

	"github.com/JimmyVaras/ros-web-app/internal/errors"
)

const osWindows = "windows"

// GetDefaultConfigPaths returns a list of default configuration paths for the current operating system.
// If a config.yaml file is found in any of the paths, only that path is returned.
func GetDefaultConfigPaths() ([]string, error) {
	var configPaths []string

	exePath, err := os.Executable()
	if err != nil {
		return nil, errors.New(err).
			Component("conf").
			Category(errors.CategorySystem).
			Context("operation", "get-executable-path").
			Build()
	}
	exeDir := filepath.Dir(exePath)

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.New(err).
			Component("conf").
			Category(errors.CategorySystem).
			Context("operation", "get-home-directory").
			Build()
	}

	switch runtime.GOOS {
	case osWindows:
		configPaths = []string{
			exeDir,
			filepath.Join(homeDir, "AppData", "Roaming", appConfigDir),
		}
	default:
		configPaths = []string{
			filepath.Join(homeDir, ".config", appConfigDir),
			"/etc/" + appConfigDir,
		}
	}

	for _, path := range configPaths {
		if _, err := os.Stat(filepath.Join(path, "config.yaml")); err == nil {
			return []string{path}, nil
		}
	}

	return configPaths, nil
}

// GetBasePath expands environment variables in the given path and ensures the resulting directory exists.
func GetBasePath(path string) string {
	basePath := filepath.Clean(os.ExpandEnv(path))

	if _, err := os.Stat(basePath); os.IsNotExist(err) {
		if err := os.MkdirAll(basePath, 0o750); err != nil {
			fmt.Printf("failed to create directory '%s': %v\n", basePath, err)
		}
	}

	return basePath
}

// MySQLDSN builds the gorm/mysql connection string from the output settings.
func (s *Settings) MySQLDSN() string {
	cfg := mysql.NewConfig()
	cfg.User = s.Output.MySQL.Username
	cfg.Passwd = s.Output.MySQL.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(s.Output.MySQL.Host, s.Output.MySQL.Port)
	cfg.DBName = s.Output.MySQL.Database
	cfg.ParseTime = true
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}

// ParsePort returns the MySQL port as an integer, 0 when unparsable.
func ParsePort(port string) int {
	n, err := strconv.Atoi(port)
	if err != nil {
		return 0
	}
	return n
}
