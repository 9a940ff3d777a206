package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths contains all the application paths.
// All paths resolve relative to the executable directory, never the current
// working directory, so the dashboard behaves the same whether launched from
// a shell or a double-click.
type Paths struct {
	ExecutableDir string
	DataDir       string
	LogsDir       string
	WebDir        string

	// DatasetFile is the resolved path of the statistics CSV export.
	DatasetFile string
}

// GetPaths returns the application paths for the given dataset file name.
// Expected layout next to the executable:
//
//	secustats-web
//	├── data/
//	│   └── serieschrono-datagouv.csv
//	├── logs/
//	└── web/            (only when not using the embedded frontend)
func GetPaths(datasetFile string) (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %w", err)
	}

	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}

	exeDir := filepath.Dir(exe)
	dataDir := filepath.Join(exeDir, "data")

	dataset := datasetFile
	if !filepath.IsAbs(dataset) {
		dataset = filepath.Join(dataDir, datasetFile)
	}

	return &Paths{
		ExecutableDir: exeDir,
		DataDir:       dataDir,
		LogsDir:       filepath.Join(exeDir, "logs"),
		WebDir:        filepath.Join(exeDir, "web"),
		DatasetFile:   dataset,
	}, nil
}

// EnsureDirectories creates the writable directories if they do not exist.
// The data directory is created too so the user has an obvious place to drop
// the downloaded CSV.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.DataDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// FileExists reports whether the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}
