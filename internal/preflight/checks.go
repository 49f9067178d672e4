package preflight

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"talkscout/internal/config"
	"talkscout/internal/deps"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates the external binaries the configured pipeline needs.
// Both capture and the status command use this so the requirements list lives
// in one place.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.CheckBinaries(deps.ForConfig(cfg))
}

// CheckDependencies folds binary availability into preflight results.
// Optional binaries that are missing pass with an explanatory detail.
func CheckDependencies(cfg *config.Config) []Result {
	statuses := CheckSystemDeps(cfg)
	results := make([]Result, 0, len(statuses))
	for _, s := range statuses {
		switch {
		case s.Available:
			results = append(results, Result{Name: s.Name, Passed: true, Detail: s.Path})
		case s.Optional:
			results = append(results, Result{Name: s.Name, Passed: true, Detail: s.Detail + " (optional)"})
		default:
			results = append(results, Result{Name: s.Name, Detail: s.Detail})
		}
	}
	return results
}
