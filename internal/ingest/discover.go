// ABOUTME: Locates source exports in an input directory by naming convention.
// ABOUTME: Activity export under export_*/, recovery and device files at the top level.
package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// File name patterns fixed by the export tooling.
const (
	ActivityDirPattern  = "export_*"
	ActivityFileName    = "activities.csv"
	RecoveryFilePattern = "oura_*_trends.csv"
	DeviceFilePattern   = "garmin_*.csv"
)

// Sources lists the files found in one input directory. Every slice is
// sorted so runs over the same directory see the same order.
type Sources struct {
	// Activity is the activity export, empty when none was found.
	Activity string
	Recovery []string
	Device   []string
}

// Discover scans dir for export files.
func Discover(dir string) (*Sources, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("source directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source directory: %s is not a directory", dir)
	}

	src := &Sources{}

	exports, err := glob(dir, ActivityDirPattern)
	if err != nil {
		return nil, err
	}
	for _, d := range exports {
		candidate := filepath.Join(d, ActivityFileName)
		if fi, err := os.Stat(candidate); err == nil && !fi.IsDir() {
			src.Activity = candidate
			break
		}
	}

	if src.Recovery, err = glob(dir, RecoveryFilePattern); err != nil {
		return nil, err
	}
	if src.Device, err = glob(dir, DeviceFilePattern); err != nil {
		return nil, err
	}
	return src, nil
}

func glob(dir, pattern string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	sort.Strings(matches)
	return matches, nil
}
