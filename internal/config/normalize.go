package config

import (
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// Cache sizing bounds when deriving capacity from system memory. A cached
// field plane runs to roughly half a megabyte at LaserDisc sample rates.
const (
	approxFieldBytes = 910 * 263 * 2
	minCacheFields   = 8
	maxCacheFields   = 256
	memoryShare      = 20 // 1/memoryShare of total RAM for caches
)

// Normalize expands paths and fills derived values. It runs after the file
// is decoded and before Validate.
func (c *Config) Normalize() {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Path = expandPath(c.Logging.Path)
	c.Report.Path = expandPath(c.Report.Path)

	c.Stacking.Mode = strings.ToLower(strings.TrimSpace(c.Stacking.Mode))
	c.Stacking.AudioMode = strings.ToLower(strings.TrimSpace(c.Stacking.AudioMode))
	c.Stacking.EFMMode = strings.ToLower(strings.TrimSpace(c.Stacking.EFMMode))

	if c.Cache.Fields == 0 {
		c.Cache.Fields = derivedCacheFields()
	}
}

// derivedCacheFields sizes the bounded caches from total system memory,
// clamped so small machines still cache usefully and large machines do not
// hoard fields nobody will revisit.
func derivedCacheFields() int {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return minCacheFields
	}
	total := uint64(info.Totalram) * uint64(info.Unit)
	fields := int(total / memoryShare / approxFieldBytes)
	if fields < minCacheFields {
		return minCacheFields
	}
	if fields > maxCacheFields {
		return maxCacheFields
	}
	return fields
}

func expandPath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" || !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~/"))
}
