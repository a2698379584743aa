// Package scan discovers activity files under a source directory and
// expands archive containers before a full sync.
package scan

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Format is the activity file format, keyed by extension.
type Format string

const (
	FormatGPX Format = "gpx"
	FormatTCX Format = "tcx"
	FormatFIT Format = "fit"
)

// FormatForPath maps a file path to its activity format by extension.
func FormatForPath(path string) (Format, bool) {
	switch Format(strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))) {
	case FormatGPX:
		return FormatGPX, true
	case FormatTCX:
		return FormatTCX, true
	case FormatFIT:
		return FormatFIT, true
	}
	return "", false
}

// ActivityFile describes one discovered source file. Ephemeral: created
// during scan, consumed once by the parser.
type ActivityFile struct {
	Format       Format     `json:"type"`
	Location     Location   `json:"location"`
	LastModified *time.Time `json:"-"`
}

type Location struct {
	Path string `json:"path"`
}

// MarshalJSON keeps the persisted descriptor shape stable:
// lastModificationDate is an ISO string or null.
func (f ActivityFile) MarshalJSON() ([]byte, error) {
	var lastMod *string
	if f.LastModified != nil {
		s := f.LastModified.UTC().Format(time.RFC3339)
		lastMod = &s
	}
	return json.Marshal(struct {
		Format   Format   `json:"type"`
		Location Location `json:"location"`
		LastMod  *string  `json:"lastModificationDate"`
	}{f.Format, f.Location, lastMod})
}

// lastAccess is max(modification time, change time), so a file copied in
// with an old mtime is still picked up by an incremental sync. The change
// time is platform specific; see stat_linux.go and stat_other.go.
func lastAccess(info os.FileInfo) time.Time {
	t := info.ModTime()
	if ctime := changeTime(info); ctime.After(t) {
		t = ctime
	}
	return t
}

// Activities walks dir for supported activity files. With a non-nil
// after, only files touched on or after that time are kept. recursive
// descends into subdirectories, flattening the results. The returned
// order is not defined.
func Activities(dir string, after *time.Time, recursive bool) ([]ActivityFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []ActivityFile
	for _, entry := range entries {
		full := filepath.Join(dir, entry.Name())

		if entry.IsDir() {
			if recursive {
				sub, err := Activities(full, after, recursive)
				if err != nil {
					return nil, err
				}
				files = append(files, sub...)
			}
			continue
		}

		format, ok := FormatForPath(entry.Name())
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, err
		}
		touched := lastAccess(info)
		if after != nil && touched.Before(*after) {
			continue
		}
		files = append(files, ActivityFile{
			Format:       format,
			Location:     Location{Path: full},
			LastModified: &touched,
		})
	}
	return files, nil
}
