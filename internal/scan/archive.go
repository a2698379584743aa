package scan

import (
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"trena/internal/activity"
)

// IsArchiveFile reports whether the file name looks like a supported
// archive container.
func IsArchiveFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".zip", ".gz":
		return true
	}
	return false
}

// ExpandArchives walks dir for archives and inflates the activity files
// they contain next to each archive. Extraction happens sequentially, in
// a per-archive temp directory, so one corrupt archive never blocks the
// others; its error is reported through onError and scanning continues.
// onExtracted is invoked with the archive path after a successful
// extraction. Directory read failures are fatal.
func ExpandArchives(dir string, deleteArchives, recursive bool, onExtracted func(archivePath string), onError func(archivePath string, err error)) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		full := filepath.Join(dir, entry.Name())

		if entry.IsDir() {
			if recursive {
				if err := ExpandArchives(full, deleteArchives, recursive, onExtracted, onError); err != nil {
					return err
				}
			}
			continue
		}

		if !IsArchiveFile(entry.Name()) {
			continue
		}
		if _, err := InflateArchive(full, deleteArchives); err != nil {
			if onError != nil {
				onError(full, err)
			}
			continue
		}
		if onExtracted != nil {
			onExtracted(full)
		}
	}
	return nil
}

// InflateArchive extracts one archive into a temp directory fingerprinted
// from the archive name, then relocates every activity file found inside
// up to the archive's directory under a collision-free name:
// <archiveHash>[-<relativeDirHash>]-<originalName>. The temp directory is
// always removed, extraction failure included. Returns the new paths.
func InflateArchive(archivePath string, deleteArchive bool) (newPaths []string, err error) {
	archiveDir := filepath.Dir(archivePath)
	fingerprint := activity.ShortHash(filepath.Base(archivePath))
	extractDir := filepath.Join(archiveDir, fingerprint)

	if err := os.RemoveAll(extractDir); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(extractDir, 0o755); err != nil {
		return nil, err
	}
	defer os.RemoveAll(extractDir)

	if err := unpack(archivePath, extractDir); err != nil {
		return nil, err
	}

	extracted, err := Activities(extractDir, nil, true)
	if err != nil {
		return nil, err
	}

	for _, f := range extracted {
		base := filepath.Base(f.Location.Path)
		relDir, err := filepath.Rel(extractDir, filepath.Dir(f.Location.Path))
		if err != nil {
			return nil, err
		}
		name := fingerprint
		if relDir != "." {
			name += "-" + activity.ShortHash(filepath.ToSlash(relDir))
		}
		name += "-" + base
		dest := filepath.Join(archiveDir, name)
		if err := os.Rename(f.Location.Path, dest); err != nil {
			return nil, err
		}
		newPaths = append(newPaths, dest)
	}

	if deleteArchive {
		if err := os.Remove(archivePath); err != nil {
			return nil, err
		}
	}
	return newPaths, nil
}

func unpack(archivePath, destDir string) error {
	switch strings.ToLower(filepath.Ext(archivePath)) {
	case ".zip":
		return unpackZip(archivePath, destDir)
	case ".gz":
		return unpackGzip(archivePath, destDir)
	}
	return fmt.Errorf("unsupported archive: %s", archivePath)
}

func unpackZip(archivePath, destDir string) error {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return err
	}
	defer zr.Close()

	for _, f := range zr.File {
		// Reject entries escaping the extraction directory.
		dest := filepath.Join(destDir, filepath.FromSlash(f.Name))
		if !strings.HasPrefix(dest, filepath.Clean(destDir)+string(os.PathSeparator)) {
			return fmt.Errorf("archive entry escapes extraction dir: %s", f.Name)
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return err
		}
		if err := copyZipEntry(f, dest); err != nil {
			return err
		}
	}
	return nil
}

func copyZipEntry(f *zip.File, dest string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// unpackGzip inflates a single gzipped file; the member keeps the archive
// name minus the .gz suffix.
func unpackGzip(archivePath, destDir string) error {
	in, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer in.Close()

	zr, err := gzip.NewReader(in)
	if err != nil {
		return err
	}
	defer zr.Close()

	name := strings.TrimSuffix(filepath.Base(archivePath), filepath.Ext(archivePath))
	out, err := os.Create(filepath.Join(destDir, name))
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, zr); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
