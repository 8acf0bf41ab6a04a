package download

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dtvem/noderuntime/src/internal/ui"
	"github.com/klauspost/compress/gzip"
)

// ExtractTarGz decodes a gzip-compressed tar stream and extracts its entries
// into destDir. The stream is consumed as it is read; nothing is spooled to disk.
func ExtractTarGz(r io.Reader, destDir string) error {
	gzReader, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("creating gzip reader: %w", err)
	}
	defer func() { _ = gzReader.Close() }()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return err
	}

	tarReader := tar.NewReader(gzReader)
	entries := 0

	for {
		header, err := tarReader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("reading tar entry: %w", err)
		}

		if err := extractTarEntry(header, tarReader, destDir); err != nil {
			return fmt.Errorf("failed to extract %s: %w", header.Name, err)
		}
		entries++
	}

	// Drain trailing padding so callers hashing the raw stream see every byte
	if _, err := io.Copy(io.Discard, r); err != nil {
		return fmt.Errorf("reading archive trailer: %w", err)
	}

	ui.Debug("Extracted %d entries into %s", entries, destDir)
	return nil
}

func extractTarEntry(header *tar.Header, reader io.Reader, destDir string) error {
	destPath, err := safeJoin(destDir, header.Name)
	if err != nil {
		return err
	}

	switch header.Typeflag {
	case tar.TypeDir:
		return os.MkdirAll(destPath, dirMode(header.Mode))

	case tar.TypeReg:
		if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
			return err
		}

		outFile, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, os.FileMode(header.Mode).Perm())
		if err != nil {
			return err
		}
		defer func() { _ = outFile.Close() }()

		_, err = io.Copy(outFile, reader)
		return err

	case tar.TypeSymlink:
		// The link target is resolved relative to the link's own directory
		target := header.Linkname
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(destPath), target)
		}
		if !withinDir(destDir, target) {
			return fmt.Errorf("illegal symlink target: %s -> %s", header.Name, header.Linkname)
		}

		if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
			return err
		}
		_ = os.Remove(destPath)
		return os.Symlink(header.Linkname, destPath)

	case tar.TypeLink:
		linkTarget, err := safeJoin(destDir, header.Linkname)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
			return err
		}
		_ = os.Remove(destPath)
		return os.Link(linkTarget, destPath)

	default:
		// Skip other types
		return nil
	}
}

// safeJoin joins name onto destDir and rejects paths that escape it (ZipSlip)
func safeJoin(destDir, name string) (string, error) {
	destPath := filepath.Join(destDir, name)
	if !withinDir(destDir, destPath) {
		return "", fmt.Errorf("illegal file path: %s", name)
	}
	return destPath, nil
}

func withinDir(dir, path string) bool {
	cleanDir := filepath.Clean(dir)
	cleanPath := filepath.Clean(path)
	return cleanPath == cleanDir || strings.HasPrefix(cleanPath, cleanDir+string(os.PathSeparator))
}

func dirMode(mode int64) os.FileMode {
	perm := os.FileMode(mode).Perm()
	if perm == 0 {
		return 0755
	}
	// Directories must stay traversable for the extraction that follows
	return perm | 0700
}
