// Package testutil provides helpers shared by package tests
package testutil

import (
	"archive/tar"
	"bytes"
	"testing"

	"github.com/klauspost/compress/gzip"
)

// TarEntry describes one entry of a generated archive
type TarEntry struct {
	Name     string
	Body     string
	Mode     int64
	Type     byte // tar.TypeReg when zero
	Linkname string
}

// TarGz builds an in-memory gzip-compressed tar archive
func TarGz(t *testing.T, entries []TarEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	gzWriter := gzip.NewWriter(&buf)
	tarWriter := tar.NewWriter(gzWriter)

	for _, entry := range entries {
		typeflag := entry.Type
		if typeflag == 0 {
			typeflag = tar.TypeReg
		}
		mode := entry.Mode
		if mode == 0 {
			mode = 0644
			if typeflag == tar.TypeDir {
				mode = 0755
			}
		}

		header := &tar.Header{
			Name:     entry.Name,
			Mode:     mode,
			Typeflag: typeflag,
			Linkname: entry.Linkname,
		}
		if typeflag == tar.TypeReg {
			header.Size = int64(len(entry.Body))
		}

		if err := tarWriter.WriteHeader(header); err != nil {
			t.Fatalf("write tar header %s: %v", entry.Name, err)
		}
		if typeflag == tar.TypeReg {
			if _, err := tarWriter.Write([]byte(entry.Body)); err != nil {
				t.Fatalf("write tar body %s: %v", entry.Name, err)
			}
		}
	}

	if err := tarWriter.Close(); err != nil {
		t.Fatalf("close tar writer: %v", err)
	}
	if err := gzWriter.Close(); err != nil {
		t.Fatalf("close gzip writer: %v", err)
	}

	return buf.Bytes()
}

// NodeDistribution returns the entries of a minimal Node.js distribution
// rooted at folder (e.g. node-v18.15.0-linux-x64).
func NodeDistribution(folder string) []TarEntry {
	return []TarEntry{
		{Name: folder + "/", Type: tar.TypeDir},
		{Name: folder + "/bin/", Type: tar.TypeDir},
		{Name: folder + "/bin/node", Body: "#!/bin/sh\necho node\n", Mode: 0755},
		{Name: folder + "/lib/node_modules/npm/bin/npm-cli.js", Body: "console.log('9.5.0')\n", Mode: 0755},
		{Name: folder + "/bin/npm", Type: tar.TypeSymlink, Linkname: "../lib/node_modules/npm/bin/npm-cli.js"},
	}
}
