package download

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"strings"
)

// ChecksumsFileName is the name of the checksum list published next to each Node.js release.
const ChecksumsFileName = "SHASUMS256.txt"

// ErrChecksumMismatch is returned when the downloaded file's checksum doesn't match.
type ErrChecksumMismatch struct {
	Expected string
	Actual   string
}

func (e *ErrChecksumMismatch) Error() string {
	return fmt.Sprintf("checksum mismatch: expected %s, got %s", e.Expected, e.Actual)
}

// ErrChecksumNotListed is returned when a checksum list has no entry for a file.
type ErrChecksumNotListed struct {
	FileName string
}

func (e *ErrChecksumNotListed) Error() string {
	return fmt.Sprintf("no checksum listed for %s", e.FileName)
}

// ParseChecksums finds the SHA256 for fileName in a SHASUMS256.txt-style list
// ("<hex digest>  <file name>" per line).
func ParseChecksums(data []byte, fileName string) (string, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != 2 {
			continue
		}
		// sha256sum marks binary mode with a leading '*'
		if strings.TrimPrefix(fields[1], "*") == fileName {
			return strings.ToLower(fields[0]), nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", &ErrChecksumNotListed{FileName: fileName}
}

// HashingReader computes a SHA256 digest of everything read through it.
type HashingReader struct {
	reader io.Reader
	hasher hash.Hash
}

// NewHashingReader wraps r so its bytes are hashed as they are consumed.
func NewHashingReader(r io.Reader) *HashingReader {
	hasher := sha256.New()
	return &HashingReader{reader: io.TeeReader(r, hasher), hasher: hasher}
}

func (h *HashingReader) Read(p []byte) (int, error) {
	return h.reader.Read(p)
}

// Sum returns the hex digest of the bytes read so far.
func (h *HashingReader) Sum() string {
	return hex.EncodeToString(h.hasher.Sum(nil))
}

// Verify compares the digest of the bytes read so far against expectedSHA256.
func (h *HashingReader) Verify(expectedSHA256 string) error {
	return compareDigest(expectedSHA256, h.Sum())
}

func compareDigest(expected, actual string) error {
	// Normalize both checksums to lowercase for comparison
	expectedNorm := strings.ToLower(strings.TrimSpace(expected))
	if expectedNorm != strings.ToLower(actual) {
		return &ErrChecksumMismatch{Expected: expected, Actual: actual}
	}
	return nil
}
