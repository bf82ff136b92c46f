package integrity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// hashChunkSize bounds the read buffer so hashing an entire distribution
// root never holds more than one chunk in memory at a time.
const hashChunkSize = 64 * 1024

// DigestFile computes the SHA-256 digest of the file at path using streaming
// reads. It returns an error if the path does not exist or is unreadable.
func DigestFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	buf := make([]byte, hashChunkSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return nil, fmt.Errorf("failed to hash file: %w", err)
	}

	return h.Sum(nil), nil
}

// HexDigest returns the lowercase hex encoding of a raw digest.
func HexDigest(digest []byte) string {
	return hex.EncodeToString(digest)
}
