// Package integrity implements the verification gate: a signed manifest of
// file digests that must validate before any security check runs.
package integrity

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Default file names for the manifest and its detached signature inside a
// distribution root.
const (
	DefaultManifestName  = "guarddog.manifest"
	DefaultSignatureName = "guarddog.manifest.sig"
)

// Outcome is the terminal result of a verification run.
type Outcome string

const (
	OutcomePass Outcome = "pass"
	OutcomeFail Outcome = "fail"
)

// FailureReason identifies why verification failed.
type FailureReason string

const (
	ReasonSignatureInvalid   FailureReason = "signature_invalid"
	ReasonManifestUnreadable FailureReason = "manifest_unreadable"
	ReasonFileMissing        FailureReason = "file_missing"
	ReasonHashMismatch       FailureReason = "hash_mismatch"
)

// Verdict is the immutable result of one manifest verification.
type Verdict struct {
	Outcome Outcome       `json:"outcome"`
	Reason  FailureReason `json:"reason,omitempty"`
	// Path names the offending manifest entry for FileMissing and
	// HashMismatch verdicts.
	Path string `json:"path,omitempty"`
}

// Passed reports whether the verdict allows checks to run.
func (v Verdict) Passed() bool {
	return v.Outcome == OutcomePass
}

// ExitCode maps the verdict to a process exit code so callers can branch
// without parsing text.
func (v Verdict) ExitCode() int {
	switch {
	case v.Passed():
		return ExitPass
	case v.Reason == ReasonSignatureInvalid:
		return ExitSignatureInvalid
	case v.Reason == ReasonManifestUnreadable:
		return ExitManifestUnreadable
	case v.Reason == ReasonFileMissing:
		return ExitFileMissing
	case v.Reason == ReasonHashMismatch:
		return ExitHashMismatch
	default:
		return ExitSignatureInvalid
	}
}

// String renders a short human-readable form of the verdict.
func (v Verdict) String() string {
	if v.Passed() {
		return "pass"
	}
	if v.Path != "" {
		return fmt.Sprintf("fail (%s: %s)", v.Reason, v.Path)
	}
	return fmt.Sprintf("fail (%s)", v.Reason)
}

// Verification exit codes, one per failure reason.
const (
	ExitPass               = 0
	ExitSignatureInvalid   = 2
	ExitManifestUnreadable = 3
	ExitFileMissing        = 4
	ExitHashMismatch       = 5
)

func pass() Verdict {
	return Verdict{Outcome: OutcomePass}
}

func fail(reason FailureReason) Verdict {
	return Verdict{Outcome: OutcomeFail, Reason: reason}
}

func failPath(reason FailureReason, path string) Verdict {
	return Verdict{Outcome: OutcomeFail, Reason: reason, Path: path}
}

// Entry is one manifest line: a relative path and its expected SHA-256.
type Entry struct {
	Path   string
	Digest [sha256.Size]byte
}

// Manifest is the parsed, ordered list of entries relative to a root.
// It only lives for the duration of one verification.
type Manifest struct {
	Root    string
	Entries []Entry
}

// parseManifest parses the signed manifest format: one entry per line of
// the form "<64 hex chars>  <relative path>". Blank lines and lines
// starting with '#' are ignored. Duplicate paths, malformed digests, and
// paths that could escape the root are all parse errors; an ambiguous
// manifest is never partially honored.
func parseManifest(data []byte) ([]Entry, error) {
	var entries []Entry
	seen := make(map[string]struct{})

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		digestHex, rawPath, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("line %d: missing path", lineNo)
		}
		rawPath = strings.TrimSpace(rawPath)
		if rawPath == "" {
			return nil, fmt.Errorf("line %d: missing path", lineNo)
		}

		digest, err := hex.DecodeString(digestHex)
		if err != nil || len(digest) != sha256.Size {
			return nil, fmt.Errorf("line %d: malformed digest", lineNo)
		}

		entryPath := filepath.FromSlash(rawPath)
		if !filepath.IsLocal(entryPath) {
			return nil, fmt.Errorf("line %d: path escapes root: %s", lineNo, rawPath)
		}
		if _, dup := seen[rawPath]; dup {
			return nil, fmt.Errorf("line %d: duplicate path: %s", lineNo, rawPath)
		}
		seen[rawPath] = struct{}{}

		entry := Entry{Path: rawPath}
		copy(entry.Digest[:], digest)
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan manifest: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("manifest lists no files")
	}

	return entries, nil
}

// ManifestVerifier validates a signed manifest and the files it covers.
type ManifestVerifier struct {
	sig *SignatureVerifier
}

// NewManifestVerifier creates a verifier bound to the given signature
// verifier (and through it, the trust anchor).
func NewManifestVerifier(sig *SignatureVerifier) *ManifestVerifier {
	return &ManifestVerifier{sig: sig}
}

// Verify runs the full verification algorithm:
//
//  1. Read manifest and signature bytes; unreadable ⇒ ManifestUnreadable.
//  2. Validate the detached signature over the exact manifest bytes;
//     invalid ⇒ SignatureInvalid, and the manifest is not parsed further.
//  3. Parse the manifest; a malformed manifest is also SignatureInvalid,
//     since an ambiguous signed document is never trusted partially.
//  4. Re-hash every listed file under root, in manifest order. The first
//     missing file or digest mismatch stops iteration and names the path.
//
// The signature check strictly precedes hashing: the manifest is an
// atomic signed unit, so an attacker who can replace files cannot smuggle
// new entries into an unsigned or resigned manifest.
func (m *ManifestVerifier) Verify(root, manifestPath, sigPath string) Verdict {
	manifestBytes, err := os.ReadFile(manifestPath)
	if err != nil {
		return fail(ReasonManifestUnreadable)
	}
	sigBytes, err := os.ReadFile(sigPath)
	if err != nil {
		return fail(ReasonManifestUnreadable)
	}

	if !m.sig.Verify(manifestBytes, sigBytes) {
		return fail(ReasonSignatureInvalid)
	}

	entries, err := parseManifest(manifestBytes)
	if err != nil {
		return fail(ReasonSignatureInvalid)
	}

	manifest := Manifest{Root: root, Entries: entries}
	for _, entry := range manifest.Entries {
		filePath := filepath.Join(manifest.Root, filepath.FromSlash(entry.Path))

		if _, err := os.Stat(filePath); err != nil {
			return failPath(ReasonFileMissing, entry.Path)
		}

		digest, err := DigestFile(filePath)
		if err != nil {
			return failPath(ReasonFileMissing, entry.Path)
		}
		if subtle.ConstantTimeCompare(digest, entry.Digest[:]) != 1 {
			return failPath(ReasonHashMismatch, entry.Path)
		}
	}

	return pass()
}
