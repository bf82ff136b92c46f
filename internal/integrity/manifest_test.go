package integrity

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// signedRoot lays out a distribution root with the given files, writes a
// manifest covering them, and signs it. It returns the verifier and the
// three paths Verify takes.
type signedRoot struct {
	entity   *openpgp.Entity
	verifier *ManifestVerifier

	root         string
	manifestPath string
	sigPath      string
}

func newSignedRoot(t *testing.T, files map[string]string) *signedRoot {
	t.Helper()

	entity, pub := newTestKey(t)
	sigVerifier, err := NewSignatureVerifier(pub)
	require.NoError(t, err)

	root := t.TempDir()
	var manifest bytes.Buffer
	fmt.Fprintln(&manifest, "# GuardDog file manifest")
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		digest, err := DigestFile(path)
		require.NoError(t, err)
		fmt.Fprintf(&manifest, "%s  %s\n", HexDigest(digest), name)
	}

	s := &signedRoot{
		entity:       entity,
		verifier:     NewManifestVerifier(sigVerifier),
		root:         root,
		manifestPath: filepath.Join(root, DefaultManifestName),
		sigPath:      filepath.Join(root, DefaultSignatureName),
	}
	s.writeManifest(t, manifest.Bytes())
	return s
}

// writeManifest replaces the manifest bytes and re-signs them.
func (s *signedRoot) writeManifest(t *testing.T, manifestBytes []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(s.manifestPath, manifestBytes, 0o644))
	require.NoError(t, os.WriteFile(s.sigPath, detachSign(t, s.entity, manifestBytes), 0o644))
}

func (s *signedRoot) verify() Verdict {
	return s.verifier.Verify(s.root, s.manifestPath, s.sigPath)
}

func TestVerifyPassWhenAllFilesMatch(t *testing.T) {
	s := newSignedRoot(t, map[string]string{
		"a.txt":          "alpha",
		"bin/tool.exe":   "binary payload",
		"docs/readme.md": "read me",
	})

	verdict := s.verify()
	assert.Equal(t, OutcomePass, verdict.Outcome)
	assert.True(t, verdict.Passed())
	assert.Equal(t, ExitPass, verdict.ExitCode())
}

func TestVerifyHashMismatchNamesPath(t *testing.T) {
	s := newSignedRoot(t, map[string]string{"a.txt": "alpha"})
	require.NoError(t, os.WriteFile(filepath.Join(s.root, "a.txt"), []byte("tampered"), 0o644))

	verdict := s.verify()
	assert.Equal(t, OutcomeFail, verdict.Outcome)
	assert.Equal(t, ReasonHashMismatch, verdict.Reason)
	assert.Equal(t, "a.txt", verdict.Path)
	assert.Equal(t, ExitHashMismatch, verdict.ExitCode())
}

func TestVerifyFileMissingNamesPath(t *testing.T) {
	s := newSignedRoot(t, map[string]string{"a.txt": "alpha", "missing.txt": "gone"})
	require.NoError(t, os.Remove(filepath.Join(s.root, "missing.txt")))

	verdict := s.verify()
	assert.Equal(t, ReasonFileMissing, verdict.Reason)
	assert.Equal(t, "missing.txt", verdict.Path)
	assert.Equal(t, ExitFileMissing, verdict.ExitCode())
}

// A corrupted signature must yield SignatureInvalid, never HashMismatch:
// the signature check strictly precedes hashing.
func TestVerifySignatureBitFlipPrecedesHashing(t *testing.T) {
	s := newSignedRoot(t, map[string]string{"a.txt": "alpha"})

	// Tamper with a listed file as well, so a wrong ordering would
	// surface as HashMismatch.
	require.NoError(t, os.WriteFile(filepath.Join(s.root, "a.txt"), []byte("tampered"), 0o644))

	sig, err := os.ReadFile(s.sigPath)
	require.NoError(t, err)
	for _, i := range []int{0, len(sig) / 2, len(sig) - 1} {
		mutated := bytes.Clone(sig)
		mutated[i] ^= 0x01
		require.NoError(t, os.WriteFile(s.sigPath, mutated, 0o644))

		verdict := s.verify()
		assert.Equal(t, ReasonSignatureInvalid, verdict.Reason, "byte %d", i)
		assert.Equal(t, ExitSignatureInvalid, verdict.ExitCode())
	}
}

func TestVerifySingleByteFileMutation(t *testing.T) {
	s := newSignedRoot(t, map[string]string{"payload.bin": "stable content"})

	path := filepath.Join(s.root, "payload.bin")
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	content[3] ^= 0xFF
	require.NoError(t, os.WriteFile(path, content, 0o644))

	verdict := s.verify()
	assert.Equal(t, ReasonHashMismatch, verdict.Reason)
	assert.Equal(t, "payload.bin", verdict.Path)
}

func TestVerifyUnreadableManifest(t *testing.T) {
	s := newSignedRoot(t, map[string]string{"a.txt": "alpha"})

	require.NoError(t, os.Remove(s.manifestPath))
	verdict := s.verify()
	assert.Equal(t, ReasonManifestUnreadable, verdict.Reason)
	assert.Equal(t, ExitManifestUnreadable, verdict.ExitCode())
}

func TestVerifyUnreadableSignature(t *testing.T) {
	s := newSignedRoot(t, map[string]string{"a.txt": "alpha"})

	require.NoError(t, os.Remove(s.sigPath))
	verdict := s.verify()
	assert.Equal(t, ReasonManifestUnreadable, verdict.Reason)
}

// A validly signed but malformed manifest is never partially honored.
func TestVerifyMalformedManifestIsSignatureInvalid(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
	}{
		{"missing path", "0000000000000000000000000000000000000000000000000000000000000000\n"},
		{"short digest", "abcdef12  a.txt\n"},
		{"bad hex", "zz" + string(bytes.Repeat([]byte("00"), 31)) + "  a.txt\n"},
		{"traversal path", validLine("../escape.txt")},
		{"absolute path", validLine("/etc/passwd")},
		{"duplicate path", validLine("a.txt") + validLine("a.txt")},
		{"empty manifest", "# nothing listed\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSignedRoot(t, map[string]string{"a.txt": "alpha"})
			s.writeManifest(t, []byte(tt.manifest))

			verdict := s.verify()
			assert.Equal(t, OutcomeFail, verdict.Outcome)
			assert.Equal(t, ReasonSignatureInvalid, verdict.Reason)
		})
	}
}

// validLine builds a syntactically valid manifest line for the given path.
func validLine(path string) string {
	digest := bytes.Repeat([]byte("ab"), 32)
	return fmt.Sprintf("%s  %s\n", digest, path)
}

// Verification is a pure function of its inputs plus filesystem content:
// repeated runs against an unchanged root produce identical verdicts.
func TestVerifyIdempotent(t *testing.T) {
	s := newSignedRoot(t, map[string]string{"a.txt": "alpha", "b.txt": "beta"})

	first := s.verify()
	second := s.verify()
	assert.Equal(t, first, second)
	assert.Equal(t, OutcomePass, first.Outcome)
}

func TestParseManifestOrderPreserved(t *testing.T) {
	manifest := validLine("z.txt") + validLine("a.txt") + validLine("m.txt")
	entries, err := parseManifest([]byte(manifest))
	require.NoError(t, err)

	var paths []string
	for _, e := range entries {
		paths = append(paths, e.Path)
	}
	assert.Equal(t, []string{"z.txt", "a.txt", "m.txt"}, paths)
}

func TestVerdictString(t *testing.T) {
	assert.Equal(t, "pass", Verdict{Outcome: OutcomePass}.String())
	assert.Equal(t, "fail (signature_invalid)",
		Verdict{Outcome: OutcomeFail, Reason: ReasonSignatureInvalid}.String())
	assert.Equal(t, "fail (hash_mismatch: a.txt)",
		Verdict{Outcome: OutcomeFail, Reason: ReasonHashMismatch, Path: "a.txt"}.String())
}
