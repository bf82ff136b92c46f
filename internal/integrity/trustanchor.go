package integrity

import "fmt"

// embeddedPublicKey is the armored public key compiled into release builds
// via -ldflags:
//
//	-X github.com/guarddog-sec/guarddog/internal/integrity.embeddedPublicKey=...
//
// Development builds leave it empty, in which case DefaultSignatureVerifier
// fails and the pipeline fails closed.
var embeddedPublicKey = ""

// DefaultSignatureVerifier returns a verifier bound to the embedded release
// key. There is no way to substitute the key via configuration, files under
// the verified root, or environment variables.
func DefaultSignatureVerifier() (*SignatureVerifier, error) {
	if embeddedPublicKey == "" {
		return nil, fmt.Errorf("no public key embedded in this build")
	}
	return NewSignatureVerifier([]byte(embeddedPublicKey))
}
