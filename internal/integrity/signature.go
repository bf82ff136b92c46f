package integrity

import (
	"bytes"
	"fmt"

	"github.com/ProtonMail/go-crypto/openpgp"
)

// pgpSignatureArmorPrefix identifies an ASCII-armored detached signature.
const pgpSignatureArmorPrefix = "-----BEGIN PGP SIGNATURE-----"

// SignatureVerifier validates detached OpenPGP signatures against a fixed
// keyring injected once at construction. The keyring cannot be modified
// afterwards: there is no import or clear operation.
type SignatureVerifier struct {
	keyring openpgp.EntityList
}

// NewSignatureVerifier builds a verifier from an armored public key block.
// The key is the trust anchor for manifest verification.
func NewSignatureVerifier(armoredPublicKey []byte) (*SignatureVerifier, error) {
	if len(armoredPublicKey) == 0 {
		return nil, fmt.Errorf("empty public key")
	}

	keyring, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(armoredPublicKey))
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}
	if len(keyring) == 0 {
		return nil, fmt.Errorf("no keys found in public key block")
	}

	return &SignatureVerifier{keyring: keyring}, nil
}

// Verify reports whether signature is a valid detached signature over
// message made by the trusted key. Any malformed signature, unknown signer,
// or algorithm mismatch yields false. It never returns an error: a caller
// cannot misinterpret a failure as success.
func (v *SignatureVerifier) Verify(message, signature []byte) bool {
	if v == nil || len(v.keyring) == 0 || len(message) == 0 || len(signature) == 0 {
		return false
	}

	var err error
	if bytes.HasPrefix(signature, []byte(pgpSignatureArmorPrefix)) {
		_, err = openpgp.CheckArmoredDetachedSignature(
			v.keyring, bytes.NewReader(message), bytes.NewReader(signature), nil)
	} else {
		_, err = openpgp.CheckDetachedSignature(
			v.keyring, bytes.NewReader(message), bytes.NewReader(signature), nil)
	}

	return err == nil
}
