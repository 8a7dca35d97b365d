// Package encryption builds the key material used for client-side envelope
// encryption of repository blobs.
//
// A repository is configured with either a symmetric AES key or an RSA key
// pair, never both. Keys arrive base64 encoded: the public key as X.509
// SubjectPublicKeyInfo DER, the private key as PKCS#8 DER.
package encryption

import (
	"crypto/rsa"

	"github.com/rs/zerolog"
)

// Kind identifies which variant of Material is active.
type Kind int

const (
	KindNone Kind = iota
	KindSymmetric
	KindKeyPair
)

func (k Kind) String() string {
	switch k {
	case KindSymmetric:
		return "symmetric"
	case KindKeyPair:
		return "key_pair"
	default:
		return "none"
	}
}

// Material is the client-side encryption key material. The zero value is
// KindNone. Exactly one variant is active.
type Material struct {
	kind    Kind
	key     []byte
	public  *rsa.PublicKey
	private *rsa.PrivateKey
}

// None returns material that disables client-side encryption.
func None() Material {
	return Material{}
}

// Symmetric wraps an AES key. key is copied.
func Symmetric(key []byte) Material {
	return Material{kind: KindSymmetric, key: append([]byte(nil), key...)}
}

// KeyPair wraps an RSA key pair.
func KeyPair(public *rsa.PublicKey, private *rsa.PrivateKey) Material {
	return Material{kind: KindKeyPair, public: public, private: private}
}

// Kind returns the active variant.
func (m Material) Kind() Kind {
	return m.kind
}

// Enabled reports whether client-side encryption is on.
func (m Material) Enabled() bool {
	return m.kind != KindNone
}

// SymmetricKey returns a copy of the AES key, or nil for other kinds.
func (m Material) SymmetricKey() []byte {
	if m.kind != KindSymmetric {
		return nil
	}
	return append([]byte(nil), m.key...)
}

// KeyPair returns the RSA keys, or nils for other kinds.
func (m Material) KeyPair() (*rsa.PublicKey, *rsa.PrivateKey) {
	if m.kind != KindKeyPair {
		return nil, nil
	}
	return m.public, m.private
}

// String names the variant only.
func (m Material) String() string {
	return "client_side_encryption[" + m.kind.String() + "]"
}

// MarshalZerologObject logs the variant and key size, never the key.
func (m Material) MarshalZerologObject(e *zerolog.Event) {
	e.Str("mode", m.kind.String())
	switch m.kind {
	case KindSymmetric:
		e.Int("key_bits", len(m.key)*8)
	case KindKeyPair:
		e.Int("key_bits", m.public.N.BitLen())
	}
}
