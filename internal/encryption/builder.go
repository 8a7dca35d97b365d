package encryption

import (
	"crypto/aes"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"fmt"

	"github.com/koustreak/s3repo/internal/errs"
	"github.com/koustreak/s3repo/internal/settings"
)

// Keys are the base64 encoded key settings. Empty means not supplied.
type Keys struct {
	Symmetric settings.Secret
	Public    settings.Secret
	Private   settings.Secret
}

// Supplied reports whether any key setting is present.
func (k Keys) Supplied() bool {
	return k.Symmetric.IsSet() || k.Public.IsSet() || k.Private.IsSet()
}

func (k Keys) conflicting() bool {
	return k.Symmetric.IsSet() && (k.Public.IsSet() || k.Private.IsSet())
}

// requiredKeyBits is the AES key length the runtime must support.
const requiredKeyBits = 256

// maxKeyBits reports the largest AES key length the runtime accepts.
var maxKeyBits = func() int {
	for _, n := range []int{32, 24, 16} {
		if _, err := aes.NewCipher(make([]byte, n)); err == nil {
			return n * 8
		}
	}
	return 0
}

type keyFactory struct {
	public  func(der []byte) (*rsa.PublicKey, error)
	private func(der []byte) (*rsa.PrivateKey, error)
}

var keyFactories = map[string]keyFactory{
	"RSA": {public: parseRSAPublicKey, private: parseRSAPrivateKey},
}

// keyPairAlgorithm selects the entry in keyFactories used for key pairs.
var keyPairAlgorithm = "RSA"

const conflictingKeysMsg = "client-side encryption: a symmetric key and a public/private key pair are mutually exclusive"

// Build validates keys and returns the matching Material. No keys yields None.
func Build(keys Keys) (Material, error) {
	if keys.conflicting() {
		return Material{}, errs.New(errs.ErrKindMutuallyExclusiveKeys, conflictingKeysMsg)
	}
	if !keys.Supplied() {
		return None(), nil
	}

	if bits := maxKeyBits(); bits < requiredKeyBits {
		return Material{}, errs.Newf(errs.ErrKindInsufficientCryptoStrength,
			"client-side encryption: runtime allows %d-bit AES keys, %d required", bits, requiredKeyBits)
	}

	// Exclusivity is enforced again at the decode boundary.
	if keys.conflicting() {
		return Material{}, errs.New(errs.ErrKindMutuallyExclusiveKeys, conflictingKeysMsg)
	}

	if keys.Symmetric.IsSet() {
		return buildSymmetric(keys.Symmetric)
	}
	return buildKeyPair(keys.Public, keys.Private)
}

func buildSymmetric(encoded settings.Secret) (Material, error) {
	key, err := decode("symmetric", encoded)
	if err != nil {
		return Material{}, err
	}
	if _, err := aes.NewCipher(key); err != nil {
		return Material{}, errs.Wrap(errs.ErrKindInvalidKeyFormat, "client-side encryption: symmetric key is not a valid AES key", err)
	}
	return Symmetric(key), nil
}

func buildKeyPair(publicEncoded, privateEncoded settings.Secret) (Material, error) {
	if !publicEncoded.IsSet() || !privateEncoded.IsSet() {
		return Material{}, errs.New(errs.ErrKindInvalidKeyFormat,
			"client-side encryption: public and private keys must be set together")
	}

	factory, ok := keyFactories[keyPairAlgorithm]
	if !ok {
		return Material{}, errs.Newf(errs.ErrKindUnsupportedAlgorithm,
			"client-side encryption: %s key factory not available", keyPairAlgorithm)
	}

	publicDER, err := decode("public", publicEncoded)
	if err != nil {
		return Material{}, err
	}
	privateDER, err := decode("private", privateEncoded)
	if err != nil {
		return Material{}, err
	}

	public, err := factory.public(publicDER)
	if err != nil {
		return Material{}, errs.Wrap(errs.ErrKindInvalidKeyFormat, "client-side encryption: invalid public key", err)
	}
	private, err := factory.private(privateDER)
	if err != nil {
		return Material{}, errs.Wrap(errs.ErrKindInvalidKeyFormat, "client-side encryption: invalid private key", err)
	}
	return KeyPair(public, private), nil
}

func decode(which string, encoded settings.Secret) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(encoded.Reveal())
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidKeyEncoding,
			fmt.Sprintf("client-side encryption: error decoding %s key", which), err)
	}
	return b, nil
}

func parseRSAPublicKey(der []byte) (*rsa.PublicKey, error) {
	key, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, err
	}
	rsaKey, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("expected RSA public key, got %T", key)
	}
	return rsaKey, nil
}

func parseRSAPrivateKey(der []byte) (*rsa.PrivateKey, error) {
	key, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, err
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("expected RSA private key, got %T", key)
	}
	return rsaKey, nil
}
