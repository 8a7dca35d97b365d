package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"io"

	"github.com/koustreak/s3repo/internal/errs"
	"github.com/minio/sio"
)

// Object metadata stored next to every sealed blob, without the storage
// service's user metadata prefix.
const (
	MetaWrappedKey    = "S3repo-Cse-Key"
	MetaWrapAlgorithm = "S3repo-Cse-Wrap"
)

const (
	wrapAESGCM  = "AES/GCM"
	wrapRSAOAEP = "RSA-OAEP-SHA256"
)

// dataKeySize is the per-blob content key length sio requires.
const dataKeySize = 32

// Seal encrypts src under a fresh data key and returns the ciphertext
// stream together with the metadata that has to be stored with it. The data
// key is wrapped with m. With KindNone, src is returned as is and meta is nil.
func (m Material) Seal(src io.Reader) (io.Reader, map[string]string, error) {
	if !m.Enabled() {
		return src, nil, nil
	}

	dataKey := make([]byte, dataKeySize)
	if _, err := io.ReadFull(rand.Reader, dataKey); err != nil {
		return nil, nil, errs.Wrap(errs.ErrKindUnknown, "client-side encryption: failed to generate data key", err)
	}
	wrapped, alg, err := m.wrap(dataKey)
	if err != nil {
		return nil, nil, err
	}

	sealed, err := sio.EncryptReader(src, sio.Config{Key: dataKey})
	if err != nil {
		return nil, nil, errs.Wrap(errs.ErrKindUnknown, "client-side encryption: failed to start encryption", err)
	}
	return sealed, map[string]string{
		MetaWrappedKey:    base64.StdEncoding.EncodeToString(wrapped),
		MetaWrapAlgorithm: alg,
	}, nil
}

// Open decrypts a stream produced by Seal. meta looks up the metadata stored
// with the blob. Tampered content surfaces as an error from Read.
func (m Material) Open(src io.Reader, meta func(name string) string) (io.Reader, error) {
	if !m.Enabled() {
		return src, nil
	}

	encoded := meta(MetaWrappedKey)
	if encoded == "" {
		return nil, errs.New(errs.ErrKindDecryptionFailed, "client-side encryption: blob carries no wrapped data key")
	}
	wrapped, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindDecryptionFailed, "client-side encryption: malformed wrapped data key", err)
	}
	dataKey, err := m.unwrap(wrapped, meta(MetaWrapAlgorithm))
	if err != nil {
		return nil, err
	}

	plain, err := sio.DecryptReader(src, sio.Config{Key: dataKey})
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindDecryptionFailed, "client-side encryption: failed to start decryption", err)
	}
	return plain, nil
}

// SealedSize is the ciphertext length Seal produces for size plaintext
// bytes. A negative (unknown) size and KindNone return size unchanged.
func (m Material) SealedSize(size int64) (int64, error) {
	if !m.Enabled() || size < 0 {
		return size, nil
	}
	n, err := sio.EncryptedSize(uint64(size))
	if err != nil {
		return 0, errs.Wrap(errs.ErrKindInvalidSetting, "client-side encryption: blob too large", err)
	}
	return int64(n), nil
}

func (m Material) wrap(dataKey []byte) ([]byte, string, error) {
	switch m.kind {
	case KindSymmetric:
		gcm, err := newGCM(m.key)
		if err != nil {
			return nil, "", err
		}
		nonce := make([]byte, gcm.NonceSize())
		if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
			return nil, "", errs.Wrap(errs.ErrKindUnknown, "client-side encryption: failed to generate nonce", err)
		}
		return gcm.Seal(nonce, nonce, dataKey, []byte(wrapAESGCM)), wrapAESGCM, nil
	case KindKeyPair:
		out, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, m.public, dataKey, nil)
		if err != nil {
			return nil, "", errs.Wrap(errs.ErrKindInvalidKeyFormat, "client-side encryption: public key cannot wrap data key", err)
		}
		return out, wrapRSAOAEP, nil
	default:
		return nil, "", errs.New(errs.ErrKindUnknown, "client-side encryption: no key material")
	}
}

func (m Material) unwrap(wrapped []byte, alg string) ([]byte, error) {
	var (
		dataKey []byte
		err     error
	)
	switch {
	case m.kind == KindSymmetric && alg == wrapAESGCM:
		var gcm cipher.AEAD
		if gcm, err = newGCM(m.key); err != nil {
			return nil, err
		}
		n := gcm.NonceSize()
		if len(wrapped) < n {
			return nil, errs.New(errs.ErrKindDecryptionFailed, "client-side encryption: wrapped data key too short")
		}
		dataKey, err = gcm.Open(nil, wrapped[:n], wrapped[n:], []byte(wrapAESGCM))
	case m.kind == KindKeyPair && alg == wrapRSAOAEP:
		dataKey, err = rsa.DecryptOAEP(sha256.New(), nil, m.private, wrapped, nil)
	default:
		return nil, errs.Newf(errs.ErrKindDecryptionFailed,
			"client-side encryption: blob key wrapped with %q, repository holds %s material", alg, m.kind)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindDecryptionFailed, "client-side encryption: cannot unwrap data key", err)
	}
	if len(dataKey) != dataKeySize {
		return nil, errs.New(errs.ErrKindDecryptionFailed, "client-side encryption: unwrapped data key has wrong size")
	}
	return dataKey, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidKeyFormat, "client-side encryption: symmetric key is not a valid AES key", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidKeyFormat, "client-side encryption: cannot build AES-GCM", err)
	}
	return gcm, nil
}
