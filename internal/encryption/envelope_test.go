package encryption

import (
	"bytes"
	"crypto/rand"
	"io"
	"testing"

	"github.com/koustreak/s3repo/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seal(t *testing.T, m Material, payload []byte) ([]byte, map[string]string) {
	t.Helper()
	r, meta, err := m.Seal(bytes.NewReader(payload))
	require.NoError(t, err)
	sealed, err := io.ReadAll(r)
	require.NoError(t, err)
	return sealed, meta
}

func open(t *testing.T, m Material, sealed []byte, meta map[string]string) ([]byte, error) {
	t.Helper()
	r, err := m.Open(bytes.NewReader(sealed), func(name string) string { return meta[name] })
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}

func materials(t *testing.T) map[string]Material {
	t.Helper()
	key, err := testRSAKey()
	require.NoError(t, err)
	aes128, _ := encodedAESKey(t, 16)
	aes256, _ := encodedAESKey(t, 32)

	return map[string]Material{
		"aes-128":  Symmetric(aes128),
		"aes-256":  Symmetric(aes256),
		"key pair": KeyPair(&key.PublicKey, key),
	}
}

func TestEnvelope_RoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte("snapshot-index-0 "), 8192)

	for name, m := range materials(t) {
		t.Run(name, func(t *testing.T) {
			sealed, meta := seal(t, m, payload)

			assert.NotEqual(t, payload, sealed)
			assert.False(t, bytes.Contains(sealed, []byte("snapshot-index-0")))
			assert.NotEmpty(t, meta[MetaWrappedKey])
			assert.NotEmpty(t, meta[MetaWrapAlgorithm])

			size, err := m.SealedSize(int64(len(payload)))
			require.NoError(t, err)
			assert.Equal(t, int64(len(sealed)), size)

			plain, err := open(t, m, sealed, meta)
			require.NoError(t, err)
			assert.Equal(t, payload, plain)
		})
	}
}

func TestEnvelope_FreshDataKeyPerBlob(t *testing.T) {
	m := Symmetric(make([]byte, 32))
	a, metaA := seal(t, m, []byte("same"))
	b, metaB := seal(t, m, []byte("same"))
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, metaA[MetaWrappedKey], metaB[MetaWrappedKey])
}

func TestEnvelope_None(t *testing.T) {
	src := bytes.NewReader([]byte("plain"))
	r, meta, err := None().Seal(src)
	require.NoError(t, err)
	assert.Nil(t, meta)
	assert.Same(t, src, r)

	size, err := None().SealedSize(42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), size)

	plain, err := open(t, None(), []byte("plain"), nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("plain"), plain)
}

func TestEnvelope_UnknownSize(t *testing.T) {
	size, err := Symmetric(make([]byte, 32)).SealedSize(-1)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), size)
}

func TestEnvelope_OpenFailures(t *testing.T) {
	m := Symmetric(make([]byte, 32))
	sealed, meta := seal(t, m, []byte("payload"))

	other := make([]byte, 32)
	_, err := rand.Read(other)
	require.NoError(t, err)

	key, err := testRSAKey()
	require.NoError(t, err)

	tests := []struct {
		name     string
		material Material
		meta     map[string]string
	}{
		{"missing metadata", m, map[string]string{}},
		{"malformed key", m, map[string]string{MetaWrappedKey: "***", MetaWrapAlgorithm: meta[MetaWrapAlgorithm]}},
		{"truncated key", m, map[string]string{MetaWrappedKey: "AAAA", MetaWrapAlgorithm: meta[MetaWrapAlgorithm]}},
		{"wrong key", Symmetric(other), meta},
		{"wrong kind", KeyPair(&key.PublicKey, key), meta},
		{"unknown algorithm", m, map[string]string{MetaWrappedKey: meta[MetaWrappedKey], MetaWrapAlgorithm: "ROT13"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := open(t, tt.material, sealed, tt.meta)
			require.Error(t, err)
			assert.True(t, errs.IsDecryptionFailed(err), "%v", err)
		})
	}
}

func TestEnvelope_TamperedContent(t *testing.T) {
	m := Symmetric(make([]byte, 32))
	sealed, meta := seal(t, m, []byte("payload"))
	sealed[len(sealed)-1] ^= 0xff

	_, err := open(t, m, sealed, meta)
	assert.Error(t, err)
}

func TestEnvelope_MetadataHoldsNoKeyMaterial(t *testing.T) {
	key, encoded := encodedAESKey(t, 32)
	_, meta := seal(t, Symmetric(key), []byte("payload"))
	for _, v := range meta {
		assert.NotContains(t, v, encoded.Reveal())
	}
}
