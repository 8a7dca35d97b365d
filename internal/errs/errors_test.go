package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Message(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "no cause",
			err:      New(ErrKindMissingBucket, "no bucket defined"),
			expected: "[missing_bucket] no bucket defined",
		},
		{
			name:     "with cause",
			err:      Wrap(ErrKindInvalidKeyEncoding, "error decoding keys", errors.New("illegal base64 data")),
			expected: "[invalid_key_encoding] error decoding keys: illegal base64 data",
		},
		{
			name:     "with repository",
			err:      &Error{Kind: ErrKindInvalidSetting, Repository: "backups", Message: "bad chunk_size"},
			expected: "[invalid_setting] [backups] bad chunk_size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestForRepository(t *testing.T) {
	orig := New(ErrKindMissingBucket, "no bucket defined")

	err := ForRepository("nightly", orig)
	require.Error(t, err)
	assert.True(t, IsMissingBucket(err))
	assert.Contains(t, err.Error(), "[nightly]")
	assert.Empty(t, orig.Repository, "original error must not be mutated")

	plain := ForRepository("nightly", errors.New("boom"))
	assert.Equal(t, ErrKindUnknown, KindOf(plain))
	assert.Contains(t, plain.Error(), "boom")

	assert.NoError(t, ForRepository("nightly", nil))
}

func TestPredicates_WrappedChain(t *testing.T) {
	inner := New(ErrKindMutuallyExclusiveKeys, "symmetric and key pair")
	wrapped := fmt.Errorf("register: %w", inner)

	assert.True(t, IsMutuallyExclusiveKeys(wrapped))
	assert.True(t, IsConfigError(wrapped))
	assert.False(t, IsConnectionFailed(wrapped))
	assert.False(t, IsConfigError(New(ErrKindConnectionFailed, "unreachable")))
	assert.Equal(t, ErrKindUnknown, KindOf(errors.New("plain")))
}

func TestErrKind_String(t *testing.T) {
	assert.Equal(t, "unsupported_algorithm", ErrKindUnsupportedAlgorithm.String())
	assert.Equal(t, "insufficient_crypto_strength", ErrKindInsufficientCryptoStrength.String())
	assert.Equal(t, "decryption_failed", ErrKindDecryptionFailed.String())
	assert.Equal(t, "unknown", ErrKind(999).String())
	assert.False(t, IsConfigError(New(ErrKindDecryptionFailed, "bad tag")))
}
