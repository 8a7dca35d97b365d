// Package errs provides the unified error type used across s3repo.
//
// Every subsystem (settings, encryption, filestore, repository, …) wraps its
// failures into *errs.Error before returning them to callers. Callers use the
// Is* predicates to handle errors without importing the producing package.
//
// Usage:
//
//	// While resolving configuration:
//	return errs.New(errs.ErrKindMissingBucket, "no bucket defined for s3 repository")
//
//	// In a handler, branch on the error kind:
//	if errs.IsMissingBucket(err) {
//	    http.Error(w, err.Error(), http.StatusBadRequest)
//	}
package errs

import (
	"errors"
	"fmt"
)

// ErrKind categorises an error without exposing subsystem-specific codes.
type ErrKind int

const (
	ErrKindUnknown                    ErrKind = iota
	ErrKindMissingBucket                      // no bucket at any settings tier
	ErrKindMutuallyExclusiveKeys              // symmetric key AND public/private key pair
	ErrKindInsufficientCryptoStrength         // runtime cannot do 256-bit AES
	ErrKindInvalidKeyEncoding                 // malformed base64 key material
	ErrKindInvalidKeyFormat                   // bytes are not a key of the expected type
	ErrKindUnsupportedAlgorithm               // no key parser for the algorithm
	ErrKindInvalidSetting                     // malformed bool, int, byte size, protocol, …
	ErrKindConnectionFailed                   // cannot reach the object store
	ErrKindNotFound                           // no bucket, no repository
	ErrKindTimeout                            // context deadline / cancellation
	ErrKindPermissionDenied                   // access denied / auth failure
	ErrKindAlreadyExists                      // repository name already registered
	ErrKindDecryptionFailed                   // stored blob cannot be decrypted with the configured keys
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindMissingBucket:
		return "missing_bucket"
	case ErrKindMutuallyExclusiveKeys:
		return "mutually_exclusive_keys"
	case ErrKindInsufficientCryptoStrength:
		return "insufficient_crypto_strength"
	case ErrKindInvalidKeyEncoding:
		return "invalid_key_encoding"
	case ErrKindInvalidKeyFormat:
		return "invalid_key_format"
	case ErrKindUnsupportedAlgorithm:
		return "unsupported_algorithm"
	case ErrKindInvalidSetting:
		return "invalid_setting"
	case ErrKindConnectionFailed:
		return "connection_failed"
	case ErrKindNotFound:
		return "not_found"
	case ErrKindTimeout:
		return "timeout"
	case ErrKindPermissionDenied:
		return "permission_denied"
	case ErrKindAlreadyExists:
		return "already_exists"
	case ErrKindDecryptionFailed:
		return "decryption_failed"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by all s3repo subsystems.
type Error struct {
	Kind       ErrKind
	Repository string // repository name, empty when not yet known
	Message    string
	Cause      error // original error, preserved for logging
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Repository != "" {
		msg = fmt.Sprintf("[%s] %s", e.Repository, msg)
	}
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, msg, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, msg)
}

// Unwrap allows errors.Is / errors.As to traverse the cause chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

// --- Constructors ---

// New creates an *Error with the given kind and message and no cause.
func New(kind ErrKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Newf is New with a format string.
func Newf(kind ErrKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an *Error with the given kind, message, and an underlying cause.
func Wrap(kind ErrKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// ForRepository stamps the repository name on err. Errors that are not an
// *Error are wrapped with ErrKindUnknown. A nil err stays nil.
func ForRepository(name string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		out := *e
		out.Repository = name
		return &out
	}
	return &Error{Kind: ErrKindUnknown, Repository: name, Message: "repository construction failed", Cause: err}
}

// --- Predicates ---

// IsMissingBucket reports whether err is a missing-bucket configuration error.
func IsMissingBucket(err error) bool {
	return KindOf(err) == ErrKindMissingBucket
}

// IsMutuallyExclusiveKeys reports whether err was caused by supplying a
// symmetric key together with a public/private key pair.
func IsMutuallyExclusiveKeys(err error) bool {
	return KindOf(err) == ErrKindMutuallyExclusiveKeys
}

// IsInsufficientCryptoStrength reports whether the runtime refused 256-bit AES.
func IsInsufficientCryptoStrength(err error) bool {
	return KindOf(err) == ErrKindInsufficientCryptoStrength
}

// IsInvalidKeyEncoding reports whether key material was not valid base64.
func IsInvalidKeyEncoding(err error) bool {
	return KindOf(err) == ErrKindInvalidKeyEncoding
}

// IsInvalidKeyFormat reports whether decoded key bytes could not be parsed.
func IsInvalidKeyFormat(err error) bool {
	return KindOf(err) == ErrKindInvalidKeyFormat
}

// IsUnsupportedAlgorithm reports whether no parser exists for a key algorithm.
func IsUnsupportedAlgorithm(err error) bool {
	return KindOf(err) == ErrKindUnsupportedAlgorithm
}

// IsInvalidSetting reports whether a setting value could not be interpreted.
func IsInvalidSetting(err error) bool {
	return KindOf(err) == ErrKindInvalidSetting
}

// IsConnectionFailed reports whether err is a connectivity failure.
func IsConnectionFailed(err error) bool {
	return KindOf(err) == ErrKindConnectionFailed
}

// IsNotFound reports whether err represents a "not found" result
// (missing bucket on the server, unknown repository, …).
func IsNotFound(err error) bool {
	return KindOf(err) == ErrKindNotFound
}

// IsTimeout reports whether err was caused by a deadline or context cancellation.
func IsTimeout(err error) bool {
	return KindOf(err) == ErrKindTimeout
}

// IsPermissionDenied reports whether err is an access control failure.
func IsPermissionDenied(err error) bool {
	return KindOf(err) == ErrKindPermissionDenied
}

// IsAlreadyExists reports whether a repository name is already registered.
func IsAlreadyExists(err error) bool {
	return KindOf(err) == ErrKindAlreadyExists
}

// IsDecryptionFailed reports whether a stored blob could not be decrypted.
func IsDecryptionFailed(err error) bool {
	return KindOf(err) == ErrKindDecryptionFailed
}

// IsConfigError reports whether err is one of the configuration kinds that
// make repository construction fail.
func IsConfigError(err error) bool {
	switch KindOf(err) {
	case ErrKindMissingBucket, ErrKindMutuallyExclusiveKeys, ErrKindInsufficientCryptoStrength,
		ErrKindInvalidKeyEncoding, ErrKindInvalidKeyFormat, ErrKindUnsupportedAlgorithm,
		ErrKindInvalidSetting:
		return true
	}
	return false
}

// KindOf extracts the ErrKind from any error in the chain.
func KindOf(err error) ErrKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrKindUnknown
}
