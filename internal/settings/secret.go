package settings

// Secret holds a credential or key. Its printed and serialized forms are
// redacted; call Reveal to get the value.
type Secret string

const redacted = "<redacted>"

// Reveal returns the plain value.
func (s Secret) Reveal() string {
	return string(s)
}

// IsSet reports whether the secret has a value.
func (s Secret) IsSet() bool {
	return s != ""
}

func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return redacted
}

// GoString keeps %#v from leaking the value.
func (s Secret) GoString() string {
	return s.String()
}

// MarshalText implements encoding.TextMarshaler.
func (s Secret) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
