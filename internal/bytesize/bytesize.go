// Package bytesize parses and formats byte-size settings such as
// chunk_size and buffer_size.
//
// Unit suffixes are binary regardless of spelling: "100mb", "100m" and
// "100mib" are all 100 * 1024 * 1024 bytes. A bare number is bytes.
package bytesize

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
)

// Size is a number of bytes.
type Size int64

const (
	B   Size = 1
	KiB      = 1024 * B
	MiB      = 1024 * KiB
	GiB      = 1024 * MiB
	TiB      = 1024 * GiB
)

// decimal-looking suffixes and the binary unit they stand for
var binaryUnits = []struct{ suffix, unit string }{
	{"kb", "kib"}, {"mb", "mib"}, {"gb", "gib"}, {"tb", "tib"}, {"pb", "pib"},
	{"k", "kib"}, {"m", "mib"}, {"g", "gib"}, {"t", "tib"}, {"p", "pib"},
}

// Parse parses s as a byte size.
func Parse(s string) (Size, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return 0, fmt.Errorf("empty byte size")
	}
	v = strings.ReplaceAll(v, " ", "")

	if !strings.HasSuffix(v, "ib") {
		for _, u := range binaryUnits {
			if strings.HasSuffix(v, u.suffix) {
				v = strings.TrimSuffix(v, u.suffix) + u.unit
				break
			}
		}
	}

	n, err := humanize.ParseBytes(v)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size %q: %w", s, err)
	}
	if n > math.MaxInt64 {
		return 0, fmt.Errorf("byte size %q overflows", s)
	}
	return Size(n), nil
}

// Bytes returns s as a plain int64.
func (s Size) Bytes() int64 {
	return int64(s)
}

// String renders s with a binary unit, e.g. "100 MiB".
func (s Size) String() string {
	if s < 0 {
		return fmt.Sprintf("%d B", int64(s))
	}
	return humanize.IBytes(uint64(s))
}
