// Package settings resolves named setting values from an ordered list of
// providers.
//
// A repository is configured from several tiers: its own settings, the
// component-wide defaults, and node-wide settings. Each tier is a Provider
// and Layers queries them in priority order, so a repository-specific value
// always wins over a default.
//
// Usage:
//
//	node := settings.Map{"repositories.s3.bucket": "fallback"}
//	layers := settings.Layers{repo, settings.Prefix(node, "repositories.s3.")}
//	bucket, ok := layers.Lookup("bucket")
package settings

import (
	"strconv"
	"strings"

	"github.com/koustreak/s3repo/internal/bytesize"
	"github.com/koustreak/s3repo/internal/errs"
)

// Provider supplies raw string values by setting name.
type Provider interface {
	Lookup(key string) (string, bool)
}

// Map is a flat Provider keyed by dotted setting name.
type Map map[string]string

// Lookup implements Provider.
func (m Map) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// Layers is an ordered list of providers. The first provider holding a key
// decides its value. Nil entries are skipped.
type Layers []Provider

// Lookup implements Provider.
func (l Layers) Lookup(key string) (string, bool) {
	for _, p := range l {
		if p == nil {
			continue
		}
		if v, ok := p.Lookup(key); ok {
			return v, true
		}
	}
	return "", false
}

type prefixed struct {
	p      Provider
	prefix string
}

func (p prefixed) Lookup(key string) (string, bool) {
	return p.p.Lookup(p.prefix + key)
}

// Prefix exposes the keys of p that start with prefix, with the prefix removed.
func Prefix(p Provider, prefix string) Provider {
	if p == nil {
		return nil
	}
	return prefixed{p: p, prefix: prefix}
}

// --- Typed getters ---

// String returns the value of key, or "" when no provider holds it.
func String(p Provider, key string) string {
	v, _ := p.Lookup(key)
	return v
}

// Bool returns the boolean value of key, or def when absent.
// Accepts true/false, on/off, yes/no, 1/0 in any case.
func Bool(p Provider, key string, def bool) (bool, error) {
	v, ok := p.Lookup(key)
	if !ok {
		return def, nil
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "on", "yes", "1":
		return true, nil
	case "false", "off", "no", "0":
		return false, nil
	}
	return false, errs.Newf(errs.ErrKindInvalidSetting, "setting [%s] has invalid boolean value [%s]", key, v)
}

// Int returns the integer value of key, or def when absent.
func Int(p Provider, key string, def int) (int, error) {
	v, ok := p.Lookup(key)
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, errs.Wrap(errs.ErrKindInvalidSetting, "setting ["+key+"] is not an integer", err)
	}
	return n, nil
}

// ByteSize returns the byte-size value of key. ok is false when absent.
func ByteSize(p Provider, key string) (size bytesize.Size, ok bool, err error) {
	v, ok := p.Lookup(key)
	if !ok {
		return 0, false, nil
	}
	size, err = bytesize.Parse(v)
	if err != nil {
		return 0, true, errs.Wrap(errs.ErrKindInvalidSetting, "setting ["+key+"] is not a byte size", err)
	}
	return size, true, nil
}
