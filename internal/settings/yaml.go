package settings

import (
	"fmt"
	"strconv"

	"github.com/koustreak/s3repo/internal/errs"
	"go.yaml.in/yaml/v3"
)

// ParseYAML decodes a YAML document into a flat Map. Nested mappings become
// dotted keys, so
//
//	repositories:
//	  s3:
//	    bucket: snapshots
//
// yields "repositories.s3.bucket" = "snapshots".
func ParseYAML(data []byte) (Map, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidSetting, "failed to decode settings YAML", err)
	}
	return Flatten(doc)
}

// Flatten turns a nested map into a flat Map with dotted keys. Scalars are
// rendered with their YAML spelling; sequences and duplicate keys are
// rejected.
func Flatten(doc map[string]any) (Map, error) {
	out := Map{}
	if err := flatten(out, "", doc); err != nil {
		return nil, err
	}
	return out, nil
}

func flatten(out Map, prefix string, v any) error {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			if err := flatten(out, join(prefix, k), child); err != nil {
				return err
			}
		}
	case map[any]any:
		for k, child := range t {
			if err := flatten(out, join(prefix, fmt.Sprint(k)), child); err != nil {
				return err
			}
		}
	case []any:
		return errs.Newf(errs.ErrKindInvalidSetting, "setting [%s] must be a scalar, got a list", prefix)
	case nil:
		// "key:" with no value is left unset
	case string:
		return set(out, prefix, t)
	case bool:
		return set(out, prefix, strconv.FormatBool(t))
	case int:
		return set(out, prefix, strconv.Itoa(t))
	case float64:
		return set(out, prefix, strconv.FormatFloat(t, 'f', -1, 64))
	default:
		return set(out, prefix, fmt.Sprint(t))
	}
	return nil
}

// set stores one flattened value. A dotted key and a nested mapping that
// name the same setting are rejected.
func set(out Map, key, value string) error {
	if _, ok := out[key]; ok {
		return errs.Newf(errs.ErrKindInvalidSetting, "setting [%s] defined twice", key)
	}
	out[key] = value
	return nil
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
