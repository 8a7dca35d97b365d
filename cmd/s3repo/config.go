package main

import (
	"os"

	"github.com/koustreak/s3repo/internal/errs"
	"github.com/koustreak/s3repo/internal/settings"
	"go.yaml.in/yaml/v3"
)

// fileConfig is the on-disk layout read by -config:
//
//	node:
//	  cloud.aws.region: eu-west
//	  repositories:
//	    s3:
//	      chunk_size: 256mb
//	repositories:
//	  nightly:
//	    bucket: es-snapshots
//	    base_path: prod/nightly
type fileConfig struct {
	Node         map[string]any            `yaml:"node"`
	Repositories map[string]map[string]any `yaml:"repositories"`
}

type bootstrap struct {
	node  settings.Map
	repos map[string]settings.Map
}

func loadConfig(path string) (*bootstrap, error) {
	if path == "" {
		return &bootstrap{node: settings.Map{}, repos: map[string]settings.Map{}}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidSetting, "failed to read config file", err)
	}
	return parseConfig(data)
}

func parseConfig(data []byte) (*bootstrap, error) {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidSetting, "failed to decode config file", err)
	}

	node, err := settings.Flatten(fc.Node)
	if err != nil {
		return nil, err
	}

	repos := make(map[string]settings.Map, len(fc.Repositories))
	for name, raw := range fc.Repositories {
		s, err := settings.Flatten(raw)
		if err != nil {
			return nil, errs.ForRepository(name, err)
		}
		repos[name] = s
	}
	return &bootstrap{node: node, repos: repos}, nil
}
