package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// TagSeed is one entry of the tag vocabulary seed file
type TagSeed struct {
	Name        string `yaml:"name"`
	DisplayName string `yaml:"display_name"`
}

type tagSeedFile struct {
	Tags []TagSeed `yaml:"tags"`
}

// LoadTagSeeds reads a YAML file of the form
//
//	tags:
//	  - name: decision
//	    display_name: Decision
func LoadTagSeeds(path string) ([]TagSeed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tag seed file: %w", err)
	}
	return ParseTagSeeds(data)
}

// ParseTagSeeds decodes seed YAML. Names are required and must be unique
// after trimming and lowercasing. A missing display name falls back to the name.
func ParseTagSeeds(data []byte) ([]TagSeed, error) {
	var file tagSeedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse tag seed file: %w", err)
	}

	seen := make(map[string]struct{}, len(file.Tags))
	seeds := make([]TagSeed, 0, len(file.Tags))
	for i, t := range file.Tags {
		key := strings.ToLower(strings.TrimSpace(t.Name))
		if key == "" {
			return nil, fmt.Errorf("tag seed %d: name is required", i)
		}
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("tag seed %d: duplicate name %q", i, key)
		}
		seen[key] = struct{}{}
		if strings.TrimSpace(t.DisplayName) == "" {
			t.DisplayName = strings.TrimSpace(t.Name)
		}
		seeds = append(seeds, t)
	}
	return seeds, nil
}
