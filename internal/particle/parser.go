package particle

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/decker502/bubblefx/pkg/embedded"
)

// ParsePresetYAML parses the content of an effect preset file.
//
// Only the syntax is checked here; range strings are validated when a
// preset is applied on top of its compiled default (see PresetConfig.Apply).
func ParsePresetYAML(data []byte) (*PresetFile, error) {
	var file PresetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse effect presets: %w", err)
	}
	if len(file.Effects) == 0 {
		return nil, fmt.Errorf("effect preset file contains no effects")
	}
	return &file, nil
}

// LoadPresetFile reads and parses an effect preset file from the embedded
// data filesystem.
//
// Example usage:
//
//	presets, err := LoadPresetFile("data/effect_presets.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Loaded %d presets\n", len(presets.Effects))
func LoadPresetFile(path string) (*PresetFile, error) {
	data, err := embedded.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read effect preset file %s: %w", path, err)
	}

	file, err := ParsePresetYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return file, nil
}
