package config

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// ApplyContext applies `key.path=value` overrides, where the key path follows the config file keys
// (for example `minecraft.cpu=2048`). Values are converted to the field's type.
func ApplyContext(cfg *Config, overrides []string) error {
	if len(overrides) == 0 {
		return nil
	}
	tree := make(map[string]any)
	for _, o := range overrides {
		key, value, ok := strings.Cut(o, "=")
		if !ok || key == "" {
			return fmt.Errorf("invalid context override %q, expected key=value", o)
		}
		if err := setPath(tree, strings.Split(key, "."), value); err != nil {
			return fmt.Errorf("invalid context override %q: %w", o, err)
		}
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		TagName:          "yaml",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(tree); err != nil {
		return fmt.Errorf("could not apply context: %w", err)
	}
	return nil
}

func setPath(tree map[string]any, path []string, value string) error {
	for i, part := range path {
		if part == "" {
			return fmt.Errorf("empty key segment")
		}
		if i == len(path)-1 {
			if _, ok := tree[part].(map[string]any); ok {
				return fmt.Errorf("%s is not a value", strings.Join(path[:i+1], "."))
			}
			tree[part] = value
			return nil
		}
		next, ok := tree[part]
		if !ok {
			child := make(map[string]any)
			tree[part] = child
			tree = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("%s is a value", strings.Join(path[:i+1], "."))
		}
		tree = child
	}
	return nil
}
