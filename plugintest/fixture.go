package plugintest

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// WriteTree materializes tree under dir. String values become file
// contents; nested map[string]any values become subdirectories. Parent
// directories are created as needed.
func WriteTree(dir string, tree map[string]any) error {
	for name, value := range tree {
		path := filepath.Join(dir, filepath.FromSlash(name))
		switch v := value.(type) {
		case string:
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(path, []byte(v), 0o644); err != nil {
				return err
			}
		case map[string]any:
			if err := os.MkdirAll(path, 0o755); err != nil {
				return err
			}
			if err := WriteTree(path, v); err != nil {
				return err
			}
		default:
			return fmt.Errorf("plugintest: tree entry %q has unsupported type %T", name, value)
		}
	}
	return nil
}

// ReadTree reads dir back into the shape WriteTree consumes: file contents
// as strings, subdirectories as nested maps.
func ReadTree(dir string) (map[string]any, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	tree := make(map[string]any, len(entries))
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			sub, err := ReadTree(path)
			if err != nil {
				return nil, err
			}
			tree[entry.Name()] = sub
			continue
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		tree[entry.Name()] = string(content)
	}
	return tree, nil
}

// TreeFromYAML parses a YAML document into a tree for WriteTree. Mapping
// values must be strings (files) or nested mappings (directories).
func TreeFromYAML(doc string) (map[string]any, error) {
	var tree map[string]any
	if err := yaml.Unmarshal([]byte(doc), &tree); err != nil {
		return nil, fmt.Errorf("plugintest: parsing tree document: %w", err)
	}
	return tree, nil
}
