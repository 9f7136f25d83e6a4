package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// fieldDecoder decodes config entries one at a time so a value of the
// wrong type leaves its field unset instead of zeroing it.
type fieldDecoder struct {
	invalid []string
}

func (d *fieldDecoder) fail(name string, err error) {
	var te *yaml.TypeError
	if errors.As(err, &te) {
		for _, msg := range te.Errors {
			d.invalid = append(d.invalid, fmt.Sprintf("%s: %s", name, msg))
		}
		return
	}
	d.invalid = append(d.invalid, fmt.Sprintf("%s: %v", name, err))
}

// decodeField returns nil for null values and for values that do not
// decode into T.
func decodeField[T any](d *fieldDecoder, name string, n *yaml.Node) *T {
	if isNull(n) {
		return nil
	}
	var v T
	if err := n.Decode(&v); err != nil {
		d.fail(name, err)
		return nil
	}
	return &v
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null"
}

// entries walks the key/value pairs of a mapping node.
func (d *fieldDecoder) entries(name string, n *yaml.Node, fn func(key string, val *yaml.Node)) {
	if isNull(n) {
		return
	}
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	if n.Kind != yaml.MappingNode {
		d.invalid = append(d.invalid, fmt.Sprintf("%s: line %d: expected a mapping", name, n.Line))
		return
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		fn(n.Content[i].Value, n.Content[i+1])
	}
}

func (d *fieldDecoder) countdowns(n *yaml.Node) *CountdownConfig {
	var cm *CountdownConfig
	d.entries("countdownMinutes", n, func(key string, val *yaml.Node) {
		if cm == nil {
			cm = &CountdownConfig{}
		}
		name := "countdownMinutes." + key
		switch key {
		case "critical":
			cm.Critical = decodeField[int](d, name, val)
		case "high":
			cm.High = decodeField[int](d, name, val)
		case "medium":
			cm.Medium = decodeField[int](d, name, val)
		}
	})
	return cm
}

func (d *fieldDecoder) toggles(n *yaml.Node) map[string]bool {
	var out map[string]bool
	d.entries("detectors", n, func(key string, val *yaml.Node) {
		on := decodeField[bool](d, "detectors."+key, val)
		if on == nil {
			return
		}
		if out == nil {
			out = make(map[string]bool)
		}
		out[key] = *on
	})
	return out
}

// decodeFile builds a FileConfig from a parsed document.
func decodeFile(doc *yaml.Node) FileConfig {
	var cfg FileConfig
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return cfg
	}
	d := &fieldDecoder{}
	d.entries("config", doc.Content[0], func(key string, val *yaml.Node) {
		switch key {
		case "enabled":
			cfg.Enabled = decodeField[bool](d, key, val)
		case "autoMask":
			cfg.AutoMask = decodeField[bool](d, key, val)
		case "pollIntervalMs":
			cfg.PollIntervalMs = decodeField[int](d, key, val)
		case "restoreTTLSeconds":
			cfg.RestoreTTLSeconds = decodeField[int](d, key, val)
		case "countdownMinutes":
			cfg.CountdownMinutes = d.countdowns(val)
		case "detectors":
			cfg.Detectors = d.toggles(val)
		case "disablePatterns":
			if v := decodeField[[]string](d, key, val); v != nil {
				cfg.DisablePatterns = *v
			}
		case "pasteMasking":
			cfg.PasteMasking = decodeField[string](d, key, val)
		case "statePath":
			cfg.StatePath = decodeField[string](d, key, val)
		case "logLevel":
			cfg.LogLevel = decodeField[string](d, key, val)
		}
	})
	cfg.invalid = d.invalid
	return cfg
}

// setKey writes key: value into the YAML file at path and leaves every
// other entry and comment as written, including values that do not decode.
// A missing or empty file is created.
func setKey(path, key string, value any) error {
	var doc yaml.Node
	b, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || isNull(doc.Content[0]) {
		doc = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("%s: top level is not a mapping", path)
	}

	v := &yaml.Node{}
	if err := v.Encode(value); err != nil {
		return err
	}
	found := false
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == key {
			v.LineComment = root.Content[i+1].LineComment
			root.Content[i+1] = v
			found = true
		}
	}
	if !found {
		root.Content = append(root.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, v)
	}

	out, err := yaml.Marshal(&doc)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, out, 0644)
}
