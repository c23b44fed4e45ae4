package pipeline

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"instaforce.app/engine/internal/model"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, "":
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported export format %q (want json or yaml)", s)
}

// Export writes state to w. YAML output keeps the JSON key names.
func Export(w io.Writer, state *model.State, format Format) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}

	if format == FormatYAML {
		data, err = toYAML(data)
		if err != nil {
			return err
		}
	} else {
		data = append(data, '\n')
	}

	_, err = w.Write(data)
	return err
}

// toYAML re-encodes a JSON document as block style YAML.
func toYAML(data []byte) ([]byte, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("reading state as yaml: %w", err)
	}
	resetStyle(&node)

	out, err := yaml.Marshal(&node)
	if err != nil {
		return nil, fmt.Errorf("encoding yaml: %w", err)
	}
	return out, nil
}

// resetStyle drops the flow and quoting styles inherited from JSON syntax.
// Strings that would read back as another type keep their quotes.
func resetStyle(n *yaml.Node) {
	if n.Kind == yaml.ScalarNode {
		if n.Tag == "!!str" {
			n.Style = 0
		}
	} else {
		n.Style = 0
	}
	for _, c := range n.Content {
		resetStyle(c)
	}
}

// Import reads a state previously written by Export in JSON form.
func Import(r io.Reader) (*model.State, error) {
	var state model.State
	if err := json.NewDecoder(r).Decode(&state); err != nil {
		return nil, fmt.Errorf("decoding state: %w", err)
	}
	return &state, nil
}
