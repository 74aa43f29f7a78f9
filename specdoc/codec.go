package specdoc

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/goliatone/go-transform/core"
	"gopkg.in/yaml.v3"
)

// ParseYAML decodes one mapping spec document from YAML.
func ParseYAML(data []byte) (core.MappingSpec, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return core.MappingSpec{}, fmt.Errorf("specdoc: decode yaml: %w", err)
	}
	return docToSpec(doc)
}

// ParseJSON decodes one mapping spec document from JSON.
func ParseJSON(data []byte) (core.MappingSpec, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return core.MappingSpec{}, fmt.Errorf("specdoc: decode json: %w", err)
	}
	return docToSpec(doc)
}

// Parse sniffs the payload format. JSON documents start with an object
// brace; everything else goes through the YAML decoder.
func Parse(data []byte) (core.MappingSpec, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		return ParseJSON(data)
	}
	return ParseYAML(data)
}

// EncodeYAML renders a spec as a YAML document.
func EncodeYAML(spec core.MappingSpec) ([]byte, error) {
	out, err := yaml.Marshal(FromSpec(spec))
	if err != nil {
		return nil, fmt.Errorf("specdoc: encode yaml: %w", err)
	}
	return out, nil
}

// EncodeJSON renders a spec as an indented JSON document.
func EncodeJSON(spec core.MappingSpec) ([]byte, error) {
	out, err := json.MarshalIndent(FromSpec(spec), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("specdoc: encode json: %w", err)
	}
	return out, nil
}

func docToSpec(doc Document) (core.MappingSpec, error) {
	if strings.TrimSpace(doc.SpecID) == "" {
		return core.MappingSpec{}, fmt.Errorf("specdoc: spec_id is required")
	}
	if len(doc.Sections) == 0 {
		return core.MappingSpec{}, fmt.Errorf("specdoc: document %q declares no sections", doc.SpecID)
	}
	return doc.ToSpec(), nil
}
