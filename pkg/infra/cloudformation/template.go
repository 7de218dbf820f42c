package cloudformation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const TEMPLATE_FORMAT_VERSION = "2010-09-09"

type (
	Template struct {
		AWSTemplateFormatVersion string               `json:"AWSTemplateFormatVersion" yaml:"AWSTemplateFormatVersion"`
		Description              string               `json:"Description,omitempty" yaml:"Description,omitempty"`
		Resources                map[string]*Resource `json:"Resources" yaml:"Resources"`
		Outputs                  map[string]*Output   `json:"Outputs,omitempty" yaml:"Outputs,omitempty"`
	}

	Resource struct {
		Type                string         `json:"Type" yaml:"Type"`
		Properties          map[string]any `json:"Properties,omitempty" yaml:"Properties,omitempty"`
		DependsOn           []string       `json:"DependsOn,omitempty" yaml:"DependsOn,omitempty"`
		DeletionPolicy      string         `json:"DeletionPolicy,omitempty" yaml:"DeletionPolicy,omitempty"`
		UpdateReplacePolicy string         `json:"UpdateReplacePolicy,omitempty" yaml:"UpdateReplacePolicy,omitempty"`
	}

	Output struct {
		Description string  `json:"Description,omitempty" yaml:"Description,omitempty"`
		Value       any     `json:"Value" yaml:"Value"`
		Export      *Export `json:"Export,omitempty" yaml:"Export,omitempty"`
	}

	Export struct {
		Name any `json:"Name" yaml:"Name"`
	}

	// Format is the serialization of a template on disk.
	Format string
)

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func NewTemplate(description string) *Template {
	return &Template{
		AWSTemplateFormatVersion: TEMPLATE_FORMAT_VERSION,
		Description:              description,
		Resources:                make(map[string]*Resource),
		Outputs:                  make(map[string]*Output),
	}
}

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown template format %q (expected json or yaml)", s)
	}
}

// Extension is the file extension, including the dot, of templates written in the format.
func (f Format) Extension() string {
	if f == FormatYAML {
		return ".yaml"
	}
	return ".json"
}

func (t *Template) Marshal(format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		buf := new(bytes.Buffer)
		enc := yaml.NewEncoder(buf)
		enc.SetIndent(2)
		if err := enc.Encode(t); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil

	case FormatJSON, "":
		b, err := json.MarshalIndent(t, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil

	default:
		return nil, fmt.Errorf("unknown template format %q", format)
	}
}

// Decode reads a template body in either format into a generic document, as needed to compare a deployed
// template with a synthesized one. JSON is decoded through YAML so numbers decode the same way in both formats.
func Decode(body []byte) (map[string]any, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("could not decode template: %w", err)
	}
	if doc == nil {
		doc = make(map[string]any)
	}
	return doc, nil
}
