package llm

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strings"

	"google.golang.org/genai"
)

type PropertyType string

const (
	TypeString PropertyType = "string"
	TypeArray  PropertyType = "array"
)

// Property is a single field of a structured output. Arrays hold strings.
type Property struct {
	Type        PropertyType
	Description string
	Enum        []string
}

// Schema describes the JSON object a structured generation must return.
type Schema struct {
	Name        string
	Description string
	Properties  map[string]Property
	Required    []string
}

// EnumSchema is a schema with one required string field restricted to labels.
func EnumSchema(name, description, field, fieldDescription string, labels []string) Schema {
	return Schema{
		Name:        name,
		Description: description,
		Properties: map[string]Property{
			field: {Type: TypeString, Description: fieldDescription, Enum: labels},
		},
		Required: []string{field},
	}
}

// StringListSchema is a schema with one required array-of-strings field.
func StringListSchema(name, description, field, fieldDescription string) Schema {
	return Schema{
		Name:        name,
		Description: description,
		Properties: map[string]Property{
			field: {Type: TypeArray, Description: fieldDescription},
		},
		Required: []string{field},
	}
}

func (s Schema) jsonSchema() map[string]interface{} {
	props := make(map[string]interface{}, len(s.Properties))
	for name, p := range s.Properties {
		prop := map[string]interface{}{
			"type":        string(p.Type),
			"description": p.Description,
		}
		if len(p.Enum) > 0 {
			prop["enum"] = p.Enum
		}
		if p.Type == TypeArray {
			prop["items"] = map[string]interface{}{"type": "string"}
		}
		props[name] = prop
	}

	return map[string]interface{}{
		"title":       s.Name,
		"description": s.Description,
		"type":        "object",
		"properties":  props,
		"required":    s.Required,
	}
}

// JSON renders the schema as JSON Schema text.
func (s Schema) JSON() string {
	data, err := json.MarshalIndent(s.jsonSchema(), "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

// Instructions is the response format section appended to system prompts of models
// that only support a generic JSON mode.
func (s Schema) Instructions() string {
	return "# Response Format:\n" +
		"Return the JSON object directly without any formatting or additional text. " +
		"The JSON object must follow this schema and include all required properties:\n" +
		s.JSON()
}

// GenAI converts the schema to a genai response schema.
func (s Schema) GenAI() *genai.Schema {
	props := make(map[string]*genai.Schema, len(s.Properties))
	for name, p := range s.Properties {
		prop := &genai.Schema{Description: p.Description}
		switch p.Type {
		case TypeArray:
			prop.Type = genai.TypeArray
			prop.Items = &genai.Schema{Type: genai.TypeString}
		default:
			prop.Type = genai.TypeString
			prop.Enum = p.Enum
		}
		props[name] = prop
	}

	return &genai.Schema{
		Type:        genai.TypeObject,
		Description: s.Description,
		Properties:  props,
		Required:    s.Required,
	}
}

// Decode validates raw model output against the schema and unmarshals it into out.
func (s Schema) Decode(content string, out any) error {
	raw := stripCodeFence(content)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return fmt.Errorf("%w: invalid json: %v (content: %s)", ErrSchemaViolation, err, content)
	}

	for _, name := range s.Required {
		if _, ok := fields[name]; !ok {
			return fmt.Errorf("%w: missing required field %q", ErrSchemaViolation, name)
		}
	}

	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value, ok := fields[name]
		if !ok {
			continue
		}
		if err := s.Properties[name].check(value); err != nil {
			return fmt.Errorf("%w: field %q: %v", ErrSchemaViolation, name, err)
		}
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}
	return nil
}

func (p Property) check(value json.RawMessage) error {
	switch p.Type {
	case TypeArray:
		var items []string
		if err := json.Unmarshal(value, &items); err != nil {
			return fmt.Errorf("expected an array of strings")
		}
	default:
		var str string
		if err := json.Unmarshal(value, &str); err != nil {
			return fmt.Errorf("expected a string")
		}
		if len(p.Enum) > 0 && !slices.Contains(p.Enum, str) {
			return fmt.Errorf("%q is not one of %v", str, p.Enum)
		}
	}
	return nil
}

func stripCodeFence(content string) string {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
