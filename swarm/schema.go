// Copyright (c) Microsoft. All rights reserved.

package swarm

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// Property describes a single parameter within a [CallSchema], in the wire
// vocabulary {string, integer, number, boolean, array, object, null}.
type Property struct {
	Type        string              `json:"type"`
	Description string              `json:"description,omitempty"`
	Enum        []string            `json:"enum,omitempty"`
	Items       *Property           `json:"items,omitempty"`
	Properties  map[string]Property `json:"properties,omitempty"`
	Required    []string            `json:"required,omitempty"`
}

// CallSchema is the provider-agnostic description of a tool: its name, its
// documentation text, and the shape of its arguments. Providers render it
// into their own function-declaration wire formats.
type CallSchema struct {
	Name        string
	Description string
	Parameters  map[string]Property
	Required    []string // parameter names without a declared default
}

// ParametersJSON renders the parameters as the JSON-schema object form that
// completion endpoints expect. Output is deterministic for a given schema.
func (s *CallSchema) ParametersJSON() json.RawMessage {
	params := struct {
		Type       string              `json:"type"`
		Properties map[string]Property `json:"properties"`
		Required   []string            `json:"required"`
	}{Type: "object", Properties: s.Parameters, Required: s.Required}
	if params.Properties == nil {
		params.Properties = map[string]Property{}
	}
	if params.Required == nil {
		params.Required = []string{}
	}
	b, _ := json.Marshal(params)
	return b
}

// DeriveSchema inspects the Args struct type and produces the [CallSchema]
// advertising it. Parameter names come from `json` tags, metadata from
// `jsonschema` tags (description=..., enum=a|b, default=...). A parameter is
// required exactly when it declares no default. Unrecognized field types map
// to "string" rather than failing; the only hard failure is an Args type
// that is not a struct, reported as [ErrSignatureUnavailable].
func DeriveSchema[Args any](name, description string) (*CallSchema, error) {
	d, err := deriveArgs(name, description, reflect.TypeFor[Args]())
	if err != nil {
		return nil, err
	}
	return d.schema, nil
}

// derived bundles everything reflection extracts from an argument struct.
type derived struct {
	schema   *CallSchema
	defaults map[string]json.RawMessage
}

func deriveArgs(name, description string, t reflect.Type) (*derived, error) {
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: argument type %v has no inspectable parameter list", ErrSignatureUnavailable, t)
	}
	properties, required, defaults := structProperties(t)
	return &derived{
		schema: &CallSchema{
			Name:        name,
			Description: strings.TrimSpace(description),
			Parameters:  properties,
			Required:    required,
		},
		defaults: defaults,
	}, nil
}

func structProperties(t reflect.Type) (map[string]Property, []string, map[string]json.RawMessage) {
	properties := make(map[string]Property, t.NumField())
	var required []string
	defaults := make(map[string]json.RawMessage)

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}
		name := field.Name
		if jsonTag != "" {
			parts := strings.SplitN(jsonTag, ",", 2)
			if parts[0] != "" {
				name = parts[0]
			}
		}

		prop := propertyForType(field.Type)

		hasDefault := false
		if jsTag := field.Tag.Get("jsonschema"); jsTag != "" {
			for _, part := range strings.Split(jsTag, ",") {
				kv := strings.SplitN(part, "=", 2)
				key := strings.TrimSpace(kv[0])
				val := ""
				if len(kv) == 2 {
					val = strings.TrimSpace(kv[1])
				}
				switch key {
				case "description":
					prop.Description = val
				case "enum":
					for _, ev := range strings.Split(val, "|") {
						prop.Enum = append(prop.Enum, strings.TrimSpace(ev))
					}
				case "default":
					hasDefault = true
					defaults[name] = defaultLiteral(prop.Type, val)
				}
			}
		}

		// A parameter with a default value is never required.
		if !hasDefault {
			required = append(required, name)
		}
		properties[name] = prop
	}

	return properties, required, defaults
}

func propertyForType(t reflect.Type) Property {
	switch t.Kind() {
	case reflect.String:
		return Property{Type: "string"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Property{Type: "integer"}
	case reflect.Float32, reflect.Float64:
		return Property{Type: "number"}
	case reflect.Bool:
		return Property{Type: "boolean"}
	case reflect.Slice, reflect.Array:
		item := propertyForType(t.Elem())
		return Property{Type: "array", Items: &item}
	case reflect.Ptr:
		return propertyForType(t.Elem())
	case reflect.Struct:
		props, req, _ := structProperties(t)
		return Property{Type: "object", Properties: props, Required: req}
	case reflect.Map:
		return Property{Type: "object"}
	default:
		// Unannotatable kinds (interfaces, funcs, channels) fall back to
		// string: every declared tool must still get some schema.
		return Property{Type: "string"}
	}
}

// defaultLiteral encodes a `default=` tag value as the JSON literal to fill
// into absent arguments before decoding.
func defaultLiteral(typ, val string) json.RawMessage {
	if typ == "string" {
		b, _ := json.Marshal(val)
		return b
	}
	if json.Valid([]byte(val)) {
		return json.RawMessage(val)
	}
	b, _ := json.Marshal(val)
	return b
}
