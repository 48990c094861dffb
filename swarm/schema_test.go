// Copyright (c) Microsoft. All rights reserved.

package swarm_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/djordjethai/swarm/swarm"
)

type weatherArgs struct {
	Location string `json:"location" jsonschema:"description=City name"`
	Unit     string `json:"unit"     jsonschema:"description=Temperature unit,enum=celsius|fahrenheit,default=celsius"`
}

func TestDeriveSchema_BasicStruct(t *testing.T) {
	schema, err := swarm.DeriveSchema[weatherArgs]("get_weather", "Get current weather")
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if schema.Name != "get_weather" {
		t.Errorf("Name = %q", schema.Name)
	}

	var parsed map[string]any
	if err := json.Unmarshal(schema.ParametersJSON(), &parsed); err != nil {
		t.Fatalf("unmarshal schema: %v", err)
	}

	if parsed["type"] != "object" {
		t.Errorf("type = %v, want object", parsed["type"])
	}

	props, ok := parsed["properties"].(map[string]any)
	if !ok {
		t.Fatalf("properties not a map: %T", parsed["properties"])
	}

	locProp, ok := props["location"].(map[string]any)
	if !ok {
		t.Fatalf("location property missing or wrong type")
	}
	if locProp["type"] != "string" {
		t.Errorf("location type = %v", locProp["type"])
	}
	if locProp["description"] != "City name" {
		t.Errorf("location description = %v", locProp["description"])
	}

	unitProp, ok := props["unit"].(map[string]any)
	if !ok {
		t.Fatalf("unit property missing or wrong type")
	}
	enumVals, ok := unitProp["enum"].([]any)
	if !ok {
		t.Fatalf("unit enum missing or wrong type: %T", unitProp["enum"])
	}
	if len(enumVals) != 2 {
		t.Errorf("enum len = %d, want 2", len(enumVals))
	}

	required, ok := parsed["required"].([]any)
	if !ok {
		t.Fatalf("required missing or wrong type")
	}
	// location has no default and is required; unit has one and is not.
	if len(required) != 1 || required[0] != "location" {
		t.Errorf("required = %v, want [location]", required)
	}
}

type nestedArgs struct {
	Items []string       `json:"items"`
	Tags  map[string]int `json:"tags"`
	Count int            `json:"count"`
	Flag  bool           `json:"flag"`
	Score float64        `json:"score"`
}

func TestDeriveSchema_TypeMapping(t *testing.T) {
	schema, err := swarm.DeriveSchema[nestedArgs]("classify", "")
	if err != nil {
		t.Fatal(err)
	}

	var parsed map[string]any
	if err := json.Unmarshal(schema.ParametersJSON(), &parsed); err != nil {
		t.Fatal(err)
	}

	props := parsed["properties"].(map[string]any)

	// Array of strings
	items := props["items"].(map[string]any)
	if items["type"] != "array" {
		t.Errorf("items type = %v", items["type"])
	}
	itemsInner := items["items"].(map[string]any)
	if itemsInner["type"] != "string" {
		t.Errorf("items inner type = %v", itemsInner["type"])
	}

	// Map
	tags := props["tags"].(map[string]any)
	if tags["type"] != "object" {
		t.Errorf("tags type = %v", tags["type"])
	}

	// Int
	count := props["count"].(map[string]any)
	if count["type"] != "integer" {
		t.Errorf("count type = %v", count["type"])
	}

	// Bool
	flag := props["flag"].(map[string]any)
	if flag["type"] != "boolean" {
		t.Errorf("flag type = %v", flag["type"])
	}

	// Float
	score := props["score"].(map[string]any)
	if score["type"] != "number" {
		t.Errorf("score type = %v", score["type"])
	}
}

func TestDeriveSchema_UnmappableFallsBackToString(t *testing.T) {
	type oddArgs struct {
		Callback func() `json:"callback"`
		Data     any    `json:"data"`
	}

	schema, err := swarm.DeriveSchema[oddArgs]("odd", "")
	if err != nil {
		t.Fatalf("fallback should not fail derivation: %v", err)
	}
	if got := schema.Parameters["callback"].Type; got != "string" {
		t.Errorf("callback type = %q, want string", got)
	}
	if got := schema.Parameters["data"].Type; got != "string" {
		t.Errorf("data type = %q, want string", got)
	}
}

func TestDeriveSchema_NonStruct(t *testing.T) {
	_, err := swarm.DeriveSchema[int]("bad", "")
	if err == nil {
		t.Fatal("expected error for non-struct args")
	}
	if !errors.Is(err, swarm.ErrSignatureUnavailable) {
		t.Errorf("err = %v, want ErrSignatureUnavailable", err)
	}

	// Pointer to struct is fine.
	if _, err := swarm.DeriveSchema[*weatherArgs]("ok", ""); err != nil {
		t.Errorf("pointer to struct: %v", err)
	}
}

func TestDeriveSchema_Deterministic(t *testing.T) {
	s1, err := swarm.DeriveSchema[nestedArgs]("classify", "desc")
	if err != nil {
		t.Fatal(err)
	}
	s2, err := swarm.DeriveSchema[nestedArgs]("classify", "desc")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(s1.ParametersJSON(), s2.ParametersJSON()) {
		t.Errorf("derivation not deterministic:\n%s\n%s", s1.ParametersJSON(), s2.ParametersJSON())
	}
}

func TestCallSchema_ParametersJSON_Empty(t *testing.T) {
	s := &swarm.CallSchema{Name: "noop"}
	got := string(s.ParametersJSON())
	want := `{"type":"object","properties":{},"required":[]}`
	if got != want {
		t.Errorf("ParametersJSON = %s, want %s", got, want)
	}
}
