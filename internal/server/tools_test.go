package server

import (
	"strings"
	"testing"
)

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	want := []string{
		"roomstamp_load",
		"roomstamp_tiles",
		"roomstamp_crop",
		"roomstamp_detect",
		"roomstamp_parse_lines",
		"roomstamp_extract",
	}
	if len(tools) != len(want) {
		t.Fatalf("got %d tools, want %d", len(tools), len(want))
	}

	for i, tool := range tools {
		if tool.Name != want[i] {
			t.Errorf("tool %d: got %s, want %s", i, tool.Name, want[i])
		}
		if !strings.HasPrefix(tool.Name, "roomstamp_") {
			t.Errorf("tool %s lacks the roomstamp_ prefix", tool.Name)
		}
		if tool.Description == "" {
			t.Errorf("tool %s has no description", tool.Name)
		}
		if tool.InputSchema["type"] != "object" {
			t.Errorf("tool %s: schema type %v, want object", tool.Name, tool.InputSchema["type"])
		}
	}
}

func TestGetToolDefinitions_RequiredPropertiesExist(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		required, _ := tool.InputSchema["required"].([]string)
		props, _ := tool.InputSchema["properties"].(map[string]interface{})
		for _, name := range required {
			if _, ok := props[name]; !ok {
				t.Errorf("tool %s requires undeclared property %s", tool.Name, name)
			}
		}
	}
}
