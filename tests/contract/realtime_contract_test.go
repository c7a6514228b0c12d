package contract_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

type openAPISpec struct {
	Paths      map[string]map[string]json.RawMessage `json:"paths"`
	Components struct {
		Schemas map[string]json.RawMessage `json:"schemas"`
	} `json:"components"`
}

func TestRealtimeSpecificationIncludesRealtimeEndpoints(t *testing.T) {
	spec := loadSpec(t, "docs/api/realtime.json")

	requiredPaths := []string{
		"/api/v1/chat/ws",
		"/api/v1/chat/history",
		"/api/v1/chat/threads",
		"/api/v1/notifications",
		"/api/v1/notifications/{id}/read",
		"/api/v1/notifications/read-all",
		"/api/v1/notifications/{id}",
	}

	for _, path := range requiredPaths {
		if _, ok := spec.Paths[path]; !ok {
			t.Fatalf("expected realtime spec to contain path %s", path)
		}
	}

	for _, schema := range []string{"ChatMessage", "ThreadSummary", "Notification", "NotificationList"} {
		if _, ok := spec.Components.Schemas[schema]; !ok {
			t.Fatalf("expected realtime spec to contain schema %s", schema)
		}
	}
}

func loadSpec(t *testing.T, relative string) openAPISpec {
	t.Helper()
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("failed to resolve caller")
	}
	base := filepath.Join(filepath.Dir(filename), "..", "..")
	fullPath := filepath.Join(base, relative)

	raw, err := os.ReadFile(fullPath)
	if err != nil {
		t.Fatalf("failed to read spec %s: %v", relative, err)
	}

	var spec openAPISpec
	if err := json.Unmarshal(raw, &spec); err != nil {
		t.Fatalf("failed to parse spec %s: %v", relative, err)
	}
	return spec
}
