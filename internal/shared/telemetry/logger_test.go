package telemetry

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"
)

func TestInfoWritesJSONLine(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stdout) })

	Info("analysis.step", map[string]any{"resume_id": "r-1", "step": "extract"})

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if payload["msg"] != "analysis.step" || payload["level"] != "info" {
		t.Fatalf("unexpected payload: %v", payload)
	}
	if payload["resume_id"] != "r-1" || payload["step"] != "extract" {
		t.Fatalf("missing fields: %v", payload)
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("missing ts field: %v", payload)
	}
}
