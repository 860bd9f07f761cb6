package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New("info", "text", &buf)

	logger.Info("tick", "task_id", 7)

	output := buf.String()
	if !strings.Contains(output, "tick") {
		t.Errorf("expected 'tick' in output, got: %s", output)
	}
	if !strings.Contains(output, "task_id=7") {
		t.Errorf("expected 'task_id=7' in output, got: %s", output)
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New("info", "json", &buf)

	logger.Info("tick", "task_id", 7)

	output := buf.String()
	if !strings.Contains(output, `"msg":"tick"`) {
		t.Errorf("expected JSON msg field in output, got: %s", output)
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New("warn", "text", &buf)

	logger.Info("should not appear")
	logger.Warn("should appear")

	output := buf.String()
	if strings.Contains(output, "should not appear") {
		t.Errorf("INFO message should be filtered at WARN level, got: %s", output)
	}
	if !strings.Contains(output, "should appear") {
		t.Errorf("WARN message should appear at WARN level, got: %s", output)
	}
}

func TestNew_UnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := New("chatty", "text", &buf)

	logger.Debug("hidden")
	logger.Info("visible")

	output := buf.String()
	if strings.Contains(output, "hidden") {
		t.Errorf("DEBUG message should be filtered at default level, got: %s", output)
	}
	if !strings.Contains(output, "visible") {
		t.Errorf("INFO message should appear at default level, got: %s", output)
	}
}
