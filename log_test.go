package present

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestLogger_SilentByDefault(t *testing.T) {
	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Error("default logger should be disabled at every level")
	}
}

func TestSetLogger(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	defer SetLogger(nil)

	Logger().Info("atlas ready", "textures", 2)
	if !strings.Contains(buf.String(), "atlas ready") {
		t.Errorf("log output missing message: %q", buf.String())
	}

	SetLogger(nil)
	buf.Reset()
	Logger().Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("nil logger still wrote output: %q", buf.String())
	}
}
