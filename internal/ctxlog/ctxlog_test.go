package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	ctx := WithLogger(context.Background(), logger)
	FromContext(ctx).Info("hello", "k", "v")
	if !strings.Contains(buf.String(), "k=v") {
		t.Fatalf("logger from context was not used: %q", buf.String())
	}
	if FromContext(context.Background()) != slog.Default() {
		t.Fatalf("expected slog.Default fallback")
	}
}
