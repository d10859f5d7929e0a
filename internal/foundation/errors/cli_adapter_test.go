package errors

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil error", err: nil, expected: 0},
		{name: "validation", err: ValidationError("bad flag").Build(), expected: 2},
		{name: "config", err: ConfigError("bad settings").Build(), expected: 7},
		{name: "routing", err: RoutingError("unknown pattern").Build(), expected: 9},
		{name: "render", err: RenderError("template missing").Build(), expected: 11},
		{name: "filesystem", err: FileSystemError("not a directory").Build(), expected: 11},
		{name: "plugin", err: PluginError("unknown plugin").Build(), expected: 12},
		{name: "unclassified", err: errors.New("boom"), expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, adapter.ExitCodeFor(tt.err))
		})
	}
}

func TestCLIErrorAdapter_HandleError(t *testing.T) {
	var out bytes.Buffer
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(io.Discard, nil)))
	adapter.out = &out
	code := -1
	adapter.exit = func(c int) { code = c }

	adapter.HandleError(WrapError(errors.New("exists"), CategoryBuild, "write refused").Build())

	require.Equal(t, 11, code)
	assert.Contains(t, out.String(), "write refused: exists")
}

func TestCLIErrorAdapter_FormatVerbose(t *testing.T) {
	adapter := NewCLIErrorAdapter(true, nil)
	msg := adapter.FormatError(ConfigError("missing root").Build())
	assert.Equal(t, "[config:fatal] missing root", msg)
}
