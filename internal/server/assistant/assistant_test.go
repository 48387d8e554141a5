package assistant

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarpenko/codepad/internal/logging"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.DiscardHandler))
}

func TestRespond_Deterministic(t *testing.T) {
	t.Parallel()

	a, err := Respond(CommandExplain, "let x = 1;", "javascript")
	require.NoError(t, err)
	b, err := Respond(CommandExplain, "let x = 1;", "javascript")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRespond_Templates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		cmd      Command
		source   string
		language string
		contains []string
	}{
		{
			name:     "explain javascript",
			cmd:      CommandExplain,
			source:   "function f() {}",
			language: "javascript",
			contains: []string{"defines a function that"},
		},
		{
			name:     "explain other language",
			cmd:      CommandExplain,
			source:   "def f(): pass",
			language: "python",
			contains: []string{"implements a routine which"},
		},
		{
			name:     "improve lists suggestions",
			cmd:      CommandImprove,
			source:   "x",
			language: "javascript",
			contains: []string{"descriptive variable names", "error handling"},
		},
		{
			name:     "refactor swaps function for const",
			cmd:      CommandRefactor,
			source:   "function add(a, b) { return a + b; }",
			language: "javascript",
			contains: []string{"const add(a, b)", "```javascript"},
		},
		{
			name:     "comment wraps source",
			cmd:      CommandComment,
			source:   "return 42;",
			language: "javascript",
			contains: []string{"// This function processes the input data", "return 42;"},
		},
		{
			name:     "fix swaps let for const",
			cmd:      CommandFix,
			source:   "let x = 1;",
			language: "javascript",
			contains: []string{"const x = 1;", "variable declarations"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := Respond(tc.cmd, tc.source, tc.language)
			require.NoError(t, err)
			for _, want := range tc.contains {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestRespond_UnknownCommand(t *testing.T) {
	t.Parallel()

	_, err := Respond(Command("translate"), "x", "javascript")
	assert.Error(t, err)
}

func TestGenerate_PerLanguage(t *testing.T) {
	t.Parallel()

	assert.Contains(t, Generate("anything", "javascript"), "function processData(items)")
	assert.Contains(t, Generate("anything", "TypeScript"), "function processData(items)")
	assert.Contains(t, Generate("anything", "python"), "def process_data(items):")
	assert.Contains(t, Generate("anything", "html"), "<form id=\"myForm\"")

	out := Generate("anything", "rust")
	assert.Contains(t, out, "placeholder for rust")
}

func TestService_Respond_AppliesDelay(t *testing.T) {
	t.Parallel()

	svc := NewService(50*time.Millisecond, testLogger())

	start := time.Now()
	out, err := svc.Respond(context.Background(), CommandImprove, "x", "javascript")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	assert.True(t, strings.HasPrefix(out, "Consider the following improvements:"))
}

func TestService_Respond_CancelledContext(t *testing.T) {
	t.Parallel()

	svc := NewService(time.Minute, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Respond(ctx, CommandImprove, "x", "javascript")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestService_Generate_NoDelayConfigured(t *testing.T) {
	t.Parallel()

	svc := NewService(0, testLogger())
	out, err := svc.Generate(context.Background(), "make a form", "html")
	require.NoError(t, err)
	assert.Contains(t, out, "Generated HTML code")
}
