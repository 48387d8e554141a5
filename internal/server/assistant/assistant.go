// Package assistant implements the canned AI responder. It is a
// deterministic templated text generator behind a simulated latency, not an
// inference client: given the same command, source and language it always
// produces the same output.
package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mkarpenko/codepad/internal/logging"
)

// Command selects one of the fixed code-action templates.
type Command string

const (
	CommandExplain  Command = "explain"
	CommandImprove  Command = "improve"
	CommandRefactor Command = "refactor"
	CommandComment  Command = "comment"
	CommandFix      Command = "fix"
)

// Respond produces the canned response for one code action. It is a pure
// function; Service adds the simulated latency on top.
func Respond(cmd Command, source, language string) (string, error) {
	switch cmd {
	case CommandExplain:
		verb := "implements a routine which"
		if language == "javascript" {
			verb = "defines a function that"
		}
		return fmt.Sprintf("This code %s processes data and returns a formatted result. It uses modern syntax and follows best practices.", verb), nil
	case CommandImprove:
		return "Consider the following improvements:\n- Use more descriptive variable names\n- Add error handling\n- Consider performance optimizations\n- Add proper documentation", nil
	case CommandRefactor:
		refactored := strings.Replace(source, "function", "const", 1) + " ="
		return fmt.Sprintf("Refactored version:\n```%s\n%s\n```\nThis version uses modern syntax and is more maintainable.", language, refactored), nil
	case CommandComment:
		return fmt.Sprintf("With comments:\n```%s\n// This function processes the input data\n%s\n// Returns the formatted result\n```", language, source), nil
	case CommandFix:
		fixed := strings.Replace(source, "let", "const", 1)
		return fmt.Sprintf("Fixed version:\n```%s\n%s\n```\nFixed potential issues with variable declarations.", language, fixed), nil
	default:
		return "", fmt.Errorf("unknown assistant command %q", cmd)
	}
}

// Generate produces canned starter code for the boilerplate panel. The
// prompt is accepted for API symmetry but does not influence the output.
func Generate(prompt, language string) string {
	switch strings.ToLower(language) {
	case "javascript", "typescript":
		return "// Generated code for " + strings.ToLower(language) + `
function processData(items) {
  try {
    return items
      .filter(item => item.active)
      .map(item => ({
        id: item.id,
        name: item.name,
        processed: true,
        timestamp: new Date().toISOString()
      }));
  } catch (error) {
    console.error("Error processing data:", error);
    return [];
  }
}`
	case "python":
		return `# Generated code for Python
def process_data(items):
    try:
        return [
            {
                "id": item["id"],
                "name": item["name"],
                "processed": True,
                "timestamp": datetime.now().isoformat()
            }
            for item in items
            if item.get("active")
        ]
    except Exception as e:
        print(f"Error processing data: {e}")
        return []`
	case "html":
		return `<!-- Generated HTML code -->
<form id="myForm" class="form-container">
  <div class="form-group">
    <label for="name">Name:</label>
    <input type="text" id="name" name="name" required />
  </div>
  <div class="form-group">
    <label for="email">Email:</label>
    <input type="email" id="email" name="email" required />
  </div>
  <button type="submit" class="submit-btn">Submit</button>
</form>`
	default:
		lang := strings.ToLower(language)
		return fmt.Sprintf("// Generated code for %s\n// This is a placeholder for %s code generation\n// You would see actual %s code here in a real implementation", lang, lang, lang)
	}
}

// Service wraps the pure responders with the simulated latency the UI
// expects from an AI round-trip.
type Service struct {
	delay  time.Duration
	logger logging.Logger
}

func NewService(delay time.Duration, logger logging.Logger) *Service {
	return &Service{
		delay:  delay,
		logger: logger.With("module", "assistant"),
	}
}

func (s *Service) sleep(ctx context.Context) error {
	if s.delay <= 0 {
		return nil
	}
	t := time.NewTimer(s.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Respond runs one code action against the given source text.
func (s *Service) Respond(ctx context.Context, cmd Command, source, language string) (string, error) {
	if err := s.sleep(ctx); err != nil {
		return "", err
	}

	out, err := Respond(cmd, source, language)
	if err != nil {
		return "", err
	}

	s.logger.Debug(ctx, "assistant responded", "command", string(cmd), "language", language)
	return out, nil
}

// Generate runs the boilerplate generator for a prompt.
func (s *Service) Generate(ctx context.Context, prompt, language string) (string, error) {
	if err := s.sleep(ctx); err != nil {
		return "", err
	}

	s.logger.Debug(ctx, "assistant generated boilerplate", "language", language, "prompt_len", len(prompt))
	return Generate(prompt, language), nil
}
