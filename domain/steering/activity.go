package steering

import (
	"strings"

	"github.com/felixgeelhaar/nudge/domain/transcript"
)

// DefaultActivityWindow is how many trailing turns the activity scan reads.
const DefaultActivityWindow = 3

// DefaultBrowserTool is the tool whose recent use selects the browser instruction.
const DefaultBrowserTool = "browser_use"

// MatchMode selects how an acted turn is attributed to the target tool.
type MatchMode string

const (
	// MatchToolName compares the target against the structured tool call names.
	MatchToolName MatchMode = "tool_name"

	// MatchContent looks for the target inside the turn's rendered content.
	// It can fire on unrelated mentions and miss calls the text never names.
	MatchContent MatchMode = "content"

	// MatchEither accepts a turn when either test matches.
	MatchEither MatchMode = "either"
)

// IsValid returns true if the mode is recognized.
func (m MatchMode) IsValid() bool {
	switch m {
	case MatchToolName, MatchContent, MatchEither:
		return true
	default:
		return false
	}
}

// ActivityScanner reports whether a specific tool was exercised recently.
type ActivityScanner struct {
	// Target is the tool identifier to look for.
	Target string

	// Window is the number of trailing turns inspected.
	Window int

	// Mode selects the matching strategy (default: MatchToolName).
	Mode MatchMode
}

// NewActivityScanner creates a scanner for target with default settings.
func NewActivityScanner(target string) ActivityScanner {
	return ActivityScanner{
		Target: target,
		Window: DefaultActivityWindow,
		Mode:   MatchToolName,
	}
}

// Active returns true if an acted turn in the window references the target.
// Turns without tool calls are never considered.
func (s ActivityScanner) Active(turns []transcript.Turn) bool {
	if s.Target == "" {
		return false
	}

	window := s.Window
	if window <= 0 {
		window = DefaultActivityWindow
	}

	for _, turn := range transcript.Tail(turns, window) {
		if !turn.Acted() {
			continue
		}
		if s.matches(turn) {
			return true
		}
	}
	return false
}

func (s ActivityScanner) matches(turn transcript.Turn) bool {
	switch s.Mode {
	case MatchContent:
		return s.contentMatches(turn)
	case MatchEither:
		return s.nameMatches(turn) || s.contentMatches(turn)
	default:
		return s.nameMatches(turn)
	}
}

func (s ActivityScanner) nameMatches(turn transcript.Turn) bool {
	for _, name := range turn.ToolNames() {
		if strings.EqualFold(name, s.Target) {
			return true
		}
	}
	return false
}

func (s ActivityScanner) contentMatches(turn transcript.Turn) bool {
	return strings.Contains(strings.ToLower(turn.Content), strings.ToLower(s.Target))
}
