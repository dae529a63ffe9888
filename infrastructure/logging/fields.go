package logging

import (
	"strings"
	"time"

	"github.com/felixgeelhaar/bolt/v3"

	"github.com/felixgeelhaar/nudge/domain/agent"
	"github.com/felixgeelhaar/nudge/domain/steering"
)

// Field is a function that applies structured data to a log event.
type Field func(*bolt.Event) *bolt.Event

// TurnID adds a turn ID field.
func TurnID(id string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("turn_id", id)
	}
}

// State adds a state field.
func State(s agent.State) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("state", string(s))
	}
}

// FromState adds a from_state field for transitions.
func FromState(s agent.State) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("from_state", string(s))
	}
}

// ToState adds a to_state field for transitions.
func ToState(s agent.State) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("to_state", string(s))
	}
}

// Streak adds the no-progress streak length.
func Streak(n int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int("streak", n)
	}
}

// Instruction adds the kind of instruction in effect.
func Instruction(kind steering.InstructionKind) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("instruction", string(kind))
	}
}

// BrowserActive adds the browser activity flag.
func BrowserActive(active bool) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Bool("browser_active", active)
	}
}

// ToolNames adds a comma-joined tool list.
func ToolNames(names []string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("tools", strings.Join(names, ","))
	}
}

// ToolName adds a tool name field.
func ToolName(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("tool", name)
	}
}

// Acted adds whether the turn produced tool calls.
func Acted(acted bool) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Bool("acted", acted)
	}
}

// Step adds a step counter.
func Step(n int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int("step", n)
	}
}

// Duration adds a duration field in milliseconds.
func Duration(d time.Duration) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int64("duration_ms", d.Milliseconds())
	}
}

// ErrorField adds an error field.
func ErrorField(err error) Field {
	return func(e *bolt.Event) *bolt.Event {
		if err == nil {
			return e
		}
		return e.Err(err)
	}
}

// Component adds a component field for categorization.
func Component(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("component", name)
	}
}

// Str adds a string field with custom key.
func Str(key, value string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str(key, value)
	}
}

// Int adds an integer field with custom key.
func Int(key string, value int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int(key, value)
	}
}
