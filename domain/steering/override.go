package steering

// InstructionKind records which rule produced an instruction.
type InstructionKind string

const (
	KindBaseline   InstructionKind = "baseline"
	KindEscalation InstructionKind = "escalation"
	KindBrowser    InstructionKind = "browser"
)

// Instruction is the effective instruction for one turn.
type Instruction struct {
	Text string
	Kind InstructionKind
}

// IsOverride returns true if the instruction differs from the baseline rule.
func (i Instruction) IsOverride() bool {
	return i.Kind != KindBaseline
}

// Policy composes the per-turn instruction from detector outputs.
// A Policy is immutable once built.
type Policy struct {
	baseline string
	browser  string
}

// NewPolicy creates a policy. Empty strings select the defaults.
func NewPolicy(baseline, browser string) Policy {
	if baseline == "" {
		baseline = DefaultBaselineInstruction
	}
	if browser == "" {
		browser = DefaultBrowserInstruction
	}
	return Policy{baseline: baseline, browser: browser}
}

// Baseline returns the standing instruction.
func (p Policy) Baseline() string {
	return p.baseline
}

// BaselineInstruction returns the baseline as an Instruction.
func (p Policy) BaselineInstruction() Instruction {
	return Instruction{Text: p.baseline, Kind: KindBaseline}
}

// Compose returns the effective instruction for the next turn.
//
// A positive streak prefixes the baseline with the escalation block listing
// toolNames. Browser activity replaces the instruction wholesale and takes
// precedence over escalation.
func (p Policy) Compose(streak int, toolNames []string, browserActive bool) Instruction {
	inst := p.BaselineInstruction()

	if streak >= 1 {
		inst = Instruction{
			Text: EscalationBlock(toolNames) + "\n" + p.baseline,
			Kind: KindEscalation,
		}
	}

	if browserActive {
		inst = Instruction{Text: p.browser, Kind: KindBrowser}
	}

	return inst
}
