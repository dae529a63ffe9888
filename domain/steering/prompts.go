package steering

import (
	"fmt"
	"strings"
)

// DefaultBaselineInstruction is the standing next-step instruction.
const DefaultBaselineInstruction = `Based on the user's needs, proactively select the most appropriate tool or combination of tools.
For complex tasks, break the problem down and use different tools step by step to solve it.
After using each tool, clearly explain the execution results and suggest the next steps.
If you want to stop the interaction at any point, use the terminate tool.`

// DefaultBrowserInstruction replaces the instruction while a browser session is active.
const DefaultBrowserInstruction = `A browser session is in progress. Continue from the current page state.
Decide the next browser action that moves the task forward: navigate, click, type, scroll, or extract content.
If the page already contains what you need, extract it and move on instead of repeating navigation.
Call exactly one tool now. If the task is complete, use the terminate tool.`

// EscalationBlock renders the hard nudge shown after the engine talked
// without acting. Tool names are listed verbatim in the given order.
func EscalationBlock(toolNames []string) string {
	var sb strings.Builder
	sb.WriteString("\nCRITICAL INSTRUCTION: You MUST use a tool now instead of just planning.\n")
	sb.WriteString("Planning or describing steps without calling a tool is not allowed for this turn.\n\n")
	sb.WriteString(fmt.Sprintf("Available tools: %s\n\n", strings.Join(toolNames, ", ")))
	sb.WriteString("Based on the conversation history, immediately select exactly one of these tools to make progress.\n\n")
	sb.WriteString("SELECT A TOOL NOW AND TAKE ACTION.\n")
	return sb.String()
}
