package suggestion

import (
	"fmt"
	"strings"
)

// EchoLimit caps how much of the utterance is echoed back, in runes.
const EchoLimit = 100

// ToolSelectionGuide is the fixed preamble: tool catalog plus usage principles.
const ToolSelectionGuide = `
# Tool Selection Guide

Choose the tool that best fits the type of request:

## Search and information gathering
- Use the ` + "`web_search`" + ` tool to search the web directly
  - Example: web_search(query="latest AI developments")
  - For: facts, news, recent developments

## Web browsing and interaction
- Use the ` + "`browser_use`" + ` tool to browse and interact with web pages
  - Example: browser_use(action="go_to_url", url="https://example.com")
  - For: visiting sites, clicking buttons, filling forms, extracting page content

## Files and code
- Use the ` + "`python_execute`" + ` tool to run Python code
  - Example: python_execute(code="import pandas as pd\ndf = pd.read_csv('data.csv')\nprint(df.head())")
  - For: data processing, file operations, programming tasks

## Math
- Use the ` + "`calculator`" + ` tool for complex calculations
  - Example: calculator(expression="(2 + 3) * 4 / 2")
  - For: results that must be exact

## Finishing
- Use the ` + "`terminate`" + ` tool once the whole task is complete
  - Example: terminate(reason="Task completed successfully")

Key principles:
1. Always choose a tool instead of only describing a plan
2. Pick the tool that solves the problem most directly and avoid needless planning
3. Split complex tasks into simple steps and use the best tool for each step
4. Search requests must use the search tool immediately without over-planning
`

// renderSuggestion renders the per-call block.
func renderSuggestion(utterance string, tools []string) string {
	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Based on your request: \"%s\"\n\n", truncateEcho(utterance)))
	sb.WriteString(fmt.Sprintf("Suggested tools: %s\n\n", strings.Join(tools, ", ")))
	sb.WriteString("Use one of the tools above right away to take a concrete action instead of continuing to plan.\n")
	return sb.String()
}

func truncateEcho(s string) string {
	runes := []rune(s)
	if len(runes) <= EchoLimit {
		return s
	}
	return string(runes[:EchoLimit]) + "..."
}
