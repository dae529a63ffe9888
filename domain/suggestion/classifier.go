package suggestion

import "strings"

// Result is the outcome of classifying one utterance.
type Result struct {
	// Tools are the suggested tool names in category priority order.
	Tools []string

	// Prompt is the rendered guidance text.
	Prompt string
}

// Classifier suggests tools from an ordered category table.
type Classifier struct {
	categories []Category
	fallback   string
	guide      string
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithFallback sets the tool suggested when no category matches.
func WithFallback(tool string) Option {
	return func(c *Classifier) {
		if tool != "" {
			c.fallback = tool
		}
	}
}

// WithGuide replaces the guidance preamble.
func WithGuide(guide string) Option {
	return func(c *Classifier) {
		c.guide = guide
	}
}

// NewClassifier creates a classifier over the given categories.
// Keywords are lower-cased so matching is case-insensitive.
func NewClassifier(categories []Category, opts ...Option) *Classifier {
	cats := make([]Category, len(categories))
	for i, cat := range categories {
		kws := make([]string, len(cat.Keywords))
		for j, kw := range cat.Keywords {
			kws[j] = strings.ToLower(kw)
		}
		cats[i] = Category{Name: cat.Name, Keywords: kws, Tool: cat.Tool}
	}

	c := &Classifier{
		categories: cats,
		fallback:   ToolWebSearch,
		guide:      ToolSelectionGuide,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DefaultClassifier returns a classifier over DefaultCategories.
func DefaultClassifier() *Classifier {
	return NewClassifier(DefaultCategories())
}

// Classify returns the suggested tools for the utterance. The result is
// never empty: without a keyword hit it holds the fallback tool.
func (c *Classifier) Classify(utterance string) []string {
	lowered := strings.ToLower(utterance)

	var tools []string
	seen := make(map[string]bool, len(c.categories))
	for _, cat := range c.categories {
		if seen[cat.Tool] || !cat.Matches(lowered) {
			continue
		}
		seen[cat.Tool] = true
		tools = append(tools, cat.Tool)
	}

	if len(tools) == 0 {
		tools = []string{c.fallback}
	}
	return tools
}

// Suggest classifies the utterance and renders the guidance prompt.
func (c *Classifier) Suggest(utterance string) Result {
	tools := c.Classify(utterance)
	return Result{
		Tools:  tools,
		Prompt: c.guide + "\n" + renderSuggestion(utterance, tools),
	}
}

// SelectionPrompt returns only the rendered guidance text.
func (c *Classifier) SelectionPrompt(utterance string) string {
	return c.Suggest(utterance).Prompt
}

// SelectionPrompt renders guidance for the utterance with the default table.
func SelectionPrompt(utterance string) string {
	return DefaultClassifier().SelectionPrompt(utterance)
}
