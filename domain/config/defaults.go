package config

import "time"

// Defaults applied by ApplyDefaults.
const (
	DefaultMaxSteps      = 20
	DefaultMaxObserve    = 10000
	DefaultBrowserTool   = "browser_use"
	DefaultTerminateTool = "terminate"
	DefaultStorageDriver = "memory"
	DefaultConversation  = "default"
	DefaultProvider      = "openai"
)

// ApplyDefaults fills unset fields with their defaults.
func (c *AgentConfig) ApplyDefaults() {
	if c.Agent.MaxSteps == 0 {
		c.Agent.MaxSteps = DefaultMaxSteps
	}
	if c.Agent.MaxObserve == 0 {
		c.Agent.MaxObserve = DefaultMaxObserve
	}
	if c.Agent.BrowserTool == "" {
		c.Agent.BrowserTool = DefaultBrowserTool
	}
	if c.Agent.TerminateTool == "" {
		c.Agent.TerminateTool = DefaultTerminateTool
	}
	if c.Agent.ActivityMatch == "" {
		c.Agent.ActivityMatch = "tool_name"
	}
	if c.Engine.Provider == "" {
		c.Engine.Provider = DefaultProvider
	}
	if c.Engine.Timeout == 0 {
		c.Engine.Timeout = Duration(120 * time.Second)
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = DefaultStorageDriver
	}
	if c.Storage.Conversation == "" {
		c.Storage.Conversation = DefaultConversation
	}
	if c.Search.NumResults == 0 {
		c.Search.NumResults = 10
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
}
