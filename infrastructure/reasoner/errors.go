package reasoner

import "errors"

var (
	// ErrNilProvider indicates an LLM engine was built without a provider.
	ErrNilProvider = errors.New("provider is required")

	// ErrNilStore indicates an LLM engine was built without a transcript store.
	ErrNilStore = errors.New("transcript store is required")

	// ErrNoChoices indicates the provider returned an empty completion.
	ErrNoChoices = errors.New("no choices in response")

	// ErrScriptExhausted indicates a scripted engine ran out of steps.
	ErrScriptExhausted = errors.New("script exhausted")
)
