package ai

import "unicode/utf8"

// DefaultMaxTokens used when the model options leave max_tokens unset.
const DefaultMaxTokens = 4096

// EstimateTokens approximates token usage as one token per four characters, rounded up.
func EstimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + 3) / 4
}
