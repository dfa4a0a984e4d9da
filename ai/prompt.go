package ai

import "fmt"

// BuildPrompt asks for a description of the area in about words words
func BuildPrompt(description string, words int) string {
	return fmt.Sprintf(
		"Give me a description of the area %s within %d words, without stopping in the middle of a sentence",
		description, words,
	)
}
