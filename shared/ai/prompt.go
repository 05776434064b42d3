package ai

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"sentiment-dashboard/shared/config"
)

// SnippetSeparator joins gathered snippets in the prompt
const SnippetSeparator = "\n---\n"

const searchInstructions = `You are a social media analyst. You will receive Reddit posts and comments about a topic.
Summarize the overall public sentiment (positive, negative or mixed), the main themes people discuss,
and any notable disagreements. Answer in short markdown sections with bullet points.`

const combinedInstructions = `You are a social media analyst. You will receive Reddit posts and comments as well as
YouTube video titles and transcript excerpts about a topic. Compare how the topic is discussed on Reddit
versus YouTube: overall sentiment on each platform, recurring themes, and where the platforms disagree.
Answer in short markdown sections with bullet points.`

// Instructions returns the system framing for a live analysis mode.
func Instructions(mode string) string {
	if mode == config.ModeCombined {
		return combinedInstructions
	}
	return searchInstructions
}

// BuildPrompt concatenates the gathered snippets under a header naming the query.
func BuildPrompt(query string, snippets []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Topic: %s", query)
	for _, s := range snippets {
		sb.WriteString(SnippetSeparator)
		sb.WriteString(s)
	}
	return sb.String()
}

// Truncate cuts s to at most maxLength characters (runes), the trailing
// ellipsis included.
func Truncate(s string, maxLength int) string {
	if maxLength <= 0 || utf8.RuneCountInString(s) <= maxLength {
		return s
	}
	const ellipsis = "..."
	keep := maxLength - len(ellipsis)
	suffix := ellipsis
	if keep <= 0 {
		keep, suffix = maxLength, ""
	}
	runes := 0
	for i := range s {
		if runes == keep {
			return s[:i] + suffix
		}
		runes++
	}
	return s
}
