package answer

import (
	_ "embed"
	"strconv"
	"strings"
)

var (
	//go:embed prompts/options.md
	optionsTemplate string
	//go:embed prompts/numeric.md
	numericTemplate string
	//go:embed prompts/text.md
	textTemplate string
)

func buildPrompt(template, profile, question string, options []string) string {
	prompt := strings.ReplaceAll(template, "{{PROFILE}}", profile)
	prompt = strings.ReplaceAll(prompt, "{{QUESTION}}", question)
	if options != nil {
		prompt = strings.ReplaceAll(prompt, "{{OPTIONS}}", renderOptions(options))
	}
	return prompt
}

func renderOptions(options []string) string {
	quoted := make([]string, 0, len(options))
	for _, o := range options {
		quoted = append(quoted, strconv.Quote(o))
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
