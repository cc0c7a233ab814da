package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// PromptLine displays a prompt and reads a full line of input from the user.
// The returned string is trimmed of surrounding whitespace (including the
// newline).
func PromptLine(prompt string) (string, error) {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// PromptLineOrFzf reads a full line from stdin and treats a single "/" as a
// request to invoke fzf for file selection. Reading the whole line keeps
// paths with spaces intact.
func PromptLineOrFzf(prompt string) (string, error) {
	input, err := PromptLine(prompt)
	if err != nil {
		return "", err
	}
	if input == "/" {
		sel, selErr := SelectFileWithFzf(".")
		if selErr == nil && sel != "" {
			fmt.Printf(" [fzf] %s\n", sel)
			return sel, nil
		}
		// fzf not available or selection cancelled, fall back to a typed prompt.
		return PromptLine(prompt)
	}
	return input, nil
}

// PromptDefault prompts with a visible default and substitutes it when the
// user answers with an empty line.
func PromptDefault(prompt, def string) (string, error) {
	label := prompt
	if def != "" {
		label = fmt.Sprintf("%s [%s]", prompt, def)
	}
	v, err := PromptLine(label + ": ")
	if err != nil {
		return "", err
	}
	if v == "" {
		return def, nil
	}
	return v, nil
}

// PromptYesNo asks a y/N question, defaulting to no.
func PromptYesNo(prompt string) bool {
	v, err := PromptLine(prompt + " (y/N): ")
	if err != nil {
		return false
	}
	v = strings.ToLower(v)
	return v == "y" || v == "yes"
}
