package cli

import (
	"bytes"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// SelectCommandWithFzf displays the operator commands in fzf and returns the
// selected command name.
func SelectCommandWithFzf(commands []CommandSpec) (string, error) {
	var b strings.Builder
	for _, c := range commands {
		// format as "name: description"
		b.WriteString(fmt.Sprintf("%s: %s\n", c.Name, c.Description))
	}

	cmd := exec.Command("fzf")
	cmd.Stdin = strings.NewReader(b.String())

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("error running fzf: %w", err)
	}

	selection := strings.TrimSpace(out.String())
	parts := strings.SplitN(selection, ":", 2)
	if len(parts) > 0 && strings.TrimSpace(parts[0]) != "" {
		return strings.TrimSpace(parts[0]), nil
	}
	return "", fmt.Errorf("no command selected")
}

// SelectFileWithFzf launches fzf over the image files found under startDir
// and returns the selected path. Requires `find` and `fzf` in PATH; the
// preview pane uses chafa when available and degrades to no preview.
func SelectFileWithFzf(startDir string) (string, error) {
	quotedDir := strconv.Quote(startDir)

	// fzf's --preview option does not support shell conditionals, so the
	// fallback is an `||` chain with errors discarded.
	previewCmd := "chafa --fill=block --symbols=block -s 80x40 {} 2>/dev/null || true"

	cmdStr := fmt.Sprintf(
		"find %s -type f \\( -iname '*.jpg' -o -iname '*.jpeg' -o -iname '*.png' -o -iname '*.gif' -o -iname '*.webp' -o -iname '*.bmp' \\) | fzf --height 100%% --border --prompt='Files> ' --ansi --preview=%q --preview-window='right:60%%'",
		quotedDir,
		previewCmd,
	)
	cmd := exec.Command("bash", "-lc", cmdStr)

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("error running fzf for files: %w", err)
	}

	selection := strings.TrimSpace(out.String())
	if selection == "" {
		return "", fmt.Errorf("no file selected")
	}
	return selection, nil
}
