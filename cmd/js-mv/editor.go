package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

const editorHeader = "# Edit the right-hand side of each line. Lines left unchanged are skipped.\n"

// editText writes text to a temporary file, opens it in $VISUAL or $EDITOR
// and returns what the user saved.
func editText(text string, stdin io.Reader, stdout, stderr io.Writer) (string, error) {
	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		editor = "vi"
	}
	args := strings.Fields(editor)

	tmp, err := os.CreateTemp("", "js-mv-*.txt")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(editorHeader + text); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	cmd := exec.Command(args[0], append(args[1:], tmp.Name())...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("editor %s: %w", args[0], err)
	}
	data, err := os.ReadFile(tmp.Name())
	if err != nil {
		return "", err
	}
	return string(data), nil
}
