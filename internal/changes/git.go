package changes

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// GitDiffer runs `git diff --name-status` in a local checkout.
type GitDiffer struct {
	// Dir is the working tree to run git in. Empty means the current directory.
	Dir string
}

// Diff implements Differ.
func (g GitDiffer) Diff(ctx context.Context, rangeSpec string) (string, error) {
	args := []string{"diff", "--name-status", rangeSpec}
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.Dir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, msg)
		}
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return string(out), nil
}
