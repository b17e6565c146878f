package config

// This file contains Git integration for discovering the branch when CI
// does not provide one.

import (
	"fmt"
	"os/exec"
	"strings"
)

func gitBranch() (string, error) {
	cmd := exec.Command("git", "rev-parse", "--abbrev-ref", "HEAD")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("failed to get git branch: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}
