package config

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/oneconcern/gitbin/pkg/errors"
	"github.com/oneconcern/gitbin/pkg/status"
)

// GitExecutor runs git commands and returns their standard output
type GitExecutor interface {
	Run(ctx context.Context, args ...string) (string, error)
}

// exitCoder is satisfied by *exec.ExitError
type exitCoder interface {
	ExitCode() int
}

// NewGitExecutor runs the git binary found in PATH, in the given working directory
func NewGitExecutor(dir string) GitExecutor {
	return &execGit{dir: dir}
}

type execGit struct {
	dir string
}

func (g *execGit) Run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...) // #nosec
	cmd.Dir = g.dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return stdout.String(), fmt.Errorf("git %s: %s: %w", strings.Join(args, " "), msg, err)
		}
		return stdout.String(), fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return stdout.String(), nil
}

// ReadGitConfig returns the settings of the git-bin section of the git configuration,
// keyed by lower case setting name.
func ReadGitConfig(ctx context.Context, git GitExecutor) (map[string]interface{}, error) {
	out, err := git.Run(ctx, "config", "--get-regexp", `^`+SectionName+`\.`)
	if err != nil {
		var coded exitCoder
		if errors.As(err, &coded) && coded.ExitCode() == 1 {
			// no matching key
			return map[string]interface{}{}, nil
		}
		return nil, status.ErrConfiguration.Wrapf("reading git config: %w", err)
	}

	options := make(map[string]interface{})
	for _, line := range strings.Split(strings.ReplaceAll(out, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, " ", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[1]) == "" {
			return nil, status.ErrConfiguration.Wrap(fmt.Errorf("invalid config option: %s", line))
		}
		key := strings.ToLower(strings.TrimPrefix(parts[0], SectionName+"."))
		options[key] = strings.TrimSpace(parts[1])
	}
	return options, nil
}

// GitDir returns the .git directory of the current repository
func GitDir(ctx context.Context, git GitExecutor) (string, error) {
	out, err := git.Run(ctx, "rev-parse", "--git-dir")
	if err != nil {
		return "", status.ErrConfiguration.Wrapf("error determining .git directory: %w", err)
	}
	dir := strings.TrimSpace(out)
	if dir == "" {
		return "", status.ErrConfiguration.Wrap(fmt.Errorf("error determining .git directory"))
	}
	return dir, nil
}
