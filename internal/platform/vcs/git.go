package vcs

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"repo_agent/internal/common"
)

// GitClient shells out to the git binary. Both output streams are captured
// into one buffer and folded into the error so a failed clone or push carries
// git's own diagnostic.
type GitClient struct{}

func NewGitClient() *GitClient {
	return &GitClient{}
}

func (c *GitClient) Clone(ctx context.Context, remote, dest string) error {
	return c.run(ctx, "", "clone", remote, dest)
}

func (c *GitClient) Checkout(ctx context.Context, dir, ref string) error {
	return c.run(ctx, dir, "checkout", ref)
}

func (c *GitClient) CreateBranch(ctx context.Context, dir, name string) error {
	return c.run(ctx, dir, "checkout", "-b", name)
}

// ConfigureIdentity sets the committer identity for the workspace only; git
// refuses to commit without one.
func (c *GitClient) ConfigureIdentity(ctx context.Context, dir, name, email string) error {
	if err := c.run(ctx, dir, "config", "user.name", name); err != nil {
		return err
	}
	return c.run(ctx, dir, "config", "user.email", email)
}

func (c *GitClient) Commit(ctx context.Context, dir, message string, paths ...string) error {
	if err := c.run(ctx, dir, append([]string{"add"}, paths...)...); err != nil {
		return err
	}
	return c.run(ctx, dir, "commit", "-m", message)
}

func (c *GitClient) Push(ctx context.Context, dir, branch string) error {
	return c.run(ctx, dir, "push", "origin", branch)
}

func (c *GitClient) run(ctx context.Context, dir string, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return common.Errorf("%w: git %s: %v: %s",
			common.ErrVersionControl, args[0], err, strings.TrimSpace(out.String()))
	}
	return nil
}
