package pipeline

import (
	"context"
	"log"
	"net/url"
	"strings"

	"github.com/gosimple/slug"

	"repo_agent/internal/common"
	"repo_agent/internal/domain/model"
)

// VersionControlClient runs repository operations against a working
// directory. Every call reports a descriptive error when the underlying
// command exits non-zero.
type VersionControlClient interface {
	Clone(ctx context.Context, remote, dest string) error
	Checkout(ctx context.Context, dir, ref string) error
	CreateBranch(ctx context.Context, dir, name string) error
	ConfigureIdentity(ctx context.Context, dir, name, email string) error
	Commit(ctx context.Context, dir, message string, paths ...string) error
	Push(ctx context.Context, dir, branch string) error
}

// RepoHostClient opens a change request on the hosting service and returns
// its link.
type RepoHostClient interface {
	CreateChangeRequest(ctx context.Context, ownerRepo, title, head, base, body, token string) (string, error)
}

type Options struct {
	Token          string
	WorkspaceRoot  string
	BranchPrefix   string
	CommitterName  string
	CommitterEmail string
	PRTitleMaxLen  int
	// CleanupWorkspaces removes the working directory once the run ends,
	// whatever the outcome.
	CleanupWorkspaces bool
}

// Pipeline executes the ordered change steps for one job. Each step is a hard
// gate: the first failure aborts everything after it. Run never writes job
// state itself; the caller records the single terminal transition from its
// return values.
type Pipeline struct {
	vcs  VersionControlClient
	host RepoHostClient
	opts Options
}

func New(vcs VersionControlClient, host RepoHostClient, opts Options) *Pipeline {
	return &Pipeline{vcs: vcs, host: host, opts: opts}
}

func (p *Pipeline) Run(ctx context.Context, jobID string, req model.ChangeRequest) (string, error) {
	if p.opts.Token == "" {
		return "", common.Errorf("%w: GITHUB_TOKEN is not set", common.ErrConfiguration)
	}

	dir, err := provisionWorkspace(p.opts.WorkspaceRoot, jobID)
	if err != nil {
		return "", err
	}
	if p.opts.CleanupWorkspaces {
		defer removeWorkspace(jobID, dir)
	}

	remote, err := authenticatedURL(req.RepoURL, p.opts.Token)
	if err != nil {
		return "", common.Errorf("%w: %v", common.ErrVersionControl, err)
	}

	log.Printf("INFO: job %s: cloning %s into %s", jobID, req.RepoURL, dir)
	if err := p.vcs.Clone(ctx, remote, dir); err != nil {
		return "", err
	}
	if err := p.vcs.Checkout(ctx, dir, req.BaseBranch); err != nil {
		return "", err
	}
	if err := p.vcs.ConfigureIdentity(ctx, dir, p.opts.CommitterName, p.opts.CommitterEmail); err != nil {
		return "", err
	}

	branch := p.branchName(jobID, req.Description)
	if err := p.vcs.CreateBranch(ctx, dir, branch); err != nil {
		return "", err
	}

	if err := appendChangeNote(dir, req.Description); err != nil {
		return "", err
	}

	if req.GateCommand != "" {
		if err := runGate(ctx, jobID, dir, req.GateCommand); err != nil {
			return "", err
		}
	}

	if err := p.vcs.Commit(ctx, dir, "Agent change: "+req.Description, changeNoteFile); err != nil {
		return "", err
	}
	if err := p.vcs.Push(ctx, dir, branch); err != nil {
		return "", err
	}

	ownerRepo, err := deriveOwnerRepo(req.RepoURL)
	if err != nil {
		return "", err
	}
	title := "Agent PR: " + truncate(req.Description, p.opts.PRTitleMaxLen)
	body := "Changes proposed by agent: " + req.Description
	link, err := p.host.CreateChangeRequest(ctx, ownerRepo, title, branch, req.BaseBranch, body, p.opts.Token)
	if err != nil {
		return "", err
	}

	log.Printf("INFO: job %s: change request opened at %s", jobID, link)
	return "Pull request created: " + link, nil
}

// branchName derives a branch from the job id plus a slugified fragment of
// the description. The id fragment guarantees uniqueness per job; the slug
// keeps the branch readable in the host UI.
func (p *Pipeline) branchName(jobID, description string) string {
	name := p.opts.BranchPrefix + "-" + shortID(jobID)
	if s := truncate(slug.Make(description), 24); s != "" {
		name += "-" + strings.TrimSuffix(s, "-")
	}
	return name
}

func shortID(jobID string) string {
	if len(jobID) > 8 {
		return jobID[:8]
	}
	return jobID
}

// authenticatedURL embeds the access token as URL userinfo for HTTPS remotes.
func authenticatedURL(repoURL, token string) (string, error) {
	if !strings.HasPrefix(repoURL, "https://") {
		return repoURL, nil
	}
	u, err := url.Parse(repoURL)
	if err != nil {
		return "", err
	}
	u.User = url.UserPassword(token, "")
	return u.String(), nil
}

// deriveOwnerRepo extracts "owner/repo" from the repository address.
func deriveOwnerRepo(repoURL string) (string, error) {
	u, err := url.Parse(repoURL)
	if err != nil {
		return "", common.Errorf("%w: invalid repository address %q: %v", common.ErrHostAPI, repoURL, err)
	}
	path := strings.Trim(u.Path, "/")
	path = strings.TrimSuffix(path, ".git")
	if !strings.Contains(path, "/") {
		return "", common.Errorf("%w: cannot derive owner/repo from %q", common.ErrHostAPI, repoURL)
	}
	return path, nil
}

func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
