package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repo_agent/internal/common"
	"repo_agent/internal/domain/model"
)

// fakeVCS records the operations the pipeline performs, in order, and can be
// told to fail a specific one.
type fakeVCS struct {
	ops     []string
	failOp  string
	failErr error
}

func (f *fakeVCS) step(op string) error {
	f.ops = append(f.ops, op)
	if op == f.failOp {
		return f.failErr
	}
	return nil
}

func (f *fakeVCS) Clone(ctx context.Context, remote, dest string) error {
	return f.step("clone")
}
func (f *fakeVCS) Checkout(ctx context.Context, dir, ref string) error {
	return f.step("checkout")
}
func (f *fakeVCS) CreateBranch(ctx context.Context, dir, name string) error {
	return f.step("branch")
}
func (f *fakeVCS) ConfigureIdentity(ctx context.Context, dir, name, email string) error {
	return f.step("identity")
}
func (f *fakeVCS) Commit(ctx context.Context, dir, message string, paths ...string) error {
	return f.step("commit")
}
func (f *fakeVCS) Push(ctx context.Context, dir, branch string) error {
	return f.step("push")
}

type fakeHost struct {
	calls     int
	ownerRepo string
	title     string
	head      string
	base      string
	err       error
}

func (f *fakeHost) CreateChangeRequest(ctx context.Context, ownerRepo, title, head, base, body, token string) (string, error) {
	f.calls++
	f.ownerRepo, f.title, f.head, f.base = ownerRepo, title, head, base
	if f.err != nil {
		return "", f.err
	}
	return "https://github.com/acme/widgets/pull/7", nil
}

func testOptions(t *testing.T) Options {
	t.Helper()
	return Options{
		Token:             "secret-token",
		WorkspaceRoot:     t.TempDir(),
		BranchPrefix:      "agent",
		CommitterName:     "Repo Agent",
		CommitterEmail:    "agent@localhost",
		PRTitleMaxLen:     50,
		CleanupWorkspaces: true,
	}
}

func testRequest() model.ChangeRequest {
	return model.ChangeRequest{
		Description: "tighten input validation",
		RepoURL:     "https://github.com/acme/widgets.git",
		BaseBranch:  "main",
	}
}

func TestRunHappyPath(t *testing.T) {
	vcs := &fakeVCS{}
	host := &fakeHost{}
	p := New(vcs, host, testOptions(t))

	result, err := p.Run(context.Background(), "0f63c9ab-1111-2222-3333-444455556666", testRequest())
	require.NoError(t, err)
	assert.Equal(t, "Pull request created: https://github.com/acme/widgets/pull/7", result)

	assert.Equal(t, []string{"clone", "checkout", "identity", "branch", "commit", "push"}, vcs.ops)
	assert.Equal(t, 1, host.calls)
	assert.Equal(t, "acme/widgets", host.ownerRepo)
	assert.Equal(t, "main", host.base)
	assert.True(t, strings.HasPrefix(host.head, "agent-0f63c9ab"), "branch %q must embed the id fragment", host.head)
	assert.True(t, strings.HasPrefix(host.title, "Agent PR: "), "title %q", host.title)
}

func TestRunMissingTokenFailsBeforeWorkspace(t *testing.T) {
	opts := testOptions(t)
	opts.Token = ""
	vcs := &fakeVCS{}
	p := New(vcs, &fakeHost{}, opts)

	_, err := p.Run(context.Background(), "job-1", testRequest())
	require.ErrorIs(t, err, common.ErrConfiguration)
	assert.Empty(t, vcs.ops)

	// No workspace may exist for a run that failed the credential check.
	entries, readErr := os.ReadDir(opts.WorkspaceRoot)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestRunCloneFailureAbortsEverythingAfter(t *testing.T) {
	vcs := &fakeVCS{failOp: "clone", failErr: common.Errorf("%w: git clone: exit status 128: repository not found", common.ErrVersionControl)}
	host := &fakeHost{}
	p := New(vcs, host, testOptions(t))

	_, err := p.Run(context.Background(), "job-2", testRequest())
	require.ErrorIs(t, err, common.ErrVersionControl)
	assert.Contains(t, err.Error(), "clone")
	assert.Equal(t, []string{"clone"}, vcs.ops)
	assert.Zero(t, host.calls)
}

func TestRunGateFailureStopsBeforeCommit(t *testing.T) {
	vcs := &fakeVCS{}
	host := &fakeHost{}
	p := New(vcs, host, testOptions(t))

	req := testRequest()
	req.GateCommand = "false" // resolvable everywhere, always exits 1

	_, err := p.Run(context.Background(), "job-3", req)
	require.ErrorIs(t, err, common.ErrGateFailed)
	assert.Equal(t, "Tests failed. Aborting push.", err.Error())
	assert.NotContains(t, vcs.ops, "commit")
	assert.NotContains(t, vcs.ops, "push")
	assert.Zero(t, host.calls)
}

func TestRunGateUnresolvableExecutableIsSkipped(t *testing.T) {
	vcs := &fakeVCS{}
	host := &fakeHost{}
	p := New(vcs, host, testOptions(t))

	req := testRequest()
	req.GateCommand = "definitely-not-an-installed-tool-9f2c run"

	result, err := p.Run(context.Background(), "job-4", req)
	require.NoError(t, err)
	assert.Contains(t, result, "Pull request created:")
	assert.Contains(t, vcs.ops, "push")
	assert.Equal(t, 1, host.calls)
}

func TestRunHostAPIFailureAfterPush(t *testing.T) {
	vcs := &fakeVCS{}
	host := &fakeHost{err: common.Errorf("%w: 422 Validation Failed", common.ErrHostAPI)}
	p := New(vcs, host, testOptions(t))

	_, err := p.Run(context.Background(), "job-5", testRequest())
	require.ErrorIs(t, err, common.ErrHostAPI)
	// Push already happened; the branch is an accepted partial-failure state.
	assert.Contains(t, vcs.ops, "push")
}

func TestRunWritesChangeNoteIntoWorkspace(t *testing.T) {
	opts := testOptions(t)
	opts.CleanupWorkspaces = false
	p := New(&fakeVCS{}, &fakeHost{}, opts)

	_, err := p.Run(context.Background(), "job-6", testRequest())
	require.NoError(t, err)

	note, err := os.ReadFile(filepath.Join(opts.WorkspaceRoot, "repo_job-6", changeNoteFile))
	require.NoError(t, err)
	assert.Contains(t, string(note), "tighten input validation")
	assert.Contains(t, string(note), "# Agent Change")
}

func TestRunCleansUpWorkspace(t *testing.T) {
	opts := testOptions(t)
	p := New(&fakeVCS{}, &fakeHost{}, opts)

	_, err := p.Run(context.Background(), "job-7", testRequest())
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(opts.WorkspaceRoot, "repo_job-7"))
	assert.True(t, os.IsNotExist(statErr), "workspace must be removed after the run")
}

func TestDeriveOwnerRepo(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://github.com/acme/widgets", "acme/widgets"},
		{"https://github.com/acme/widgets.git", "acme/widgets"},
		{"https://github.example.com/team/deep/repo.git", "team/deep/repo"},
	}
	for _, tc := range cases {
		got, err := deriveOwnerRepo(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	_, err := deriveOwnerRepo("https://github.com/justowner")
	assert.Error(t, err)
}

func TestAuthenticatedURL(t *testing.T) {
	got, err := authenticatedURL("https://github.com/acme/widgets.git", "tok")
	require.NoError(t, err)
	assert.Equal(t, "https://tok:@github.com/acme/widgets.git", got)

	// Non-HTTPS remotes pass through untouched.
	got, err = authenticatedURL("git@github.com:acme/widgets.git", "tok")
	require.NoError(t, err)
	assert.Equal(t, "git@github.com:acme/widgets.git", got)
}

func TestBranchNameDeterministicAndTraceable(t *testing.T) {
	p := New(&fakeVCS{}, &fakeHost{}, Options{BranchPrefix: "agent"})

	a := p.branchName("0f63c9ab-4444", "Fix the flaky retry logic")
	b := p.branchName("0f63c9ab-4444", "Fix the flaky retry logic")
	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a, "agent-0f63c9ab-"), a)
	assert.NotContains(t, a, " ")
}

func TestRunGateFailurePropagatesExactDiagnostic(t *testing.T) {
	err := runGate(context.Background(), "job", t.TempDir(), "false")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrGateFailed))
}
