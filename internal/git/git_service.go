package git

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strconv"
	"strings"

	domainErrors "github.com/thomas-vilte/matereview/internal/errors"
	"github.com/thomas-vilte/matereview/internal/logger"
	"github.com/thomas-vilte/matereview/internal/review"
)

// GitService runs the git CLI in one working tree.
type GitService struct {
	dir string
}

type Option func(*GitService)

// WithDir runs every command in dir instead of the process working directory.
func WithDir(dir string) Option {
	return func(s *GitService) {
		s.dir = dir
	}
}

func NewGitService(opts ...Option) *GitService {
	s := &GitService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ review.Workspace = (*GitService)(nil)

// Fetch fetches refspec from remote and returns the fetched commit.
func (s *GitService) Fetch(ctx context.Context, remote, refspec string) (string, error) {
	if _, err := s.run(ctx, "fetch", remote, refspec); err != nil {
		return "", wrap(domainErrors.ErrFetch, err).
			WithContext("remote", remote).
			WithContext("refspec", refspec)
	}

	commit, err := s.run(ctx, "rev-parse", "FETCH_HEAD")
	if err != nil {
		return "", wrap(domainErrors.ErrFetch, err).WithContext("refspec", refspec)
	}
	return commit, nil
}

func (s *GitService) BranchExists(ctx context.Context, name string) (bool, error) {
	_, err := s.run(ctx, "show-ref", "--verify", "--quiet", "refs/heads/"+name)
	if err == nil {
		return true, nil
	}
	if exitCode(err) == 1 {
		return false, nil
	}
	return false, wrap(domainErrors.ErrGetBranch, err).WithContext("branch", name)
}

// ReadUpstream reads branch.<name>.remote and branch.<name>.merge. ok is
// false when either is unset.
func (s *GitService) ReadUpstream(ctx context.Context, name string) (review.TrackingState, bool, error) {
	remote, ok, err := s.configValue(ctx, "branch."+name+".remote")
	if err != nil || !ok {
		return review.TrackingState{}, false, err
	}
	merge, ok, err := s.configValue(ctx, "branch."+name+".merge")
	if err != nil || !ok {
		return review.TrackingState{}, false, err
	}
	return review.TrackingState{
		Remote: remote,
		Branch: strings.TrimPrefix(merge, "refs/heads/"),
	}, true, nil
}

func (s *GitService) CreateAndCheckout(ctx context.Context, name, commit string) error {
	if _, err := s.run(ctx, "checkout", "-b", name, commit); err != nil {
		return wrap(domainErrors.ErrCreateBranch, err).
			WithContext("branch", name).
			WithContext("commit", commit)
	}
	return nil
}

// SetUpstream writes the tracking config directly, so the remote branch
// does not need to exist locally.
func (s *GitService) SetUpstream(ctx context.Context, name string, upstream review.TrackingState) error {
	if _, err := s.run(ctx, "config", "branch."+name+".remote", upstream.Remote); err != nil {
		return wrap(domainErrors.ErrSetUpstream, err).WithContext("branch", name)
	}
	if _, err := s.run(ctx, "config", "branch."+name+".merge", "refs/heads/"+upstream.Branch); err != nil {
		return wrap(domainErrors.ErrSetUpstream, err).WithContext("branch", name)
	}
	return nil
}

// ResetHard points name at commit, resetting the working tree when name is
// checked out.
func (s *GitService) ResetHard(ctx context.Context, name, commit string) error {
	current, err := s.GetCurrentBranch(ctx)
	if err != nil && !errors.Is(err, domainErrors.ErrGetBranch) {
		return err
	}

	if current == name {
		_, err = s.run(ctx, "reset", "--hard", commit)
	} else {
		_, err = s.run(ctx, "branch", "-f", name, commit)
	}
	if err != nil {
		return wrap(domainErrors.ErrResetBranch, err).
			WithContext("branch", name).
			WithContext("commit", commit)
	}
	return nil
}

func (s *GitService) Checkout(ctx context.Context, name string) error {
	if _, err := s.run(ctx, "checkout", name); err != nil {
		return wrap(domainErrors.ErrCheckout, err).WithContext("branch", name)
	}
	return nil
}

// GetCurrentBranch returns "" on a detached HEAD.
func (s *GitService) GetCurrentBranch(ctx context.Context) (string, error) {
	out, err := s.run(ctx, "branch", "--show-current")
	if err != nil {
		return "", wrap(domainErrors.ErrGetBranch, err)
	}
	return out, nil
}

// Push pushes refspec to remote, e.g. HEAD:refs/for/main.
func (s *GitService) Push(ctx context.Context, remote, refspec string) error {
	if _, err := s.run(ctx, "push", remote, refspec); err != nil {
		return wrap(domainErrors.ErrPush, err).
			WithContext("remote", remote).
			WithContext("refspec", refspec)
	}
	return nil
}

// CommitsSince lists the commits in base..HEAD, newest first. An empty base
// returns HEAD alone.
func (s *GitService) CommitsSince(ctx context.Context, base string) ([]string, error) {
	args := []string{"rev-list", "-n", "1", "HEAD"}
	if base != "" {
		args = []string{"rev-list", base + "..HEAD"}
	}
	out, err := s.run(ctx, args...)
	if err != nil {
		return nil, wrap(domainErrors.ErrGetCommits, err).WithContext("base", base)
	}
	if out == "" {
		return []string{}, nil
	}
	return strings.Split(out, "\n"), nil
}

// RepoRoot returns the top-level directory of the working tree.
func (s *GitService) RepoRoot(ctx context.Context) (string, error) {
	out, err := s.run(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", wrap(domainErrors.ErrNotInGitRepo, err)
	}
	return out, nil
}

func (s *GitService) configValue(ctx context.Context, key string) (string, bool, error) {
	out, err := s.run(ctx, "config", "--get", key)
	if err == nil {
		return out, true, nil
	}
	if exitCode(err) == 1 {
		return "", false, nil
	}
	return "", false, wrap(domainErrors.ErrGetBranch, err).WithContext("key", key)
}

// commandError keeps the stderr of a failed git command.
type commandError struct {
	args   []string
	err    error
	stderr string
}

func (e *commandError) Error() string {
	return "git " + strings.Join(e.args, " ") + ": " + e.err.Error()
}

func (e *commandError) Unwrap() error {
	return e.err
}

func (s *GitService) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = s.dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		logger.FromContext(ctx).Debug("git command failed",
			"args", strings.Join(args, " "),
			"exit_code", strconv.Itoa(exitCode(err)),
			"stderr", strings.TrimSpace(stderr.String()))
		return "", &commandError{args: args, err: err, stderr: strings.TrimSpace(stderr.String())}
	}
	return strings.TrimSpace(stdout.String()), nil
}

func wrap(base *domainErrors.AppError, err error) *domainErrors.AppError {
	appErr := base.WithError(err)
	var cmdErr *commandError
	if errors.As(err, &cmdErr) && cmdErr.stderr != "" {
		appErr = appErr.WithContext(domainErrors.CtxStderr, cmdErr.stderr)
	}
	return appErr
}

func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
