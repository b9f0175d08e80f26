package git

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/mxcd/image-tag-updater/internal/configuration"
	"github.com/mxcd/image-tag-updater/internal/exec"
	"github.com/rs/zerolog/log"
)

type RepositoryOption func(r *Repository)

// WithBackOff replaces the delay policy between push attempts
func WithBackOff(newBackOff func() backoff.BackOff) RepositoryOption {
	return func(r *Repository) {
		r.newBackOff = newBackOff
	}
}

// NewRepository creates a new repository instance
func NewRepository(workingDirectory string, gitActor *configuration.GitActor, remote *configuration.Remote, runner exec.Runner, opts ...RepositoryOption) *Repository {
	r := &Repository{
		WorkingDirectory: workingDirectory,
		GitActor:         gitActor,
		Remote:           remote,
		runner:           runner,
		newBackOff:       defaultBackOff,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 2 * time.Second
	b.MaxInterval = 15 * time.Second
	return b
}

// git runs a git subcommand inside the working directory with the token masked
func (r *Repository) git(ctx context.Context, args ...string) (*exec.Result, error) {
	return r.runner.Run(ctx, exec.Command{
		Dir:     r.WorkingDirectory,
		Name:    "git",
		Args:    args,
		Secrets: []string{r.GitActor.Token},
	})
}

// Setup configures the global git identity and marks the workspace as safe
func (r *Repository) Setup(ctx context.Context) error {
	log.Debug().Str("safeDirectory", r.Remote.SafeDirectory).Msg("Configuring git")

	steps := [][]string{
		{"config", "--global", "--add", "safe.directory", r.Remote.SafeDirectory},
		{"config", "--global", "user.name", r.GitActor.Name},
		{"config", "--global", "user.email", r.GitActor.Email},
		{"config", "--global", "pull.rebase", "false"},
	}
	for _, args := range steps {
		if _, err := r.git(ctx, args...); err != nil {
			return fmt.Errorf("failed to configure git: %w", err)
		}
	}

	return nil
}

// RemoteBranchExists reports whether origin has the branch. Failures count as absent.
func (r *Repository) RemoteBranchExists(ctx context.Context, branchName string) bool {
	result, err := r.git(ctx, "ls-remote", "--heads", "origin", branchName)
	if err != nil {
		log.Debug().Err(err).Str("branch", branchName).Msg("Failed to list remote heads")
		return false
	}
	return result.Stdout != ""
}

// PrepareBranch fetches origin and switches to the branch, pulling it when it exists on
// the remote and creating it otherwise. It reports whether the branch already existed.
func (r *Repository) PrepareBranch(ctx context.Context, branchName string) (bool, error) {
	if _, err := r.git(ctx, "fetch", "origin"); err != nil {
		return false, fmt.Errorf("failed to fetch from origin: %w", err)
	}

	if r.RemoteBranchExists(ctx, branchName) {
		if _, err := r.git(ctx, "checkout", branchName); err != nil {
			return false, fmt.Errorf("failed to checkout branch %s: %w", branchName, err)
		}
		if _, err := r.git(ctx, "pull", "origin", branchName); err != nil {
			return false, fmt.Errorf("failed to pull branch %s: %w", branchName, err)
		}
		r.BranchName = branchName
		log.Debug().Str("branch", branchName).Msg("Checked out existing remote branch")
		return true, nil
	}

	if _, err := r.git(ctx, "checkout", "-b", branchName); err != nil {
		return false, fmt.Errorf("failed to create branch %s: %w", branchName, err)
	}
	r.BranchName = branchName
	log.Debug().Str("branch", branchName).Msg("Created new branch")

	return false, nil
}

// Commit stages every change in the working directory and commits it
func (r *Repository) Commit(ctx context.Context, options *CommitOptions) error {
	log.Debug().Str("message", options.Message).Msg("Creating commit")

	if _, err := r.git(ctx, "add", "."); err != nil {
		return fmt.Errorf("failed to stage changes: %w", err)
	}
	if _, err := r.git(ctx, "commit", "-m", options.Message); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	return nil
}

// PushURL returns the token-authenticated HTTPS remote URL
func (r *Repository) PushURL() string {
	return fmt.Sprintf("https://x-access-token:%s@%s/%s", r.GitActor.Token, r.Remote.Host, r.Remote.Repo)
}

// Push pushes the branch to the authenticated remote, retrying up to the configured number of attempts
func (r *Repository) Push(ctx context.Context) error {
	attempts := r.Remote.PushAttempts
	if attempts < 1 {
		attempts = 1
	}

	attempt := 0
	operation := func() error {
		attempt++
		log.Debug().Int("attempt", attempt).Int("attempts", attempts).Str("branch", r.BranchName).Msg("Pushing branch to remote")
		_, err := r.git(ctx, "push", r.PushURL(), r.BranchName)
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(r.newBackOff(), uint64(attempts-1)), ctx)
	notify := func(err error, wait time.Duration) {
		log.Warn().Err(err).Dur("retryIn", wait).Msg("⚠️ Push failed, retrying...")
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return &PushError{Attempts: attempt, Err: err}
	}

	return nil
}
