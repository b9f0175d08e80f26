package git

import (
	"github.com/cenkalti/backoff/v4"
	"github.com/mxcd/image-tag-updater/internal/configuration"
	"github.com/mxcd/image-tag-updater/internal/exec"
)

// Repository represents the git checkout that holds the values files
type Repository struct {
	WorkingDirectory string
	GitActor         *configuration.GitActor
	Remote           *configuration.Remote
	BranchName       string

	runner     exec.Runner
	newBackOff func() backoff.BackOff
}

// CommitOptions represents options for creating a commit
type CommitOptions struct {
	Message string
}

// PullRequestOptions represents options for creating a pull request
type PullRequestOptions struct {
	Title      string
	Body       string
	BaseBranch string
	HeadBranch string
}

// CommitMessageData holds the values available to commit message templates
type CommitMessageData struct {
	NewTag     string
	TargetPath string
	Target     string
	Repository string
	Branch     string
}
