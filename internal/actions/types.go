package actions

import (
	"io"
	"os"

	"github.com/mxcd/image-tag-updater/internal/configuration"
	"github.com/mxcd/image-tag-updater/internal/exec"
	"github.com/mxcd/image-tag-updater/internal/git"
)

// RunOptions represents options for the run and patch commands
type RunOptions struct {
	// Scope is ScopePublish for the full run and ScopePatch for a local patch
	Scope configuration.Scope
	// Lookup resolves settings, os.LookupEnv when nil
	Lookup configuration.LookupFunc
	// Runner executes git and gh, a subprocess runner when nil
	Runner exec.Runner
	// Opener overrides the pull request opener selected by PR_PROVIDER
	Opener            git.PullRequestOpener
	RepositoryOptions []git.RepositoryOption
	Output            io.Writer
}

// ValidateOptions represents options for the validate command
type ValidateOptions struct {
	OutputFormat string
	Scope        configuration.Scope
	Lookup       configuration.LookupFunc
	Output       io.Writer
	// ToolVersion is reported in SARIF output
	ToolVersion string
}

func lookupOrEnv(lookup configuration.LookupFunc) configuration.LookupFunc {
	if lookup == nil {
		return os.LookupEnv
	}
	return lookup
}

func outputOrStdout(out io.Writer) io.Writer {
	if out == nil {
		return os.Stdout
	}
	return out
}
