package git

import (
	"fmt"
	"io"
	"strings"

	"github.com/mxcd/image-tag-updater/internal/configuration"
	"github.com/valyala/fasttemplate"
)

const (
	templateStart = "{{"
	templateEnd   = "}}"
)

// NewCommitMessageData collects the commit message values from the configuration
func NewCommitMessageData(config *configuration.Config) *CommitMessageData {
	return &CommitMessageData{
		NewTag:     config.NewTag,
		TargetPath: config.TargetPath,
		Target:     config.TargetDescription(),
		Repository: config.RepositoryName,
		Branch:     config.Branch,
	}
}

// RenderCommitMessage builds the commit message. A message without placeholders is
// followed by "<tag> in <path> (<target>)"; one containing {{...}} placeholders is
// rendered on its own with new_tag, target_path, target, repository and branch.
func RenderCommitMessage(message string, data *CommitMessageData) (string, error) {
	if !strings.Contains(message, templateStart) {
		return fmt.Sprintf("%s %s in %s (%s)", message, data.NewTag, data.TargetPath, data.Target), nil
	}

	tpl, err := fasttemplate.NewTemplate(message, templateStart, templateEnd)
	if err != nil {
		return "", fmt.Errorf("invalid commit message template: %w", err)
	}

	values := map[string]string{
		"new_tag":     data.NewTag,
		"target_path": data.TargetPath,
		"target":      data.Target,
		"repository":  data.Repository,
		"branch":      data.Branch,
	}

	return tpl.ExecuteFuncString(func(w io.Writer, tag string) (int, error) {
		if value, ok := values[strings.TrimSpace(tag)]; ok {
			return w.Write([]byte(value))
		}
		// unknown placeholders are kept verbatim
		return w.Write([]byte(templateStart + tag + templateEnd))
	}), nil
}

// NewPullRequestOptions returns the pull request title and body for the patch mode
func NewPullRequestOptions(config *configuration.Config) *PullRequestOptions {
	options := &PullRequestOptions{
		BaseBranch: config.TargetBranchPR,
		HeadBranch: config.Branch,
	}

	if config.Mode == configuration.PatchModeReplaceAll {
		options.Title = "Automated PR"
		options.Body = "Automated PR for updating tags"
		return options
	}

	options.Title = fmt.Sprintf("Automated PR by Github Action: Merging %s into %s", config.Branch, config.TargetBranchPR)
	options.Body = "This PR was created by Github Action for change image to deploy new version"
	return options
}
