package actions

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mxcd/image-tag-updater/internal/configuration"
	"github.com/mxcd/image-tag-updater/internal/git"
)

func printHeader(out io.Writer, message string) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "==========================================")
	fmt.Fprintf(out, "🚀 %s\n", message)
	fmt.Fprintln(out, "==========================================")
	fmt.Fprintln(out)
}

// maskToken hides all but the last four characters of a secret
func maskToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 8 {
		return strings.Repeat("*", len(token))
	}
	return strings.Repeat("*", 8) + token[len(token)-4:]
}

func printConfiguration(out io.Writer, config *configuration.Config, scope configuration.Scope) {
	commitMessage, err := git.RenderCommitMessage(config.CommitMessage, git.NewCommitMessageData(config))
	if err != nil {
		commitMessage = config.CommitMessage
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetTitle("📋 Configuration")
	t.AppendHeader(table.Row{"Setting", "Value"})
	t.AppendRows([]table.Row{
		{"Target path", config.TargetPath},
		{"Target values file", config.TargetValuesFile},
		{"File pattern", config.FilePattern},
		{"New tag", config.NewTag},
		{"Tag field", config.TagString},
		{"Repository name", config.RepositoryName},
		{"Patch mode", config.Mode},
		{"Dry run", strconv.FormatBool(config.DryRun)},
		{"Backup", strconv.FormatBool(config.Backup)},
	})

	if scope == configuration.ScopePublish {
		t.AppendSeparator()
		t.AppendRows([]table.Row{
			{"Target repo", config.Remote.Repo},
			{"Git host", config.Remote.Host},
			{"Branch", config.Branch},
			{"Commit message", commitMessage},
			{"Git user", fmt.Sprintf("%s <%s>", config.GitActor.Name, config.GitActor.Email)},
			{"GitHub token", maskToken(config.GitActor.Token)},
			{"Push attempts", config.Remote.PushAttempts},
			{"Create PR", strconv.FormatBool(config.CreatePR)},
		})
		if config.CreatePR {
			t.AppendRows([]table.Row{
				{"Target branch PR", config.TargetBranchPR},
				{"PR provider", config.PullRequestProvider},
			})
		}
	}

	t.SetStyle(table.StyleRounded)
	t.Render()
	fmt.Fprintln(out)
}
