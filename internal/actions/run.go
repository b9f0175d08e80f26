package actions

import (
	"context"
	"fmt"
	"io"

	"github.com/mxcd/image-tag-updater/internal/configuration"
	"github.com/mxcd/image-tag-updater/internal/exec"
	"github.com/mxcd/image-tag-updater/internal/git"
	"github.com/mxcd/image-tag-updater/internal/target"
	"github.com/mxcd/image-tag-updater/internal/util"
	"github.com/rs/zerolog/log"
)

// Run patches the selected values files and, in publish scope, commits, pushes and
// optionally opens a pull request. A dry run stops after previewing the patch.
func Run(ctx context.Context, options *RunOptions) error {
	out := outputOrStdout(options.Output)

	if options.Scope == configuration.ScopePatch {
		printHeader(out, "Starting Tag Patch")
	} else {
		printHeader(out, "Starting Git Update Process")
	}

	config, err := configuration.LoadFromEnvironment(lookupOrEnv(options.Lookup))
	if err != nil {
		return fmt.Errorf("configuration load error: %w", err)
	}
	if config.Debug {
		util.EnableDebugLogging()
	}

	printConfiguration(out, config, options.Scope)

	if err := config.Validate(options.Scope); err != nil {
		return err
	}
	log.Debug().Msg("Configuration is valid")

	runner := options.Runner
	if runner == nil {
		runner = exec.NewExecRunner()
	}

	publish := options.Scope == configuration.ScopePublish && !config.DryRun

	var repo *git.Repository
	if publish {
		repo = git.NewRepository(config.TargetPath, config.GitActor, config.Remote, runner, options.RepositoryOptions...)
		if err := repo.Setup(ctx); err != nil {
			return err
		}
	}

	results, err := patchTargets(out, config)
	if err != nil {
		return err
	}

	if config.DryRun {
		fmt.Fprintln(out, "✅ Dry run completed. No changes were made.")
		return nil
	}

	if !publish {
		printHeader(out, "Patch Completed Successfully")
		return nil
	}

	if !anyChanged(results) {
		fmt.Fprintln(out, "✅ All files are up to date, nothing to commit")
		printHeader(out, "Process Completed Successfully")
		return nil
	}

	if err := publishChanges(ctx, out, repo, config); err != nil {
		return err
	}

	if config.CreatePR {
		opener := options.Opener
		if opener == nil {
			opener, err = git.NewPullRequestOpener(config, runner)
			if err != nil {
				return err
			}
		}
		if err := opener.OpenPullRequest(ctx, git.NewPullRequestOptions(config)); err != nil {
			return err
		}
		fmt.Fprintln(out, "✅ Pull request created successfully!")
	}

	printHeader(out, "Process Completed Successfully")
	return nil
}

func patchTargets(out io.Writer, config *configuration.Config) ([]*target.PatchResult, error) {
	files, err := target.SelectFiles(config)
	if err != nil {
		return nil, err
	}

	results, err := target.PatchFiles(files, target.OptionsFromConfig(config))
	for _, result := range results {
		fmt.Fprintln(out, target.Summary(result))
	}
	if err != nil {
		return nil, err
	}

	if config.DryRun {
		fmt.Fprintln(out)
		target.RenderPreview(out, results, config.NewTag)
		fmt.Fprintln(out)
	}

	return results, nil
}

func anyChanged(results []*target.PatchResult) bool {
	for _, result := range results {
		if result.Changed() {
			return true
		}
	}
	return false
}

func publishChanges(ctx context.Context, out io.Writer, repo *git.Repository, config *configuration.Config) error {
	message, err := git.RenderCommitMessage(config.CommitMessage, git.NewCommitMessageData(config))
	if err != nil {
		return err
	}

	existed, err := repo.PrepareBranch(ctx, config.Branch)
	if err != nil {
		return err
	}
	if existed {
		log.Info().Str("branch", config.Branch).Msg("Updating existing branch")
	} else {
		log.Info().Str("branch", config.Branch).Msg("Created new branch")
	}

	if err := repo.Commit(ctx, &git.CommitOptions{Message: message}); err != nil {
		return err
	}

	if err := repo.Push(ctx); err != nil {
		return err
	}
	fmt.Fprintln(out, "✅ Successfully pushed changes")

	return nil
}
