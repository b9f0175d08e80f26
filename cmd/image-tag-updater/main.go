package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/mxcd/image-tag-updater/internal/actions"
	"github.com/mxcd/image-tag-updater/internal/configuration"
	"github.com/mxcd/image-tag-updater/internal/util"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
)

var version = "development"

func main() {

	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{},
		Usage:   "print only the version",
	}

	cmd := &cli.Command{
		Name:    "image-tag-updater",
		Version: version,
		Usage:   "Update an image tag in Helm values files and publish it with git",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "debug output",
				Sources: cli.EnvVars("IMAGE_TAG_UPDATER_VERBOSE"),
			},
			&cli.BoolFlag{
				Name:    "very-verbose",
				Aliases: []string{"vv"},
				Usage:   "trace output",
				Sources: cli.EnvVars("IMAGE_TAG_UPDATER_VERY_VERBOSE"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			return initCli(ctx, cmd)
		},
		Action: runCommand,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Patch the values files, commit, push and optionally open a pull request",
				Action: runCommand,
			},
			{
				Name:   "patch",
				Usage:  "Patch the values files locally without any git operation",
				Action: patchCommand,
			},
			{
				Name:  "validate",
				Usage: "Validate the configuration from the environment",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "output",
						Usage: "Output format: table, json, yaml, sarif",
						Value: "table",
					},
					&cli.BoolFlag{
						Name:  "patch-only",
						Usage: "Only require the settings of the patch command",
					},
				},
				Action: validateCommand,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("command terminated with error")
	}
}

func initCli(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	godotenv.Load()
	util.SetCliLoggerDefaults()
	util.SetCliLogLevel(cmd)
	log.Trace().Msg("Trace logging enabled")
	log.Debug().Msg("Debug logging enabled")

	return ctx, nil
}

func runCommand(ctx context.Context, cmd *cli.Command) error {
	return execute(ctx, configuration.ScopePublish)
}

func patchCommand(ctx context.Context, cmd *cli.Command) error {
	return execute(ctx, configuration.ScopePatch)
}

func execute(ctx context.Context, scope configuration.Scope) error {
	err := actions.Run(ctx, &actions.RunOptions{Scope: scope})
	if err != nil {
		fmt.Printf("❌ Error: %v\n", err)
		return cli.Exit("", 1)
	}
	return nil
}

func validateCommand(ctx context.Context, cmd *cli.Command) error {
	scope := configuration.ScopePublish
	if cmd.Bool("patch-only") {
		scope = configuration.ScopePatch
	}

	err := actions.Validate(&actions.ValidateOptions{
		OutputFormat: cmd.String("output"),
		Scope:        scope,
		ToolVersion:  version,
	})
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	return nil
}
