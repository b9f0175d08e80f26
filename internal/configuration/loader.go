package configuration

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// Environment variable names
const (
	EnvTargetPath          = "TARGET_PATH"
	EnvTargetValuesFile    = "TARGET_VALUES_FILE"
	EnvFilePattern         = "FILE_PATTERN"
	EnvNewTag              = "NEW_TAG"
	EnvTagString           = "TAG_STRING"
	EnvRepositoryName      = "REPOSITORY_NAME"
	EnvGitUserName         = "GIT_USER_NAME"
	EnvGitUserEmail        = "GIT_USER_EMAIL"
	EnvGitHubToken         = "GITHUB_TOKEN"
	EnvRepo                = "REPO"
	EnvBranch              = "BRANCH"
	EnvCommitMessage       = "COMMIT_MESSAGE"
	EnvCreatePR            = "CREATE_PR"
	EnvTargetBranchPR      = "TARGET_BRANCH_PR"
	EnvBackup              = "BACKUP"
	EnvDryRun              = "DRY_RUN"
	EnvDebug               = "DEBUG"
	EnvPatchMode           = "PATCH_MODE"
	EnvSafeDirectory       = "SAFE_DIRECTORY"
	EnvGitHost             = "GIT_HOST"
	EnvPullRequestProvider = "PR_PROVIDER"
	EnvPushAttempts        = "PUSH_ATTEMPTS"
	EnvVerifyYAML          = "VERIFY_YAML"
)

// Defaults applied when the corresponding variable is unset or empty
const (
	DefaultCommitMessage  = "Update tag"
	DefaultTargetBranchPR = "main"
	DefaultSafeDirectory  = "/github/workspace"
	DefaultGitHost        = "github.com"
	DefaultPushAttempts   = 3
)

// LookupFunc resolves a variable name to its value, reporting whether it was set
type LookupFunc func(key string) (string, bool)

// LoadConfiguration reads the configuration from the process environment
func LoadConfiguration() (*Config, error) {
	return LoadFromEnvironment(os.LookupEnv)
}

// LoadFromEnvironment builds a Config from the given lookup function.
// ${VAR} and ${SOPS[file].path} references in values are substituted.
// Required settings are not checked here, see Config.Validate.
func LoadFromEnvironment(lookup LookupFunc) (*Config, error) {
	get := func(key string) string {
		value, _ := lookup(key)
		return strings.TrimSpace(value)
	}
	getDefault := func(key, fallback string) string {
		if value := get(key); value != "" {
			return value
		}
		return fallback
	}

	config := &Config{
		TargetPath:       get(EnvTargetPath),
		TargetValuesFile: get(EnvTargetValuesFile),
		FilePattern:      get(EnvFilePattern),
		NewTag:           get(EnvNewTag),
		TagString:        get(EnvTagString),
		RepositoryName:   get(EnvRepositoryName),
		Mode:             PatchMode(getDefault(EnvPatchMode, string(PatchModeRepository))),

		Branch:         get(EnvBranch),
		CommitMessage:  getDefault(EnvCommitMessage, DefaultCommitMessage),
		CreatePR:       get(EnvCreatePR) == "true",
		TargetBranchPR: getDefault(EnvTargetBranchPR, DefaultTargetBranchPR),

		DryRun:     get(EnvDryRun) == "true",
		Backup:     get(EnvBackup) == "true",
		Debug:      strings.ToLower(getDefault(EnvDebug, "false")) == "true",
		VerifyYAML: get(EnvVerifyYAML) == "true",

		GitActor: &GitActor{
			Name:  get(EnvGitUserName),
			Email: get(EnvGitUserEmail),
			Token: get(EnvGitHubToken),
		},
		Remote: &Remote{
			Repo:          get(EnvRepo),
			Host:          getDefault(EnvGitHost, DefaultGitHost),
			SafeDirectory: getDefault(EnvSafeDirectory, DefaultSafeDirectory),
			PushAttempts:  DefaultPushAttempts,
		},

		PullRequestProvider: PullRequestProvider(getDefault(EnvPullRequestProvider, string(PullRequestProviderCLI))),
	}

	// the legacy replace-all rewrite leaves the old value behind, so it is
	// only verified on request
	if get(EnvVerifyYAML) == "" {
		config.VerifyYAML = config.Mode != PatchModeReplaceAll
	}

	if raw := get(EnvPushAttempts); raw != "" {
		attempts, err := strconv.Atoi(raw)
		if err != nil {
			return nil, &InvalidSettingError{Key: EnvPushAttempts, Value: raw, Reason: "must be an integer"}
		}
		config.Remote.PushAttempts = attempts
	}

	ctx := NewSubstitutionContext(lookup)
	if err := ctx.SubstituteInConfig(config); err != nil {
		return nil, fmt.Errorf("failed to substitute variables: %w", err)
	}

	log.Debug().
		Str("targetPath", config.TargetPath).
		Str("mode", string(config.Mode)).
		Bool("dryRun", config.DryRun).
		Msg("Configuration loaded from environment")

	return config, nil
}
