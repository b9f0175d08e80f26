package configuration

type PatchMode string

const (
	// PatchModeRepository rewrites only the tag of image blocks whose repository matches
	PatchModeRepository PatchMode = "repository"
	// PatchModeReplaceAll rewrites every occurrence of the tag field in the file
	PatchModeReplaceAll PatchMode = "replace-all"
)

type PullRequestProvider string

const (
	PullRequestProviderCLI PullRequestProvider = "cli"
	PullRequestProviderAPI PullRequestProvider = "api"
)

// Scope selects which settings are mandatory for a command
type Scope int

const (
	// ScopePublish requires everything needed to patch, commit, push and open a PR
	ScopePublish Scope = iota
	// ScopePatch requires only what the local patch step needs
	ScopePatch
)

type Config struct {
	TargetPath       string    `yaml:"targetPath" json:"targetPath"`
	TargetValuesFile string    `yaml:"targetValuesFile,omitempty" json:"targetValuesFile,omitempty"`
	FilePattern      string    `yaml:"filePattern,omitempty" json:"filePattern,omitempty"`
	NewTag           string    `yaml:"newTag" json:"newTag"`
	TagString        string    `yaml:"tagString" json:"tagString"`
	RepositoryName   string    `yaml:"repositoryName,omitempty" json:"repositoryName,omitempty"`
	Mode             PatchMode `yaml:"mode" json:"mode"`

	Branch         string `yaml:"branch" json:"branch"`
	CommitMessage  string `yaml:"commitMessage" json:"commitMessage"`
	CreatePR       bool   `yaml:"createPR" json:"createPR"`
	TargetBranchPR string `yaml:"targetBranchPR" json:"targetBranchPR"`

	DryRun     bool `yaml:"dryRun" json:"dryRun"`
	Backup     bool `yaml:"backup" json:"backup"`
	Debug      bool `yaml:"debug" json:"debug"`
	VerifyYAML bool `yaml:"verifyYAML" json:"verifyYAML"`

	GitActor *GitActor `yaml:"gitActor" json:"gitActor"`
	Remote   *Remote   `yaml:"remote" json:"remote"`

	PullRequestProvider PullRequestProvider `yaml:"pullRequestProvider" json:"pullRequestProvider"`
}

// GitActor is the identity used for commits and the credential used for push and PRs
type GitActor struct {
	Name  string `yaml:"name" json:"name"`
	Email string `yaml:"email" json:"email"`
	Token string `yaml:"-" json:"-"`
}

// Remote describes where the branch is pushed
type Remote struct {
	// Repo is the owner/name identifier, e.g. "acme/deployments"
	Repo          string `yaml:"repo" json:"repo"`
	Host          string `yaml:"host" json:"host"`
	SafeDirectory string `yaml:"safeDirectory" json:"safeDirectory"`
	PushAttempts  int    `yaml:"pushAttempts" json:"pushAttempts"`
}

// PatternMode reports whether files are selected by substring pattern
func (c *Config) PatternMode() bool {
	return c.FilePattern != ""
}

// TargetDescription is the file pattern in pattern mode, the target values file otherwise
func (c *Config) TargetDescription() string {
	if c.PatternMode() {
		return c.FilePattern
	}
	return c.TargetValuesFile
}
