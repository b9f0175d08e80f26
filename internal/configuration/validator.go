package configuration

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string `json:"field" yaml:"field"`
	Message string `json:"message" yaml:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationResult contains the results of configuration validation
type ValidationResult struct {
	Valid  bool
	Errors []*ValidationError
}

// AddError adds a validation error to the result
func (r *ValidationResult) AddError(field, message string) {
	r.Valid = false
	r.Errors = append(r.Errors, &ValidationError{
		Field:   field,
		Message: message,
	})
}

type setting struct {
	key   string
	value string
}

// requiredSettings lists the mandatory settings of a scope in the order they are checked
func (c *Config) requiredSettings(scope Scope) []setting {
	actor := c.GitActor
	if actor == nil {
		actor = &GitActor{}
	}
	remote := c.Remote
	if remote == nil {
		remote = &Remote{}
	}

	settings := []setting{
		{EnvTargetPath, c.TargetPath},
		{EnvNewTag, c.NewTag},
		{EnvTagString, c.TagString},
	}
	if scope == ScopePublish {
		settings = append(settings,
			setting{EnvGitUserName, actor.Name},
			setting{EnvGitUserEmail, actor.Email},
			setting{EnvGitHubToken, actor.Token},
			setting{EnvRepo, remote.Repo},
			setting{EnvBranch, c.Branch},
		)
	}
	if c.Mode == PatchModeRepository {
		settings = append(settings, setting{EnvRepositoryName, c.RepositoryName})
	}
	return settings
}

// Validate fails on the first problem found: a missing required setting, no file
// selection, or an unusable value
func (c *Config) Validate(scope Scope) error {
	for _, s := range c.requiredSettings(scope) {
		if s.value == "" {
			return &MissingSettingError{Key: s.key}
		}
	}

	if c.TargetValuesFile == "" && c.FilePattern == "" {
		return ErrNoTargetSelected
	}

	return c.validateValues(scope)
}

func (c *Config) validateValues(scope Scope) error {
	switch c.Mode {
	case PatchModeRepository, PatchModeReplaceAll:
	default:
		return &InvalidSettingError{Key: EnvPatchMode, Value: string(c.Mode), Reason: "must be 'repository' or 'replace-all'"}
	}

	if strings.ContainsAny(c.TagString, " \t:") {
		return &InvalidSettingError{Key: EnvTagString, Value: c.TagString, Reason: "must be a bare field name"}
	}

	if strings.ContainsAny(c.NewTag, " \t\n") {
		return &InvalidSettingError{Key: EnvNewTag, Value: c.NewTag, Reason: "must not contain whitespace"}
	}

	if scope != ScopePublish {
		return nil
	}

	switch c.PullRequestProvider {
	case PullRequestProviderCLI, PullRequestProviderAPI:
	default:
		return &InvalidSettingError{Key: EnvPullRequestProvider, Value: string(c.PullRequestProvider), Reason: "must be 'cli' or 'api'"}
	}

	if c.Remote != nil && c.Remote.PushAttempts < 1 {
		return &InvalidSettingError{Key: EnvPushAttempts, Value: strconv.Itoa(c.Remote.PushAttempts), Reason: "must be at least 1"}
	}

	if c.Remote != nil && strings.Count(c.Remote.Repo, "/") != 1 {
		return &InvalidSettingError{Key: EnvRepo, Value: c.Remote.Repo, Reason: "must be in the form owner/name"}
	}

	return nil
}

// ValidateConfiguration reports every problem of the configuration at once
func ValidateConfiguration(config *Config, scope Scope) *ValidationResult {
	result := &ValidationResult{
		Valid:  true,
		Errors: make([]*ValidationError, 0),
	}

	for _, s := range config.requiredSettings(scope) {
		if s.value == "" {
			result.AddError(s.key, "required setting is not set")
		}
	}

	if config.TargetValuesFile == "" && config.FilePattern == "" {
		result.AddError(fmt.Sprintf("%s|%s", EnvTargetValuesFile, EnvFilePattern), ErrNoTargetSelected.Error())
	}

	if err := config.validateValues(scope); err != nil {
		var invalid *InvalidSettingError
		if errors.As(err, &invalid) {
			result.AddError(invalid.Key, fmt.Sprintf("invalid value '%s': %s", invalid.Value, invalid.Reason))
		} else {
			result.AddError("configuration", err.Error())
		}
	}

	return result
}
