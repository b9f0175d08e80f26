package configuration

import (
	"errors"
	"testing"
)

func loadBase(t *testing.T, mutate func(env map[string]string)) *Config {
	t.Helper()
	env := baseEnvironment()
	if mutate != nil {
		mutate(env)
	}
	config, err := LoadFromEnvironment(mapLookup(env))
	if err != nil {
		t.Fatalf("failed to load configuration: %v", err)
	}
	return config
}

func TestValidate_MissingRequiredSetting(t *testing.T) {
	required := []string{
		EnvTargetPath,
		EnvNewTag,
		EnvTagString,
		EnvGitUserName,
		EnvGitUserEmail,
		EnvGitHubToken,
		EnvRepo,
		EnvBranch,
		EnvRepositoryName,
	}

	for _, key := range required {
		t.Run(key, func(t *testing.T) {
			config := loadBase(t, func(env map[string]string) {
				delete(env, key)
			})

			err := config.Validate(ScopePublish)

			var missing *MissingSettingError
			if !errors.As(err, &missing) {
				t.Fatalf("expected MissingSettingError, got %v", err)
			}
			if missing.Key != key {
				t.Errorf("expected missing key %s, got %s", key, missing.Key)
			}
			if !IsConfigurationError(err) {
				t.Error("expected a configuration error")
			}
		})
	}
}

func TestValidate_ReportsFirstMissingSettingOnly(t *testing.T) {
	config := loadBase(t, func(env map[string]string) {
		delete(env, EnvBranch)
		delete(env, EnvNewTag)
		delete(env, EnvGitHubToken)
	})

	err := config.Validate(ScopePublish)

	var missing *MissingSettingError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingSettingError, got %v", err)
	}
	if missing.Key != EnvNewTag {
		t.Errorf("expected first missing key %s, got %s", EnvNewTag, missing.Key)
	}
}

func TestValidate_Selection(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(env map[string]string)
		wantErr error
	}{
		{
			name:   "single file",
			mutate: nil,
		},
		{
			name: "pattern only",
			mutate: func(env map[string]string) {
				delete(env, EnvTargetValuesFile)
				env[EnvFilePattern] = "values-"
			},
		},
		{
			name: "neither file nor pattern",
			mutate: func(env map[string]string) {
				delete(env, EnvTargetValuesFile)
			},
			wantErr: ErrNoTargetSelected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := loadBase(t, tt.mutate)
			err := config.Validate(ScopePublish)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidate_Scopes(t *testing.T) {
	t.Run("patch scope does not require git settings", func(t *testing.T) {
		config := loadBase(t, func(env map[string]string) {
			delete(env, EnvGitUserName)
			delete(env, EnvGitUserEmail)
			delete(env, EnvGitHubToken)
			delete(env, EnvRepo)
			delete(env, EnvBranch)
		})
		if err := config.Validate(ScopePatch); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("replace-all mode does not require a repository name", func(t *testing.T) {
		config := loadBase(t, func(env map[string]string) {
			delete(env, EnvRepositoryName)
			env[EnvPatchMode] = string(PatchModeReplaceAll)
		})
		if err := config.Validate(ScopePublish); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestValidate_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(env map[string]string)
		wantKey string
	}{
		{"unknown mode", func(env map[string]string) { env[EnvPatchMode] = "fuzzy" }, EnvPatchMode},
		{"unknown provider", func(env map[string]string) { env[EnvPullRequestProvider] = "gitlab" }, EnvPullRequestProvider},
		{"zero push attempts", func(env map[string]string) { env[EnvPushAttempts] = "0" }, EnvPushAttempts},
		{"tag field with colon", func(env map[string]string) { env[EnvTagString] = "tag:" }, EnvTagString},
		{"repo without owner", func(env map[string]string) { env[EnvRepo] = "deployments" }, EnvRepo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := loadBase(t, tt.mutate)
			err := config.Validate(ScopePublish)

			var invalid *InvalidSettingError
			if !errors.As(err, &invalid) {
				t.Fatalf("expected InvalidSettingError, got %v", err)
			}
			if invalid.Key != tt.wantKey {
				t.Errorf("expected key %s, got %s", tt.wantKey, invalid.Key)
			}
		})
	}
}

func TestValidateConfiguration_AggregatesErrors(t *testing.T) {
	config := loadBase(t, func(env map[string]string) {
		delete(env, EnvBranch)
		delete(env, EnvNewTag)
		delete(env, EnvTargetValuesFile)
		env[EnvPatchMode] = "fuzzy"
	})

	result := ValidateConfiguration(config, ScopePublish)

	if result.Valid {
		t.Fatal("expected configuration to be invalid")
	}

	fields := make(map[string]bool)
	for _, validationErr := range result.Errors {
		fields[validationErr.Field] = true
	}
	for _, want := range []string{EnvBranch, EnvNewTag, EnvTargetValuesFile + "|" + EnvFilePattern, EnvPatchMode} {
		if !fields[want] {
			t.Errorf("expected validation error for %s, got %v", want, result.Errors)
		}
	}
}

func TestValidateConfiguration_Valid(t *testing.T) {
	result := ValidateConfiguration(loadBase(t, nil), ScopePublish)
	if !result.Valid {
		t.Errorf("expected valid configuration, got errors: %v", result.Errors)
	}
}
