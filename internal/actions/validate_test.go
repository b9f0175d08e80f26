package actions_test

import (
	"bytes"
	"testing"

	"github.com/goccy/go-json"
	"github.com/mxcd/image-tag-updater/internal/actions"
	"github.com/mxcd/image-tag-updater/internal/configuration"
	"gopkg.in/yaml.v3"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validateOptions(env map[string]string, format string) (*actions.ValidateOptions, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &actions.ValidateOptions{
		OutputFormat: format,
		Scope:        configuration.ScopePublish,
		Lookup: func(key string) (string, bool) {
			value, ok := env[key]
			return value, ok
		},
		Output: out,
	}, out
}

func TestValidate_table(t *testing.T) {
	f := newFixture(t)

	options, out := validateOptions(f.env, "table")
	require.NoError(t, actions.Validate(options))
	assert.Contains(t, out.String(), "✓ Configuration is valid")

	delete(f.env, configuration.EnvBranch)
	f.env[configuration.EnvPatchMode] = "fuzzy"

	options, out = validateOptions(f.env, "table")
	err := actions.Validate(options)

	assert.EqualError(t, err, "configuration validation failed")
	assert.Contains(t, out.String(), configuration.EnvBranch)
	assert.Contains(t, out.String(), configuration.EnvPatchMode)
	assert.Contains(t, out.String(), "Total errors: 2")
}

func TestValidate_json(t *testing.T) {
	f := newFixture(t)
	delete(f.env, configuration.EnvNewTag)

	options, out := validateOptions(f.env, "json")
	require.Error(t, actions.Validate(options))

	var decoded struct {
		Valid         bool `json:"valid"`
		ErrorCount    int  `json:"errorCount"`
		Errors        []configuration.ValidationError
		Configuration map[string]interface{} `json:"configuration"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))

	assert.False(t, decoded.Valid)
	assert.Equal(t, 1, decoded.ErrorCount)
	require.Len(t, decoded.Errors, 1)
	assert.Equal(t, configuration.EnvNewTag, decoded.Errors[0].Field)
	assert.Equal(t, "acme/deployments", decoded.Configuration["remote"].(map[string]interface{})["repo"])
	assert.NotContains(t, out.String(), "ghp_secret")
}

func TestValidate_yaml(t *testing.T) {
	f := newFixture(t)

	options, out := validateOptions(f.env, "yaml")
	require.NoError(t, actions.Validate(options))

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &decoded))

	assert.Equal(t, true, decoded["valid"])
	assert.Equal(t, 0, decoded["errorCount"])
	assert.NotContains(t, out.String(), "ghp_secret")
}

func TestValidate_sarif(t *testing.T) {
	f := newFixture(t)
	delete(f.env, configuration.EnvRepo)

	options, out := validateOptions(f.env, "sarif")
	require.Error(t, actions.Validate(options))

	assert.Contains(t, out.String(), `"version": "2.1.0"`)
	assert.Contains(t, out.String(), configuration.EnvRepo)
}

func TestValidate_unsupported_format(t *testing.T) {
	f := newFixture(t)

	options, _ := validateOptions(f.env, "xml")
	assert.ErrorContains(t, actions.Validate(options), "unsupported output format: xml")
}

func TestValidate_patch_scope(t *testing.T) {
	f := newFixture(t)
	delete(f.env, configuration.EnvGitHubToken)

	options, _ := validateOptions(f.env, "table")
	options.Scope = configuration.ScopePatch

	require.NoError(t, actions.Validate(options))
}
