package configuration

import (
	"fmt"
	"regexp"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// SubstitutionContext holds the state for variable substitution
type SubstitutionContext struct {
	lookup    LookupFunc
	decrypt   func(filePath string) (map[string]interface{}, error)
	sopsCache map[string]map[string]interface{} // Cache for loaded SOPS files
}

// NewSubstitutionContext creates a new substitution context resolving variables with lookup
func NewSubstitutionContext(lookup LookupFunc) *SubstitutionContext {
	return &SubstitutionContext{
		lookup:    lookup,
		decrypt:   DecryptSOPSFile,
		sopsCache: make(map[string]map[string]interface{}),
	}
}

// SubstituteVariables replaces environment variables and SOPS references in the input string
// Supports:
// - ${VAR_NAME} for environment variables
// - ${SOPS[path/to/file.yml].yaml.path.to.value} for SOPS encrypted files
func (ctx *SubstitutionContext) SubstituteVariables(input string) (string, error) {
	result := input
	matches := placeholderPattern.FindAllStringSubmatch(input, -1)

	for _, match := range matches {
		if len(match) < 2 {
			continue
		}

		placeholder := match[0]
		expression := match[1]

		var value string
		var err error

		if strings.HasPrefix(expression, "SOPS[") {
			value, err = ctx.resolveSOPSReference(expression)
			if err != nil {
				return "", fmt.Errorf("failed to resolve SOPS reference %s: %w", placeholder, err)
			}
		} else {
			value, _ = ctx.lookup(expression)
			if value == "" {
				return "", fmt.Errorf("environment variable %s is not set", expression)
			}
		}

		result = strings.ReplaceAll(result, placeholder, value)
	}

	return result, nil
}

// resolveSOPSReference resolves a SOPS reference like SOPS[file.yml].path.to.value
func (ctx *SubstitutionContext) resolveSOPSReference(expression string) (string, error) {
	if !strings.HasPrefix(expression, "SOPS[") {
		return "", fmt.Errorf("invalid SOPS reference format: %s", expression)
	}

	closeBracketIdx := strings.Index(expression, "]")
	if closeBracketIdx == -1 {
		return "", fmt.Errorf("invalid SOPS reference format (missing ]): %s", expression)
	}

	filePath := expression[5:closeBracketIdx]
	yamlPath := ""

	if closeBracketIdx+1 < len(expression) {
		if expression[closeBracketIdx+1] != '.' {
			return "", fmt.Errorf("invalid SOPS reference format (expected . after ]): %s", expression)
		}
		yamlPath = expression[closeBracketIdx+2:]
	}

	if yamlPath == "" {
		return "", fmt.Errorf("SOPS reference must include a YAML path: %s", expression)
	}

	data, err := ctx.loadSOPSFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to load SOPS file %s: %w", filePath, err)
	}

	value, err := GetYAMLValue(data, yamlPath)
	if err != nil {
		return "", fmt.Errorf("failed to access path %s in SOPS file %s: %w", yamlPath, filePath, err)
	}

	return fmt.Sprintf("%v", value), nil
}

// loadSOPSFile loads and decrypts a SOPS file, with caching
func (ctx *SubstitutionContext) loadSOPSFile(filePath string) (map[string]interface{}, error) {
	if data, ok := ctx.sopsCache[filePath]; ok {
		return data, nil
	}

	data, err := ctx.decrypt(filePath)
	if err != nil {
		return nil, err
	}

	ctx.sopsCache[filePath] = data

	return data, nil
}

// SubstituteInConfig substitutes variables in every string setting of the config
func (ctx *SubstitutionContext) SubstituteInConfig(config *Config) error {
	fields := map[string]*string{
		EnvTargetPath:       &config.TargetPath,
		EnvTargetValuesFile: &config.TargetValuesFile,
		EnvFilePattern:      &config.FilePattern,
		EnvNewTag:           &config.NewTag,
		EnvRepositoryName:   &config.RepositoryName,
		EnvBranch:           &config.Branch,
		EnvCommitMessage:    &config.CommitMessage,
		EnvTargetBranchPR:   &config.TargetBranchPR,
	}
	if config.GitActor != nil {
		fields[EnvGitUserName] = &config.GitActor.Name
		fields[EnvGitUserEmail] = &config.GitActor.Email
		fields[EnvGitHubToken] = &config.GitActor.Token
	}
	if config.Remote != nil {
		fields[EnvRepo] = &config.Remote.Repo
		fields[EnvGitHost] = &config.Remote.Host
	}

	for key, field := range fields {
		if !strings.Contains(*field, "${") {
			continue
		}
		value, err := ctx.SubstituteVariables(*field)
		if err != nil {
			return fmt.Errorf("failed to substitute %s: %w", key, err)
		}
		*field = value
	}

	return nil
}

// GetYAMLValue retrieves a value from a nested YAML structure using dot notation
// Example: "credentials.token" accesses data["credentials"]["token"]
func GetYAMLValue(data map[string]interface{}, path string) (interface{}, error) {
	if path == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}

	parts := strings.Split(path, ".")
	current := interface{}(data)

	for i, part := range parts {
		if part == "" {
			return nil, fmt.Errorf("invalid path: empty segment at position %d", i)
		}

		switch v := current.(type) {
		case map[string]interface{}:
			value, ok := v[part]
			if !ok {
				return nil, fmt.Errorf("path not found: %s (missing key '%s')", path, part)
			}
			current = value
		case map[interface{}]interface{}:
			value, ok := v[part]
			if !ok {
				return nil, fmt.Errorf("path not found: %s (missing key '%s')", path, part)
			}
			current = value
		default:
			return nil, fmt.Errorf("path not found: %s (cannot traverse into non-map at '%s')", path, part)
		}
	}

	return current, nil
}
