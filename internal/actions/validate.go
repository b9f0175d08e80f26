package actions

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mxcd/image-tag-updater/internal/configuration"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

func Validate(options *ValidateOptions) error {
	out := outputOrStdout(options.Output)

	log.Debug().Str("format", options.OutputFormat).Msg("Loading configuration...")

	config, err := configuration.LoadFromEnvironment(lookupOrEnv(options.Lookup))
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return fmt.Errorf("configuration load error: %w", err)
	}

	validationResult := configuration.ValidateConfiguration(config, options.Scope)

	if err := outputValidationResult(out, config, validationResult, options); err != nil {
		log.Error().Err(err).Msg("Failed to output validation results")
		return fmt.Errorf("output error: %w", err)
	}

	if !validationResult.Valid {
		return fmt.Errorf("configuration validation failed")
	}

	log.Info().Msg("Configuration is valid")
	return nil
}

func outputValidationResult(out io.Writer, config *configuration.Config, result *configuration.ValidationResult, options *ValidateOptions) error {
	switch format := options.OutputFormat; format {
	case "table", "":
		return outputValidationTable(out, result)
	case "json":
		return outputValidationJSON(out, config, result)
	case "yaml":
		return outputValidationYAML(out, config, result)
	case "sarif":
		return outputValidationSARIF(out, result, options.ToolVersion)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func outputValidationTable(out io.Writer, result *configuration.ValidationResult) error {
	if result.Valid {
		fmt.Fprintln(out, "✓ Configuration is valid")
		return nil
	}

	fmt.Fprintln(out, "✗ Configuration validation failed:")
	fmt.Fprintln(out)

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Setting", "Problem"})
	for _, err := range result.Errors {
		t.AppendRow(table.Row{err.Field, err.Message})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()

	fmt.Fprintf(out, "\nTotal errors: %d\n", len(result.Errors))
	return nil
}

func validationOutput(config *configuration.Config, result *configuration.ValidationResult) map[string]interface{} {
	errors := result.Errors
	if errors == nil {
		errors = []*configuration.ValidationError{}
	}
	return map[string]interface{}{
		"valid":         result.Valid,
		"errorCount":    len(result.Errors),
		"errors":        errors,
		"configuration": config,
	}
}

func outputValidationJSON(out io.Writer, config *configuration.Config, result *configuration.ValidationResult) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(validationOutput(config, result))
}

func outputValidationYAML(out io.Writer, config *configuration.Config, result *configuration.ValidationResult) error {
	encoder := yaml.NewEncoder(out)
	encoder.SetIndent(2)
	if err := encoder.Encode(validationOutput(config, result)); err != nil {
		return err
	}
	return encoder.Close()
}

func outputValidationSARIF(out io.Writer, result *configuration.ValidationResult, version string) error {
	if version == "" {
		version = "development"
	}
	// Basic SARIF 2.1.0 format
	sarif := map[string]interface{}{
		"version": "2.1.0",
		"$schema": "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json",
		"runs": []interface{}{
			map[string]interface{}{
				"tool": map[string]interface{}{
					"driver": map[string]interface{}{
						"name":           "image-tag-updater-validate",
						"informationUri": "https://github.com/mxcd/image-tag-updater",
						"version":        version,
					},
				},
				"results": convertErrorsToSARIF(result.Errors),
			},
		},
	}
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(sarif)
}

func convertErrorsToSARIF(errors []*configuration.ValidationError) []interface{} {
	results := make([]interface{}, len(errors))
	for i, err := range errors {
		results[i] = map[string]interface{}{
			"ruleId": "configuration-error",
			"level":  "error",
			"message": map[string]interface{}{
				"text": err.Message,
			},
			"locations": []interface{}{
				map[string]interface{}{
					"logicalLocations": []interface{}{
						map[string]interface{}{
							"fullyQualifiedName": err.Field,
						},
					},
				},
			},
		}
	}
	return results
}
