package target

import (
	"fmt"

	"github.com/mxcd/image-tag-updater/internal/configuration"
)

// Patcher rewrites the image tag inside the contents of a single values file
type Patcher interface {
	// Patch returns the updated content and the lines that changed
	Patch(content string) (string, []LineChange, error)

	// Mode reports the patch strategy implemented by the patcher
	Mode() configuration.PatchMode
}

// Options control how a values file is patched
type Options struct {
	Mode       configuration.PatchMode
	NewTag     string
	TagField   string
	Repository string
	DryRun     bool
	Backup     bool
	VerifyYAML bool
}

// OptionsFromConfig builds patch options from the loaded configuration
func OptionsFromConfig(config *configuration.Config) Options {
	return Options{
		Mode:       config.Mode,
		NewTag:     config.NewTag,
		TagField:   config.TagString,
		Repository: config.RepositoryName,
		DryRun:     config.DryRun,
		Backup:     config.Backup,
		VerifyYAML: config.VerifyYAML,
	}
}

// Status describes the outcome of patching one file
type Status string

const (
	StatusUpdated   Status = "updated"
	StatusUnchanged Status = "unchanged"
	StatusPlanned   Status = "planned"
)

// LineChange records a single rewritten line, numbered from 1
type LineChange struct {
	Line   int
	Before string
	After  string
}

// PatchResult is the outcome of patching one file
type PatchResult struct {
	Path       string
	Status     Status
	Changes    []LineChange
	BackupPath string
}

// Changed reports whether the file content differs after patching
func (r *PatchResult) Changed() bool {
	return len(r.Changes) > 0
}

// UnsupportedPatchModeError is returned when no patcher exists for a mode
type UnsupportedPatchModeError struct {
	Mode configuration.PatchMode
}

func (e *UnsupportedPatchModeError) Error() string {
	return fmt.Sprintf("unsupported patch mode: %s", e.Mode)
}

// NewPatcher creates the patcher for the configured mode
func NewPatcher(opts Options) (Patcher, error) {
	switch opts.Mode {
	case configuration.PatchModeRepository, "":
		return NewImageTagPatcher(opts), nil
	case configuration.PatchModeReplaceAll:
		return NewReplaceAllPatcher(opts), nil
	default:
		return nil, &UnsupportedPatchModeError{Mode: opts.Mode}
	}
}
