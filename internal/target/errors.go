package target

import (
	"fmt"
)

// FileNotFoundError is returned when the selected values file does not exist
type FileNotFoundError struct {
	Path string
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("file not found: %s", e.Path)
}

// NoFilesMatchedError is returned when a file pattern selects nothing in the target directory
type NoFilesMatchedError struct {
	Directory string
	Pattern   string
}

func (e *NoFilesMatchedError) Error() string {
	return fmt.Sprintf("no files matching '%s' found in %s", e.Pattern, e.Directory)
}

// RepositoryNotFoundError is returned when no image block in a file references the repository
type RepositoryNotFoundError struct {
	Repository string
	File       string
}

func (e *RepositoryNotFoundError) Error() string {
	msg := "repository name not found in image block"
	if e.Repository != "" {
		msg = fmt.Sprintf("%s: '%s'", msg, e.Repository)
	}
	if e.File != "" {
		msg = fmt.Sprintf("%s (file: %s)", msg, e.File)
	}
	return msg
}

// InvalidFileFormatError is returned when a patched file would no longer parse as YAML
type InvalidFileFormatError struct {
	File   string
	Reason string
}

func (e *InvalidFileFormatError) Error() string {
	return fmt.Sprintf("invalid file format '%s': %s", e.File, e.Reason)
}
