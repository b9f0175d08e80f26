package target

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio"
	"github.com/mxcd/image-tag-updater/internal/configuration"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"gopkg.in/yaml.v3"
)

// BackupSuffix is appended to a file's path to name its backup copy
const BackupSuffix = ".bak"

// SelectFiles resolves the files to patch relative to the target path. A file pattern takes
// precedence and selects every non-directory entry whose name contains it, in lexicographic
// order; backup copies are never selected.
func SelectFiles(config *configuration.Config) ([]string, error) {
	if config.PatternMode() {
		entries, err := os.ReadDir(config.TargetPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read target directory %s: %w", config.TargetPath, err)
		}

		var files []string
		for _, entry := range entries {
			if entry.IsDir() || strings.HasSuffix(entry.Name(), BackupSuffix) {
				continue
			}
			if strings.Contains(entry.Name(), config.FilePattern) {
				files = append(files, filepath.Join(config.TargetPath, entry.Name()))
			}
		}

		if len(files) == 0 {
			return nil, &NoFilesMatchedError{Directory: config.TargetPath, Pattern: config.FilePattern}
		}

		log.Debug().Str("pattern", config.FilePattern).Int("count", len(files)).Msg("Selected files by pattern")
		return files, nil
	}

	path := config.TargetValuesFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(config.TargetPath, path)
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &FileNotFoundError{Path: path}
		}
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, &FileNotFoundError{Path: path}
	}

	return []string{path}, nil
}

// PatchFile patches a single file in place. In dry run mode nothing is written.
func PatchFile(path string, opts Options) (*PatchResult, error) {
	patcher, err := NewPatcher(opts)
	if err != nil {
		return nil, err
	}
	return patchFile(path, patcher, opts)
}

func patchFile(path string, patcher Patcher, opts Options) (*PatchResult, error) {
	log.Debug().Str("file", path).Str("mode", string(patcher.Mode())).Msg("🔄 Processing file")

	// a symlinked values file is written through to its target
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &FileNotFoundError{Path: path}
		}
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	if resolved != path {
		log.Debug().Str("file", path).Str("target", resolved).Msg("Following symlink")
	}

	info, err := os.Stat(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &FileNotFoundError{Path: path}
		}
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	content, err := os.ReadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	original := string(content)

	patched, changes, err := patcher.Patch(original)
	if err != nil {
		var notFound *RepositoryNotFoundError
		if errors.As(err, &notFound) {
			notFound.File = path
		}
		return nil, err
	}

	result := &PatchResult{Path: path, Changes: changes}

	if patched == original {
		result.Status = StatusUnchanged
		log.Debug().Str("file", path).Msg("Tag already up to date")
		return result, nil
	}

	if opts.VerifyYAML && decodeYAML(original) == nil {
		if err := decodeYAML(patched); err != nil {
			return nil, &InvalidFileFormatError{
				File:   path,
				Reason: fmt.Sprintf("patched content is not valid YAML: %v", err),
			}
		}
	}

	if opts.DryRun {
		result.Status = StatusPlanned
		return result, nil
	}

	if opts.Backup {
		backupPath := path + BackupSuffix
		if err := writeFileAtomically(backupPath, content, info.Mode().Perm()); err != nil {
			return nil, fmt.Errorf("failed to create backup %s: %w", backupPath, err)
		}
		result.BackupPath = backupPath
		log.Debug().Str("backup", backupPath).Msg("✅ Backup created")
	}

	if err := writeFileAtomically(resolved, []byte(patched), info.Mode().Perm()); err != nil {
		return nil, fmt.Errorf("failed to write file %s: %w", path, err)
	}

	result.Status = StatusUpdated
	return result, nil
}

// PatchFiles patches each file in order and stops at the first failure, returning
// the results gathered so far alongside the error.
func PatchFiles(paths []string, opts Options) ([]*PatchResult, error) {
	patcher, err := NewPatcher(opts)
	if err != nil {
		return nil, err
	}

	var bar *progressbar.ProgressBar
	if len(paths) > 1 {
		bar = progressbar.NewOptions(len(paths),
			progressbar.OptionSetDescription("Patching values files:"),
			progressbar.OptionSetItsString("file"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
		)
	}

	results := make([]*PatchResult, 0, len(paths))
	for _, path := range paths {
		result, err := patchFile(path, patcher, opts)
		if err != nil {
			if bar != nil {
				_ = bar.Exit()
				fmt.Fprintln(os.Stderr)
			}
			return results, err
		}
		results = append(results, result)
		if bar != nil {
			_ = bar.Add(1)
		}
	}

	if bar != nil {
		_ = bar.Finish()
		fmt.Fprintln(os.Stderr)
	}

	return results, nil
}

// decodeYAML decodes every document in content and returns the first error
func decodeYAML(content string) error {
	decoder := yaml.NewDecoder(strings.NewReader(content))
	for {
		var node yaml.Node
		err := decoder.Decode(&node)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}

// writeFileAtomically replaces path through a temporary file in the same directory
func writeFileAtomically(path string, data []byte, perm os.FileMode) error {
	t, err := renameio.TempFile(filepath.Dir(path), path)
	if err != nil {
		return err
	}
	defer func() {
		_ = t.Cleanup()
	}()
	if err := t.Chmod(perm); err != nil {
		return err
	}
	w := bufio.NewWriter(t)
	if _, err := w.Write(data); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return t.CloseAtomicallyReplace()
}
