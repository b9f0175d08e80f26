package target

import (
	"regexp"
	"strings"

	"github.com/mxcd/image-tag-updater/internal/configuration"
	"github.com/rs/zerolog/log"
)

var repositoryPattern = regexp.MustCompile(`^\s*repository:\s*(\S+)`)

// ImageTagPatcher updates the tag of image blocks whose repository matches the configured name
type ImageTagPatcher struct {
	opts Options
}

func NewImageTagPatcher(opts Options) *ImageTagPatcher {
	return &ImageTagPatcher{opts: opts}
}

func (p *ImageTagPatcher) Mode() configuration.PatchMode {
	return configuration.PatchModeRepository
}

func (p *ImageTagPatcher) Patch(content string) (string, []LineChange, error) {
	lines, changes, err := PatchImageTag(splitLines(content), p.opts)
	if err != nil {
		return content, nil, err
	}
	return strings.Join(lines, ""), changes, nil
}

// PatchImageTag scans the lines once, tracking whether it is inside an image block and
// whether that block's repository matches. The first tag line after a matching repository
// line is rewritten with its indentation preserved, which closes the block. The rewritten
// line keeps the ending of the line it replaces, so CRLF stays CRLF and a final line without
// a newline is not given one; this keeps a repeated run on an up-to-date file a no-op. It fails with *RepositoryNotFoundError when no block in the whole
// input references the repository.
func PatchImageTag(lines []string, opts Options) ([]string, []LineChange, error) {
	tagPattern := regexp.MustCompile(`^(\s*)` + regexp.QuoteMeta(opts.TagField) + `:\s*(\S+)`)

	updated := make([]string, 0, len(lines))
	var changes []LineChange

	insideImageBlock := false
	foundRepository := false
	matchedAny := false

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "image:") {
			insideImageBlock = true
			foundRepository = false
			updated = append(updated, line)
			continue
		}

		if insideImageBlock {
			if m := repositoryPattern.FindStringSubmatch(trimmed); m != nil && m[1] == opts.Repository {
				foundRepository = true
				matchedAny = true
			}

			if m := tagPattern.FindStringSubmatch(line); m != nil && foundRepository {
				replacement := m[1] + opts.TagField + ": " + opts.NewTag + lineEnding(line)
				log.Debug().Int("line", i+1).Msgf("🔄 Replacing: %s → %s: %s", trimmed, opts.TagField, opts.NewTag)
				if replacement != line {
					changes = append(changes, LineChange{
						Line:   i + 1,
						Before: strings.TrimRight(line, "\r\n"),
						After:  strings.TrimRight(replacement, "\r\n"),
					})
				}
				updated = append(updated, replacement)
				insideImageBlock = false
				continue
			}
		}

		updated = append(updated, line)
	}

	if !matchedAny {
		return nil, nil, &RepositoryNotFoundError{Repository: opts.Repository}
	}

	return updated, changes, nil
}

// ReplaceAllPatcher rewrites every occurrence of the tag field regardless of block context
type ReplaceAllPatcher struct {
	opts Options
}

func NewReplaceAllPatcher(opts Options) *ReplaceAllPatcher {
	return &ReplaceAllPatcher{opts: opts}
}

func (p *ReplaceAllPatcher) Mode() configuration.PatchMode {
	return configuration.PatchModeReplaceAll
}

func (p *ReplaceAllPatcher) Patch(content string) (string, []LineChange, error) {
	updated, changes := ReplaceAllTags(content, p.opts)
	return updated, changes, nil
}

// ReplaceAllTags replaces each "<field>:" substring with `<field>: "<new-tag>"`.
// Existing values are not removed, so it is only suited to files that leave the field empty.
func ReplaceAllTags(content string, opts Options) (string, []LineChange) {
	field := opts.TagField + ":"
	updated := strings.ReplaceAll(content, field, field+` "`+opts.NewTag+`"`)
	return updated, diffLines(content, updated)
}

// splitLines splits content after each newline so joining the parts restores it exactly
func splitLines(content string) []string {
	lines := strings.SplitAfter(content, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func lineEnding(line string) string {
	switch {
	case strings.HasSuffix(line, "\r\n"):
		return "\r\n"
	case strings.HasSuffix(line, "\n"):
		return "\n"
	default:
		return ""
	}
}

// diffLines pairs up lines of two contents with the same line count and reports the differing ones
func diffLines(before, after string) []LineChange {
	beforeLines := splitLines(before)
	afterLines := splitLines(after)

	var changes []LineChange
	for i := 0; i < len(beforeLines) && i < len(afterLines); i++ {
		if beforeLines[i] != afterLines[i] {
			changes = append(changes, LineChange{
				Line:   i + 1,
				Before: strings.TrimRight(beforeLines[i], "\r\n"),
				After:  strings.TrimRight(afterLines[i], "\r\n"),
			})
		}
	}
	return changes
}
