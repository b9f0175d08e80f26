package compare

import (
	"strconv"
	"strings"
)

// UpdateType represents the type of update (major, minor, patch, none)
type UpdateType string

const (
	UpdateTypeMajor     UpdateType = "major"
	UpdateTypeMinor     UpdateType = "minor"
	UpdateTypePatch     UpdateType = "patch"
	UpdateTypeDowngrade UpdateType = "downgrade"
	UpdateTypeNone      UpdateType = "none"
)

// Version holds the semantic components parsed from a tag
type Version struct {
	Raw   string
	Major int
	Minor int
	Patch int
}

// ParseVersion extracts major, minor, and patch version components from a tag.
// It handles common prefixes (v/V) and pre-release suffixes (e.g. "1.2.3-beta1").
func ParseVersion(version string) *Version {
	v := &Version{Raw: version}

	versionStr := normalizeVersion(version)

	// Split on pre-release separators to get the base version
	baseParts := strings.FieldsFunc(versionStr, func(r rune) bool {
		return r == '-' || r == '_' || r == '+'
	})

	if len(baseParts) == 0 {
		return v
	}

	parts := strings.Split(baseParts[0], ".")

	if len(parts) >= 1 {
		v.Major, _ = strconv.Atoi(parts[0])
	}
	if len(parts) >= 2 {
		v.Minor, _ = strconv.Atoi(parts[1])
	}
	if len(parts) >= 3 {
		v.Patch, _ = strconv.Atoi(parts[2])
	}

	return v
}

func (v *Version) isZero() bool {
	return v.Major == 0 && v.Minor == 0 && v.Patch == 0
}

// normalizeVersion removes quotes and the "v" or "V" prefix from a tag for comparison
func normalizeVersion(version string) string {
	normalized := strings.Trim(version, `"'`)
	normalized = strings.TrimPrefix(normalized, "v")
	normalized = strings.TrimPrefix(normalized, "V")
	return normalized
}

// Classify determines the type of change when a tag moves from current to latest
func Classify(current, latest string) UpdateType {
	if normalizeVersion(current) == normalizeVersion(latest) {
		return UpdateTypeNone
	}

	c := ParseVersion(current)
	l := ParseVersion(latest)

	// Non-semver tags (commit SHAs, "latest", ...) that differ are treated as patch updates
	if c.isZero() && l.isZero() {
		return UpdateTypePatch
	}

	switch {
	case l.Major > c.Major:
		return UpdateTypeMajor
	case l.Major < c.Major:
		return UpdateTypeDowngrade
	case l.Minor > c.Minor:
		return UpdateTypeMinor
	case l.Minor < c.Minor:
		return UpdateTypeDowngrade
	case l.Patch > c.Patch:
		return UpdateTypePatch
	case l.Patch < c.Patch:
		return UpdateTypeDowngrade
	}

	// Same numeric version with a different suffix
	return UpdateTypePatch
}

// Indicator adds an emoji marker to the update type for human-readable output
func Indicator(ut UpdateType) string {
	s := string(ut)
	switch ut {
	case UpdateTypeMajor:
		return "🔴 " + s
	case UpdateTypeMinor:
		return "🟡 " + s
	case UpdateTypePatch:
		return "🟢 " + s
	case UpdateTypeDowngrade:
		return "⚠️ " + s
	default:
		return s
	}
}
