// Package canonical derives stable, collision-free names from the noisy
// folder and file names produced by note-taking exports.
package canonical

import (
	"net/url"
	"path"
	"regexp"
	"strings"
)

// Placeholder is used when a name cleans down to nothing.
const Placeholder = "untitled"

var (
	// dateRe matches numeric MM DD YYYY tokens with space or underscore
	// separators and an optional trailing dash, e.g. "10 24 2024 - ".
	dateRe = regexp.MustCompile(`\d{2}[\s_]+\d{2}[\s_]+\d{4}(?:[\s_]*-)?[\s_]*`)

	// hexSuffixRe matches one trailing identifier block: a long run of hex
	// characters appended by the export tool as a uniqueness suffix.
	hexSuffixRe = regexp.MustCompile(`[\s_]+[0-9a-fA-F]{12,}$`)

	spacedDashRe = regexp.MustCompile(`\s+-\s+`)
	whitespaceRe = regexp.MustCompile(`\s+`)
	underscoreRe = regexp.MustCompile(`_{2,}`)
)

// FolderName cleans a raw folder name into its canonical form.
func FolderName(raw string) string {
	return clean(raw)
}

// FileName cleans a raw file name into its canonical form, preserving the
// extension. If parent is a non-empty canonical folder name, the cleaned stem
// is prefixed with it, unless the stem already carries that prefix.
func FileName(raw, parent string) string {
	ext := path.Ext(raw)
	stem := clean(strings.TrimSuffix(raw, ext))

	if parent != "" && stem != parent && !strings.HasPrefix(stem, parent+"_") {
		stem = parent + "_" + stem
	}
	return stem + ext
}

// clean is the shared normalization: URL-decode, strip date tokens and
// trailing identifier blocks, collapse separators to single underscores.
func clean(name string) string {
	if decoded, err := url.PathUnescape(name); err == nil {
		name = decoded
	}

	name = dateRe.ReplaceAllString(name, "")

	// Identifier blocks can stack (export-of-export); strip them all.
	for {
		stripped := hexSuffixRe.ReplaceAllString(name, "")
		if stripped == name {
			break
		}
		name = stripped
	}

	name = spacedDashRe.ReplaceAllString(name, " ")
	name = strings.TrimSpace(name)
	name = whitespaceRe.ReplaceAllString(name, "_")
	name = underscoreRe.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")

	if name == "" {
		return Placeholder
	}
	return name
}
