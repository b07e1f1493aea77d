// Package sanitize turns arbitrary assistant output into speech-safe text.
//
// Terminal escapes, markdown structure, file paths and URLs all read fine on
// screen but are noise when spoken, so Clean strips or replaces them. The
// transformations run in a fixed order: structure is flattened while line
// breaks still exist, then line breaks become sentence breaks. Clean is
// idempotent: cleaning already-clean text is a no-op.
package sanitize

import (
	"regexp"
	"strings"
)

// CodeBlockPlaceholder is spoken in place of a fenced code block.
const CodeBlockPlaceholder = " code block omitted "

// PathPlaceholder is spoken in place of a filesystem path.
const PathPlaceholder = "file path"

// URLPlaceholder is spoken in place of a bare URL.
const URLPlaceholder = "a link"

var (
	// Terminal escape sequences: OSC first (they contain CSI-like bytes),
	// then CSI, then the two-byte escapes, then remaining control chars
	// except newline and tab.
	reOSC     = regexp.MustCompile(`\x1b\][^\x07\x1b]*(?:\x07|\x1b\\)`)
	reCSI     = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]`)
	reEscMisc = regexp.MustCompile(`\x1b[@-_]`)
	reControl = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]`)

	newlines = strings.NewReplacer(
		"\r\n", "\n", "\r", "\n",
		"\u2028", "\n", "\u2029", "\n", "\u0085", "\n",
	)

	reFence      = regexp.MustCompile("(?s)```.*?```")
	reInlineCode = regexp.MustCompile("`[^`\n]+`")

	reLink = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)

	reBold        = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	reBoldUnder   = regexp.MustCompile(`__([^_]+)__`)
	reItalic      = regexp.MustCompile(`\*([^*\n]+)\*`)
	reItalicUnder = regexp.MustCompile(`\b_([^_\n]+)_\b`)
	reStrike      = regexp.MustCompile(`~~[^~]*~~`)

	// Line-anchored structure markers. The post-marker whitespace classes
	// exclude \n so a bare marker on its own line never swallows the break.
	reHeading     = regexp.MustCompile(`(?m)^#{1,6}[ \t]*`)
	reBullet      = regexp.MustCompile(`(?m)^[ \t]*[-*+][ \t]+`)
	reOrdered     = regexp.MustCompile(`(?m)^[ \t]*\d{1,3}[.)][ \t]+`)
	reOrderedBare = regexp.MustCompile(`(?m)^[ \t]*\d{1,3}[.)][ \t]*$`)
	reQuote       = regexp.MustCompile(`(?m)^(?:>[ \t]?)+`)

	// URLs are replaced before paths so the path rule never eats the tail
	// of an "://" URL.
	reURL       = regexp.MustCompile(`(?:https?://|www\.)\S+`)
	reDrivePath = regexp.MustCompile(`[A-Za-z]:[/\\]\S+`)
	rePosixPath = regexp.MustCompile(`/\S+/\S+`)

	reNewlineRun = regexp.MustCompile(`\n+`)
	reSpaceRun   = regexp.MustCompile(`\s+`)
	rePeriodRun  = regexp.MustCompile(`\.{2,}`)
	reLeadingDot = regexp.MustCompile(`^\.\s*`)
)

// Clean strips terminal escapes and markdown structure from raw text and
// collapses it into plain spoken sentences. Empty input yields "".
func Clean(raw string) string {
	if raw == "" {
		return ""
	}

	s := reOSC.ReplaceAllString(raw, "")
	s = reCSI.ReplaceAllString(s, "")
	s = reEscMisc.ReplaceAllString(s, "")
	s = reControl.ReplaceAllString(s, "")

	s = newlines.Replace(s)

	s = reFence.ReplaceAllString(s, CodeBlockPlaceholder)
	s = reInlineCode.ReplaceAllString(s, "")

	s = reLink.ReplaceAllString(s, "$1")

	s = reBold.ReplaceAllString(s, "$1")
	s = reBoldUnder.ReplaceAllString(s, "$1")
	s = reItalic.ReplaceAllString(s, "$1")
	s = reItalicUnder.ReplaceAllString(s, "$1")
	s = reStrike.ReplaceAllString(s, "")

	s = reHeading.ReplaceAllString(s, "")
	s = reBullet.ReplaceAllString(s, "")
	s = reOrdered.ReplaceAllString(s, "")
	s = reOrderedBare.ReplaceAllString(s, "")
	s = reQuote.ReplaceAllString(s, "")

	s = reURL.ReplaceAllString(s, URLPlaceholder)
	s = reDrivePath.ReplaceAllString(s, PathPlaceholder)
	s = rePosixPath.ReplaceAllString(s, PathPlaceholder)

	s = reNewlineRun.ReplaceAllString(s, ". ")
	s = reSpaceRun.ReplaceAllString(s, " ")
	s = rePeriodRun.ReplaceAllString(s, ".")
	s = strings.TrimSpace(s)
	s = reLeadingDot.ReplaceAllString(s, "")
	// Joining lines with ". " can leave ordered-list markers at the start of
	// the string (bare numbers that ended their lines). Strip them to a
	// fixpoint so a second Clean has nothing left to do.
	for {
		next := reOrdered.ReplaceAllString(s, "")
		if next == s {
			break
		}
		s = next
	}
	return strings.TrimSpace(s)
}

// Truncate shortens s to at most max characters, preferring to cut at the
// last sentence terminator in the window when it sits at or past the
// window's midpoint. Otherwise it hard-cuts and appends "...", so the
// result never exceeds max+3 characters. Lengths are in runes.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}

	window := r[:max]
	cut := -1
	for i := len(window) - 1; i >= 0; i-- {
		switch window[i] {
		case '.', '?', '!':
			cut = i
		}
		if cut >= 0 {
			break
		}
	}
	if cut >= max/2 {
		return string(window[:cut+1])
	}
	return string(window) + "..."
}
