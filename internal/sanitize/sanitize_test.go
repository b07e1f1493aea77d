package sanitize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanEmpty(t *testing.T) {
	assert.Equal(t, "", Clean(""))
	assert.Equal(t, "", Clean("   \n\t  \n"))
}

func TestCleanMarkdownScenario(t *testing.T) {
	in := "**Done!** See [docs](http://x.com/y) at ~~old~~ `code` path /usr/local/bin/foo."
	out := Clean(in)

	assert.Contains(t, out, "Done!")
	assert.Contains(t, out, "See docs")
	assert.Contains(t, out, "file path")
	assert.NotContains(t, out, "*")
	assert.NotContains(t, out, "~~")
	assert.NotContains(t, out, "`")
	assert.NotContains(t, out, "http")
	assert.NotContains(t, out, "x.com")
	assert.NotContains(t, out, "old")
	assert.NotContains(t, out, "code")
	assert.NotContains(t, out, "/usr")
}

func TestCleanTable(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello world", "hello world"},
		{"bold", "**important** stuff", "important stuff"},
		{"italic", "*really* nice", "really nice"},
		{"underscore bold", "__warn__ here", "warn here"},
		{"underscore italic", "so _very_ nice", "so very nice"},
		{"inline code", "run `go vet` now", "run now"},
		{"link keeps label", "read [the guide](https://example.com/guide)", "read the guide"},
		{"heading", "# Title\nbody", "Title. body"},
		{"bullets", "- one\n- two", "one. two"},
		{"ordered list", "1. first\n2. second", "first. second"},
		{"blockquote", "> quoted\nrest", "quoted. rest"},
		{"drive path", `saved to C:\Users\me\out.txt`, "saved to file path"},
		{"posix path", "wrote /tmp/talkback/run.log today", "wrote file path today"},
		{"bare url", "visit https://example.com/a?b=c please", "visit a link please"},
		{"newline runs", "first\n\n\nsecond", "first. second"},
		{"crlf", "one\r\ntwo", "one. two"},
		{"sentence join keeps period", "done.\nnext", "done. next"},
		{"ansi colors", "\x1b[31mred\x1b[0m text", "red text"},
		{"osc title", "\x1b]0;title\x07after", "after"},
		{"snake_case untouched", "use snake_case_name here", "use snake_case_name here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.in))
		})
	}
}

func TestCleanCodeBlock(t *testing.T) {
	in := "Before\n```go\nfunc main() {}\n```\nAfter"
	out := Clean(in)
	assert.Contains(t, out, "code block omitted")
	assert.NotContains(t, out, "func main")
	assert.NotContains(t, out, "```")
}

func TestCleanBareOrderedMarkerLines(t *testing.T) {
	// Marker-only lines carry no spoken content and must vanish entirely,
	// including when the join step stacks several of them up front.
	assert.Equal(t, "hello", Clean("1.\n2.\nhello"))
	assert.Equal(t, "stuff", Clean("3\n4\nstuff"))
	assert.Equal(t, "items follow", Clean("1)\nitems follow"))
}

func TestCleanIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"plain sentence.",
		"**Done!** See [docs](http://x.com/y) at ~~old~~ `code` path /usr/local/bin/foo.",
		"# Heading\n- item one\n- item two\n\n```sh\nls -la\n```\ntrailing /usr/bin/env text",
		"3\nstuff after a bare number line",
		"1.\n2.\nhello",
		"3\n4\nbare numbers stacked",
		"10)\n11)\nparen markers",
		"> quote\n1. one\n2. two\nvisit https://go.dev/doc now",
		"\x1b[1mbold\x1b[0m and \x1b]0;t\x07osc",
		"dots... and more.... done",
		"-\nlonely marker line",
	}

	for _, in := range inputs {
		once := Clean(in)
		twice := Clean(once)
		assert.Equal(t, once, twice, "Clean not idempotent for %q", in)
	}
}

func TestTruncateShortInput(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 100))
	assert.Equal(t, "exact", Truncate("exact", 5))
}

func TestTruncateCutsAtSentence(t *testing.T) {
	// Terminator inside the window, past the midpoint: cut there inclusive.
	in := "This is the first sentence. And this trailing part keeps going well past the limit"
	out := Truncate(in, 40)
	assert.Equal(t, "This is the first sentence.", out)
}

func TestTruncateHardCut(t *testing.T) {
	in := strings.Repeat("a", 100)
	out := Truncate(in, 20)
	assert.Equal(t, strings.Repeat("a", 20)+"...", out)
	assert.LessOrEqual(t, len([]rune(out)), 23)
}

func TestTruncateEarlyTerminatorIgnored(t *testing.T) {
	// The only terminator sits before the midpoint, so it does not qualify.
	in := "Hi. " + strings.Repeat("b", 100)
	out := Truncate(in, 30)
	assert.Equal(t, ([]rune(in))[0:30], []rune(out[:30]))
	assert.True(t, strings.HasSuffix(out, "..."))
}

func TestTruncateNeverExceedsMaxPlusEllipsis(t *testing.T) {
	in := "Sentence one is here. Sentence two follows it closely and runs long."
	for max := 10; max < len(in)+5; max++ {
		out := Truncate(in, max)
		assert.LessOrEqual(t, len([]rune(out)), max+3, "max=%d", max)
	}
}
