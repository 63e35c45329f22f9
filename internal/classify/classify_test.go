package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestLineStatus(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Status
	}{
		{"done emoji", "✅ done", StatusDone},
		{"checkbox lower", "- [x] ship it", StatusDone},
		{"checkbox upper", "- [X] ship it", StatusDone},
		{"ballot box", "☑️ reviewed", StatusDone},
		{"alert", "⚠️ careful", StatusAlert},
		{"alert bolt", "deploy ⚡ friday", StatusAlert},
		{"info", "💡 idea", StatusInfo},
		{"progress", "⏳ waiting", StatusProgress},
		{"progress arrows", "🔄 syncing", StatusProgress},
		{"cancelled", "❌ dropped", StatusCancelled},
		{"plain", "plain text", StatusNone},
		{"empty checkbox", "- [ ] todo", StatusNone},
		{"empty", "", StatusNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LineStatus(tt.line))
		})
	}
}

func TestLineStatus_Precedence(t *testing.T) {
	require.Equal(t, StatusDone, LineStatus("⚠️ then ✅"))
	require.Equal(t, StatusAlert, LineStatus("❌ 💡 ⚠️"))
	require.Equal(t, StatusInfo, LineStatus("⏳ 📌"))
	require.Equal(t, StatusProgress, LineStatus("🚫 🔁"))
}

// Every line gets the highest-precedence category among the glyphs it contains.
func TestLineStatus_FirstRuleWinsProperty(t *testing.T) {
	glyphs := map[Status][]string{
		StatusDone:      {"✅", "[x]", "[X]"},
		StatusAlert:     {"⚠️", "🔶", "⚡"},
		StatusInfo:      {"ℹ️", "💡", "📌"},
		StatusProgress:  {"⏳", "🔁"},
		StatusCancelled: {"❌", "🚫", "✖️"},
	}
	rapid.Check(t, func(rt *rapid.T) {
		picks := rapid.SliceOfN(rapid.IntRange(0, len(Statuses)-1), 1, 4).Draw(rt, "picks")
		line := "note"
		best := len(Statuses)
		for _, p := range picks {
			g := glyphs[Statuses[p]]
			line += " " + g[rapid.IntRange(0, len(g)-1).Draw(rt, "glyph")]
			best = min(best, p)
		}
		if got := LineStatus(line); got != Statuses[best] {
			rt.Fatalf("LineStatus(%q) = %q, want %q", line, got, Statuses[best])
		}
	})
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "line-done", StatusDone.Class())
	assert.Equal(t, "", StatusNone.Class())
}

func TestQualifiesAsBullet(t *testing.T) {
	tests := []struct {
		mark string
		next byte
		want string
		ok   bool
	}{
		{"*", ' ', "*", true},
		{"-", '\t', "-", true},
		{"+ ", 'x', "+", true},
		{"*", 'w', "", false},
		{"-", '\n', "", false},
		{"-", 0, "", false},
		{"1.", ' ', "", false},
		{"", ' ', "", false},
	}
	for _, tt := range tests {
		got, ok := QualifiesAsBullet(tt.mark, tt.next)
		assert.Equal(t, tt.ok, ok, "mark %q next %q", tt.mark, tt.next)
		assert.Equal(t, tt.want, got)
	}
}
