package output

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediwise/pkg/chattypes"
)

// markerStyles wraps text in [semantic]...[/semantic] so tests can see which style applied.
type markerStyles struct {
	unavailable bool
}

func (m markerStyles) GetStyle(semantic string) TextStyle {
	return StyleFunc(func(text string) string {
		return "[" + semantic + "]" + text + "[/" + semantic + "]"
	})
}

func (m markerStyles) IsAvailable() bool { return !m.unavailable }

func TestPrinter_PlainStatusLines(t *testing.T) {
	buffer := NewCaptureBuffer()
	printer := NewPrinter(WithWriter(buffer), Plain())

	printer.Println("Commands")
	printer.Info("Logged out.")
	printer.Success("Conversation deleted.")
	printer.Warning("Session expired. Please log in again.")
	printer.Error("invalid credentials")
	printer.Muted("(no reply)")

	assert.Equal(t, []string{
		"Commands",
		"ℹ Logged out.",
		"✓ Conversation deleted.",
		"⚠ Session expired. Please log in again.",
		"✗ invalid credentials",
		"(no reply)",
	}, buffer.Lines())
	assert.False(t, printer.Styled())
}

func TestPrinter_WithStyles(t *testing.T) {
	buffer := NewCaptureBuffer()
	printer := NewPrinter(WithWriter(buffer), WithStyles(markerStyles{}))

	printer.Success("Logged in")

	assert.Equal(t, "[success]Logged in[/success]\n", buffer.String())
	assert.True(t, printer.Styled())
	assert.IsType(t, markerStyles{}, printer.StyleProvider())
}

func TestPrinter_UnavailableStylesFallBackToPlain(t *testing.T) {
	buffer := NewCaptureBuffer()
	printer := NewPrinter(WithWriter(buffer), WithStyles(markerStyles{unavailable: true}))

	printer.Error("nope")

	assert.Equal(t, "✗ nope\n", buffer.String())
	assert.IsType(t, PlainStyles{}, printer.StyleProvider())
}

func TestPrinter_PlainOverridesStyles(t *testing.T) {
	buffer := NewCaptureBuffer()
	printer := NewPrinter(WithWriter(buffer), WithStyles(markerStyles{}), Plain())

	printer.Warning("careful")
	assert.Equal(t, "⚠ careful\n", buffer.String())
}

func TestPrinter_BlockAndSilent(t *testing.T) {
	buffer := NewCaptureBuffer()
	printer := NewPrinter(WithWriter(buffer), Plain())
	printer.Block("You\n  hi")
	printer.Block("MediWise\n  hello\n")
	assert.Equal(t, "You\n  hi\nMediWise\n  hello\n", buffer.String())

	quiet := NewCaptureBuffer()
	silent := NewPrinter(WithWriter(quiet), Silent())
	silent.Info("hidden")
	silent.Block("hidden")
	assert.Empty(t, quiet.String())
	assert.Nil(t, quiet.Lines())
}

func TestPrinter_ConcurrentWrites(t *testing.T) {
	buffer := NewCaptureBuffer()
	printer := NewPrinter(WithWriter(buffer), Plain())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			printer.Muted("x")
		}()
	}
	wg.Wait()
	assert.Len(t, buffer.Lines(), 20)
}

func TestFormatRelativeTime(t *testing.T) {
	now := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC) // Monday

	tests := []struct {
		name     string
		when     time.Time
		expected string
	}{
		{"zero", time.Time{}, ""},
		{"minutes ago", now.Add(-10 * time.Minute), "2:50 PM"},
		{"this morning", time.Date(2025, 3, 10, 9, 5, 0, 0, time.UTC), "9:05 AM"},
		{"23 hours ago", now.Add(-23 * time.Hour), "4:00 PM"},
		{"30 hours ago", now.Add(-30 * time.Hour), "Yesterday"},
		{"three days ago", now.Add(-72 * time.Hour), "Fri"},
		{"six days ago", now.Add(-6 * 24 * time.Hour), "Tue"},
		{"two weeks ago", now.Add(-14 * 24 * time.Hour), "Feb 24"},
		{"future", now.Add(time.Hour), "4:00 PM"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatRelativeTime(tt.when, now))
		})
	}
}

func TestFormatRelativeTime_UsesNowLocation(t *testing.T) {
	zone := time.FixedZone("UTC+2", 2*60*60)
	now := time.Date(2025, 3, 10, 15, 0, 0, 0, zone)
	when := time.Date(2025, 3, 10, 12, 30, 0, 0, time.UTC)

	assert.Equal(t, "2:30 PM", FormatRelativeTime(when, now))
}

func TestRenderTranscript_EmptyShowsWelcome(t *testing.T) {
	out := RenderTranscript(nil, nil, nil)
	assert.Contains(t, out, WelcomeTitle)
	assert.Contains(t, out, "medications, side effects, dosages")
}

func TestRenderTranscript_Roles(t *testing.T) {
	messages := []chattypes.Message{
		{Role: chattypes.RoleUser, Content: "Tell me about Xarelto"},
		{Role: chattypes.RoleAssistant, Content: "Xarelto is an anticoagulant."},
		{Role: chattypes.RoleError, Content: "Sorry, there was an error"},
	}

	out := RenderTranscript(messages, nil, nil)

	assert.Equal(t, strings.Join([]string{
		"You",
		"  Tell me about Xarelto",
		"",
		"MediWise",
		"  Xarelto is an anticoagulant.",
		"",
		"✗ Error",
		"  Sorry, there was an error",
	}, "\n"), out)
}

func TestRenderTranscript_StylesByRole(t *testing.T) {
	messages := []chattypes.Message{
		{Role: chattypes.RoleUser, Content: "hi"},
		{Role: chattypes.RoleAssistant, Content: "hello"},
	}

	out := RenderTranscript(messages, markerStyles{}, nil)
	assert.Contains(t, out, "[user]You[/user]")
	assert.Contains(t, out, "[assistant]MediWise[/assistant]")
}

func TestRenderTranscript_Markdown(t *testing.T) {
	messages := []chattypes.Message{
		{Role: chattypes.RoleUser, Content: "**not rendered**"},
		{Role: chattypes.RoleAssistant, Content: "**bold**"},
	}
	var rendered []string
	markdown := MarkdownFunc(func(md string) (string, error) {
		rendered = append(rendered, md)
		return "RENDERED(" + md + ")\n\n", nil
	})

	out := RenderTranscript(messages, nil, markdown)

	assert.Equal(t, []string{"**bold**"}, rendered, "only assistant replies are rendered")
	assert.Contains(t, out, "MediWise\nRENDERED(**bold**)")
	assert.False(t, strings.HasSuffix(out, "\n"))
}

func TestRenderTranscript_MarkdownFailureFallsBack(t *testing.T) {
	messages := []chattypes.Message{{Role: chattypes.RoleAssistant, Content: "plain reply"}}
	markdown := MarkdownFunc(func(string) (string, error) { return "", errors.New("boom") })

	assert.Equal(t, "MediWise\n  plain reply", RenderTranscript(messages, nil, markdown))
}

func TestRenderConversationList(t *testing.T) {
	now := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	conversations := []chattypes.ConversationSummary{
		{ID: "c2", Title: "Warfarin", Preview: "Does warfarin interact with aspirin?", UpdatedAt: chattypes.NewTimestamp(now.Add(-time.Hour))},
		{ID: "c1", Title: "Xarelto", UpdatedAt: chattypes.NewTimestamp(now.Add(-30 * time.Hour))},
		{ID: "c0", Title: ""},
	}

	out := RenderConversationList(conversations, "c1", func(id string) bool { return id == "c2" }, now, nil)

	lines := strings.Split(out, "\n")
	require.GreaterOrEqual(t, len(lines), 4)
	assert.Contains(t, lines[0], "Warfarin  c2 · 2:00 PM ⚠ (deleting)")
	assert.Contains(t, lines[1], "Does warfarin interact with aspirin?")
	assert.Contains(t, lines[2], "Xarelto *  c1 · Yesterday")
	assert.Contains(t, lines[3], "Untitled  c0")

	assert.Less(t, strings.Index(out, "Warfarin"), strings.Index(out, "Xarelto"), "backend order is kept")
}

func TestRenderConversationList_Empty(t *testing.T) {
	assert.Equal(t, NoConversationsText, RenderConversationList(nil, "", nil, time.Now(), nil))
}

func TestConversationAt(t *testing.T) {
	conversations := []chattypes.ConversationSummary{{ID: "c2"}, {ID: "c1"}}

	tests := []struct {
		ref      string
		expected string
		found    bool
	}{
		{"1", "c2", true},
		{"2", "c1", true},
		{" c1 ", "c1", true},
		{"3", "", false},
		{"0", "", false},
		{"c9", "", false},
	}
	for _, tt := range tests {
		id, found := ConversationAt(conversations, tt.ref)
		assert.Equal(t, tt.expected, id, tt.ref)
		assert.Equal(t, tt.found, found, tt.ref)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "one two", truncate("one\n  two", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
