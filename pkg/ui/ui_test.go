package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeSender struct {
	sent [][2]string
	err  error
}

func (f *fakeSender) Send(title, message string) error {
	f.sent = append(f.sent, [2]string{title, message})
	return f.err
}

func TestNotifierRespectsPreferences(t *testing.T) {
	sender := &fakeSender{}
	n := NewNotifierWithSender(sender, true, false)

	n.SendSuccess("Export complete", "37 posts")
	n.SendError("Export failed", "apify error 500")
	assert.Equal(t, [][2]string{{"Export complete", "37 posts"}}, sender.sent)

	sender.err = errors.New("no notification daemon")
	n = NewNotifierWithSender(sender, false, true)
	n.SendError("Export failed", "boom")
	assert.Len(t, sender.sent, 2)
}

func TestDisabledNotifierHasNoSender(t *testing.T) {
	n := NewNotifier(false, true, true)
	assert.Nil(t, n.sender)
	n.SendSuccess("a", "b")
}

func TestQuoting(t *testing.T) {
	assert.Equal(t, `"say \"hi\" \\ bye"`, appleQuote(`say "hi" \ bye`))
	assert.Equal(t, "a &amp; b &lt;c&gt;", xmlEscape("a & b <c>"))
}

func TestProgressDisplay(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressDisplay(&buf, false)

	p.Stage(StageResolve, "janedoe")
	p.Stage(StageFetch, "janedoe")
	p.FetchPass(1, 100, 42)
	p.LogWarning("could not write %s", "summary")

	out := buf.String()
	assert.Contains(t, out, "janedoe")
	assert.Contains(t, out, "Fetching")
	assert.Contains(t, out, "pass 1: requested up to 100, received 42")
	assert.Contains(t, out, "could not write summary")
}

func TestPrintOutcome(t *testing.T) {
	var buf bytes.Buffer
	old := Out
	Out = &buf
	defer func() { Out = old }()

	PrintOutcome(Outcome{
		Message:  "Retrieved 5 total posts from Apify; 2 within selected range",
		Artifact: "out/linkedin_posts_2025-01-01_to_2025-01-31.csv",
		Preview:  `[{"url": "a"}]`,
		Total:    5,
		InRange:  2,
	})

	out := buf.String()
	assert.Contains(t, out, "Retrieved 5 total posts from Apify; 2 within selected range")
	assert.Contains(t, out, "linkedin_posts_2025-01-01_to_2025-01-31.csv")
	assert.True(t, strings.Contains(out, `"url": "a"`))

	buf.Reset()
	PrintOutcome(Outcome{Message: "Retrieved 0 total posts from Apify; 0 within selected range", Preview: "[]"})
	assert.NotContains(t, buf.String(), "Preview")
}
