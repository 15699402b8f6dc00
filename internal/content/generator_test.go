package content

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"peekr-automation/internal/lead"
)

type fakeCompleter struct {
	response string
	err      error

	lastSystem string
	lastUser   string
}

func (c *fakeCompleter) Complete(_ context.Context, system, user string, _ int, _ float64) (string, error) {
	c.lastSystem = system
	c.lastUser = user
	return c.response, c.err
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func newTestGenerator(llm *fakeCompleter) *Generator {
	return NewGenerator(llm, NewPrompts(""), quietLogger())
}

func TestOutreachDraftSubstitutesLeadFields(t *testing.T) {
	llm := &fakeCompleter{response: `{"subject": "Hi", "email": "Body"}`}
	g := newTestGenerator(llm)

	d, err := g.OutreachDraft(context.Background(), "Smile Dental", "Dental Clinic")
	require.NoError(t, err)

	assert.Equal(t, "Hi", d.Subject)
	assert.Contains(t, llm.lastUser, "Smile Dental")
	assert.Contains(t, llm.lastUser, "Dental Clinic")
	assert.NotContains(t, llm.lastUser, "{Title}")
}

func TestOutreachDraftUnparseableResponseIsAnError(t *testing.T) {
	g := newTestGenerator(&fakeCompleter{response: "I cannot do that."})

	_, err := g.OutreachDraft(context.Background(), "Acme", "trading")
	assert.Error(t, err)
}

func TestOutreachDraftPropagatesCompleterError(t *testing.T) {
	g := newTestGenerator(&fakeCompleter{err: errors.New("rate limited")})

	_, err := g.OutreachDraft(context.Background(), "Acme", "trading")
	assert.Error(t, err)
}

func TestClassifyNormalizesLabels(t *testing.T) {
	cases := map[string]string{
		"INTERESTED":                      lead.ClassInterested,
		"  interested  ":                  lead.ClassInterested,
		"The sender is NOT INTERESTED.":   lead.ClassNotInterested,
		"not interested":                  lead.ClassNotInterested,
		"no idea what this message means": lead.ClassNotInterested,
		"":                                lead.ClassNotInterested,
	}

	for raw, want := range cases {
		g := newTestGenerator(&fakeCompleter{response: raw})
		got, err := g.Classify(context.Background(), "some reply")
		require.NoError(t, err)
		assert.Equal(t, want, got, "raw response %q", raw)
	}
}

func TestReplyBodyPicksPromptByClassification(t *testing.T) {
	llm := &fakeCompleter{response: "<p>Great to hear!</p>"}
	g := newTestGenerator(llm)

	out, err := g.ReplyBody(context.Background(), "tell me more", lead.ClassInterested)
	require.NoError(t, err)
	assert.Equal(t, "<p>Great to hear!</p>", out)
	assert.Contains(t, llm.lastUser, "tell me more")
}

func TestPromptsFileOverridesEmbeddedDefault(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "classify.txt"),
		[]byte("Custom classifier prompt: {Message}"), 0o644))

	p := NewPrompts(dir)

	custom, err := p.load(promptClassify)
	require.NoError(t, err)
	assert.Contains(t, custom, "Custom classifier prompt")

	embedded, err := p.load(promptFollowup)
	require.NoError(t, err)
	assert.NotEmpty(t, embedded)
}

func TestRenderEscapesDoubledBraces(t *testing.T) {
	out := render(`Respond with {{"subject": "..."}} for {Title}`, map[string]string{"Title": "Acme"})
	assert.Equal(t, `Respond with {"subject": "..."} for Acme`, out)
}
