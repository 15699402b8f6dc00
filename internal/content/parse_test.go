package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDraftStructuredJSON(t *testing.T) {
	raw := "Here is the email:\n```json\n" +
		`{"subject": "Grow your clinic", "email": "<p>Dear team,</p>", "solutions": ["A", "B", "C"]}` +
		"\n```"

	d, kind := ParseDraft(raw)

	assert.Equal(t, ParsedStructured, kind)
	assert.Equal(t, "Grow your clinic", d.Subject)
	assert.Equal(t, "<p>Dear team,</p>", d.Body)
	assert.Equal(t, []string{"A", "B", "C"}, d.Solutions)
}

func TestParseDraftJSONWithoutSolutionsGetsDefaults(t *testing.T) {
	d, kind := ParseDraft(`{"subject": "Hi", "email": "Body text"}`)

	assert.Equal(t, ParsedStructured, kind)
	assert.Equal(t, DefaultSolutions, d.Solutions)
}

func TestParseDraftLinePrefixes(t *testing.T) {
	raw := "SUBJECT: Quick question\nBODY: First paragraph.\nSecond paragraph.\nSOLUTIONS: One | Two | Three"

	d, kind := ParseDraft(raw)

	assert.Equal(t, ParsedFreeform, kind)
	assert.Equal(t, "Quick question", d.Subject)
	assert.Equal(t, "First paragraph. Second paragraph.", d.Body)
	assert.Equal(t, []string{"One", "Two", "Three"}, d.Solutions)
}

func TestParseDraftHeuristicLetter(t *testing.T) {
	raw := "A note for your team\nDear Acme,\nwe noticed your listing."

	d, kind := ParseDraft(raw)

	assert.Equal(t, ParsedFreeform, kind)
	assert.Equal(t, "A note for your team", d.Subject)
	assert.Contains(t, d.Body, "Dear Acme,")
	assert.Equal(t, DefaultSolutions, d.Solutions)
}

func TestParseDraftHeuristicSingleBlock(t *testing.T) {
	raw := "Hello Acme team, we would love to connect."

	d, kind := ParseDraft(raw)

	assert.Equal(t, ParsedFreeform, kind)
	assert.Equal(t, "", d.Subject)
	assert.Equal(t, raw, d.Body)
}

func TestParseDraftNothingUsable(t *testing.T) {
	d, kind := ParseDraft("I cannot help with that request.")

	assert.Equal(t, ParsedNone, kind)
	assert.Equal(t, DefaultSolutions, d.Solutions)
}

func TestParseDraftMalformedJSONFallsThrough(t *testing.T) {
	// broken JSON but a recognizable letter underneath
	raw := "{not valid json}\nDear reader,\nhello there."

	_, kind := ParseDraft(raw)
	assert.Equal(t, ParsedFreeform, kind)
}
