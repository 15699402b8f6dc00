package outreach

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"peekr-automation/internal/content"
)

func TestRenderTemplateMergesDraft(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "outreach.html")
	tmpl := "<h1>{{Subject}}</h1><p>{{Title}}</p>{{body}}<ul><li>{{solution1}}</li><li>{{solution2}}</li><li>{{solution3}}</li></ul>"
	require.NoError(t, os.WriteFile(path, []byte(tmpl), 0o644))

	d := content.Draft{
		Subject:   "Boost your bookings",
		Body:      "<p>We help clinics fill their calendars.</p>",
		Solutions: []string{"Automated reminders", "Online booking", "Reviews"},
	}
	got := RenderTemplate(path, d, "Smile Dental")

	assert.Contains(t, got, "<h1>Boost your bookings</h1>")
	assert.Contains(t, got, "<p>Smile Dental</p>")
	assert.Contains(t, got, "We help clinics fill their calendars")
	assert.Contains(t, got, "<li>Automated reminders</li>")
	assert.Contains(t, got, "<li>Reviews</li>")
	assert.NotContains(t, got, "{{")
}

func TestRenderTemplateFallsBackWhenFileMissing(t *testing.T) {
	d := content.Draft{Subject: "Hello", Body: "Body", Solutions: content.DefaultSolutions}
	got := RenderTemplate("/nonexistent/template.html", d, "Acme")

	assert.Contains(t, got, "Hello")
	assert.Contains(t, got, "Dear Acme")
	assert.Contains(t, got, "The Peekr Team")
}

func TestRenderTemplatePadsShortSolutionList(t *testing.T) {
	d := content.Draft{Subject: "S", Body: "B", Solutions: []string{"Only one"}}
	got := RenderTemplate("", d, "Acme")

	assert.Contains(t, got, "Only one")
	assert.Contains(t, got, content.DefaultSolutions[1])
	assert.Contains(t, got, content.DefaultSolutions[2])
}
