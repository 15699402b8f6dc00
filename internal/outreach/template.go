package outreach

import (
	"os"
	"strings"

	"peekr-automation/internal/content"
)

// fallbackTemplate keeps outreach working when the operator's template file
// is missing.
const fallbackTemplate = `<html><body>
<h2>{{Subject}}</h2>
<p>Dear {{Title}},</p>
<div>{{body}}</div>
<ul>
<li>{{solution1}}</li>
<li>{{solution2}}</li>
<li>{{solution3}}</li>
</ul>
<p>Best regards,<br>The Peekr Team</p>
</body></html>`

// RenderTemplate merges a draft into the outreach HTML template. Templates
// use literal {{placeholder}} markers, the syntax the operator-maintained
// template files already carry.
func RenderTemplate(templatePath string, d content.Draft, title string) string {
	tmpl := fallbackTemplate
	if templatePath != "" {
		if data, err := os.ReadFile(templatePath); err == nil {
			tmpl = string(data)
		}
	}

	solution := func(i int) string {
		if i < len(d.Solutions) {
			return d.Solutions[i]
		}
		return content.DefaultSolutions[i%len(content.DefaultSolutions)]
	}

	replacer := strings.NewReplacer(
		"{{Subject}}", d.Subject,
		"{{Title}}", title,
		"{{body}}", d.Body,
		"{{solution1}}", solution(0),
		"{{solution2}}", solution(1),
		"{{solution3}}", solution(2),
	)
	return replacer.Replace(tmpl)
}
