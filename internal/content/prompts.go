package content

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

//go:embed defaults/*.txt
var defaultPrompts embed.FS

// Prompt template names, resolved to <name>.txt either in the operator's
// prompts directory or in the embedded defaults.
const (
	promptOutreachDraft      = "outreach_draft"
	promptClassify           = "classify"
	promptReplyInterested    = "reply_interested"
	promptReplyNotInterested = "reply_not_interested"
	promptFollowup           = "followup"
)

// Prompts loads prompt templates. Operators can override any template by
// dropping a file into the prompts directory; the embedded defaults back
// everything else.
type Prompts struct {
	dir string
}

func NewPrompts(dir string) *Prompts {
	return &Prompts{dir: dir}
}

func (p *Prompts) load(name string) (string, error) {
	if p.dir != "" {
		path := filepath.Join(p.dir, name+".txt")
		if data, err := os.ReadFile(path); err == nil {
			return string(data), nil
		}
	}

	data, err := defaultPrompts.ReadFile("defaults/" + name + ".txt")
	if err != nil {
		return "", fmt.Errorf("prompt template %q not found: %w", name, err)
	}
	return string(data), nil
}

// render substitutes {Key} placeholders. Templates use doubled braces to
// emit literal ones, so substitution happens before unescaping.
func render(template string, vars map[string]string) string {
	for key, value := range vars {
		template = strings.ReplaceAll(template, "{"+key+"}", value)
	}
	template = strings.ReplaceAll(template, "{{", "{")
	template = strings.ReplaceAll(template, "}}", "}")
	return template
}
