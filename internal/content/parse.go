package content

import (
	"encoding/json"
	"strings"
)

// Draft is generated outreach content.
type Draft struct {
	Subject   string
	Body      string
	Solutions []string
}

// ParseKind tags which stage of the parse cascade produced a draft.
type ParseKind int

const (
	// ParsedStructured means the JSON payload parsed cleanly.
	ParsedStructured ParseKind = iota
	// ParsedFreeform means the line-prefix or heuristic fallback was used.
	ParsedFreeform
	// ParsedNone means no usable content was recovered; callers treat this
	// as a collaborator failure and skip the item.
	ParsedNone
)

// DefaultSolutions fills in when generation omits the solutions list.
var DefaultSolutions = []string{"Optimize workflows", "Improve efficiency", "Drive growth"}

type draftJSON struct {
	Subject   string   `json:"subject"`
	Email     string   `json:"email"`
	Solutions []string `json:"solutions"`
}

// ParseDraft recovers a draft from a generation response. The collaborator
// is asked for JSON but does not reliably produce it, so parsing is a
// cascade: embedded JSON object, then SUBJECT:/BODY:/SOLUTIONS: line
// prefixes, then a last-resort heuristic for responses that are just the
// letter itself.
func ParseDraft(raw string) (Draft, ParseKind) {
	raw = strings.TrimSpace(raw)

	if d, ok := parseJSON(raw); ok {
		return d, ParsedStructured
	}
	if d, ok := parseLinePrefixes(raw); ok {
		return d, ParsedFreeform
	}
	if d, ok := parseHeuristic(raw); ok {
		return d, ParsedFreeform
	}
	return Draft{Solutions: DefaultSolutions}, ParsedNone
}

// parseJSON extracts the outermost {...} span, tolerating markdown fences
// around it.
func parseJSON(raw string) (Draft, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return Draft{}, false
	}

	var parsed draftJSON
	if err := json.Unmarshal([]byte(raw[start:end+1]), &parsed); err != nil {
		return Draft{}, false
	}
	if parsed.Subject == "" || parsed.Email == "" {
		return Draft{}, false
	}

	solutions := parsed.Solutions
	if len(solutions) == 0 {
		solutions = DefaultSolutions
	}
	return Draft{Subject: parsed.Subject, Body: parsed.Email, Solutions: solutions}, true
}

func parseLinePrefixes(raw string) (Draft, bool) {
	var subject string
	var bodyLines []string
	solutions := DefaultSolutions
	section := ""

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "SUBJECT:"):
			subject = strings.TrimSpace(strings.TrimPrefix(line, "SUBJECT:"))
			section = "subject"
		case strings.HasPrefix(line, "BODY:"):
			if rest := strings.TrimSpace(strings.TrimPrefix(line, "BODY:")); rest != "" {
				bodyLines = append(bodyLines, rest)
			}
			section = "body"
		case strings.HasPrefix(line, "SOLUTIONS:"):
			rest := strings.TrimSpace(strings.TrimPrefix(line, "SOLUTIONS:"))
			if strings.Contains(rest, "|") {
				solutions = nil
				for _, s := range strings.Split(rest, "|") {
					solutions = append(solutions, strings.TrimSpace(s))
				}
			}
			section = "solutions"
		case section == "body" && line != "":
			bodyLines = append(bodyLines, line)
		}
	}

	if subject == "" || len(bodyLines) == 0 {
		return Draft{}, false
	}
	return Draft{Subject: subject, Body: strings.Join(bodyLines, " "), Solutions: solutions}, true
}

// parseHeuristic accepts responses that look like a bare letter: the first
// short line becomes the subject, the rest the body.
func parseHeuristic(raw string) (Draft, bool) {
	if raw == "" {
		return Draft{}, false
	}
	if !strings.Contains(raw, "Dear") && !strings.Contains(raw, "Hello") && !strings.Contains(raw, "<p>") {
		return Draft{}, false
	}

	lines := strings.SplitN(raw, "\n", 2)
	first := strings.TrimSpace(lines[0])
	if len(lines) == 2 && len(first) < 100 {
		body := strings.TrimSpace(lines[1])
		if body != "" {
			return Draft{Subject: first, Body: body, Solutions: DefaultSolutions}, true
		}
	}
	return Draft{Subject: "", Body: raw, Solutions: DefaultSolutions}, true
}
