package content

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"peekr-automation/internal/lead"
)

// Completer is the generation collaborator: one request/response call
// returning free-form text.
type Completer interface {
	Complete(ctx context.Context, system, user string, maxTokens int, temperature float64) (string, error)
}

const (
	systemWriter     = "You are a professional B2B email writer. Generate compelling email content."
	systemReplier    = "You are a professional B2B email writer. Generate personalized replies in HTML format."
	systemFollowup   = "You are a professional B2B email writer. Generate follow-up emails in HTML format."
	systemClassifier = "You are an AI that classifies email interest levels. Respond with EXACTLY 'INTERESTED' or 'NOT INTERESTED'."
)

// Generator drafts outreach content, classifies replies, and writes answer
// and follow-up bodies using prompt templates plus the completion
// collaborator.
type Generator struct {
	llm     Completer
	prompts *Prompts
	log     *logrus.Entry
}

func NewGenerator(llm Completer, prompts *Prompts, log *logrus.Logger) *Generator {
	return &Generator{
		llm:     llm,
		prompts: prompts,
		log:     log.WithField("component", "content"),
	}
}

// OutreachDraft generates subject, body and solution bullets for the first
// outreach email. An unparseable response is a collaborator failure.
func (g *Generator) OutreachDraft(ctx context.Context, title, category string) (Draft, error) {
	prompt, err := g.prompts.load(promptOutreachDraft)
	if err != nil {
		return Draft{}, err
	}

	raw, err := g.llm.Complete(ctx, systemWriter, render(prompt, map[string]string{
		"Title":    title,
		"Category": category,
	}), 1000, 0.7)
	if err != nil {
		return Draft{}, fmt.Errorf("draft generation failed: %w", err)
	}

	draft, kind := ParseDraft(raw)
	if kind == ParsedNone {
		return Draft{}, fmt.Errorf("unparseable draft response for %q", title)
	}
	if kind == ParsedFreeform {
		g.log.Debugf("structured parse failed for %q, used freeform fallback", title)
	}
	return draft, nil
}

// Classify reduces a reply body to one of the two intent labels. Anything
// that does not clearly contain "INTERESTED" maps to NOT INTERESTED.
func (g *Generator) Classify(ctx context.Context, replyBody string) (string, error) {
	prompt, err := g.prompts.load(promptClassify)
	if err != nil {
		return "", err
	}

	raw, err := g.llm.Complete(ctx, systemClassifier, render(prompt, map[string]string{
		"Message": replyBody,
	}), 10, 0.1)
	if err != nil {
		return "", fmt.Errorf("classification failed: %w", err)
	}

	label := strings.ToUpper(strings.TrimSpace(raw))
	if strings.Contains(label, "NOT INTERESTED") || !strings.Contains(label, "INTERESTED") {
		return lead.ClassNotInterested, nil
	}
	return lead.ClassInterested, nil
}

// ReplyBody drafts an HTML answer matching the classification.
func (g *Generator) ReplyBody(ctx context.Context, replyBody, classification string) (string, error) {
	name := promptReplyNotInterested
	if classification == lead.ClassInterested {
		name = promptReplyInterested
	}

	prompt, err := g.prompts.load(name)
	if err != nil {
		return "", err
	}

	out, err := g.llm.Complete(ctx, systemReplier, render(prompt, map[string]string{
		"Message": replyBody,
	}), 1000, 0.7)
	if err != nil {
		return "", fmt.Errorf("reply generation failed: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// FollowupBody drafts an HTML follow-up for a non-responding lead.
func (g *Generator) FollowupBody(ctx context.Context, title, category, website string) (string, error) {
	prompt, err := g.prompts.load(promptFollowup)
	if err != nil {
		return "", err
	}

	out, err := g.llm.Complete(ctx, systemFollowup, render(prompt, map[string]string{
		"Title":    title,
		"Category": category,
		"Website":  website,
	}), 800, 0.7)
	if err != nil {
		return "", fmt.Errorf("follow-up generation failed: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// NotInterestedFollowupBody drafts a follow-up to a lead that previously
// declined, referencing how many nudges came before.
func (g *Generator) NotInterestedFollowupBody(ctx context.Context, followupNumber int) (string, error) {
	prompt, err := g.prompts.load(promptReplyNotInterested)
	if err != nil {
		return "", err
	}

	context := fmt.Sprintf("Previous response: Not interested. Follow-up #%d", followupNumber)
	out, err := g.llm.Complete(ctx, systemFollowup, render(prompt, map[string]string{
		"Message": context,
	}), 800, 0.7)
	if err != nil {
		return "", fmt.Errorf("follow-up generation failed: %w", err)
	}
	return strings.TrimSpace(out), nil
}
