// Package imapclient wraps a single short-lived IMAP session. Sessions are
// never shared: the reply monitor's producer and each worker open their own,
// so no cross-goroutine interference on mailbox state (selected folder, read
// cursor) is possible.
package imapclient

import (
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-imap"
	imapcli "github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/mail"
)

// Dialer carries everything needed to open a session.
type Dialer struct {
	Addr     string // host:port
	Username string
	Password string
}

// Dial connects over TLS, authenticates, and selects INBOX.
func (d Dialer) Dial() (*Session, error) {
	c, err := imapcli.DialTLS(d.Addr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", d.Addr, err)
	}

	if err := c.Login(d.Username, d.Password); err != nil {
		_ = c.Logout()
		return nil, fmt.Errorf("imap login failed: %w", err)
	}

	if _, err := c.Select("INBOX", false); err != nil {
		_ = c.Logout()
		return nil, fmt.Errorf("failed to select inbox: %w", err)
	}

	return &Session{c: c}, nil
}

type Session struct {
	c *imapcli.Client
}

// SearchUnseen returns the sequence numbers of all unread messages.
func (s *Session) SearchUnseen() ([]uint32, error) {
	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}
	return s.c.Search(criteria)
}

// FetchEnvelope returns the sender address (lower-cased) and subject of one
// message without downloading its body.
func (s *Session) FetchEnvelope(id uint32) (sender, subject string, err error) {
	msg, err := s.fetchOne(id, []imap.FetchItem{imap.FetchEnvelope})
	if err != nil {
		return "", "", err
	}
	if msg.Envelope == nil || len(msg.Envelope.From) == 0 {
		return "", "", fmt.Errorf("message %d has no envelope sender", id)
	}
	return strings.ToLower(msg.Envelope.From[0].Address()), msg.Envelope.Subject, nil
}

// FetchBody downloads the full message and extracts its plain-text body,
// preferring text/plain parts over text/html.
func (s *Session) FetchBody(id uint32) (string, error) {
	section := &imap.BodySectionName{}
	msg, err := s.fetchOne(id, []imap.FetchItem{section.FetchItem()})
	if err != nil {
		return "", err
	}

	literal := msg.GetBody(section)
	if literal == nil {
		return "", fmt.Errorf("message %d has no body", id)
	}

	raw, err := io.ReadAll(literal)
	if err != nil {
		return "", fmt.Errorf("failed to read message %d: %w", id, err)
	}
	return extractText(raw)
}

// MarkSeen flags the message as read. Until this succeeds the message will
// reappear in the next unseen search, which is what the at-least-once
// processing model relies on.
func (s *Session) MarkSeen(id uint32) error {
	seqset := new(imap.SeqSet)
	seqset.AddNum(id)
	item := imap.FormatFlagsOp(imap.AddFlags, true)
	return s.c.Store(seqset, item, []interface{}{imap.SeenFlag}, nil)
}

func (s *Session) Close() error {
	return s.c.Logout()
}

func (s *Session) fetchOne(id uint32, items []imap.FetchItem) (*imap.Message, error) {
	seqset := new(imap.SeqSet)
	seqset.AddNum(id)

	messages := make(chan *imap.Message, 1)
	done := make(chan error, 1)
	go func() {
		done <- s.c.Fetch(seqset, items, messages)
	}()

	var msg *imap.Message
	for m := range messages {
		msg = m
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("failed to fetch message %d: %w", id, err)
	}
	if msg == nil {
		return nil, fmt.Errorf("message %d not found", id)
	}
	return msg, nil
}

// extractText walks the MIME structure and returns the first text/plain
// part, falling back to the first inline part of any type, then to the raw
// payload for non-MIME messages.
func extractText(raw []byte) (string, error) {
	mr, err := mail.CreateReader(strings.NewReader(string(raw)))
	if err != nil {
		// not MIME at all; keep whatever came after the headers
		if idx := strings.Index(string(raw), "\r\n\r\n"); idx >= 0 {
			return strings.TrimSpace(string(raw[idx+4:])), nil
		}
		return strings.TrimSpace(string(raw)), nil
	}

	var fallback string
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		header, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}

		contentType, _, _ := header.ContentType()
		body, err := io.ReadAll(part.Body)
		if err != nil {
			continue
		}

		if contentType == "text/plain" {
			return strings.TrimSpace(string(body)), nil
		}
		if fallback == "" {
			fallback = string(body)
		}
	}
	return strings.TrimSpace(fallback), nil
}
