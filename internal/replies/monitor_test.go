package replies

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"peekr-automation/internal/lead"
)

type fakeSession struct {
	unseen    []uint32
	envelopes map[uint32][2]string // id -> sender, subject
	bodies    map[uint32]string

	seen     []uint32
	fetchErr error
	closed   bool
}

func (s *fakeSession) SearchUnseen() ([]uint32, error) { return s.unseen, nil }

func (s *fakeSession) FetchEnvelope(id uint32) (string, string, error) {
	env := s.envelopes[id]
	return env[0], env[1], nil
}

func (s *fakeSession) FetchBody(id uint32) (string, error) {
	if s.fetchErr != nil {
		return "", s.fetchErr
	}
	return s.bodies[id], nil
}

func (s *fakeSession) MarkSeen(id uint32) error {
	s.seen = append(s.seen, id)
	return nil
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

type fakeDialer struct {
	session *fakeSession
	err     error
}

func (d *fakeDialer) Dial() (MailboxSession, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.session, nil
}

type fakeLeadStore struct {
	leads   []lead.Lead
	updates map[int]map[lead.Column]string
}

func (s *fakeLeadStore) LoadLeads(context.Context) ([]lead.Lead, error) {
	return s.leads, nil
}

func (s *fakeLeadStore) SetCell(_ context.Context, row int, col lead.Column, value string) error {
	if s.updates == nil {
		s.updates = make(map[int]map[lead.Column]string)
	}
	if s.updates[row] == nil {
		s.updates[row] = make(map[lead.Column]string)
	}
	s.updates[row][col] = value
	return nil
}

type fakeReplySender struct {
	sent    []sentMail
	sendErr error
}

type sentMail struct{ to, subject, body string }

func (s *fakeReplySender) SendHTML(to, subject, body string) error {
	if s.sendErr != nil {
		return s.sendErr
	}
	s.sent = append(s.sent, sentMail{to, subject, body})
	return nil
}

type fakeClassifier struct {
	classification string
	reply          string
	classifyErr    error
}

func (c *fakeClassifier) Classify(context.Context, string) (string, error) {
	return c.classification, c.classifyErr
}

func (c *fakeClassifier) ReplyBody(context.Context, string, string) (string, error) {
	return c.reply, nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func testMonitor(dialer MailboxDialer, store LeadStore, gen Classifier, sender MailSender) *Monitor {
	m := NewMonitor(dialer, store, gen, sender, Options{
		Host:           "imap.example.com",
		PollInterval:   time.Millisecond,
		ReportInterval: time.Hour,
		MinWorkers:     2,
		MaxWorkers:     5,
		LeadsPerWorker: 50,
		QueueSize:      10,
		Location:       time.UTC,
	}, quietLogger())
	m.lookupHost = func(string) ([]string, error) { return []string{"192.0.2.1"}, nil }
	return m
}

func TestPollErrorSleepGrowsAndCaps(t *testing.T) {
	assert.Equal(t, 12*time.Second, pollErrorSleep(1))
	assert.Equal(t, 20*time.Second, pollErrorSleep(5))
	assert.Equal(t, 60*time.Second, pollErrorSleep(25))
	assert.Equal(t, 60*time.Second, pollErrorSleep(1000), "sleep must stay capped")
}

func TestWorkerCountClamps(t *testing.T) {
	assert.Equal(t, 2, workerCount(0, 50, 2, 5), "no addresses still gets the minimum")
	assert.Equal(t, 2, workerCount(99, 50, 2, 5))
	assert.Equal(t, 3, workerCount(150, 50, 2, 5))
	assert.Equal(t, 5, workerCount(10000, 50, 2, 5), "pool never exceeds the maximum")
	assert.Equal(t, 2, workerCount(100, 0, 2, 5), "zero divisor must not panic")
}

func TestPollOnceQueuesOnlyKnownSenders(t *testing.T) {
	session := &fakeSession{
		unseen: []uint32{1, 2},
		envelopes: map[uint32][2]string{
			1: {"jane.doe@acme.example", "Re: outreach"},
			2: {"stranger@elsewhere.example", "spam"},
		},
	}
	store := &fakeLeadStore{leads: []lead.Lead{{Row: 2, ValidEmail: "Jane.Doe@acme.example"}}}
	m := testMonitor(&fakeDialer{session: session}, store, &fakeClassifier{}, &fakeReplySender{})
	require.NoError(t, m.reloadValidAddresses(context.Background()))

	queued, err := m.pollOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, queued)

	env := <-m.queue
	assert.Equal(t, uint32(1), env.ID)
	assert.Equal(t, "jane.doe@acme.example", env.Sender)
	assert.True(t, session.closed)
}

func TestPollOnceSkipsCycleWhenDNSFails(t *testing.T) {
	m := testMonitor(&fakeDialer{err: errors.New("should not dial")}, &fakeLeadStore{}, &fakeClassifier{}, &fakeReplySender{})
	m.lookupHost = func(string) ([]string, error) { return nil, errors.New("no such host") }

	queued, err := m.pollOnce(context.Background())
	assert.NoError(t, err, "a DNS failure is an offline signal, not a poll error")
	assert.Zero(t, queued)
}

func TestPollOnceReportsDialFailure(t *testing.T) {
	m := testMonitor(&fakeDialer{err: errors.New("connection refused")}, &fakeLeadStore{}, &fakeClassifier{}, &fakeReplySender{})

	_, err := m.pollOnce(context.Background())
	assert.Error(t, err)
}

func TestProcessAnswersAndRecordsReply(t *testing.T) {
	session := &fakeSession{bodies: map[uint32]string{7: "We are not interested, please stop."}}
	store := &fakeLeadStore{leads: []lead.Lead{{Row: 4, ValidEmail: "jane.doe@acme.example"}}}
	sender := &fakeReplySender{}
	gen := &fakeClassifier{classification: lead.ClassNotInterested, reply: "<p>Understood, thank you.</p>"}
	m := testMonitor(&fakeDialer{session: session}, store, gen, sender)

	m.process(context.Background(), Envelope{ID: 7, Sender: "Jane.Doe@acme.example", Subject: "outreach"})

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "Re: outreach", sender.sent[0].subject)
	assert.Equal(t, "<p>Understood, thank you.</p>", sender.sent[0].body)

	row := store.updates[4]
	require.NotNil(t, row, "the matching lead row must be updated")
	assert.Equal(t, lead.MarkYes, row[lead.ColMailReceived])
	assert.Equal(t, lead.MarkYes, row[lead.ColMailReplySent])
	assert.Equal(t, lead.ClassNotInterested, row[lead.ColReplyReceived])
	assert.Equal(t, "We are not interested, please stop.", row[lead.ColReplyMessage])

	assert.Equal(t, []uint32{7}, session.seen, "message is marked read only after the answer went out")
}

func TestProcessLeavesMessageUnreadOnSendFailure(t *testing.T) {
	session := &fakeSession{bodies: map[uint32]string{7: "hello"}}
	store := &fakeLeadStore{leads: []lead.Lead{{Row: 4, ValidEmail: "jane.doe@acme.example"}}}
	sender := &fakeReplySender{sendErr: errors.New("smtp down")}
	gen := &fakeClassifier{classification: lead.ClassInterested, reply: "hi"}
	m := testMonitor(&fakeDialer{session: session}, store, gen, sender)

	m.process(context.Background(), Envelope{ID: 7, Sender: "jane.doe@acme.example"})

	assert.Empty(t, session.seen)
	assert.Empty(t, store.updates)
}

func TestProcessLeavesMessageUnreadOnClassificationFailure(t *testing.T) {
	session := &fakeSession{bodies: map[uint32]string{7: "hello"}}
	gen := &fakeClassifier{classifyErr: errors.New("model unavailable")}
	sender := &fakeReplySender{}
	m := testMonitor(&fakeDialer{session: session}, &fakeLeadStore{}, gen, sender)

	m.process(context.Background(), Envelope{ID: 7, Sender: "jane.doe@acme.example"})

	assert.Empty(t, session.seen)
	assert.Empty(t, sender.sent)
}

func TestProcessMarksEmptyMessageRead(t *testing.T) {
	session := &fakeSession{bodies: map[uint32]string{7: "   \n  "}}
	sender := &fakeReplySender{}
	m := testMonitor(&fakeDialer{session: session}, &fakeLeadStore{}, &fakeClassifier{}, sender)

	m.process(context.Background(), Envelope{ID: 7, Sender: "jane.doe@acme.example"})

	assert.Equal(t, []uint32{7}, session.seen)
	assert.Empty(t, sender.sent)
}

func TestProcessTruncatesLongReplies(t *testing.T) {
	long := make([]rune, replyTruncateLimit+200)
	for i := range long {
		long[i] = 'x'
	}
	session := &fakeSession{bodies: map[uint32]string{7: string(long)}}
	store := &fakeLeadStore{leads: []lead.Lead{{Row: 4, ValidEmail: "jane.doe@acme.example"}}}
	gen := &fakeClassifier{classification: lead.ClassInterested, reply: "hi"}
	m := testMonitor(&fakeDialer{session: session}, store, gen, &fakeReplySender{})

	m.process(context.Background(), Envelope{ID: 7, Sender: "jane.doe@acme.example"})

	stored := store.updates[4][lead.ColReplyMessage]
	assert.Len(t, []rune(stored), replyTruncateLimit)
}

func TestProcessDefaultSubjectWhenMissing(t *testing.T) {
	session := &fakeSession{bodies: map[uint32]string{7: "hello"}}
	store := &fakeLeadStore{leads: []lead.Lead{{Row: 4, ValidEmail: "jane.doe@acme.example"}}}
	gen := &fakeClassifier{classification: lead.ClassInterested, reply: "hi"}
	sender := &fakeReplySender{}
	m := testMonitor(&fakeDialer{session: session}, store, gen, sender)

	m.process(context.Background(), Envelope{ID: 7, Sender: "jane.doe@acme.example"})

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "Thank you for your response", sender.sent[0].subject)
}

func TestNormalizeAddr(t *testing.T) {
	assert.Equal(t, "jane@acme.example", normalizeAddr("  Jane@Acme.Example "))
	assert.Equal(t, "", normalizeAddr("not-an-address"))
	assert.Equal(t, "", normalizeAddr(""))
}

func TestStartAndStop(t *testing.T) {
	session := &fakeSession{}
	store := &fakeLeadStore{leads: []lead.Lead{{Row: 2, ValidEmail: "jane.doe@acme.example"}}}
	m := testMonitor(&fakeDialer{session: session}, store, &fakeClassifier{}, &fakeReplySender{})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, m.Start(ctx))
	assert.Equal(t, 2, m.workers)

	time.Sleep(10 * time.Millisecond)
	cancel()
	m.Stop()

	snap := m.Snapshot()
	assert.Equal(t, 2, snap.Workers)
	assert.Equal(t, 1, snap.KnownAddresses)
}
