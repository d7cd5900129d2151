package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"skillpath/internal/metrics"
	"skillpath/internal/pgmq"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQueue struct {
	mu      sync.Mutex
	batches [][]*pgmq.Message
	deleted []int64
	sent    map[string][][]byte
	cancel  context.CancelFunc
}

func (f *fakeQueue) ReadWithPoll(ctx context.Context, _ string, _, _, _ int) ([]*pgmq.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.batches) == 0 {
		f.cancel()
		return nil, ctx.Err()
	}
	next := f.batches[0]
	f.batches = f.batches[1:]
	return next, nil
}

func (f *fakeQueue) Delete(_ context.Context, _ string, ids []int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, ids...)
	return nil
}

func (f *fakeQueue) Send(_ context.Context, queue string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sent == nil {
		f.sent = map[string][][]byte{}
	}
	f.sent[queue] = append(f.sent[queue], payload)
	return nil
}

type fakeSender struct {
	failures int
	calls    int
	got      []Message
}

func (s *fakeSender) Send(_ context.Context, msg Message) error {
	s.calls++
	if s.calls <= s.failures {
		return errors.New("smtp unavailable")
	}
	s.got = append(s.got, msg)
	return nil
}

func newTestWorker(t *testing.T, q *fakeQueue, s Sender) (*Worker, *metrics.Collector, *[]time.Duration) {
	t.Helper()
	m := metrics.New()
	w := NewWorker(q, s, WorkerConfig{
		Queue:           "email_queue",
		DeadLetterQueue: "email_queue_dlq",
		PollTimeoutSec:  1,
		MaxMessages:     1,
		MaxRetries:      4,
		BackoffInitial:  time.Second,
		BackoffMax:      3 * time.Second,
	}, zerolog.Nop(), m)
	var sleeps []time.Duration
	w.sleep = func(_ context.Context, d time.Duration) { sleeps = append(sleeps, d) }
	return w, m, &sleeps
}

func payload(t *testing.T, msg Message) []byte {
	t.Helper()
	b, err := json.Marshal(msg)
	require.NoError(t, err)
	return b
}

func TestWorkerDeliversAndDeletes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	msg := PasswordResetMessage("ada@example.com", "ada", "http://localhost:3000/reset-password/abc")
	q := &fakeQueue{cancel: cancel, batches: [][]*pgmq.Message{{{ID: 7, Data: payload(t, msg)}}}}
	s := &fakeSender{}
	w, m, _ := newTestWorker(t, q, s)

	require.NoError(t, w.Run(ctx))

	require.Len(t, s.got, 1)
	assert.Equal(t, "ada@example.com", s.got[0].To)
	assert.Equal(t, []int64{7}, q.deleted)
	assert.Empty(t, q.sent)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EmailsSent.WithLabelValues("sent")))
}

func TestWorkerRetriesWithCappedBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q := &fakeQueue{cancel: cancel, batches: [][]*pgmq.Message{{{ID: 1, Data: payload(t, Message{To: "a@b.c"})}}}}
	s := &fakeSender{failures: 3}
	w, _, sleeps := newTestWorker(t, q, s)

	require.NoError(t, w.Run(ctx))

	assert.Equal(t, 4, s.calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 3 * time.Second}, *sleeps)
	assert.Equal(t, []int64{1}, q.deleted)
	assert.Empty(t, q.sent["email_queue_dlq"])
}

func TestWorkerMovesExhaustedMessageToDLQ(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	data := payload(t, Message{To: "a@b.c"})
	q := &fakeQueue{cancel: cancel, batches: [][]*pgmq.Message{{{ID: 9, Data: data}}}}
	s := &fakeSender{failures: 100}
	w, m, _ := newTestWorker(t, q, s)

	require.NoError(t, w.Run(ctx))

	assert.Equal(t, 4, s.calls)
	require.Len(t, q.sent["email_queue_dlq"], 1)
	assert.JSONEq(t, string(data), string(q.sent["email_queue_dlq"][0]))
	assert.Equal(t, []int64{9}, q.deleted)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EmailsSent.WithLabelValues("failed")))
}

func TestWorkerDropsMalformedPayload(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q := &fakeQueue{cancel: cancel, batches: [][]*pgmq.Message{{{ID: 3, Data: []byte(`{"subject":"no recipient"}`)}}}}
	s := &fakeSender{}
	w, _, _ := newTestWorker(t, q, s)

	require.NoError(t, w.Run(ctx))

	assert.Zero(t, s.calls)
	assert.Equal(t, []int64{3}, q.deleted)
}

func TestPasswordResetMessageEscapesLink(t *testing.T) {
	msg := PasswordResetMessage("a@b.c", "", `http://x/reset-password/"><script>`)
	assert.NotContains(t, msg.HTMLBody, "<script>")
	assert.Contains(t, msg.TextBody, "expires in 1 hour")
	assert.Equal(t, "Password Reset Request", msg.Subject)
}

func TestSendGridSender(t *testing.T) {
	var gotAuth string
	var body map[string]any
	status := http.StatusAccepted
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/mail/send", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))
		w.WriteHeader(status)
	}))
	defer srv.Close()

	s := NewSendGridSender("sg-key", "SkillPath", "no-reply@skillpath.dev")
	s.host = srv.URL

	require.NoError(t, s.Send(context.Background(), Message{To: "ada@example.com", Subject: "hi", TextBody: "t", HTMLBody: "<p>h</p>"}))
	assert.Equal(t, "Bearer sg-key", gotAuth)
	assert.Equal(t, "no-reply@skillpath.dev", body["from"].(map[string]any)["email"])

	status = http.StatusBadRequest
	err := s.Send(context.Background(), Message{To: "ada@example.com", Subject: "hi", TextBody: "t"})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "400"))
}
