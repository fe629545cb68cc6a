package mailer_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/frahmantamala/insight-pulse/internal/core/events"
	"github.com/frahmantamala/insight-pulse/internal/mailer"
	"github.com/frahmantamala/insight-pulse/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestMailer(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Mailer Suite")
}

type recordingMailer struct {
	mu    sync.Mutex
	sent  []mailer.Message
	err   error
	block chan struct{}
}

func (r *recordingMailer) Send(ctx context.Context, msg mailer.Message) error {
	if r.block != nil {
		select {
		case <-r.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

func (r *recordingMailer) Sent() []mailer.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]mailer.Message(nil), r.sent...)
}

func alertEvent(email string) *events.MailAlertRequestedEvent {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	return events.NewMailAlertRequestedEvent("alice", "Alice", email, "HR", []string{"Finance", "IT"}, start, end)
}

var _ = Describe("AlertMessage", func() {
	It("lists the departments and the period", func() {
		msg := mailer.AlertMessage(alertEvent("alice@example.com"))

		Expect(msg.ToEmail).To(Equal("alice@example.com"))
		Expect(msg.ToName).To(Equal("Alice"))
		Expect(msg.Text).To(ContainSubstring("you can now survey: Finance, IT."))
		Expect(msg.Text).To(ContainSubstring("Survey period: 2024-03-01 to 2024-03-31."))
		Expect(msg.HTML).To(ContainSubstring("<strong>HR</strong>"))
	})

	It("falls back to the username when the name is empty", func() {
		e := alertEvent("alice@example.com")
		e.Name = ""
		Expect(mailer.AlertMessage(e).ToName).To(Equal("alice"))
	})
})

var _ = Describe("Dispatcher", func() {
	var (
		sink       *recordingMailer
		dispatcher *mailer.Dispatcher
	)

	BeforeEach(func() {
		sink = &recordingMailer{}
	})

	AfterEach(func() {
		if dispatcher != nil {
			dispatcher.Shutdown()
		}
	})

	It("delivers mail alerts published on the bus", func() {
		dispatcher = mailer.NewDispatcher(sink, mailer.DispatcherConfig{MaxWorkers: 2, QueueSize: 10}, logger.Discard())
		bus := events.NewEventBus(logger.Discard())
		dispatcher.Register(bus)

		Expect(bus.Publish(context.Background(), alertEvent("alice@example.com"))).To(Succeed())
		Expect(bus.Publish(context.Background(), alertEvent("bob@example.com"))).To(Succeed())
		bus.Wait()

		Eventually(func() int { return len(sink.Sent()) }).Should(Equal(2))
	})

	It("skips users without an email address", func() {
		dispatcher = mailer.NewDispatcher(sink, mailer.DispatcherConfig{}, logger.Discard())

		Expect(dispatcher.HandleMailAlert(context.Background(), alertEvent(""))).To(Succeed())
		Consistently(func() int { return len(sink.Sent()) }, 100*time.Millisecond).Should(Equal(0))
	})

	It("rejects foreign event types", func() {
		dispatcher = mailer.NewDispatcher(sink, mailer.DispatcherConfig{}, logger.Discard())

		err := dispatcher.HandleMailAlert(context.Background(), events.NewPermissionsSavedEvent(1))
		Expect(err).To(HaveOccurred())
	})

	It("reports a full queue instead of blocking", func() {
		sink.block = make(chan struct{})
		defer close(sink.block)
		dispatcher = mailer.NewDispatcher(sink, mailer.DispatcherConfig{MaxWorkers: 1, QueueSize: 1}, logger.Discard())

		var err error
		for i := 0; i < 10 && err == nil; i++ {
			err = dispatcher.Enqueue(mailer.Job{Message: mailer.Message{ToEmail: "x@example.com"}})
		}
		Expect(errors.Is(err, mailer.ErrQueueFull)).To(BeTrue())
	})

	It("keeps going after a send failure", func() {
		sink.err = errors.New("smtp down")
		dispatcher = mailer.NewDispatcher(sink, mailer.DispatcherConfig{MaxWorkers: 1}, logger.Discard())

		Expect(dispatcher.Enqueue(mailer.Job{Message: mailer.Message{ToEmail: "a@example.com"}})).To(Succeed())
		Expect(dispatcher.Enqueue(mailer.Job{Message: mailer.Message{ToEmail: "b@example.com"}})).To(Succeed())

		Eventually(func() error {
			return dispatcher.Enqueue(mailer.Job{Message: mailer.Message{ToEmail: "c@example.com"}})
		}).Should(Succeed())
	})

	It("drains queued mail before returning", func() {
		dispatcher = mailer.NewDispatcher(sink, mailer.DispatcherConfig{MaxWorkers: 1, QueueSize: 10}, logger.Discard())
		for _, to := range []string{"a@example.com", "b@example.com", "c@example.com"} {
			Expect(dispatcher.Enqueue(mailer.Job{Message: mailer.Message{ToEmail: to}})).To(Succeed())
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		Expect(dispatcher.Drain(ctx)).To(Succeed())
		Expect(sink.Sent()).To(HaveLen(3))
	})

	It("gives up draining when the context ends", func() {
		sink.block = make(chan struct{})
		defer close(sink.block)
		dispatcher = mailer.NewDispatcher(sink, mailer.DispatcherConfig{MaxWorkers: 1}, logger.Discard())
		Expect(dispatcher.Enqueue(mailer.Job{Message: mailer.Message{ToEmail: "a@example.com"}})).To(Succeed())

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		Expect(dispatcher.Drain(ctx)).To(MatchError(context.DeadlineExceeded))
	})

	It("refuses work after shutdown", func() {
		dispatcher = mailer.NewDispatcher(sink, mailer.DispatcherConfig{}, logger.Discard())
		dispatcher.Shutdown()

		err := dispatcher.Enqueue(mailer.Job{Message: mailer.Message{ToEmail: "a@example.com"}})
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("SendGridMailer", func() {
	var (
		server *httptest.Server
		body   map[string]interface{}
		auth   string
		status int
	)

	BeforeEach(func() {
		status = http.StatusAccepted
		body = nil
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth = r.Header.Get("Authorization")
			_ = json.NewDecoder(r.Body).Decode(&body)
			w.WriteHeader(status)
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	newMailer := func() *mailer.SendGridMailer {
		return mailer.NewSendGridMailer(mailer.SendGridConfig{
			APIKey:    "sg-key",
			FromName:  "InsightPulse",
			FromEmail: "noreply@example.com",
			Host:      server.URL,
		})
	}

	It("posts a v3 mail body", func() {
		err := newMailer().Send(context.Background(), mailer.AlertMessage(alertEvent("alice@example.com")))

		Expect(err).NotTo(HaveOccurred())
		Expect(auth).To(Equal("Bearer sg-key"))
		Expect(body).To(HaveKey("personalizations"))
		from := body["from"].(map[string]interface{})
		Expect(from["email"]).To(Equal("noreply@example.com"))
	})

	It("fails on an error status", func() {
		status = http.StatusUnauthorized

		err := newMailer().Send(context.Background(), mailer.Message{ToEmail: "a@example.com", Subject: "s", Text: "t", HTML: "h"})
		Expect(err).To(HaveOccurred())
	})

	It("does nothing once the context is done", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := newMailer().Send(ctx, mailer.Message{ToEmail: "a@example.com"})
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		Expect(body).To(BeNil())
	})
})
