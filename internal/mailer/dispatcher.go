package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/frahmantamala/insight-pulse/internal/core/events"
)

var ErrQueueFull = errors.New("mail queue full, please try again later")

type Job struct {
	EventID string
	Message Message
}

type Worker struct {
	ID         int
	WorkerPool chan chan Job
	JobChannel chan Job
	Logger     *slog.Logger
}

func NewWorker(id int, workerPool chan chan Job, logger *slog.Logger) *Worker {
	return &Worker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan Job),
		Logger:     logger,
	}
}

func (w *Worker) Start(ctx context.Context, wg *sync.WaitGroup, processFunc func(Job)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			select {
			case w.WorkerPool <- w.JobChannel:
			case <-ctx.Done():
				w.Logger.Debug("mail worker shutting down", "worker_id", w.ID)
				return
			}

			select {
			case job := <-w.JobChannel:
				w.Logger.Debug("mail worker processing job", "worker_id", w.ID, "to", job.Message.ToEmail)
				processFunc(job)
			case <-ctx.Done():
				w.Logger.Debug("mail worker shutting down", "worker_id", w.ID)
				return
			}
		}
	}()
}

const drainPollInterval = 10 * time.Millisecond

type DispatcherConfig struct {
	MaxWorkers  int
	QueueSize   int
	SendTimeout time.Duration
}

// Dispatcher queues outgoing mail and sends it from a fixed set of
// workers. Enqueue never blocks: a full queue is reported to the caller.
type Dispatcher struct {
	mailer      Mailer
	logger      *slog.Logger
	sendTimeout time.Duration

	jobQueue   chan Job
	workerPool chan chan Job
	maxWorkers int
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once
	stopOnce   sync.Once

	// pending counts jobs accepted by Enqueue and not yet processed.
	pending atomic.Int64
}

func NewDispatcher(mailer Mailer, config DispatcherConfig, logger *slog.Logger) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())

	maxWorkers := config.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 2
	}
	queueSize := config.QueueSize
	if queueSize <= 0 {
		queueSize = 100
	}
	sendTimeout := config.SendTimeout
	if sendTimeout <= 0 {
		sendTimeout = 30 * time.Second
	}

	d := &Dispatcher{
		mailer:      mailer,
		logger:      logger,
		sendTimeout: sendTimeout,
		maxWorkers:  maxWorkers,
		jobQueue:    make(chan Job, queueSize),
		workerPool:  make(chan chan Job, maxWorkers),
		ctx:         ctx,
		cancel:      cancel,
	}
	d.start()
	return d
}

func (d *Dispatcher) start() {
	d.once.Do(func() {
		for i := 0; i < d.maxWorkers; i++ {
			worker := NewWorker(i, d.workerPool, d.logger)
			worker.Start(d.ctx, &d.wg, d.process)
		}

		d.wg.Add(1)
		go d.dispatch()

		d.logger.Info("mail dispatcher started",
			"max_workers", d.maxWorkers,
			"queue_size", cap(d.jobQueue))
	})
}

func (d *Dispatcher) dispatch() {
	defer d.wg.Done()

	for {
		select {
		case job := <-d.jobQueue:
			select {
			case jobChannel := <-d.workerPool:
				select {
				case jobChannel <- job:
				case <-d.ctx.Done():
					d.logger.Info("mail dispatcher shutting down")
					return
				}
			case <-d.ctx.Done():
				d.logger.Info("mail dispatcher shutting down")
				return
			}
		case <-d.ctx.Done():
			d.logger.Info("mail dispatcher shutting down")
			return
		}
	}
}

// Enqueue schedules job for delivery.
func (d *Dispatcher) Enqueue(job Job) error {
	if d.ctx.Err() != nil {
		return fmt.Errorf("mail dispatcher stopped")
	}

	d.pending.Add(1)
	select {
	case d.jobQueue <- job:
		d.logger.Debug("mail job queued", "to", job.Message.ToEmail, "queue_length", len(d.jobQueue))
		return nil
	default:
		d.pending.Add(-1)
		d.logger.Warn("mail queue full, dropping message",
			"to", job.Message.ToEmail,
			"queue_capacity", cap(d.jobQueue))
		return ErrQueueFull
	}
}

// HandleMailAlert is the event handler for mail alert requests.
func (d *Dispatcher) HandleMailAlert(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.MailAlertRequestedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}
	if e.Email == "" {
		d.logger.Warn("mail alert skipped, user has no email", "username", e.Username)
		return nil
	}
	return d.Enqueue(Job{EventID: e.EventID(), Message: AlertMessage(e)})
}

// Register subscribes the dispatcher to the events it delivers.
func (d *Dispatcher) Register(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeMailAlertRequested, d.HandleMailAlert)
}

func (d *Dispatcher) process(job Job) {
	defer d.pending.Add(-1)

	ctx, cancel := context.WithTimeout(d.ctx, d.sendTimeout)
	defer cancel()

	if err := d.mailer.Send(ctx, job.Message); err != nil {
		d.logger.Error("failed to send mail",
			"event_id", job.EventID,
			"to", job.Message.ToEmail,
			"error", err)
		return
	}
	d.logger.Info("mail sent", "event_id", job.EventID, "to", job.Message.ToEmail)
}

// Drain waits until every queued message has been handed to the mailer or
// ctx is done.
func (d *Dispatcher) Drain(ctx context.Context) error {
	ticker := time.NewTicker(drainPollInterval)
	defer ticker.Stop()

	for d.pending.Load() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// Shutdown stops the workers. Queued messages that no worker has picked
// up are dropped.
func (d *Dispatcher) Shutdown() {
	d.stopOnce.Do(func() {
		d.logger.Info("shutting down mail dispatcher")
		d.cancel()
		d.wg.Wait()
		d.logger.Info("mail dispatcher shutdown complete")
	})
}
