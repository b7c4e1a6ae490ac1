// Package rabbitmq exposes the execution engine over AMQP: jobs are
// consumed from a request queue and their results published to a response
// queue.
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ThiagoFantino/2025-simuladores-back/internal/engine"
	"github.com/ThiagoFantino/2025-simuladores-back/internal/mappers"
	"github.com/ThiagoFantino/2025-simuladores-back/internal/model"
)

const (
	reqQueue  = "code-jobs"
	respQueue = "code-results"
)

type HandlerConfig struct {
	Login        string
	Password     string
	Host         string
	Port         int
	WorkersCount int
}

type Handler struct {
	cfg      HandlerConfig
	engine   *engine.Engine
	fixtures mappers.FixtureReader

	// mu guards the connection and channels, which are swapped by the
	// reconnect goroutine while workers publish.
	mu           sync.Mutex
	conn         *amqp.Connection
	consumerChan *amqp.Channel
	producerChan *amqp.Channel

	jobs      chan model.Job
	workers   sync.WaitGroup
	listeners sync.WaitGroup
	closed    atomic.Bool
}

func NewHandler(cfg HandlerConfig, eng *engine.Engine, fixtures mappers.FixtureReader) *Handler {
	return &Handler{
		cfg:      cfg,
		engine:   eng,
		fixtures: fixtures,
		jobs:     make(chan model.Job),
	}
}

func (h *Handler) Start() error {
	if err := h.connect(); err != nil {
		return err
	}
	if err := h.startConsumer(); err != nil {
		return errors.Wrap(err, "failed to start consumer")
	}
	if err := h.startProducer(); err != nil {
		return errors.Wrap(err, "failed to start producer")
	}
	for i := 0; i < h.cfg.WorkersCount; i++ {
		h.workers.Add(1)
		go h.worker()
	}
	return nil
}

// Close tears down consumer-first: closing the connection ends the
// delivery stream, the listener drains its remaining deliveries and
// exits, and only then is the job channel closed. Closing the job channel
// while deliveries can still arrive would panic the forwarding listener.
func (h *Handler) Close() {
	h.closed.Store(true)
	h.mu.Lock()
	conn := h.conn
	h.mu.Unlock()
	if conn != nil {
		_ = conn.Close()
	}
	h.listeners.Wait()
	close(h.jobs)
	h.workers.Wait()
}

func (h *Handler) connect() error {
	url := fmt.Sprintf("amqp://%s:%s@%s:%d", h.cfg.Login, h.cfg.Password, h.cfg.Host, h.cfg.Port)
	conn, err := amqp.Dial(url)
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.conn = conn
	h.mu.Unlock()
	errChan := make(chan *amqp.Error)
	conn.NotifyClose(errChan)
	go func() {
		<-errChan
		for {
			if h.closed.Load() {
				return
			}
			time.Sleep(time.Second * 15)
			if err := h.reconnect(); err == nil {
				return
			}
		}
	}()
	return nil
}

func (h *Handler) reconnect() error {
	if err := h.connect(); err != nil {
		return err
	}
	if err := h.startConsumer(); err != nil {
		return err
	}
	return h.startProducer()
}

func (h *Handler) startConsumer() error {
	h.mu.Lock()
	conn := h.conn
	h.mu.Unlock()
	channel, err := conn.Channel()
	if err != nil {
		return err
	}
	queue, err := channel.QueueDeclare(reqQueue, false, false, false, false, nil)
	if err != nil {
		return err
	}
	del, err := channel.Consume(queue.Name, "", true, false, false, false, nil)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.consumerChan = channel
	h.mu.Unlock()
	h.listeners.Add(1)
	go h.listener(del)
	return nil
}

func (h *Handler) startProducer() error {
	h.mu.Lock()
	conn := h.conn
	h.mu.Unlock()
	channel, err := conn.Channel()
	if err != nil {
		return err
	}
	if _, err := channel.QueueDeclare(respQueue, false, false, false, false, nil); err != nil {
		return err
	}
	h.mu.Lock()
	h.producerChan = channel
	h.mu.Unlock()
	return nil
}

// listener forwards deliveries until the broker channel closes. It owns
// the sends into h.jobs, so Close must not close that channel before this
// returns.
func (h *Handler) listener(deliveries <-chan amqp.Delivery) {
	defer h.listeners.Done()
	for data := range deliveries {
		var job model.Job
		if err := json.Unmarshal(data.Body, &job); err != nil {
			slog.Error("invalid job message", "message", string(data.Body))
			continue
		}
		h.jobs <- job
	}
}

func (h *Handler) worker() {
	defer h.workers.Done()

	for job := range h.jobs {
		resp := h.process(context.Background(), &job)
		h.send(resp)
	}
}

// process dispatches one job to the engine. Caller-input problems become
// a response-level Error; engine results are passed through as-is.
func (h *Handler) process(ctx context.Context, job *model.Job) *model.JobResponse {
	resp := &model.JobResponse{ID: job.ID, Kind: job.Kind}
	if job.Code == nil {
		resp.Error = "code is required"
		return resp
	}

	switch job.Kind {
	case model.JobExecute:
		res, err := h.engine.ExecuteCode(ctx, mappers.JobToExecuteParams(job))
		if err != nil {
			resp.Error = err.Error()
			return resp
		}
		resp.Execution = &res
	case model.JobValidate:
		res, err := h.engine.ValidateSyntax(ctx, *job.Code, job.Language)
		if err != nil {
			resp.Error = err.Error()
			return resp
		}
		resp.Validation = &res
	case model.JobTest:
		cases, err := mappers.ResolveTestCases(ctx, h.fixtures, job.TestCases)
		if err != nil {
			resp.Error = errors.Wrap(err, "resolve test cases").Error()
			return resp
		}
		res, err := h.engine.RunTests(ctx, *job.Code, job.Language, cases, mappers.JobToTestOptions(job))
		if err != nil {
			resp.Error = err.Error()
			return resp
		}
		resp.Tests = &res
	default:
		resp.Error = fmt.Sprintf("unknown job kind %q", job.Kind)
	}
	return resp
}

func (h *Handler) send(resp *model.JobResponse) {
	if h.closed.Load() {
		return
	}
	h.mu.Lock()
	channel := h.producerChan
	h.mu.Unlock()
	if channel == nil {
		return
	}
	body, _ := json.Marshal(resp)
	err := channel.Publish("", respQueue, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		slog.Error("failed to send response to queue", "job", resp.ID, "error", err)
	}
}
