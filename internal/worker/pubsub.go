package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"

	"github.com/gigpilot/gigpilot/internal/provider/resilience"
)

// Job types carried in JobMessage.JobType.
const (
	JobTypePrewarm     = "prewarm"
	JobTypeHealthCheck = "health_check"
)

// ErrMalformedMessage is returned for payloads that are not a JobMessage.
var ErrMalformedMessage = errors.New("malformed job message")

// JobMessage is the Pub/Sub payload that triggers a job.
type JobMessage struct {
	JobType string `json:"job_type"`
}

// Dispatcher runs the job named by a message.
type Dispatcher struct {
	prewarm  *PrewarmJob
	registry *resilience.Registry
	logger   zerolog.Logger
}

// DispatcherConfig holds configuration for the Dispatcher.
type DispatcherConfig struct {
	Prewarm  *PrewarmJob
	Registry *resilience.Registry
	Logger   zerolog.Logger
}

// NewDispatcher creates a new job dispatcher.
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	return &Dispatcher{
		prewarm:  cfg.Prewarm,
		registry: cfg.Registry,
		logger:   cfg.Logger,
	}
}

// Dispatch decodes data and runs its job. Unknown job types are dropped
// without error so the transport acks them.
func (d *Dispatcher) Dispatch(ctx context.Context, data []byte) error {
	var msg JobMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}

	switch msg.JobType {
	case JobTypePrewarm:
		return d.runPrewarm(ctx)
	case JobTypeHealthCheck:
		d.reportHealth()
		return nil
	default:
		d.logger.Warn().Str("job_type", msg.JobType).Msg("unknown job type, dropping")
		return nil
	}
}

func (d *Dispatcher) runPrewarm(ctx context.Context) error {
	if d.prewarm == nil {
		return errors.New("prewarm job not configured")
	}

	result := d.prewarm.Run(ctx)
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("prewarm interrupted after %d/%d centres: %w", result.Sampled, result.TotalCentres, err)
	}
	// A run that resolved nothing usually means the geocoder is down; let
	// Pub/Sub redeliver later.
	if result.Resolved == 0 && result.Unresolved > 0 {
		return fmt.Errorf("prewarm resolved no areas across %d points", result.Unresolved)
	}
	return nil
}

func (d *Dispatcher) reportHealth() {
	if d.registry == nil {
		d.logger.Info().Msg("health check: no providers registered")
		return
	}

	for _, h := range d.registry.GetAllHealth() {
		event := d.logger.Info()
		if !h.IsHealthy() {
			event = d.logger.Warn()
		}
		event.
			Str("provider", h.Name).
			Str("circuit_state", h.CircuitState.String()).
			Uint32("requests", h.Counts.Requests).
			Uint32("total_failures", h.Counts.TotalFailures).
			Str("last_error", h.LastError).
			Msg("provider health")
	}
}

// PubSubHandler feeds Pub/Sub messages to a Dispatcher.
type PubSubHandler struct {
	client           *pubsub.Client
	subscriber       *pubsub.Subscriber
	subscriptionName string
	dispatcher       *Dispatcher
	logger           zerolog.Logger
}

// PubSubConfig holds configuration for the Pub/Sub handler.
type PubSubConfig struct {
	ProjectID        string
	SubscriptionName string
	Dispatcher       *Dispatcher
	Logger           zerolog.Logger
}

// NewPubSubHandler creates a new Pub/Sub handler.
func NewPubSubHandler(ctx context.Context, cfg PubSubConfig) (*PubSubHandler, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	subscriber := client.Subscriber(cfg.SubscriptionName)

	// Pre-warm runs are long and fan out to paid providers; keep few in flight.
	subscriber.ReceiveSettings.MaxOutstandingMessages = 2
	subscriber.ReceiveSettings.MaxExtension = 10 * time.Minute

	return &PubSubHandler{
		client:           client,
		subscriber:       subscriber,
		subscriptionName: cfg.SubscriptionName,
		dispatcher:       cfg.Dispatcher,
		logger:           cfg.Logger,
	}, nil
}

// Start processes messages until ctx is cancelled.
func (h *PubSubHandler) Start(ctx context.Context) error {
	h.logger.Info().
		Str("subscription", h.subscriptionName).
		Msg("starting pubsub handler")

	return h.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		h.handleMessage(ctx, msg)
	})
}

// Close closes the Pub/Sub client.
func (h *PubSubHandler) Close() error {
	return h.client.Close()
}

func (h *PubSubHandler) handleMessage(ctx context.Context, msg *pubsub.Message) {
	startTime := time.Now()

	logger := h.logger.With().
		Str("message_id", msg.ID).
		Str("publish_time", msg.PublishTime.Format(time.RFC3339)).
		Logger()

	logger.Debug().Msg("received pubsub message")

	err := h.dispatcher.Dispatch(ctx, msg.Data)
	switch {
	case err == nil:
		logger.Info().Dur("duration", time.Since(startTime)).Msg("job completed")
		msg.Ack()
	case errors.Is(err, ErrMalformedMessage):
		// Redelivery cannot fix a bad payload.
		logger.Error().Err(err).Msg("dropping malformed message")
		msg.Ack()
	default:
		logger.Error().Err(err).Dur("duration", time.Since(startTime)).Msg("job failed")
		msg.Nack()
	}
}
