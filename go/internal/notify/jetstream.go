package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/friendlies/go/internal/models"
)

type JetStreamConfig struct {
	URL             string        `yaml:"url" env:"NATS_URL"`
	StreamName      string        `yaml:"stream_name"`
	SubjectPrefix   string        `yaml:"subject_prefix"`
	MaxReconnects   int           `yaml:"max_reconnects"`
	ReconnectWait   time.Duration `yaml:"reconnect_wait"`
	MaxAge          time.Duration `yaml:"max_age"`          // How long to keep messages
	Replicas        int           `yaml:"replicas"`         // Number of replicas for the stream
	DuplicateWindow time.Duration `yaml:"duplicate_window"` // Window for duplicate detection
}

func DefaultJetStreamConfig() JetStreamConfig {
	return JetStreamConfig{
		URL:             nats.DefaultURL,
		StreamName:      "MATCH_EVENTS",
		SubjectPrefix:   "matches.events",
		MaxReconnects:   -1, // Infinite
		ReconnectWait:   2 * time.Second,
		MaxAge:          7 * 24 * time.Hour,
		Replicas:        1,
		DuplicateWindow: 2 * time.Hour,
	}
}

// envelope is the message body published for each event
type envelope struct {
	EventID    string              `json:"eventId"`
	EventKind  models.EventKind    `json:"eventKind"`
	RequestID  string              `json:"requestId"`
	Recipients []string            `json:"recipients"`
	Timestamp  time.Time           `json:"timestamp"`
	Request    models.MatchRequest `json:"request"`
}

// JetStreamDispatcher publishes events to a NATS JetStream stream. The event id is used
// as the message id so redeliveries inside the duplicate window are dropped by the server.
type JetStreamDispatcher struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	config JetStreamConfig
}

func NewJetStreamDispatcher(ctx context.Context, cfg JetStreamConfig) (*JetStreamDispatcher, error) {
	opts := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	d := &JetStreamDispatcher{nc: nc, js: js, config: cfg}
	if err := d.ensureStream(ctx); err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure stream: %w", err)
	}
	return d, nil
}

func (d *JetStreamDispatcher) streamConfig() jetstream.StreamConfig {
	return jetstream.StreamConfig{
		Name:        d.config.StreamName,
		Description: "Match request lifecycle events",
		Subjects:    []string{d.config.SubjectPrefix + ".>"},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      d.config.MaxAge,
		Storage:     jetstream.FileStorage,
		Replicas:    d.config.Replicas,
		Duplicates:  d.config.DuplicateWindow,
	}
}

func (d *JetStreamDispatcher) ensureStream(ctx context.Context) error {
	sc := d.streamConfig()
	if _, err := d.js.CreateOrUpdateStream(ctx, sc); err != nil {
		return fmt.Errorf("create or update stream: %w", err)
	}
	log.Info().Str("stream", sc.Name).Msg("JetStream stream ready")
	return nil
}

// Subject returns the subject an event of kind is published on
func (d *JetStreamDispatcher) Subject(kind models.EventKind) string {
	return fmt.Sprintf("%s.%s", d.config.SubjectPrefix, kind)
}

func (d *JetStreamDispatcher) Notify(ctx context.Context, event models.MatchEvent) error {
	msg, err := buildMessage(d.Subject(event.Kind), event)
	if err != nil {
		return err
	}

	ack, err := d.js.PublishMsg(ctx, msg,
		jetstream.WithMsgID(event.ID.String()),
		jetstream.WithExpectStream(d.config.StreamName),
	)
	if err != nil {
		return fmt.Errorf("publish to JetStream: %w", err)
	}

	log.Debug().
		Str("subject", msg.Subject).
		Str("event_id", event.ID.String()).
		Uint64("sequence", ack.Sequence).
		Bool("duplicate", ack.Duplicate).
		Msg("published to JetStream")
	return nil
}

func (d *JetStreamDispatcher) Close() error {
	if d.nc != nil {
		return d.nc.Drain()
	}
	return nil
}

// buildMessage encodes event as a NATS message addressed by headers to its recipients
func buildMessage(subject string, event models.MatchEvent) (*nats.Msg, error) {
	recipients := make([]string, len(event.Recipients))
	for i, r := range event.Recipients {
		recipients[i] = r.String()
	}

	data, err := json.Marshal(envelope{
		EventID:    event.ID.String(),
		EventKind:  event.Kind,
		RequestID:  event.Request.ID.String(),
		Recipients: recipients,
		Timestamp:  event.OccurredAt,
		Request:    event.Request,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}

	return &nats.Msg{
		Subject: subject,
		Data:    data,
		Header: nats.Header{
			"Event-Kind":    []string{string(event.Kind)},
			"Event-ID":      []string{event.ID.String()},
			"Request-ID":    []string{event.Request.ID.String()},
			"Recipient-IDs": recipients,
		},
	}, nil
}
