// Package events provides event publishing functionality.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"interview-memory-service/internal/observability/metrics"
)

// Publisher publishes transcript events to separate Kafka topics: one for
// displayed fragments, one for group annotations.
type Publisher struct {
	writerFragment   *kafka.Writer
	writerAnnotation *kafka.Writer
	principal        string
	topicFragment    string
	topicAnnotation  string
	enabled          bool
	metrics          *metrics.Metrics
}

// Config holds Kafka publisher configuration.
type Config struct {
	Brokers         []string
	TopicFragment   string
	TopicAnnotation string
	Principal       string
	Enabled         bool
}

// New creates a new Kafka event publisher. With Kafka disabled or no
// brokers configured, events are logged instead of published.
func New(cfg *Config) *Publisher {
	m := metrics.DefaultMetrics

	if cfg == nil {
		log.Info().Msg("Kafka disabled (nil config), using log-only mode")
		return &Publisher{
			enabled: false,
			metrics: m,
		}
	}

	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		log.Info().Msg("Kafka disabled, using log-only mode")
		return &Publisher{
			principal:       cfg.Principal,
			topicFragment:   cfg.TopicFragment,
			topicAnnotation: cfg.TopicAnnotation,
			enabled:         false,
			metrics:         m,
		}
	}

	// Longer dial timeouts for DNS resolution in Kubernetes
	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}

	transport := &kafka.Transport{
		Dial: dialer.DialFunc,
	}

	writerFragment := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.TopicFragment,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Transport:    transport,
	}

	writerAnnotation := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.TopicAnnotation,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Transport:    transport,
	}

	log.Info().
		Strs("brokers", cfg.Brokers).
		Str("topicFragment", cfg.TopicFragment).
		Str("topicAnnotation", cfg.TopicAnnotation).
		Str("principal", cfg.Principal).
		Msg("Kafka publisher initialized")

	return &Publisher{
		writerFragment:   writerFragment,
		writerAnnotation: writerAnnotation,
		principal:        cfg.Principal,
		topicFragment:    cfg.TopicFragment,
		topicAnnotation:  cfg.TopicAnnotation,
		enabled:          true,
		metrics:          m,
	}
}

// PublishFragment publishes a fragment event to the fragment topic.
func (p *Publisher) PublishFragment(ctx context.Context, key string, event any) error {
	return p.publish(ctx, p.writerFragment, p.topicFragment, "fragment", key, event)
}

// PublishAnnotation publishes an annotation event to the annotation topic.
func (p *Publisher) PublishAnnotation(ctx context.Context, key string, event any) error {
	return p.publish(ctx, p.writerAnnotation, p.topicAnnotation, "annotation", key, event)
}

// publish is the internal method that writes to a specific Kafka writer.
func (p *Publisher) publish(ctx context.Context, writer *kafka.Writer, topic, eventType, key string, event any) error {
	start := time.Now()

	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("Failed to marshal event")
		return err
	}

	log.Debug().
		Str("principal", p.principal).
		Str("topic", topic).
		Str("key", key).
		RawJSON("payload", payload).
		Msg("Publishing event")

	// If Kafka is disabled, just log
	if !p.enabled || writer == nil {
		p.metrics.RecordKafkaPublish(topic, eventType, nil, time.Since(start).Seconds())
		return nil
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte(topic)},
			{Key: "principal", Value: []byte(p.principal)},
		},
	}

	if err := writer.WriteMessages(ctx, msg); err != nil {
		log.Error().
			Err(err).
			Str("topic", topic).
			Str("key", key).
			Msg("Failed to write to Kafka")
		p.metrics.RecordKafkaPublish(topic, eventType, err, time.Since(start).Seconds())
		return err
	}

	p.metrics.RecordKafkaPublish(topic, eventType, nil, time.Since(start).Seconds())
	return nil
}

// Close closes both Kafka writers.
func (p *Publisher) Close() error {
	var err error
	if p.writerFragment != nil {
		if e := p.writerFragment.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing fragment writer")
			err = e
		}
	}
	if p.writerAnnotation != nil {
		if e := p.writerAnnotation.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing annotation writer")
			err = e
		}
	}
	return err
}
