package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/avast/retry-go"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// AMQPConfig configures the RabbitMQ publisher.
type AMQPConfig struct {
	URL      string
	Exchange string
	// Attempts bounds connection and publish retries. Defaults to 3.
	Attempts uint
	Delay    time.Duration
}

// AMQP publishes events as JSON to a durable topic exchange.
type AMQP struct {
	cfg AMQPConfig
	log zerolog.Logger

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewAMQP dials the broker, retrying transient failures, and declares the exchange.
func NewAMQP(cfg AMQPConfig, log zerolog.Logger) (*AMQP, error) {
	if cfg.Exchange == "" {
		cfg.Exchange = "rupee"
	}
	if cfg.Attempts == 0 {
		cfg.Attempts = 3
	}
	if cfg.Delay == 0 {
		cfg.Delay = 500 * time.Millisecond
	}
	p := &AMQP{cfg: cfg, log: log}

	err := retry.Do(
		p.connect,
		retry.Attempts(cfg.Attempts),
		retry.Delay(cfg.Delay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Warn().Err(err).Uint("attempt", n+1).Msg("amqp connect failed, retrying")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to amqp: %w", err)
	}
	return p, nil
}

func (p *AMQP) connect() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeLocked()

	conn, err := amqp.Dial(p.cfg.URL)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(
		p.cfg.Exchange, // name
		"topic",        // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("declare exchange: %w", err)
	}
	p.conn, p.channel = conn, ch
	return nil
}

// Publish sends e with its routing key. A closed connection is re-dialed
// before the next attempt.
func (p *AMQP) Publish(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	return retry.Do(
		func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := p.publishOnce(ctx, e.RoutingKey(), body); err != nil {
				if errors.Is(err, amqp.ErrClosed) {
					if cerr := p.connect(); cerr != nil {
						return cerr
					}
				}
				return err
			}
			return nil
		},
		retry.RetryIf(func(err error) bool {
			return ctx.Err() == nil && !errors.Is(err, context.Canceled)
		}),
		retry.Attempts(p.cfg.Attempts),
		retry.Delay(p.cfg.Delay),
		retry.LastErrorOnly(true),
	)
}

func (p *AMQP) publishOnce(ctx context.Context, key string, body []byte) error {
	p.mu.Lock()
	ch := p.channel
	p.mu.Unlock()
	if ch == nil || ch.IsClosed() {
		return amqp.ErrClosed
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err := ch.PublishWithContext(ctx,
		p.cfg.Exchange, // exchange
		key,            // routing key
		false,          // mandatory
		false,          // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", key, err)
	}
	p.log.Debug().Str("routing_key", key).Msg("published ledger event")
	return nil
}

func (p *AMQP) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closeLocked()
}

func (p *AMQP) closeLocked() error {
	var errs []error
	if p.channel != nil {
		if err := p.channel.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, err)
		}
		p.channel = nil
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, err)
		}
		p.conn = nil
	}
	return errors.Join(errs...)
}

// NewPublisher returns an AMQP publisher when url is set, otherwise Nop.
// A broker that cannot be reached is logged and replaced by Nop so the
// ledger keeps working offline.
func NewPublisher(url, exchange string, log zerolog.Logger) Publisher {
	if url == "" {
		return Nop{}
	}
	p, err := NewAMQP(AMQPConfig{URL: url, Exchange: exchange}, log)
	if err != nil {
		log.Warn().Err(err).Msg("event publishing disabled")
		return Nop{}
	}
	log.Info().Str("exchange", exchange).Msg("publishing ledger events to amqp")
	return p
}
