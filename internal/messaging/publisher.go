// Package messaging forwards kitchen tickets to RabbitMQ so kitchen displays
// and printers can consume them independently of the API.
package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/tasteparadise/pos/internal/pos"
)

// TicketExchange is the fanout exchange every kitchen ticket is published to.
const TicketExchange = "kitchen_tickets"

const publishTimeout = 10 * time.Second

// channel is the subset of *amqp091.Channel the publisher uses.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// AMQPPublisher publishes kitchen tickets to TicketExchange.
type AMQPPublisher struct {
	conn io.Closer
	ch   channel
}

// Dial connects to the broker at url and declares the ticket exchange.
func Dial(url string) (*AMQPPublisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		TicketExchange, // name
		"fanout",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare %s exchange: %w", TicketExchange, err)
	}
	log.Printf("Connected to RabbitMQ, publishing tickets to %q", TicketExchange)
	return &AMQPPublisher{conn: conn, ch: ch}, nil
}

// PublishTicket sends ticket as a persistent JSON message.
func (p *AMQPPublisher) PublishTicket(ctx context.Context, ticket pos.KitchenTicket) error {
	body, err := json.Marshal(ticket)
	if err != nil {
		return fmt.Errorf("marshal ticket: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.ch.PublishWithContext(ctx,
		TicketExchange, // exchange
		"",             // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    ticket.ID.String(),
			Timestamp:    ticket.CreatedAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish ticket %s: %w", ticket.OrderNumber, err)
	}
	return nil
}

// Close closes the channel and the connection. The connection is closed even
// when closing the channel fails.
func (p *AMQPPublisher) Close() error {
	var errs []error
	if err := p.ch.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close channel: %w", err))
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close connection: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Nop discards tickets. Used when no broker is configured.
type Nop struct{}

func (Nop) PublishTicket(context.Context, pos.KitchenTicket) error { return nil }
