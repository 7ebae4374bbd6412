package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"

	"IncidentScanner/internal/domain"
	"IncidentScanner/internal/ports"
)

type channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// IncidentMessage is the JSON body published for every stored incident.
type IncidentMessage struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Date         string    `json:"date"`
	State        string    `json:"state"`
	LGA          string    `json:"lga,omitempty"`
	Lat          float64   `json:"lat"`
	Lng          float64   `json:"lng"`
	Fatalities   int       `json:"fatalities"`
	Injuries     int       `json:"injuries"`
	Kidnapped    int       `json:"kidnapped"`
	IncidentType string    `json:"incident_type"`
	Severity     string    `json:"severity"`
	SourceURL    string    `json:"source_url"`
	Sources      []string  `json:"sources"`
	PublishedAt  time.Time `json:"published_at"`
}

// Publisher fans stored incidents out to an AMQP exchange.
type Publisher struct {
	conn       *amqp.Connection
	channel    channel
	exchange   string
	routingKey string
	now        func() time.Time
}

var _ ports.Notifier = (*Publisher)(nil)

// NewPublisher dials the broker and declares a durable direct exchange.
func NewPublisher(amqpURL, exchange, routingKey string) (*Publisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "direct", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	return &Publisher{conn: conn, channel: ch, exchange: exchange, routingKey: routingKey, now: time.Now}, nil
}

// NotifyIncident publishes the incident as a persistent JSON message.
func (p *Publisher) NotifyIncident(ctx context.Context, id string, incident domain.CandidateIncident) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := json.Marshal(toMessage(id, incident, p.now()))
	if err != nil {
		return fmt.Errorf("marshal incident: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    p.now(),
		MessageId:    id,
	}
	if err := p.channel.Publish(p.exchange, p.routingKey, false, false, msg); err != nil {
		return fmt.Errorf("publish incident %s: %w", id, err)
	}
	return nil
}

// Close closes the channel and the connection.
func (p *Publisher) Close() error {
	var err error
	if p.channel != nil {
		err = p.channel.Close()
	}
	if p.conn != nil {
		if connErr := p.conn.Close(); connErr != nil && err == nil {
			err = connErr
		}
	}
	return err
}

func toMessage(id string, incident domain.CandidateIncident, now time.Time) IncidentMessage {
	sources := incident.Sources
	if sources == nil {
		sources = []string{}
	}
	return IncidentMessage{
		ID:           id,
		Title:        incident.Title,
		Description:  incident.Summary,
		Date:         incident.OccurredAt.Format("2006-01-02"),
		State:        incident.State,
		LGA:          incident.LocalArea,
		Lat:          incident.Coordinates.Lat,
		Lng:          incident.Coordinates.Lng,
		Fatalities:   incident.Fatalities,
		Injuries:     incident.Injuries,
		Kidnapped:    incident.Abducted,
		IncidentType: string(incident.IncidentType),
		Severity:     string(incident.Severity),
		SourceURL:    incident.SourceURL,
		Sources:      sources,
		PublishedAt:  now.UTC(),
	}
}
