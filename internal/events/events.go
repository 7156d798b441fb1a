package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	CarCreated       = "cars.created"
	CarDeleted       = "cars.deleted"
	UserBlockToggled = "users.block_toggled"
)

const (
	connectWait   = 5 * time.Second
	maxReconnects = 5
	reconnectWait = 2 * time.Second
)

// Publisher emits domain events. Delivery is fire-and-forget.
type Publisher interface {
	Publish(ctx context.Context, subject string, v any) error
	Close()
}

type NATS struct {
	conn *nats.Conn
}

func NewNATS(url string) (*NATS, error) {
	conn, err := nats.Connect(url,
		nats.Name("avtosotuv-api"),
		nats.Timeout(connectWait),
		nats.MaxReconnects(maxReconnects),
		nats.ReconnectWait(reconnectWait),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats at %s: %w", url, err)
	}
	return &NATS{conn: conn}, nil
}

func (p *NATS) Publish(_ context.Context, subject string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.conn.Publish(subject, b)
}

func (p *NATS) Close() { p.conn.Close() }

// Noop drops every event; used when NATS_URL is unset.
type Noop struct{}

func (Noop) Publish(context.Context, string, any) error { return nil }
func (Noop) Close()                                     {}

// CarEvent is the payload of cars.created and cars.deleted.
type CarEvent struct {
	CarID  int64  `json:"carId"`
	UserID int64  `json:"userId"`
	By     int64  `json:"by,omitempty"`
	Title  string `json:"title,omitempty"`
	Price  int64  `json:"price,omitempty"`
	At     string `json:"at"`
}

// BlockEvent is the payload of users.block_toggled.
type BlockEvent struct {
	UserID    int64  `json:"userId"`
	IsBlocked bool   `json:"isBlocked"`
	By        int64  `json:"by"`
	At        string `json:"at"`
}
