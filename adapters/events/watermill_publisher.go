package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/fanclash/gatekeeper/core"
	"github.com/fanclash/gatekeeper/ports"
)

// LoginTopic is the topic the contest services subscribe to for
// provisioning state for newly seen wallets.
const LoginTopic = "gatekeeper.login"

// LoginEvent is published after each successful verification.
type LoginEvent struct {
	Address string `json:"address"`
	Role    string `json:"role"`
	TokenID string `json:"token_id"`
	Created bool   `json:"created"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill.
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher creates a new Watermill publisher.
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{publisher: publisher}
}

// PublishLogin publishes a login event.
func (p *WatermillPublisher) PublishLogin(ctx context.Context, address string, role core.Role, tokenID string, created bool) error {
	event := LoginEvent{
		Address: address,
		Role:    string(role),
		TokenID: tokenID,
		Created: created,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(tokenID, payload)

	if err := p.publisher.Publish(LoginTopic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// NopPublisher discards events. Used when no broker is configured and in
// tests.
type NopPublisher struct{}

// PublishLogin implements EventPublisher.
func (NopPublisher) PublishLogin(ctx context.Context, address string, role core.Role, tokenID string, created bool) error {
	return nil
}
