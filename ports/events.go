package ports

import (
	"context"

	"github.com/fanclash/gatekeeper/core"
)

// EventPublisher notifies the rest of the platform about auth events.
type EventPublisher interface {
	// PublishLogin announces a successful verification. created reports
	// whether the account record was created by this login.
	PublishLogin(ctx context.Context, address string, role core.Role, tokenID string, created bool) error
}
