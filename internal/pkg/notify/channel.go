package notify

import "context"

// Channel delivers an outbound message to one recipient address.
type Channel interface {
	Send(ctx context.Context, to, subject, body string) error
	Validate() error
}
