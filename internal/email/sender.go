package email

import "context"

type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers a single message. Implementations must be safe for
// concurrent use and should honor ctx cancellation.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
