package domain

import "time"

// Ticket statuses.
const (
	TicketOpen   = "open"
	TicketClosed = "closed"
)

// Ticket is a support conversation between a customer and staff.
type Ticket struct {
	ID                  int64           `json:"id"`
	Subject             string          `json:"subject"`
	Status              string          `json:"status"`
	CreatedAt           time.Time       `json:"created_at"`
	User                *User           `json:"user,omitempty"`
	UnreadForStaff      bool            `json:"unread_for_staff"`
	UnreadCountForStaff int             `json:"unread_count_for_staff"`
	Messages            []TicketMessage `json:"messages,omitempty"`
}

// Closed reports whether the ticket no longer accepts replies.
func (t Ticket) Closed() bool {
	return t.Status == TicketClosed
}

// TicketMessage is one message in a ticket thread.
type TicketMessage struct {
	ID         int64     `json:"id"`
	Body       string    `json:"body"`
	Attachment string    `json:"attachment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	Author     *User     `json:"author,omitempty"`
}

// LatestAttachment returns the URL of the newest message attachment, if any.
func (t Ticket) LatestAttachment() string {
	for i := len(t.Messages) - 1; i >= 0; i-- {
		if t.Messages[i].Attachment != "" {
			return t.Messages[i].Attachment
		}
	}
	return ""
}
