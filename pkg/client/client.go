package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/naveenspark/casedesk/pkg/domain"
	"github.com/naveenspark/casedesk/pkg/session"
)

// Attachment is a file sent with a ticket reply.
type Attachment struct {
	Name string
	Data []byte
}

// Client is the admin API client. Every call goes through the session so
// expired tokens are refreshed transparently.
type Client struct {
	fetcher session.Fetcher
}

// New creates a new API client on top of an authenticated fetcher.
func New(f session.Fetcher) *Client {
	return &Client{fetcher: f}
}

// --- User methods ---

// ListUsers returns every account known to the backend, staff included.
func (c *Client) ListUsers(ctx context.Context) ([]domain.UserRow, error) {
	var rows list[domain.UserRow]
	if err := c.get(ctx, "/api/admin/users/", &rows); err != nil {
		return nil, fmt.Errorf("client.ListUsers: %w", err)
	}
	return rows, nil
}

// GetUserDetails fetches finances, referrals and spin history for one user.
func (c *Client) GetUserDetails(ctx context.Context, id int64) (*domain.UserDetails, error) {
	var d domain.UserDetails
	if err := c.get(ctx, "/api/admin/users/"+strconv.FormatInt(id, 10)+"/details/", &d); err != nil {
		return nil, fmt.Errorf("client.GetUserDetails: %w", err)
	}
	return &d, nil
}

// --- Ticket methods ---

func ticketPath(id int64, action string) string {
	p := "/api/support/tickets/" + strconv.FormatInt(id, 10) + "/"
	if action != "" {
		p += action + "/"
	}
	return p
}

// ListTickets returns all support tickets with their threads.
func (c *Client) ListTickets(ctx context.Context) ([]domain.Ticket, error) {
	var tickets list[domain.Ticket]
	if err := c.get(ctx, "/api/support/tickets/", &tickets); err != nil {
		return nil, fmt.Errorf("client.ListTickets: %w", err)
	}
	return tickets, nil
}

// ReplyTicket posts a staff reply, optionally with a file.
func (c *Client) ReplyTicket(ctx context.Context, id int64, body string, att *Attachment) (*domain.TicketMessage, error) {
	form := &session.Form{}
	form.AddField("body", body)
	if att != nil {
		form.AddFile("attachment", att.Name, att.Data)
	}
	var msg domain.TicketMessage
	err := c.do(ctx, session.Request{Method: http.MethodPost, Path: ticketPath(id, "reply"), Form: form}, &msg)
	if err != nil {
		return nil, fmt.Errorf("client.ReplyTicket: %w", err)
	}
	return &msg, nil
}

// CloseTicket marks a ticket closed.
func (c *Client) CloseTicket(ctx context.Context, id int64) error {
	if err := c.post(ctx, ticketPath(id, "close"), nil); err != nil {
		return fmt.Errorf("client.CloseTicket: %w", err)
	}
	return nil
}

// MarkTicketRead clears the staff unread counter of a ticket.
func (c *Client) MarkTicketRead(ctx context.Context, id int64) error {
	if err := c.post(ctx, ticketPath(id, "mark-read"), nil); err != nil {
		return fmt.Errorf("client.MarkTicketRead: %w", err)
	}
	return nil
}

// --- helpers ---

func (c *Client) do(ctx context.Context, req session.Request, out any) error {
	resp, err := c.fetcher.Fetch(ctx, req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	return Decode(resp, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, session.Request{Method: http.MethodGet, Path: path}, out)
}

func (c *Client) post(ctx context.Context, path string, out any) error {
	return c.do(ctx, session.Request{Method: http.MethodPost, Path: path}, out)
}
