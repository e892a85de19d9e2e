package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"propmedia/services/web/internal/entity"
)

type contactSubmission struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
}

func (c *Client) SubmitContact(ctx context.Context, m entity.ContactMessage) error {
	req, err := jsonRequest("contact.submit", http.MethodPost, "/contact", contactSubmission{
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Email:     m.Email,
		Subject:   m.Subject,
		Message:   m.Message,
	})
	if err != nil {
		return err
	}
	_, err = c.do(ctx, req)
	return err
}

func (c *Client) ListContacts(ctx context.Context, page, perPage int) (entity.ContactPage, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if perPage > 0 {
		q.Set("per_page", strconv.Itoa(perPage))
	}

	body, err := c.do(ctx, request{operation: "contacts.list", method: http.MethodGet, path: "/contacts", query: q})
	if err != nil {
		return entity.ContactPage{}, err
	}
	items, pagination, err := decodePage[entity.ContactMessage](body)
	if err != nil {
		return entity.ContactPage{}, fmt.Errorf("contacts.list: %w", err)
	}
	return entity.ContactPage{Items: items, Pagination: pagination}, nil
}
