package remote

import (
	"context"
	"net/http"

	"propmedia/services/web/internal/entity"
)

// Generate asks the assistant for a title and description.
func (c *Client) Generate(ctx context.Context, in entity.AssistRequest) (*entity.Suggestion, error) {
	req, err := jsonRequest("ai.generate", http.MethodPost, "/ai/generate", in)
	if err != nil {
		return nil, err
	}

	var suggestion entity.Suggestion
	if err := c.doJSON(ctx, req, &suggestion); err != nil {
		return nil, err
	}
	return &suggestion, nil
}
