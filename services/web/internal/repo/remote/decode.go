package remote

import (
	"bytes"
	"encoding/json"
	"fmt"

	"propmedia/services/web/internal/entity"
)

// unwrapInto decodes body into out. When body is an object without an id
// and one of keys (default "data") holds an object, that object is decoded
// instead.
func unwrapInto(body []byte, out interface{}, keys ...string) error {
	if len(keys) == 0 {
		keys = []string{"data"}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err == nil {
		if _, hasID := fields["id"]; !hasID {
			for _, key := range keys {
				if inner, ok := fields[key]; ok && len(inner) > 0 && inner[0] == '{' {
					return json.Unmarshal(inner, out)
				}
			}
		}
	}
	return json.Unmarshal(body, out)
}

type envelope struct {
	Data        json.RawMessage `json:"data"`
	CurrentPage *int            `json:"current_page"`
	LastPage    int             `json:"last_page"`
	PerPage     int             `json:"per_page"`
	Total       int             `json:"total"`
	Meta        *struct {
		CurrentPage int `json:"current_page"`
		LastPage    int `json:"last_page"`
		PerPage     int `json:"per_page"`
		Total       int `json:"total"`
	} `json:"meta"`
}

// decodePage normalises a collection answer. A bare array has no
// pagination; an envelope keeps its paging fields.
func decodePage[T any](body []byte) ([]T, *entity.Pagination, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return []T{}, nil, nil
	}

	switch body[0] {
	case '[':
		var items []T
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, nil, fmt.Errorf("failed to decode list: %w", err)
		}
		return items, nil, nil
	case '{':
		var env envelope
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, nil, fmt.Errorf("failed to decode envelope: %w", err)
		}
		data := bytes.TrimSpace(env.Data)
		if len(data) > 0 && data[0] == '{' {
			return decodePage[T](data)
		}

		items := []T{}
		if len(data) > 0 && !bytes.Equal(data, []byte("null")) {
			if err := json.Unmarshal(data, &items); err != nil {
				return nil, nil, fmt.Errorf("failed to decode envelope data: %w", err)
			}
		}

		var pagination *entity.Pagination
		switch {
		case env.CurrentPage != nil:
			pagination = &entity.Pagination{
				CurrentPage: *env.CurrentPage,
				LastPage:    env.LastPage,
				PerPage:     env.PerPage,
				Total:       env.Total,
			}
		case env.Meta != nil:
			pagination = &entity.Pagination{
				CurrentPage: env.Meta.CurrentPage,
				LastPage:    env.Meta.LastPage,
				PerPage:     env.Meta.PerPage,
				Total:       env.Meta.Total,
			}
		}
		return items, pagination, nil
	}

	return nil, nil, fmt.Errorf("unexpected collection payload starting with %q", body[0])
}

func decodePostPage(body []byte) (entity.PostPage, error) {
	items, pagination, err := decodePage[entity.Post](body)
	if err != nil {
		return entity.PostPage{}, err
	}
	return entity.PostPage{Items: items, Pagination: pagination}, nil
}
