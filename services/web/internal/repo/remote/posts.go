package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"propmedia/services/web/internal/entity"
)

type ListQuery struct {
	Status  entity.PostStatus
	Page    int
	PerPage int
}

func (q ListQuery) values() url.Values {
	v := url.Values{}
	if q.Status != "" {
		v.Set("status", string(q.Status))
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		v.Set("per_page", strconv.Itoa(q.PerPage))
	}
	return v
}

func (c *Client) listPosts(ctx context.Context, operation, path string, query url.Values) (entity.PostPage, error) {
	body, err := c.do(ctx, request{operation: operation, method: http.MethodGet, path: path, query: query})
	if err != nil {
		return entity.PostPage{}, err
	}
	page, err := decodePostPage(body)
	if err != nil {
		return entity.PostPage{}, fmt.Errorf("%s: %w", operation, err)
	}
	return page, nil
}

func (c *Client) ListPosts(ctx context.Context, q ListQuery) (entity.PostPage, error) {
	return c.listPosts(ctx, "posts.list", "/posts", q.values())
}

func (c *Client) PostsByCategory(ctx context.Context, category entity.Category, q ListQuery) (entity.PostPage, error) {
	path := "/posts/category/" + url.PathEscape(string(category))
	return c.listPosts(ctx, "posts.by_category", path, q.values())
}

// ApprovedPosts is the public listing and needs no token. Category pages
// use PostsByCategory with the approved status instead.
func (c *Client) ApprovedPosts(ctx context.Context, page int) (entity.PostPage, error) {
	return c.listPosts(ctx, "posts.approved", "/posts/approved", ListQuery{Page: page}.values())
}

func (c *Client) getPost(ctx context.Context, operation, path string) (*entity.Post, error) {
	var post entity.Post
	if err := c.doJSON(ctx, request{operation: operation, method: http.MethodGet, path: path}, &post, "data", "post"); err != nil {
		return nil, err
	}
	return &post, nil
}

func (c *Client) GetPost(ctx context.Context, id int64) (*entity.Post, error) {
	return c.getPost(ctx, "posts.get", fmt.Sprintf("/posts/%d", id))
}

func (c *Client) ApprovedPost(ctx context.Context, id int64) (*entity.Post, error) {
	return c.getPost(ctx, "posts.approved_get", fmt.Sprintf("/posts/approved/%d", id))
}

func (c *Client) CreatePost(ctx context.Context, p entity.NewPost) (*entity.Post, error) {
	fields := []formField{
		{name: "category", value: string(p.Category)},
		{name: "post_type", value: string(p.PostType)},
		{name: "title", value: p.Title},
		{name: "description", value: p.Description},
	}

	var files []formFile
	for _, img := range p.Images {
		files = append(files, formFile{field: "images[]", upload: img})
	}
	if p.Video != nil {
		files = append(files, formFile{field: "video", upload: *p.Video})
	}

	req, err := multipartRequest("posts.create", http.MethodPost, "/posts", fields, files)
	if err != nil {
		return nil, err
	}

	var post entity.Post
	if err := c.doJSON(ctx, req, &post, "data", "post"); err != nil {
		return nil, err
	}
	return &post, nil
}

type postUpdate struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (c *Client) UpdatePost(ctx context.Context, id int64, title, description string) (*entity.Post, error) {
	req, err := jsonRequest("posts.update", http.MethodPut, fmt.Sprintf("/posts/%d", id), postUpdate{Title: title, Description: description})
	if err != nil {
		return nil, err
	}

	var post entity.Post
	if err := c.doJSON(ctx, req, &post, "data", "post"); err != nil {
		return nil, err
	}
	return &post, nil
}

func (c *Client) DeletePost(ctx context.Context, id int64) error {
	_, err := c.do(ctx, request{operation: "posts.delete", method: http.MethodDelete, path: fmt.Sprintf("/posts/%d", id)})
	return err
}

// ApprovePost and RejectPost only report success; the caller refetches to
// see the new state.
func (c *Client) ApprovePost(ctx context.Context, id int64) error {
	_, err := c.do(ctx, request{operation: "posts.approve", method: http.MethodPost, path: fmt.Sprintf("/posts/%d/approve", id)})
	return err
}

type rejection struct {
	Note string `json:"note"`
}

func (c *Client) RejectPost(ctx context.Context, id int64, note string) error {
	req, err := jsonRequest("posts.reject", http.MethodPost, fmt.Sprintf("/posts/%d/reject", id), rejection{Note: note})
	if err != nil {
		return err
	}
	_, err = c.do(ctx, req)
	return err
}
