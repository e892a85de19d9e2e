package remote

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"propmedia/services/web/internal/entity"
)

func (c *Client) UploadMedia(ctx context.Context, postID int64, file entity.Upload) (*entity.Media, error) {
	fields := []formField{{name: "post_id", value: strconv.FormatInt(postID, 10)}}
	req, err := multipartRequest("media.upload", http.MethodPost, "/media/upload", fields, []formFile{{field: "file", upload: file}})
	if err != nil {
		return nil, err
	}

	var media entity.Media
	if err := c.doJSON(ctx, req, &media, "data", "media"); err != nil {
		return nil, err
	}
	return &media, nil
}

func (c *Client) DeleteMedia(ctx context.Context, id int64) error {
	_, err := c.do(ctx, request{operation: "media.delete", method: http.MethodDelete, path: fmt.Sprintf("/media/%d", id)})
	return err
}
