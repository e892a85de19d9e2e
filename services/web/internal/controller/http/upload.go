package http

import (
	"fmt"
	"io"
	"mime/multipart"

	"propmedia/services/web/internal/entity"

	"github.com/gin-gonic/gin"
)

// formUploads opens every file sent under field. The returned closer must
// be called once the uploads have been sent on.
func formUploads(c *gin.Context, field string) ([]entity.Upload, func(), error) {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil, func() {}, nil
	}

	var uploads []entity.Upload
	var files []io.Closer
	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}

	for _, header := range form.File[field] {
		upload, f, err := openUpload(header)
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		files = append(files, f)
		uploads = append(uploads, upload)
	}
	return uploads, closeAll, nil
}

func openUpload(header *multipart.FileHeader) (entity.Upload, io.Closer, error) {
	f, err := header.Open()
	if err != nil {
		return entity.Upload{}, nil, fmt.Errorf("failed to open %s: %w", header.Filename, err)
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return entity.Upload{Filename: header.Filename, ContentType: contentType, Body: f}, f, nil
}
