package remote

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"

	"propmedia/services/web/internal/entity"
)

type formField struct {
	name  string
	value string
}

type formFile struct {
	field  string
	upload entity.Upload
}

// multipartRequest buffers the whole form so the request carries a
// Content-Length; uploads are bounded by the browser-facing handler.
func multipartRequest(operation, method, path string, fields []formField, files []formFile) (request, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return request{}, fmt.Errorf("%s: failed to write field %s: %w", operation, f.name, err)
		}
	}

	for _, f := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			escapeQuotes(f.field), escapeQuotes(f.upload.Filename)))
		contentType := f.upload.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header.Set("Content-Type", contentType)

		part, err := w.CreatePart(header)
		if err != nil {
			return request{}, fmt.Errorf("%s: failed to create part: %w", operation, err)
		}
		if _, err := io.Copy(part, f.upload.Body); err != nil {
			return request{}, fmt.Errorf("%s: failed to copy %s: %w", operation, f.upload.Filename, err)
		}
	}

	if err := w.Close(); err != nil {
		return request{}, fmt.Errorf("%s: failed to close form: %w", operation, err)
	}

	return request{
		operation:   operation,
		method:      method,
		path:        path,
		body:        &buf,
		contentType: w.FormDataContentType(),
	}, nil
}

func escapeQuotes(s string) string {
	var b bytes.Buffer
	for _, r := range s {
		if r == '"' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
