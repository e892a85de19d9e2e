package entity

import "io"

// Upload is one file forwarded to the content API.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}
