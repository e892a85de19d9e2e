package view

import (
	"strings"

	"propmedia/services/web/internal/entity"
)

// MediaResolver turns media records into browser URLs using direct storage
// paths under a single base URL.
type MediaResolver struct {
	base string
}

func NewMediaResolver(base string) MediaResolver {
	return MediaResolver{base: strings.TrimRight(base, "/")}
}

// Resolve returns "" when the record has neither a url nor a file path.
func (r MediaResolver) Resolve(m entity.Media) string {
	if m.URL != "" {
		if strings.HasPrefix(m.URL, "http://") || strings.HasPrefix(m.URL, "https://") {
			return m.URL
		}
		return r.base + "/" + strings.TrimPrefix(m.URL, "/")
	}
	if m.FilePath != "" {
		return r.base + "/storage/" + strings.TrimPrefix(m.FilePath, "/")
	}
	return ""
}
