package http

import (
	"net/url"
	"strconv"
	"strings"

	"propmedia/services/web/internal/entity"
	"propmedia/services/web/internal/repo/remote"
	"propmedia/services/web/internal/view"
)

type gridContent struct {
	Cards    []view.PostView
	Empty    string
	Err      string
	RetryURL string
}

type listContent struct {
	Heading    string
	Grid       gridContent
	Pagination *entity.Pagination
	PageBase   string
	Filter     entity.PostFilter
	ShowStatus bool
	Statuses   []entity.PostStatus
}

// listing describes one post list page: which posts, where it lives and how
// cards are decorated.
type listing struct {
	filter     entity.PostFilter
	path       string
	moderation bool
	empty      string
}

func (l listing) query() url.Values {
	q := url.Values{}
	if l.filter.Category != "" && l.path != categoryPath(l.filter.Category) {
		q.Set("category", string(l.filter.Category))
	}
	if l.filter.Status != "" && !l.moderation {
		q.Set("status", string(l.filter.Status))
	}
	if l.filter.Page > 1 {
		q.Set("page", strconv.Itoa(l.filter.Page))
	}
	return q
}

// pageBase is the listing URL without the page parameter.
func (l listing) pageBase() string {
	q := l.query()
	q.Del("page")
	if len(q) == 0 {
		return l.path
	}
	return l.path + "?" + q.Encode()
}

func (l listing) retryURL() string {
	if q := l.query().Encode(); q != "" {
		return l.path + "?" + q
	}
	return l.path
}

func (l listing) grid(media view.MediaResolver, viewer *entity.User, posts []entity.Post, slides url.Values, err error) gridContent {
	g := gridContent{Empty: l.empty}
	if err != nil {
		g.Err = remote.Message(err, "We could not load the posts.")
		g.RetryURL = l.retryURL()
		return g
	}
	query := l.query()
	for k, v := range slides {
		query[k] = v
	}
	g.Cards = view.NewPostViews(posts, media, viewer, l.path, query, l.moderation)
	return g
}

// stream is the live update URL for this listing.
func (l listing) stream(scope string) string {
	q := l.query()
	q.Set("scope", scope)
	if l.filter.Category != "" {
		q.Set("category", string(l.filter.Category))
	}
	return streamPath + "?" + q.Encode()
}

func categoryPath(c entity.Category) string {
	return "/category/" + string(c)
}

// slideParams keeps only the carousel positions of a request query.
func slideParams(q url.Values) url.Values {
	out := url.Values{}
	for k, v := range q {
		if strings.HasPrefix(k, "slide_") {
			out[k] = v
		}
	}
	return out
}
