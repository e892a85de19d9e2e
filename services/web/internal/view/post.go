package view

import (
	"fmt"
	"net/url"
	"strconv"

	"propmedia/services/web/internal/access"
	"propmedia/services/web/internal/entity"
)

// Carousel is the position of one carousel card. All methods are safe for
// an empty carousel.
type Carousel struct {
	Index int
	Len   int
}

// NewCarousel clamps an out-of-range requested index to 0.
func NewCarousel(n, requested int) Carousel {
	if n <= 0 {
		return Carousel{}
	}
	if requested < 0 || requested >= n {
		requested = 0
	}
	return Carousel{Index: requested, Len: n}
}

func (c Carousel) Next() int {
	if c.Len == 0 {
		return 0
	}
	return (c.Index + 1) % c.Len
}

func (c Carousel) Prev() int {
	if c.Len == 0 {
		return 0
	}
	return (c.Index - 1 + c.Len) % c.Len
}

func (c Carousel) HasControls() bool {
	return c.Len >= 2
}

// Indicator is the 1-based "i / n" label.
func (c Carousel) Indicator() string {
	if c.Len == 0 {
		return ""
	}
	return fmt.Sprintf("%d / %d", c.Index+1, c.Len)
}

type MediaItem struct {
	ID       int64
	URL      string
	MimeType string
	Index    int
	Active   bool
}

type Actions struct {
	Edit     bool
	Delete   bool
	Moderate bool
}

func (a Actions) Any() bool {
	return a.Edit || a.Delete || a.Moderate
}

// PostView is everything a card template needs for one post.
type PostView struct {
	Post          entity.Post
	CategoryLabel string
	Image         *MediaItem
	Carousel      Carousel
	Thumbnails    []MediaItem
	Video         *MediaItem
	VideoFailed   bool
	Actions       Actions

	basePath  string
	baseQuery url.Values
}

type RenderOptions struct {
	Viewer    *entity.User
	Slide     int
	BasePath  string
	BaseQuery url.Values
	// Moderation shows approve/reject on pending posts.
	Moderation bool
}

func NewPostView(p entity.Post, r MediaResolver, opts RenderOptions) PostView {
	v := PostView{
		Post:          p,
		CategoryLabel: p.Category.Label(),
		basePath:      opts.BasePath,
		baseQuery:     opts.BaseQuery,
		Actions: Actions{
			Edit:     access.CanEditPost(opts.Viewer, &p),
			Delete:   access.CanDeletePost(opts.Viewer, &p),
			Moderate: opts.Moderation && access.CanModerate(opts.Viewer) && p.Status == entity.StatusPending,
		},
	}

	switch p.PostType {
	case entity.PostTypeCarousel:
		images := p.Images()
		v.Carousel = NewCarousel(len(images), opts.Slide)
		for i, img := range images {
			item := mediaItem(r, img, i)
			item.Active = i == v.Carousel.Index
			v.Thumbnails = append(v.Thumbnails, item)
		}
		if v.Carousel.Len > 0 {
			current := v.Thumbnails[v.Carousel.Index]
			v.Image = &current
		}
	case entity.PostTypeReel:
		videos := p.Videos()
		if len(videos) > 0 {
			item := mediaItem(r, videos[0], 0)
			v.Video = &item
		}
		v.VideoFailed = v.Video == nil || v.Video.URL == ""
	default:
		if images := p.Images(); len(images) > 0 {
			item := mediaItem(r, images[0], 0)
			v.Image = &item
		}
	}

	return v
}

func mediaItem(r MediaResolver, m entity.Media, index int) MediaItem {
	return MediaItem{ID: m.ID, URL: r.Resolve(m), MimeType: m.MimeType, Index: index}
}

// SlideParam is the query key holding a carousel's index.
func SlideParam(postID int64) string {
	return "slide_" + strconv.FormatInt(postID, 10)
}

// SlideURL links to the current page with this card's carousel at i.
func (v PostView) SlideURL(i int) string {
	q := url.Values{}
	for k, vals := range v.baseQuery {
		q[k] = append([]string(nil), vals...)
	}
	q.Set(SlideParam(v.Post.ID), strconv.Itoa(i))
	return fmt.Sprintf("%s?%s#post-%d", v.basePath, q.Encode(), v.Post.ID)
}

// NewPostViews builds cards for a grid, reading each carousel position from
// query.
func NewPostViews(posts []entity.Post, r MediaResolver, viewer *entity.User, basePath string, query url.Values, moderation bool) []PostView {
	views := make([]PostView, 0, len(posts))
	for _, p := range posts {
		slide, _ := strconv.Atoi(query.Get(SlideParam(p.ID)))
		views = append(views, NewPostView(p, r, RenderOptions{
			Viewer:     viewer,
			Slide:      slide,
			BasePath:   basePath,
			BaseQuery:  query,
			Moderation: moderation,
		}))
	}
	return views
}
