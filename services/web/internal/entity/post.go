package entity

type Category string

const (
	CategoryRentals              Category = "rentals"
	CategoryPropertySales        Category = "property_sales"
	CategoryLandsAndPlots        Category = "lands_and_plots"
	CategoryPropertyServices     Category = "property_services"
	CategoryInvestment           Category = "investment"
	CategoryConstructionPropMgmt Category = "construction_property_management"
)

var Categories = []Category{
	CategoryRentals,
	CategoryPropertySales,
	CategoryLandsAndPlots,
	CategoryPropertyServices,
	CategoryInvestment,
	CategoryConstructionPropMgmt,
}

var categoryLabels = map[Category]string{
	CategoryRentals:              "Rentals",
	CategoryPropertySales:        "Property Sales",
	CategoryLandsAndPlots:        "Lands & Plots",
	CategoryPropertyServices:     "Property Services",
	CategoryInvestment:           "Investment",
	CategoryConstructionPropMgmt: "Construction & Property Management",
}

var categoryCallsToAction = map[Category]string{
	CategoryRentals:              "No rentals listed yet. Check back soon or contact us to list your property.",
	CategoryPropertySales:        "No properties for sale right now. Get in touch and we will find one for you.",
	CategoryLandsAndPlots:        "No lands or plots available yet. Contact us about upcoming plots.",
	CategoryPropertyServices:     "No services posted yet. Ask us about valuation, surveying and legal support.",
	CategoryInvestment:           "No investment opportunities published yet. Talk to us about your goals.",
	CategoryConstructionPropMgmt: "No construction or management updates yet. Contact us for a quote.",
}

func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

func (c Category) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}

// CallToAction is shown on an empty listing for the category.
func (c Category) CallToAction() string {
	if cta, ok := categoryCallsToAction[c]; ok {
		return cta
	}
	return "No posts yet."
}

type PostType string

const (
	PostTypeStatic   PostType = "Static"
	PostTypeCarousel PostType = "Carousel"
	PostTypeReel     PostType = "Reel"
)

var PostTypes = []PostType{PostTypeStatic, PostTypeCarousel, PostTypeReel}

func (t PostType) Valid() bool {
	switch t {
	case PostTypeStatic, PostTypeCarousel, PostTypeReel:
		return true
	}
	return false
}

type PostStatus string

const (
	StatusPending  PostStatus = "pending"
	StatusApproved PostStatus = "approved"
	StatusRejected PostStatus = "rejected"
)

func (s PostStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

type Media struct {
	ID       int64     `json:"id"`
	PostID   int64     `json:"post_id,omitempty"`
	FileType MediaType `json:"file_type"`
	MimeType string    `json:"mime_type,omitempty"`
	URL      string    `json:"url,omitempty"`
	FilePath string    `json:"file_path,omitempty"`
}

type Post struct {
	ID             int64      `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Category       Category   `json:"category"`
	PostType       PostType   `json:"post_type"`
	Status         PostStatus `json:"status"`
	ModerationNote string     `json:"moderation_note,omitempty"`
	Moderator      *User      `json:"moderator,omitempty"`
	UserID         int64      `json:"user_id"`
	Media          []Media    `json:"media"`
	CreatedAt      Timestamp  `json:"created_at"`
}

// Images keeps the server's order.
func (p *Post) Images() []Media {
	return p.mediaOf(MediaImage)
}

func (p *Post) Videos() []Media {
	return p.mediaOf(MediaVideo)
}

func (p *Post) mediaOf(t MediaType) []Media {
	var out []Media
	for _, m := range p.Media {
		if m.FileType == t {
			out = append(out, m)
		}
	}
	return out
}

// PendingOnly drops every post whose status is not pending, keeping order.
func PendingOnly(posts []Post) []Post {
	out := make([]Post, 0, len(posts))
	for _, p := range posts {
		if p.Status == StatusPending {
			out = append(out, p)
		}
	}
	return out
}

// PostFilter selects a post collection. Public lists only ever see approved
// posts and are fetched without a token.
type PostFilter struct {
	Category Category
	Status   PostStatus
	Page     int
	PerPage  int
	Public   bool
}

type NewPost struct {
	Category    Category
	PostType    PostType
	Title       string
	Description string
	Images      []Upload
	Video       *Upload
}

// AssistRequest asks the content API for suggested copy.
type AssistRequest struct {
	Category     Category          `json:"category"`
	PostType     PostType          `json:"post_type"`
	PropertyData map[string]string `json:"property_data,omitempty"`
}

// Suggestion fields are nil when the assistant did not return them.
type Suggestion struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}
