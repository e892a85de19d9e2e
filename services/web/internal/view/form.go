package view

import (
	"errors"
	"fmt"
	"strings"

	"propmedia/services/web/internal/entity"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// PropertyFields are the optional hints sent to the assistant, in display
// order.
var PropertyFields = []string{"location", "price", "bedrooms", "size", "features"}

// PostForm is bound straight from the create and edit forms.
type PostForm struct {
	Title       string `form:"title" json:"title" binding:"required,notblank,max=255"`
	Description string `form:"description" json:"description" binding:"required,notblank"`
	Category    string `form:"category" json:"category" binding:"required,post_category"`
	PostType    string `form:"post_type" json:"post_type" binding:"required,post_type"`
	Location    string `form:"location" json:"location"`
	Price       string `form:"price" json:"price"`
	Bedrooms    string `form:"bedrooms" json:"bedrooms"`
	Size        string `form:"size" json:"size"`
	Features    string `form:"features" json:"features"`
	SubmitToken string `form:"submit_token" json:"-"`

	Errors map[string]string `form:"-" json:"-"`
}

// EditForm only carries the fields the API lets staff change.
type EditForm struct {
	Title       string `form:"title" binding:"required,notblank,max=255"`
	Description string `form:"description" binding:"required,notblank"`

	Errors map[string]string `form:"-"`
}

// RegisterValidations adds the post enum rules and notblank to v. It is
// called once on gin's validator engine at startup.
func RegisterValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		return err
	}
	if err := v.RegisterValidation("post_category", func(fl validator.FieldLevel) bool {
		return entity.Category(fl.Field().String()).Valid()
	}); err != nil {
		return err
	}
	return v.RegisterValidation("post_type", func(fl validator.FieldLevel) bool {
		return entity.PostType(fl.Field().String()).Valid()
	})
}

func (f *PostForm) PropertyData() map[string]string {
	data := map[string]string{}
	for key, value := range map[string]string{
		"location": f.Location,
		"price":    f.Price,
		"bedrooms": f.Bedrooms,
		"size":     f.Size,
		"features": f.Features,
	} {
		if value = strings.TrimSpace(value); value != "" {
			data[key] = value
		}
	}
	return data
}

func (f *PostForm) AssistRequest() entity.AssistRequest {
	return entity.AssistRequest{
		Category:     entity.Category(f.Category),
		PostType:     entity.PostType(f.PostType),
		PropertyData: f.PropertyData(),
	}
}

// ApplySuggestion overwrites only the fields the assistant returned.
func (f *PostForm) ApplySuggestion(s *entity.Suggestion) {
	if s == nil {
		return
	}
	if s.Title != nil {
		f.Title = *s.Title
	}
	if s.Description != nil {
		f.Description = *s.Description
	}
}

func (f *PostForm) AddError(field, message string) {
	if f.Errors == nil {
		f.Errors = map[string]string{}
	}
	f.Errors[field] = message
}

func (f *PostForm) HasErrors() bool {
	return len(f.Errors) > 0
}

// NewPost converts a valid form plus its uploads.
func (f *PostForm) NewPost(images []entity.Upload, video *entity.Upload) entity.NewPost {
	return entity.NewPost{
		Category:    entity.Category(f.Category),
		PostType:    entity.PostType(f.PostType),
		Title:       strings.TrimSpace(f.Title),
		Description: strings.TrimSpace(f.Description),
		Images:      images,
		Video:       video,
	}
}

// ValidateMedia checks the uploads against the post type. Static takes one
// image, Carousel at least one, Reel exactly one video.
func ValidateMedia(t entity.PostType, images int, hasVideo bool) map[string]string {
	errs := map[string]string{}
	switch t {
	case entity.PostTypeStatic:
		if images != 1 {
			errs["images"] = "A static post needs exactly one image"
		}
	case entity.PostTypeCarousel:
		if images < 1 {
			errs["images"] = "A carousel needs at least one image"
		}
	case entity.PostTypeReel:
		if !hasVideo {
			errs["video"] = "A reel needs a video"
		}
	}
	return errs
}

// FieldErrors turns a binding error into per-field messages keyed by form
// field name. Anything that is not a validation error lands under "form".
func FieldErrors(err error) map[string]string {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"form": "The form could not be read"}
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[formName(fe.Field())] = fieldMessage(fe)
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "min":
		return fmt.Sprintf("Must be at least %s characters long", fe.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s characters long", fe.Param())
	case "post_category":
		return "Choose one of the listed categories"
	case "post_type":
		return "Choose Static, Carousel or Reel"
	}
	return fmt.Sprintf("Invalid value (failed on '%s' tag)", fe.Tag())
}

// formName maps a struct field name such as PostType to post_type.
func formName(field string) string {
	var b strings.Builder
	for i, r := range field {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
