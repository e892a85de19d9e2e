package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"time"

	"propmedia/pkg/config"
	"propmedia/pkg/logger"
	"propmedia/services/web/internal/entity"
	"propmedia/services/web/internal/repo/remote"

	"github.com/brianvoe/gofakeit/v6"
)

// seed fills a development content API with demo posts through the same
// client the web front end uses. Posts arrive as pending and still need a
// moderator.
func main() {
	var (
		email    = flag.String("email", "", "staff account email")
		password = flag.String("password", "", "staff account password")
		count    = flag.Int("count", 12, "number of posts to create")
		carousel = flag.Int("carousel", 3, "images per carousel post")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log := logger.New()
	if *email == "" || *password == "" {
		log.Error("Both -email and -password are required")
		return
	}

	client := remote.NewClient(cfg.APIBaseURL, cfg.APITimeout, log)
	ctx := context.Background()

	auth, err := client.Login(ctx, remote.Credentials{Email: *email, Password: *password})
	if err != nil {
		log.Error("Failed to sign in as %s: %v", *email, err)
		panic(err)
	}
	ctx = remote.WithToken(ctx, auth.Token)
	log.Info("Signed in as %s (%s)", auth.User.Name, auth.User.Role)

	created := 0
	for i := 0; i < *count; i++ {
		post := fakePost(i, *carousel)
		p, err := client.CreatePost(ctx, post)
		if err != nil {
			log.Error("Failed to create post %d: %v", i+1, remote.Message(err, err.Error()))
			continue
		}
		created++
		log.Info("Created post %d: %s (%s, %s)", p.ID, post.Title, post.PostType, post.Category)
		time.Sleep(200 * time.Millisecond)
	}

	log.Info("Seeding finished: %d of %d posts created", created, *count)
}

// fakePost alternates static and carousel posts across every category.
// Reels need a real video file and are left out.
func fakePost(i, carouselSize int) entity.NewPost {
	category := entity.Categories[i%len(entity.Categories)]
	postType := entity.PostTypeStatic
	images := 1
	if i%2 == 1 {
		postType = entity.PostTypeCarousel
		images = carouselSize
	}

	post := entity.NewPost{
		Category:    category,
		PostType:    postType,
		Title:       fmt.Sprintf("%s listing in %s", capitalize(gofakeit.Adjective()), gofakeit.City()),
		Description: fakeDescription(category),
	}
	for n := 0; n < images; n++ {
		post.Images = append(post.Images, entity.Upload{
			Filename:    fmt.Sprintf("seed_%d_%d.png", i, n),
			ContentType: "image/png",
			Body:        bytes.NewReader(placeholderImage(640, 480)),
		})
	}
	return post
}

func fakeDescription(category entity.Category) string {
	return fmt.Sprintf("%s. %s Located on %s. Asking %.0f.",
		category.Label(),
		gofakeit.Sentence(18),
		gofakeit.Street(),
		gofakeit.Price(50000, 900000),
	)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// placeholderImage draws a flat colour with a darker band so each seeded
// image is visibly different.
func placeholderImage(w, h int) []byte {
	base := color.RGBA{R: gofakeit.Uint8(), G: gofakeit.Uint8(), B: gofakeit.Uint8(), A: 255}
	band := color.RGBA{R: base.R / 2, G: base.G / 2, B: base.B / 2, A: 255}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if y > h*2/3 {
				img.Set(x, y, band)
			} else {
				img.Set(x, y, base)
			}
		}
	}

	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}
