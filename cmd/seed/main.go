// Package main provides a tool to seed the record store with test data.
//
// This creates a root user and a handful of completed thumbnail records
// so the gallery, search, and polling flows can be exercised without a
// provider key.
//
// Usage:
//
//	STORE_PATH=~/Thumblify/metadata/store go run ./cmd/seed
//	STORE_PATH=~/Thumblify/metadata/store go run ./cmd/seed --email you@example.com
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/thumblifyapp/thumblify-server/internal/auth"
	"github.com/thumblifyapp/thumblify-server/internal/domain"
	"github.com/thumblifyapp/thumblify-server/internal/id"
	"github.com/thumblifyapp/thumblify-server/internal/normalize"
	"github.com/thumblifyapp/thumblify-server/internal/store"
)

var (
	email    = flag.String("email", "root@example.com", "Root user email")
	password = flag.String("password", "changeme-now", "Root user password")
	count    = flag.Int("count", 6, "Number of sample thumbnails to create")
)

// samples cycle through the style and color enums so the gallery shows
// some variety.
var samples = []struct {
	title  string
	style  domain.Style
	aspect domain.AspectRatio
	scheme domain.ColorScheme
}{
	{"10 Tips for Better Sleep", domain.StyleMinimalist, domain.AspectRatio16x9, domain.ColorSchemePastel},
	{"I Built a Gaming PC in 24 Hours", domain.StyleBold, domain.AspectRatio16x9, domain.ColorSchemeNeon},
	{"The History of Rome in 20 Minutes", domain.StyleCinematic, domain.AspectRatio16x9, domain.ColorSchemeEarthy},
	{"Sourdough for Beginners", domain.StylePlayful, domain.AspectRatio1x1, domain.ColorSchemeWarm},
	{"Synthwave Mix Vol. 3", domain.StyleRetro, domain.AspectRatio1x1, domain.ColorSchemeDark},
	{"Why Quantum Computers Matter", domain.StyleFuturistic, domain.AspectRatio16x9, domain.ColorSchemeCool},
}

func main() {
	flag.Parse()

	storePath := os.Getenv("STORE_PATH")
	if storePath == "" {
		storePath = os.ExpandEnv("$HOME/Thumblify/metadata/store")
	}

	fmt.Printf("Opening record store at: %s\n", storePath)

	s, err := store.New(storePath, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	rootID, err := ensureRootUser(ctx, s)
	if err != nil {
		log.Fatalf("Failed to create root user: %v", err)
	}

	created := 0
	for i := 0; i < *count; i++ {
		sample := samples[i%len(samples)]

		thumbID, err := id.Generate(id.PrefixThumbnail)
		if err != nil {
			log.Fatalf("Failed to generate id: %v", err)
		}

		thumb := domain.NewThumbnail(thumbID, rootID, "seeded record, no prompt sent", domain.ThumbnailParams{
			Title:       sample.title,
			Style:       sample.style,
			AspectRatio: sample.aspect,
			ColorScheme: sample.scheme,
		})
		imageURL := fmt.Sprintf("https://placehold.co/1280x720.png?text=%d", i+1)
		if err := thumb.MarkCompleted(imageURL, "", domain.ImageMeta{
			Width:    1280,
			Height:   720,
			MimeType: "image/png",
		}); err != nil {
			log.Fatalf("Failed to complete sample: %v", err)
		}

		// Spread creation times so the newest-first gallery order is visible
		thumb.CreatedAt = time.Now().Add(-time.Duration(i) * time.Hour)
		thumb.UpdatedAt = thumb.CreatedAt

		if err := s.CreateThumbnail(ctx, thumb); err != nil {
			log.Fatalf("Failed to create thumbnail: %v", err)
		}
		created++
	}

	fmt.Printf("Seeded %d thumbnails for %s\n", created, *email)
}

// ensureRootUser creates the root account if it does not already exist
// and returns its id.
func ensureRootUser(ctx context.Context, s *store.Store) (string, error) {
	existing, err := s.Users.GetByIndex(ctx, "email", normalize.Email(*email))
	if err == nil {
		fmt.Printf("Root user already exists: %s\n", existing.ID)
		return existing.ID, nil
	}

	hash, err := auth.HashPassword(*password)
	if err != nil {
		return "", err
	}

	userID, err := id.Generate(id.PrefixUser)
	if err != nil {
		return "", err
	}

	user := &domain.User{
		Email:        normalize.Email(*email),
		DisplayName:  "Root",
		PasswordHash: hash,
		IsRoot:       true,
	}
	user.ID = userID
	user.InitTimestamps()

	if err := s.Users.Create(ctx, userID, user); err != nil {
		return "", err
	}

	fmt.Printf("Created root user %s (%s)\n", userID, *email)
	return userID, nil
}
