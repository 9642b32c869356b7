// Package main seeds a Folio data directory with demo users, books and reviews.
//
// Everything goes through the service layer, so ratings and the search index
// end up exactly as they would from real traffic.
//
// Usage:
//
//	go run ./cmd/seed -data-path ~/Folio/data
//	go run ./cmd/seed -data-path /tmp/folio -users 8 -reviews 40
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"time"

	"github.com/foliohq/folio-server/internal/auth"
	"github.com/foliohq/folio-server/internal/config"
	"github.com/foliohq/folio-server/internal/domain"
	domainerrors "github.com/foliohq/folio-server/internal/errors"
	"github.com/foliohq/folio-server/internal/logger"
	"github.com/foliohq/folio-server/internal/search"
	"github.com/foliohq/folio-server/internal/service"
	"github.com/foliohq/folio-server/internal/store/sqlite"
	"github.com/foliohq/folio-server/internal/validation"
)

const demoPassword = "folio-demo-password"

var demoBooks = []domain.BookFields{
	{Title: "The Left Hand of Darkness", Author: "Ursula K. Le Guin", Genre: "Science Fiction", PublishedYear: year(1969)},
	{Title: "Kindred", Author: "Octavia E. Butler", Genre: "Sci-Fi", PublishedYear: year(1979)},
	{Title: "Middlemarch", Author: "George Eliot", Genre: "Literary Fiction", PublishedYear: year(1871)},
	{Title: "The Name of the Rose", Author: "Umberto Eco", Genre: "Mystery", PublishedYear: year(1980)},
	{Title: "Beloved", Author: "Toni Morrison", Genre: "Literary Fiction", PublishedYear: year(1987)},
	{Title: "Piranesi", Author: "Susanna Clarke", Genre: "Fantasy", PublishedYear: year(2020)},
	{Title: "The Remains of the Day", Author: "Kazuo Ishiguro", Genre: "Literary Fiction", PublishedYear: year(1989)},
	{Title: "Rebecca", Author: "Daphne du Maurier", Genre: "Suspense", PublishedYear: year(1938)},
	{Title: "A Wizard of Earthsea", Author: "Ursula K. Le Guin", Genre: "Fantasy", PublishedYear: year(1968)},
	{Title: "Educated", Author: "Tara Westover", Genre: "Memoir", PublishedYear: year(2018)},
	{
		Title:       "The Master and Margarita",
		Author:      "Mikhail Bulgakov",
		Genre:       "Fantasy",
		Description: "<p>The devil visits <em>Soviet Moscow</em>.</p>",
	},
}

var reviewSnippets = []string{
	"",
	"Couldn't put it down.",
	"Slow start, worth it by the end.",
	"Not for me.",
	"Beautifully written.",
	"I keep recommending this one.",
}

func main() {
	dataPath := flag.String("data-path", "", "Folio data directory (default from config)")
	userCount := flag.Int("users", 5, "number of demo users to create")
	reviewCount := flag.Int("reviews", 25, "number of reviews to attempt")
	flag.Parse()

	cfg, err := config.Load([]string{})
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *dataPath != "" {
		cfg.Data.BasePath = *dataPath
	}
	if err := os.MkdirAll(cfg.Data.BasePath, 0o755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	lg := logger.New(logger.Config{Level: logger.ParseLevel("warn")})

	st, err := sqlite.Open(cfg.Data.DatabasePath(), lg.Logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	idx, err := search.Open(search.Options{Path: cfg.Data.SearchIndexPath(), Logger: lg.Logger})
	if err != nil {
		log.Fatalf("Failed to open search index: %v", err)
	}
	defer idx.Close()

	key, err := auth.LoadOrGenerateKey(cfg.Data.AuthKeyPath())
	if err != nil {
		log.Fatalf("Failed to load auth key: %v", err)
	}
	tokens, err := auth.NewTokenService(key, time.Hour)
	if err != nil {
		log.Fatalf("Failed to create token service: %v", err)
	}

	locks := service.NewBookLocks()
	authSvc := service.NewAuthService(st, tokens, validation.New(), lg.Logger)
	bookSvc := service.NewBookService(st, idx, locks, cfg.Catalog, lg.Logger)
	reviewSvc := service.NewReviewService(st, service.NewRatingAggregator(lg.Logger), locks, lg.Logger)

	ctx := context.Background()
	fmt.Printf("Seeding %s\n", cfg.Data.BasePath)

	users := make([]*domain.User, 0, *userCount)
	for n := range *userCount {
		name := fmt.Sprintf("reader%02d", n+1)
		user, err := ensureUser(ctx, authSvc, name)
		if err != nil {
			log.Fatalf("Failed to create user %s: %v", name, err)
		}
		users = append(users, user)
	}
	fmt.Printf("  %d users (password %q)\n", len(users), demoPassword)

	rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))

	books := make([]*domain.Book, 0, len(demoBooks))
	for _, fields := range demoBooks {
		owner := users[rng.IntN(len(users))]
		book, err := bookSvc.CreateBook(ctx, owner.ID, fields)
		if err != nil {
			log.Fatalf("Failed to create book %q: %v", fields.Title, err)
		}
		books = append(books, book)
	}
	fmt.Printf("  %d books\n", len(books))

	created, duplicates := 0, 0
	for range *reviewCount {
		book := books[rng.IntN(len(books))]
		user := users[rng.IntN(len(users))]
		rating := 1 + rng.IntN(domain.MaxRating)

		_, err := reviewSvc.AddReview(ctx, book.ID, user.ID, domain.ReviewInput{
			Rating:     &rating,
			ReviewText: reviewSnippets[rng.IntN(len(reviewSnippets))],
		})
		switch {
		case err == nil:
			created++
		case errors.Is(err, domainerrors.ErrDuplicateReview):
			duplicates++
		default:
			log.Fatalf("Failed to add review: %v", err)
		}
	}
	fmt.Printf("  %d reviews (%d duplicate pairs skipped)\n", created, duplicates)
}

// ensureUser registers name, or logs in when a previous run already did.
func ensureUser(ctx context.Context, svc *service.AuthService, name string) (*domain.User, error) {
	email := name + "@example.com"
	resp, err := svc.Register(ctx, service.RegisterRequest{Name: name, Email: email, Password: demoPassword})
	if errors.Is(err, domainerrors.ErrAlreadyExists) {
		resp, err = svc.Login(ctx, service.LoginRequest{Email: email, Password: demoPassword})
	}
	if err != nil {
		return nil, err
	}
	return resp.User, nil
}

func year(y int) *int {
	return &y
}
