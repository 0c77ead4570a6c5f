// Package main provides a tool to seed the database with a demo shelf.
//
// This creates a demo account with a handful of books, goals, and the
// starter sticker pack so a fresh install has something to look at.
//
// Usage:
//
//	DB_PATH=~/CozyShelf/db go run ./cmd/seed
//	DB_PATH=~/CozyShelf/db go run ./cmd/seed --email you@example.com
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/cozyshelfapp/shelf-server/internal/auth"
	"github.com/cozyshelfapp/shelf-server/internal/daily"
	"github.com/cozyshelfapp/shelf-server/internal/domain"
	"github.com/cozyshelfapp/shelf-server/internal/id"
	"github.com/cozyshelfapp/shelf-server/internal/store"
)

var (
	email    = flag.String("email", "demo@example.com", "Email for the demo account")
	password = flag.String("password", "demo-password-1", "Password for the demo account")
)

// demoBooks are the shelf entries the seed tool creates.
var demoBooks = []domain.Book{
	{
		Title:      "Atomic Habits",
		Status:     domain.StatusRead,
		Rating:     5,
		FinishedAt: "2026-07-14",
		Notes:      "Reread the chapter on habit stacking.",
	},
	{
		Title:      "The Psychology of Money",
		Status:     domain.StatusRead,
		Rating:     4,
		FinishedAt: "2026-05-02",
	},
	{
		Title:  "Deep Work",
		Status: domain.StatusRead,
		Rating: 4,
	},
	{
		Title:  "Leaders Eat Last",
		Status: domain.StatusToRead,
	},
}

func main() {
	flag.Parse()

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/CozyShelf/db")
	}

	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := store.New(dbPath, nil, store.NewNoopEmitter())
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	if existing, _ := s.GetUserByEmail(ctx, *email); existing != nil {
		log.Fatalf("Account %s already exists, nothing to do", *email)
	}

	hash, err := auth.HashPassword(*password)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           id.MustGenerate("usr"),
		Email:        domain.NormalizeEmail(*email),
		DisplayName:  "Demo Reader",
		PasswordHash: hash,
		CreatedAt:    now,
		CreatedAtMs:  now.UnixMilli(),
	}
	if err := s.CreateUser(ctx, user); err != nil {
		log.Fatalf("Failed to create user: %v", err)
	}
	fmt.Printf("Created account: %s (%s)\n", user.DisplayName, user.Email)

	// Stagger creation timestamps so the shelf has a stable newest-first order.
	books := make([]domain.Book, len(demoBooks))
	copy(books, demoBooks)
	for i := range books {
		books[i].ID = id.MustGenerate("bk")
		books[i].Normalize(now.Add(time.Duration(i-len(books)) * time.Hour).UnixMilli())
	}

	goals := []domain.Goal{
		{ID: id.MustGenerate("gl"), Text: "Finish Deep Work before the book club meets"},
		{ID: id.MustGenerate("gl"), Text: "Read 20 books this year", Due: "2026-12-31"},
	}
	for i := range goals {
		goals[i].Normalize(now.UnixMilli())
	}

	stickers := daily.StarterPack(now.UnixMilli())

	if err := s.ImportBatch(ctx, user.ID, books, stickers, goals); err != nil {
		log.Fatalf("Failed to seed shelf: %v", err)
	}

	fmt.Printf("Seeded %d books, %d goals, %d stickers\n", len(books), len(goals), len(stickers))
	fmt.Println("\nSeeding complete!")
	fmt.Printf("Log in with %s / %s\n", *email, *password)
}
