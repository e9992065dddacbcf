package store

import (
	"context"
	"fmt"

	"github.com/dukerupert/portfolio/internal/database"
	"github.com/dukerupert/portfolio/internal/model"
)

const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Open builds the store named by driver. The sqlite driver opens
// sqlitePath, which defaults to an in-memory database.
func Open(driver, sqlitePath string, opts ...Option) (Store, error) {
	switch driver {
	case "", DriverMemory:
		return NewMemoryStore(opts...), nil
	case DriverSQLite:
		if sqlitePath == "" {
			sqlitePath = database.MemoryPath
		}
		db, err := database.Open(sqlitePath)
		if err != nil {
			return nil, err
		}
		return NewSQLiteStore(db, opts...), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

// SeedContent is the fixed catalog loaded at startup.
var SeedContent = []NewContent{
	{
		Title:       "Q3 2023 Market Outlook: Navigating Uncertain Times",
		Body:        "Full content of market analysis...",
		Excerpt:     "Our financial experts break down current market trends and provide strategies for protecting your investments in volatile conditions.",
		Category:    "Market Analysis",
		ImageURL:    "https://images.unsplash.com/photo-1516321165247-4aa89a48be28?auto=format&fit=crop&w=1021&q=80",
		AuthorName:  "Michael Chen",
		AuthorImage: "https://images.unsplash.com/photo-1500648767791-00dcc994a43e?auto=format&fit=crop&w=687&q=80",
		MinTier:     model.TierBasic,
		ReadTime:    12,
	},
	{
		Title:       "The Evolution of AI: What Business Leaders Need to Know",
		Body:        "Full content about AI evolution...",
		Excerpt:     "Explore the latest advancements in artificial intelligence and learn how to leverage AI technologies in your organization.",
		Category:    "Technology",
		ImageURL:    "https://images.unsplash.com/photo-1551434678-e076c223a692?auto=format&fit=crop&w=1170&q=80",
		AuthorName:  "Sophia Rodriguez",
		AuthorImage: "https://images.unsplash.com/photo-1494790108377-be9c29b29330?auto=format&fit=crop&w=687&q=80",
		MinTier:     model.TierProfessional,
		ReadTime:    9,
	},
	{
		Title:       "5 Leadership Techniques from Fortune 500 CEOs",
		Body:        "Full content about leadership techniques...",
		Excerpt:     "Learn the proven management strategies that have helped top executives build world-class teams and drive exceptional results.",
		Category:    "Leadership",
		ImageURL:    "https://images.unsplash.com/photo-1517245386807-bb43f82c33c4?auto=format&fit=crop&w=1170&q=80",
		AuthorName:  "James Wilson",
		AuthorImage: "https://images.unsplash.com/photo-1472099645785-5658abf4ff4e?auto=format&fit=crop&w=1170&q=80",
		MinTier:     model.TierEnterprise,
		ReadTime:    15,
	},
}

// Seed loads SeedContent into s unless it already holds content.
func Seed(ctx context.Context, s Store) error {
	existing, err := s.ListContent(ctx)
	if err != nil {
		return fmt.Errorf("list content: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}
	for _, c := range SeedContent {
		if _, err := s.CreateContent(ctx, c); err != nil {
			return fmt.Errorf("seed %q: %w", c.Title, err)
		}
	}
	return nil
}
