package service

import (
	"context"
	"io"

	"github.com/cozyshelfapp/shelf-server/internal/backup"
	"github.com/cozyshelfapp/shelf-server/internal/id"
	"github.com/cozyshelfapp/shelf-server/internal/logger"
	"github.com/cozyshelfapp/shelf-server/internal/store"
)

// BackupService exports and imports whole shelves.
type BackupService struct {
	store  *store.Store
	logger *logger.Logger
}

// NewBackupService creates a new backup service.
func NewBackupService(s *store.Store, log *logger.Logger) *BackupService {
	return &BackupService{store: s, logger: log}
}

// Export writes the user's complete shelf as an export document.
func (s *BackupService) Export(ctx context.Context, userID string, w io.Writer) error {
	books, err := s.store.Books.Snapshot(ctx, userID)
	if err != nil {
		return err
	}
	stickers, err := s.store.Stickers.Snapshot(ctx, userID)
	if err != nil {
		return err
	}
	goals, err := s.store.Goals.Snapshot(ctx, userID)
	if err != nil {
		return err
	}

	doc := backup.Export(books, stickers, goals)
	if err := doc.Write(w); err != nil {
		return err
	}

	s.logger.Info("shelf exported",
		"user_id", userID,
		"export_id", doc.ExportID,
		"books", len(books),
		"stickers", len(stickers),
		"goals", len(goals),
	)
	return nil
}

// ImportResult summarizes what an import added.
type ImportResult struct {
	Books    int `json:"books"`
	Stickers int `json:"stickers"`
	Goals    int `json:"goals"`
}

// Import reads an export document and adds its contents to the user's
// shelf. Imports are additive: existing entries are never modified or
// removed, and imported entities always get fresh IDs so repeated imports
// of the same document cannot collide.
func (s *BackupService) Import(ctx context.Context, userID string, r io.Reader) (*ImportResult, error) {
	doc, err := backup.Read(r)
	if err != nil {
		return nil, err
	}

	books, stickers, goals, err := backup.Prepare(doc, backup.ImportOptions{}, id.NowMs())
	if err != nil {
		return nil, err
	}

	if err := s.store.ImportBatch(ctx, userID, books, stickers, goals); err != nil {
		return nil, err
	}

	s.logger.Info("shelf imported",
		"user_id", userID,
		"export_id", doc.ExportID,
		"books", len(books),
		"stickers", len(stickers),
		"goals", len(goals),
	)
	return &ImportResult{
		Books:    len(books),
		Stickers: len(stickers),
		Goals:    len(goals),
	}, nil
}
