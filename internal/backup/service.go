package backup

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/mmynk/kinship/internal/apperr"
	"github.com/mmynk/kinship/internal/metrics"
	"github.com/mmynk/kinship/internal/models"
)

// ErrNotConfirmed rejects a restore the user has not confirmed.
var ErrNotConfirmed = apperr.FailedPrecondition("restore replaces all data and must be confirmed")

// Store is the part of the record store a backup needs.
type Store interface {
	Snapshot(ctx context.Context) (*models.Snapshot, error)
	ReplaceAll(ctx context.Context, snap *models.Snapshot) error
}

// Summary describes what a restore wrote.
type Summary struct {
	Friends      int `json:"friends"`
	Interactions int `json:"interactions"`
	Memos        int `json:"memos"`
}

// Service exports and restores the record store.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService creates a backup service over store.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Export writes an archive of the current store content to w.
func (s *Service) Export(ctx context.Context, w io.Writer) (err error) {
	defer func() { metrics.Backups.WithLabelValues("export", metrics.Result(err)).Inc() }()

	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to read store: %w", err)
	}
	if err := Export(w, snap, s.now()); err != nil {
		return err
	}
	slog.Info("Backup exported", "friends", len(snap.Friends), "interactions", len(snap.Interactions), "memos", len(snap.Memos))
	return nil
}

// ExportBytes returns the archive in memory.
func (s *Service) ExportBytes(ctx context.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.Export(ctx, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Restore replaces the store content with the archive in r. Nothing is
// touched unless confirm is set and the archive decodes cleanly.
func (s *Service) Restore(ctx context.Context, r io.ReaderAt, size int64, confirm bool) (summary Summary, err error) {
	defer func() { metrics.Backups.WithLabelValues("restore", metrics.Result(err)).Inc() }()

	if !confirm {
		return Summary{}, ErrNotConfirmed
	}

	snap, err := Decode(r, size)
	if err != nil {
		return Summary{}, err
	}
	if err := s.store.ReplaceAll(ctx, snap); err != nil {
		return Summary{}, fmt.Errorf("failed to replace store content: %w", err)
	}

	summary = Summary{
		Friends:      len(snap.Friends),
		Interactions: len(snap.Interactions),
		Memos:        len(snap.Memos),
	}
	slog.Info("Backup restored", "friends", summary.Friends, "interactions", summary.Interactions, "memos", summary.Memos)
	return summary, nil
}

// RestoreBytes restores from an archive held in memory.
func (s *Service) RestoreBytes(ctx context.Context, data []byte, confirm bool) (Summary, error) {
	return s.Restore(ctx, bytes.NewReader(data), int64(len(data)), confirm)
}
