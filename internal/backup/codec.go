// Package backup writes the record store to a portable zip archive and
// restores it from one.
//
// An archive holds data.json plus one images/friend_<id>.jpg entry per
// friend photo. Friend records in data.json reference their photo by entry
// name.
package backup

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/mmynk/kinship/internal/apperr"
	"github.com/mmynk/kinship/internal/models"
)

// maxEntrySize bounds a single decompressed entry.
const maxEntrySize = 64 << 20

func imageName(friendID int64) string {
	return fmt.Sprintf("%sfriend_%d.jpg", imagePrefix, friendID)
}

// ArchiveName returns the suggested file name for an archive made at now.
func ArchiveName(now time.Time) string {
	return "Kinship_Backup_" + now.UTC().Format("2006-01-02") + ".zip"
}

// Export writes snap as a zip archive to w.
func Export(w io.Writer, snap *models.Snapshot, now time.Time) error {
	doc := document{
		Version:      FormatVersion,
		Timestamp:    formatTime(now),
		Friends:      make([]friendDoc, 0, len(snap.Friends)),
		Interactions: make([]interactionDoc, 0, len(snap.Interactions)),
		Memos:        make([]memoDoc, 0, len(snap.Memos)),
	}

	zw := zip.NewWriter(w)
	for i := range snap.Friends {
		f := &snap.Friends[i]
		doc.Friends = append(doc.Friends, friendToDoc(f))
		if len(f.Photo) == 0 {
			continue
		}
		// JPEG is already compressed.
		entry, err := zw.CreateHeader(&zip.FileHeader{
			Name:     imageName(f.ID),
			Method:   zip.Store,
			Modified: now,
		})
		if err != nil {
			return fmt.Errorf("failed to create image entry: %w", err)
		}
		if _, err := entry.Write(f.Photo); err != nil {
			return fmt.Errorf("failed to write image entry: %w", err)
		}
	}
	for i := range snap.Interactions {
		doc.Interactions = append(doc.Interactions, interactionToDoc(&snap.Interactions[i]))
	}
	for i := range snap.Memos {
		doc.Memos = append(doc.Memos, memoToDoc(&snap.Memos[i]))
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode data.json: %w", err)
	}
	entry, err := zw.CreateHeader(&zip.FileHeader{
		Name:     dataEntry,
		Method:   zip.Deflate,
		Modified: now,
	})
	if err != nil {
		return fmt.Errorf("failed to create data.json entry: %w", err)
	}
	if _, err := entry.Write(data); err != nil {
		return fmt.Errorf("failed to write data.json entry: %w", err)
	}
	return zw.Close()
}

// Decode parses an archive. It fails with an INVALID_ARGUMENT apperr when
// data.json is missing or unreadable. A missing image only clears that
// friend's photo. Interactions and memos pointing at friends absent from
// the archive are dropped.
func Decode(r io.ReaderAt, size int64) (*models.Snapshot, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, apperr.Malformed("not a zip archive", err)
	}

	entries := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		entries[f.Name] = f
	}

	dataFile, ok := entries[dataEntry]
	if !ok {
		return nil, apperr.Malformed("data.json not found", nil)
	}
	raw, err := readEntry(dataFile)
	if err != nil {
		return nil, apperr.Malformed("failed to read data.json", err)
	}
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, apperr.Malformed("failed to parse data.json", err)
	}
	if doc.Friends == nil && doc.Interactions == nil {
		return nil, apperr.Malformed("data.json has no friends or interactions", nil)
	}

	snap := &models.Snapshot{}
	known := make(map[int64]bool, len(doc.Friends))
	for i := range doc.Friends {
		d := &doc.Friends[i]
		f, err := d.toModel()
		if err != nil {
			return nil, apperr.Malformed(fmt.Sprintf("friend %d", d.ID), err)
		}
		f.Photo = resolvePhoto(d, entries)
		known[f.ID] = true
		snap.Friends = append(snap.Friends, f)
	}

	for i := range doc.Interactions {
		d := &doc.Interactions[i]
		if !known[d.FriendID] {
			slog.Warn("Skipping interaction for unknown friend", "id", d.ID, "friend_id", d.FriendID)
			continue
		}
		in, err := d.toModel()
		if err != nil {
			return nil, apperr.Malformed(fmt.Sprintf("interaction %d", d.ID), err)
		}
		snap.Interactions = append(snap.Interactions, in)
	}

	for i := range doc.Memos {
		d := &doc.Memos[i]
		if !known[d.FriendID] {
			slog.Warn("Skipping memo for unknown friend", "id", d.ID, "friend_id", d.FriendID)
			continue
		}
		m, err := d.toModel()
		if err != nil {
			return nil, apperr.Malformed(fmt.Sprintf("memo %d", d.ID), err)
		}
		snap.Memos = append(snap.Memos, m)
	}

	return snap, nil
}

// DecodeBytes parses an archive held in memory.
func DecodeBytes(data []byte) (*models.Snapshot, error) {
	return Decode(bytes.NewReader(data), int64(len(data)))
}

// resolvePhoto returns the photo bytes a friend record refers to, or nil.
func resolvePhoto(d *friendDoc, entries map[string]*zip.File) []byte {
	if d.Photo == nil || *d.Photo == "" {
		return nil
	}
	ref := *d.Photo

	// Some archives carry the photo inline as a data URL.
	if strings.HasPrefix(ref, "data:image") {
		_, payload, ok := strings.Cut(ref, ",")
		if !ok {
			slog.Warn("Dropping malformed inline photo", "friend_id", d.ID)
			return nil
		}
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			slog.Warn("Dropping malformed inline photo", "friend_id", d.ID, "error", err)
			return nil
		}
		return data
	}

	if !strings.HasPrefix(ref, imagePrefix) {
		slog.Warn("Dropping photo with unknown reference", "friend_id", d.ID, "ref", ref)
		return nil
	}
	entry, ok := entries[ref]
	if !ok {
		slog.Warn("Photo missing from archive", "friend_id", d.ID, "ref", ref)
		return nil
	}
	data, err := readEntry(entry)
	if err != nil {
		slog.Warn("Failed to read photo from archive", "friend_id", d.ID, "ref", ref, "error", err)
		return nil
	}
	return data
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxEntrySize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxEntrySize {
		return nil, fmt.Errorf("entry %s exceeds %d bytes", f.Name, maxEntrySize)
	}
	return data, nil
}
