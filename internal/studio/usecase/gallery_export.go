package usecase

import (
	"archive/zip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/visiondraft/visiondraft/internal/pkg/goerror"
	"github.com/visiondraft/visiondraft/internal/pkg/storage"
)

// GalleryExport streams the caller's gallery as a ZIP archive to w. Entries
// are written straight from object storage, one object in flight at a time,
// so the archive size never has to fit in memory.
func (s *Usecase) GalleryExport(ctx context.Context, w io.Writer) error {
	ctx, span := s.startSpan(ctx, "GalleryExport")
	defer span.End()

	clm, err := s.authenticated(ctx)
	if err != nil {
		return err
	}

	arts, err := s.repoDB.GetAllArtworks(ctx, clm.UserID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get all artworks", "user_id", clm.UserID, "error", err)
		return goerror.NewServer(err)
	}

	if len(arts) == 0 {
		return goerror.NewBusiness("gallery is empty", goerror.CodeNotFound)
	}

	zw := zip.NewWriter(w)

	manifest := make([]manifestEntry, 0, len(arts))

	for i, art := range arts {
		name := fmt.Sprintf("%03d-%d%s", i+1, art.ID, extensionFor(art.ContentType))

		entry, err := zw.Create(name)
		if err != nil {
			return goerror.NewServer(err)
		}

		obj, _, err := s.storage.GetObject(ctx, s.bucket(), art.ObjectKey, storage.GetOptions{})
		if err != nil {
			slog.ErrorContext(ctx, "failed to get image object", "key", art.ObjectKey, "error", err)
			return goerror.NewServer(err)
		}

		_, err = io.Copy(entry, obj)
		obj.Close()
		if err != nil {
			return goerror.NewServer(err)
		}

		manifest = append(manifest, manifestEntry{
			File:      name,
			Prompt:    art.Prompt,
			Model:     art.Model,
			Width:     art.Width,
			Height:    art.Height,
			Seed:      art.Seed,
			CreatedAt: art.CreatedAt,
		})
	}

	if err := writeManifest(zw, manifest); err != nil {
		return goerror.NewServer(err)
	}

	if err := zw.Close(); err != nil {
		return goerror.NewServer(err)
	}

	return nil
}

type manifestEntry struct {
	File      string    `json:"file"`
	Prompt    string    `json:"prompt"`
	Model     string    `json:"model"`
	Width     int32     `json:"width"`
	Height    int32     `json:"height"`
	Seed      int64     `json:"seed"`
	CreatedAt time.Time `json:"created_at"`
}

func writeManifest(zw *zip.Writer, manifest []manifestEntry) error {
	entry, err := zw.Create("manifest.json")
	if err != nil {
		return err
	}

	enc := json.NewEncoder(entry)
	enc.SetIndent("", "  ")

	return enc.Encode(manifest)
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}
