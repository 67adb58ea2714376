package usecase

import (
	"context"
	"log/slog"

	"github.com/samber/lo"
	"github.com/visiondraft/visiondraft/internal/pkg/goerror"
	"github.com/visiondraft/visiondraft/internal/studio/entity"
)

type ArtworkListInput struct {
	Size int32
	Page int32
}

type ArtworkItem struct {
	Artwork  entity.Artwork
	ImageURL string
}

type ArtworkListOutput struct {
	Page     int32
	Size     int32
	Total    int64
	Artworks []ArtworkItem
}

// ArtworkList pages through the caller's gallery, newest first, attaching a
// short-lived download URL to each item.
func (s *Usecase) ArtworkList(ctx context.Context, in ArtworkListInput) (*ArtworkListOutput, error) {
	ctx, span := s.startSpan(ctx, "ArtworkList")
	defer span.End()

	clm, err := s.authenticated(ctx)
	if err != nil {
		return nil, err
	}

	if in.Size <= 0 || in.Size > 100 {
		in.Size = 20 // default limit
	}

	arts, total, err := s.repoDB.GetArtworkList(ctx, entity.ArtworkListFilterData{
		UserID: clm.UserID,
		Size:   in.Size,
		Page:   (max(in.Page, 1) - 1) * in.Size,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list artworks", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	items := lo.Map(arts, func(art entity.Artwork, _ int) ArtworkItem {
		imageURL, err := s.storage.PresignGet(ctx, s.bucket(), art.ObjectKey, s.presignExpiry())
		if err != nil {
			slog.ErrorContext(ctx, "failed to presign image url", "key", art.ObjectKey, "error", err)
		}
		return ArtworkItem{Artwork: art, ImageURL: imageURL}
	})

	return &ArtworkListOutput{
		Page:     max(in.Page, 1),
		Size:     in.Size,
		Total:    total,
		Artworks: items,
	}, nil
}
