package usecase

import (
	"context"
	"log/slog"

	"github.com/visiondraft/visiondraft/internal/pkg/goerror"
)

type GalleryClearOutput struct {
	Removed int64
}

// GalleryClear wipes the caller's whole gallery. Object deletion is best
// effort after the records go; a leaked object without a record is invisible
// to the user and cheap, the reverse would be a broken gallery entry.
func (s *Usecase) GalleryClear(ctx context.Context) (*GalleryClearOutput, error) {
	ctx, span := s.startSpan(ctx, "GalleryClear")
	defer span.End()

	clm, err := s.authenticated(ctx)
	if err != nil {
		return nil, err
	}

	arts, err := s.repoDB.GetAllArtworks(ctx, clm.UserID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get all artworks", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	removed, err := s.repoDB.DeleteArtworksByUser(ctx, clm.UserID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo delete artworks", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	for _, art := range arts {
		if err := s.storage.DeleteObject(ctx, s.bucket(), art.ObjectKey); err != nil {
			slog.ErrorContext(ctx, "failed to delete image object", "key", art.ObjectKey, "error", err)
		}
	}

	return &GalleryClearOutput{Removed: removed}, nil
}
