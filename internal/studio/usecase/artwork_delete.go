package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/visiondraft/visiondraft/internal/pkg/goerror"
)

type ArtworkDeleteInput struct {
	ID int64 `validate:"required,gt=0"`
}

func (s *Usecase) ArtworkDelete(ctx context.Context, in ArtworkDeleteInput) error {
	ctx, span := s.startSpan(ctx, "ArtworkDelete")
	defer span.End()

	clm, err := s.authenticated(ctx)
	if err != nil {
		return err
	}

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	art, err := s.repoDB.GetArtwork(ctx, in.ID, clm.UserID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "artwork not found", "artwork_id", in.ID, "user_id", clm.UserID)
		return goerror.NewBusiness("artwork not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get artwork", "artwork_id", in.ID, "error", err)
		return goerror.NewServer(err)
	}

	if err := s.repoDB.DeleteArtwork(ctx, art.ID, clm.UserID); err != nil {
		slog.ErrorContext(ctx, "failed to repo delete artwork", "artwork_id", art.ID, "error", err)
		return goerror.NewServer(err)
	}

	if err := s.storage.DeleteObject(ctx, s.bucket(), art.ObjectKey); err != nil {
		slog.ErrorContext(ctx, "failed to delete image object", "key", art.ObjectKey, "error", err)
	}

	return nil
}
