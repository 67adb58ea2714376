package usecase

import (
	"context"
	"log/slog"
)

type ConsumeUserDeletedInput struct {
	UserID   int64
	Username string
}

// ConsumeUserDeleted purges everything a deleted account left in the studio.
// Runs from the message consumer, so there is no authenticated caller here;
// the event itself is the authority.
func (s *Usecase) ConsumeUserDeleted(ctx context.Context, in ConsumeUserDeletedInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeUserDeleted")
	defer span.End()

	arts, err := s.repoDB.GetAllArtworks(ctx, in.UserID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get all artworks", "user_id", in.UserID, "error", err)
		return err
	}

	removed, err := s.repoDB.DeleteArtworksByUser(ctx, in.UserID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo delete artworks", "user_id", in.UserID, "error", err)
		return err
	}

	for _, art := range arts {
		if err := s.storage.DeleteObject(ctx, s.bucket(), art.ObjectKey); err != nil {
			slog.ErrorContext(ctx, "failed to delete image object", "key", art.ObjectKey, "error", err)
		}
	}

	slog.InfoContext(ctx, "purged artworks of deleted user", "user_id", in.UserID, "username", in.Username, "removed", removed)

	return nil
}
