package usecase

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/visiondraft/visiondraft/internal/pkg/goerror"
	"github.com/visiondraft/visiondraft/internal/pkg/storage"
	"github.com/visiondraft/visiondraft/internal/studio/entity"
)

type ArtworkGenerateInput struct {
	Prompt string `validate:"required,min=3,max=2000"`
	Model  string
	Width  int32  `validate:"omitempty,gte=64,lte=2048"`
	Height int32  `validate:"omitempty,gte=64,lte=2048"`
	Seed   int64
}

type ArtworkGenerateOutput struct {
	Artwork  entity.Artwork
	ImageURL string
}

// ArtworkGenerate renders a prompt, stores the image bytes and records the
// artwork in the caller's gallery. The seed defaults to a per-call value so
// identical prompts still produce different images unless the user pins one.
func (s *Usecase) ArtworkGenerate(ctx context.Context, in ArtworkGenerateInput) (*ArtworkGenerateOutput, error) {
	ctx, span := s.startSpan(ctx, "ArtworkGenerate")
	defer span.End()

	clm, err := s.authenticated(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if in.Model == "" {
		in.Model = s.cfg.GetString("modules.studio.default_model")
	}
	if in.Width == 0 {
		in.Width = s.cfg.GetInt32("modules.studio.default_width")
	}
	if in.Height == 0 {
		in.Height = s.cfg.GetInt32("modules.studio.default_height")
	}
	if in.Seed == 0 {
		in.Seed = s.uid.Generate() % 1_000_000_000
	}

	img, err := s.provider.GenerateImage(ctx, entity.ImageSpec{
		Prompt: in.Prompt,
		Model:  in.Model,
		Width:  in.Width,
		Height: in.Height,
		Seed:   in.Seed,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate image", "user_id", clm.UserID, "error", err)
		return nil, err
	}

	artworkID := s.uid.Generate()
	key := objectKey(clm.UserID, artworkID)

	info, err := s.storage.PutObject(ctx, s.bucket(), key, bytes.NewReader(img.Data), storage.PutOptions{
		Size:        int64(len(img.Data)),
		ContentType: img.ContentType,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to store generated image", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	art := entity.Artwork{
		ID:          artworkID,
		UserID:      clm.UserID,
		Prompt:      in.Prompt,
		Model:       in.Model,
		Width:       in.Width,
		Height:      in.Height,
		Seed:        in.Seed,
		ObjectKey:   info.Key,
		ContentType: img.ContentType,
		Size:        int64(len(img.Data)),
		CreatedAt:   s.clock.Now(),
	}
	if err := s.repoDB.CreateArtwork(ctx, art); err != nil {
		slog.ErrorContext(ctx, "failed to repo create artwork", "user_id", clm.UserID, "error", err)

		if delErr := s.storage.DeleteObject(ctx, s.bucket(), key); delErr != nil {
			slog.ErrorContext(ctx, "failed to clean up orphaned image object", "key", key, "error", delErr)
		}

		return nil, goerror.NewServer(err)
	}

	imageURL, err := s.storage.PresignGet(ctx, s.bucket(), key, s.presignExpiry())
	if err != nil {
		slog.ErrorContext(ctx, "failed to presign image url", "key", key, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &ArtworkGenerateOutput{Artwork: art, ImageURL: imageURL}, nil
}

func (s *Usecase) presignExpiry() time.Duration {
	expiry := s.cfg.GetMinute("modules.studio.presign_expiry_minutes")
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	return expiry
}
