package usecase

import (
	"context"
	"fmt"

	"github.com/visiondraft/visiondraft/internal/pkg/clock"
	"github.com/visiondraft/visiondraft/internal/pkg/config"
	"github.com/visiondraft/visiondraft/internal/pkg/goerror"
	"github.com/visiondraft/visiondraft/internal/pkg/goroutine"
	"github.com/visiondraft/visiondraft/internal/pkg/instrument"
	"github.com/visiondraft/visiondraft/internal/pkg/jwt"
	"github.com/visiondraft/visiondraft/internal/pkg/storage"
	"github.com/visiondraft/visiondraft/internal/pkg/uid"
	"github.com/visiondraft/visiondraft/internal/pkg/validator"
	"github.com/visiondraft/visiondraft/internal/studio/entity"
	"go.opentelemetry.io/otel/trace"
)

type repoDB interface {
	CreateArtwork(ctx context.Context, art entity.Artwork) error
	GetArtwork(ctx context.Context, id, userID int64) (*entity.Artwork, error)
	GetArtworkList(ctx context.Context, filter entity.ArtworkListFilterData) ([]entity.Artwork, int64, error)
	GetAllArtworks(ctx context.Context, userID int64) ([]entity.Artwork, error)
	DeleteArtwork(ctx context.Context, id, userID int64) error
	DeleteArtworksByUser(ctx context.Context, userID int64) (int64, error)
}

type imageProvider interface {
	GenerateImage(ctx context.Context, spec entity.ImageSpec) (*entity.GeneratedImage, error)
}

type Usecase struct {
	repoDB    repoDB
	provider  imageProvider
	storage   storage.Storage
	validator validator.Validator
	cfg       config.Config
	uid       uid.NumberID
	clock     clock.Clocker
	ins       instrument.Instrumentation
	goroutine *goroutine.Manager
}

type Dependency struct {
	RepoDB     repoDB
	Provider   imageProvider
	Storage    storage.Storage
	Validator  validator.Validator
	Config     config.Config
	UID        uid.NumberID
	Clock      clock.Clocker
	Instrument instrument.Instrumentation
	Goroutine  *goroutine.Manager
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:    dep.RepoDB,
		provider:  dep.Provider,
		storage:   dep.Storage,
		validator: dep.Validator,
		cfg:       dep.Config,
		uid:       dep.UID,
		clock:     dep.Clock,
		ins:       dep.Instrument,
		goroutine: dep.Goroutine,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("studio.usecase").Start(ctx, name)
}

func (s *Usecase) authenticated(ctx context.Context) (*jwt.Claims, error) {
	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("authentication required", goerror.CodeUnauthorized)
	}
	return clm, nil
}

func (s *Usecase) bucket() string {
	return s.cfg.GetString("modules.studio.bucket")
}

func objectKey(userID, artworkID int64) string {
	return fmt.Sprintf("artworks/%d/%d.png", userID, artworkID)
}
