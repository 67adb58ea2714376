package inbound

import (
	"context"
	"io"

	"github.com/visiondraft/visiondraft/internal/pkg/router"
	"github.com/visiondraft/visiondraft/internal/studio/usecase"
)

type uc interface {
	ArtworkGenerate(ctx context.Context, in usecase.ArtworkGenerateInput) (*usecase.ArtworkGenerateOutput, error)
	ArtworkList(ctx context.Context, in usecase.ArtworkListInput) (*usecase.ArtworkListOutput, error)
	ArtworkDelete(ctx context.Context, in usecase.ArtworkDeleteInput) error
	GalleryClear(ctx context.Context) (*usecase.GalleryClearOutput, error)
	GalleryExport(ctx context.Context, w io.Writer) error
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Gallery (need authenticated)
	r.POST("/api/v1/studio/artworks", end.ArtworkGenerate)
	r.GET("/api/v1/studio/artworks", end.ArtworkList)
	r.DELETE("/api/v1/studio/artworks/:id", end.ArtworkDelete)
	r.DELETE("/api/v1/studio/artworks", end.GalleryClear)
	r.GETRaw("/api/v1/studio/artworks-export", end.galleryExportHandler())
}
