package inbound

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/visiondraft/visiondraft/internal/pkg/goerror"
	"github.com/visiondraft/visiondraft/internal/pkg/router"
	"github.com/visiondraft/visiondraft/internal/studio/usecase"
)

// HTTPEndpoint exposes HTTP handlers for the artwork gallery.
type HTTPEndpoint struct {
	uc uc
}

// ArtworkGenerate renders a prompt and adds the image to the gallery.
func (h *HTTPEndpoint) ArtworkGenerate(r *router.Request) (any, error) {
	var req ArtworkGenerateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.ArtworkGenerate(r.Context(), usecase.ArtworkGenerateInput{
		Prompt: req.Prompt,
		Model:  req.Model,
		Width:  req.Width,
		Height: req.Height,
		Seed:   req.Seed,
	})
	if err != nil {
		return nil, err
	}

	return toArtworkResponse(usecase.ArtworkItem{Artwork: resp.Artwork, ImageURL: resp.ImageURL}), nil
}

// ArtworkList pages through the caller's gallery.
func (h *HTTPEndpoint) ArtworkList(r *router.Request) (any, error) {
	page, err := r.GetQueryInt32("page")
	if err != nil {
		return nil, err
	}

	size, err := r.GetQueryInt32("size")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.ArtworkList(r.Context(), usecase.ArtworkListInput{Page: page, Size: size})
	if err != nil {
		return nil, err
	}

	artworks := make([]ArtworkResponse, 0, len(resp.Artworks))
	for _, item := range resp.Artworks {
		artworks = append(artworks, toArtworkResponse(item))
	}

	return ArtworkListResponse{
		Page:     resp.Page,
		Size:     resp.Size,
		Total:    resp.Total,
		Artworks: artworks,
	}, nil
}

// ArtworkDelete removes one artwork from the gallery.
func (h *HTTPEndpoint) ArtworkDelete(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	if err := h.uc.ArtworkDelete(r.Context(), usecase.ArtworkDeleteInput{ID: id}); err != nil {
		return nil, err
	}

	return nil, nil
}

// GalleryClear removes every artwork the caller owns.
func (h *HTTPEndpoint) GalleryClear(r *router.Request) (any, error) {
	resp, err := h.uc.GalleryClear(r.Context())
	if err != nil {
		return nil, err
	}

	return GalleryClearResponse{Removed: resp.Removed}, nil
}

// galleryExportHandler streams the gallery as a ZIP download. It bypasses the
// JSON envelope since the body is the archive itself; headers must go out
// before the first object is copied, so mid-stream failures can only cut the
// download short.
func (h *HTTPEndpoint) galleryExportHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		filename := fmt.Sprintf("artworks-%s.zip", time.Now().UTC().Format("20060102-150405"))

		head := w.Header()
		head.Set("Content-Type", "application/zip")
		head.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

		if err := h.uc.GalleryExport(r.Context(), w); err != nil {
			var gerr *goerror.Error
			if errors.As(err, &gerr) {
				head.Del("Content-Disposition")
				head.Set("Content-Type", "application/json")
				http.Error(w, gerr.Msg(), gerr.StatusCode())
				return
			}

			http.Error(w, "export failed", http.StatusInternalServerError)
		}
	})
}
