package inbound

import (
	"time"

	"github.com/visiondraft/visiondraft/internal/studio/usecase"
)

type ArtworkGenerateRequest struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model"`
	Width  int32  `json:"width"`
	Height int32  `json:"height"`
	Seed   int64  `json:"seed"`
}

type ArtworkResponse struct {
	ID        int64     `json:"id,string"`
	Prompt    string    `json:"prompt"`
	Model     string    `json:"model"`
	Width     int32     `json:"width"`
	Height    int32     `json:"height"`
	Seed      int64     `json:"seed"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
}

type ArtworkListResponse struct {
	Page     int32             `json:"page"`
	Size     int32             `json:"size"`
	Total    int64             `json:"total"`
	Artworks []ArtworkResponse `json:"artworks"`
}

type GalleryClearResponse struct {
	Removed int64 `json:"removed"`
}

func (GalleryClearResponse) Message() string {
	return "Gallery cleared."
}

func toArtworkResponse(item usecase.ArtworkItem) ArtworkResponse {
	return ArtworkResponse{
		ID:        item.Artwork.ID,
		Prompt:    item.Artwork.Prompt,
		Model:     item.Artwork.Model,
		Width:     item.Artwork.Width,
		Height:    item.Artwork.Height,
		Seed:      item.Artwork.Seed,
		ImageURL:  item.ImageURL,
		CreatedAt: item.Artwork.CreatedAt,
	}
}
