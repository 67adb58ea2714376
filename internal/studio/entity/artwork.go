package entity

import "time"

// Artwork is one generated image. The bytes live in object storage under
// ObjectKey; this record is the gallery metadata.
type Artwork struct {
	ID          int64
	UserID      int64
	Prompt      string
	Model       string
	Width       int32
	Height      int32
	Seed        int64
	ObjectKey   string
	ContentType string
	Size        int64
	CreatedAt   time.Time
}

type ArtworkListFilterData struct {
	UserID int64
	Size   int32
	Page   int32
}

// GeneratedImage is the raw output of the image provider before it is stored.
type GeneratedImage struct {
	Data        []byte
	ContentType string
}

// ImageSpec is what the provider needs to render an image.
type ImageSpec struct {
	Prompt string
	Model  string
	Width  int32
	Height int32
	Seed   int64
}
