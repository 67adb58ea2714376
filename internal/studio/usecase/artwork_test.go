package usecase

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/visiondraft/visiondraft/internal/pkg/config"
	"github.com/visiondraft/visiondraft/internal/pkg/goerror"
	"github.com/visiondraft/visiondraft/internal/pkg/instrument"
	"github.com/visiondraft/visiondraft/internal/pkg/jwt"
	"github.com/visiondraft/visiondraft/internal/pkg/storage"
	"github.com/visiondraft/visiondraft/internal/pkg/validator"
	"github.com/visiondraft/visiondraft/internal/studio/entity"
)

type fakeDB struct {
	artworks  []entity.Artwork
	createErr error
}

func (f *fakeDB) CreateArtwork(_ context.Context, art entity.Artwork) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.artworks = append(f.artworks, art)
	return nil
}

func (f *fakeDB) GetArtwork(_ context.Context, id, userID int64) (*entity.Artwork, error) {
	for _, art := range f.artworks {
		if art.ID == id && art.UserID == userID {
			return &art, nil
		}
	}
	return nil, goerror.ErrNotFound
}

func (f *fakeDB) GetArtworkList(_ context.Context, filter entity.ArtworkListFilterData) ([]entity.Artwork, int64, error) {
	arts, _ := f.byUser(filter.UserID)
	return arts, int64(len(arts)), nil
}

func (f *fakeDB) GetAllArtworks(_ context.Context, userID int64) ([]entity.Artwork, error) {
	arts, _ := f.byUser(userID)
	return arts, nil
}

func (f *fakeDB) DeleteArtwork(_ context.Context, id, userID int64) error {
	for i, art := range f.artworks {
		if art.ID == id && art.UserID == userID {
			f.artworks = append(f.artworks[:i], f.artworks[i+1:]...)
			return nil
		}
	}
	return goerror.ErrNotFound
}

func (f *fakeDB) DeleteArtworksByUser(_ context.Context, userID int64) (int64, error) {
	kept := f.artworks[:0]
	var removed int64
	for _, art := range f.artworks {
		if art.UserID == userID {
			removed++
			continue
		}
		kept = append(kept, art)
	}
	f.artworks = kept
	return removed, nil
}

func (f *fakeDB) byUser(userID int64) ([]entity.Artwork, int64) {
	var arts []entity.Artwork
	for _, art := range f.artworks {
		if art.UserID == userID {
			arts = append(arts, art)
		}
	}
	return arts, int64(len(arts))
}

type fakeProvider struct {
	img  *entity.GeneratedImage
	err  error
	spec entity.ImageSpec
}

func (f *fakeProvider) GenerateImage(_ context.Context, spec entity.ImageSpec) (*entity.GeneratedImage, error) {
	f.spec = spec
	if f.err != nil {
		return nil, f.err
	}
	return f.img, nil
}

type fakeStorage struct {
	objects map[string][]byte
	deleted []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (f *fakeStorage) Close() error { return nil }

func (f *fakeStorage) PutObject(_ context.Context, bucket, key string, r io.Reader, opts storage.PutOptions) (storage.ObjectInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return storage.ObjectInfo{}, err
	}
	f.objects[key] = data
	return storage.ObjectInfo{Bucket: bucket, Key: key, Size: int64(len(data)), ContentType: opts.ContentType}, nil
}

func (f *fakeStorage) GetObject(_ context.Context, bucket, key string, _ storage.GetOptions) (io.ReadCloser, storage.ObjectInfo, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, storage.ObjectInfo{}, errors.New("object not found")
	}
	return io.NopCloser(bytes.NewReader(data)), storage.ObjectInfo{Bucket: bucket, Key: key, Size: int64(len(data))}, nil
}

func (f *fakeStorage) StatObject(context.Context, string, string) (storage.ObjectInfo, error) {
	return storage.ObjectInfo{}, nil
}

func (f *fakeStorage) DeleteObject(_ context.Context, _, key string) error {
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeStorage) ListObjects(context.Context, string, string, storage.ListOptions) ([]storage.ObjectInfo, error) {
	return nil, nil
}

func (f *fakeStorage) PresignGet(_ context.Context, _, key string, _ time.Duration) (string, error) {
	return "https://signed.example/" + key, nil
}

func (f *fakeStorage) PresignPut(context.Context, string, string, storage.PutOptions, time.Duration) (string, error) {
	return "", storage.ErrMissingSigner
}

type seqNumberID struct{ n int64 }

func (s *seqNumberID) Generate() int64 {
	s.n++
	return s.n
}

type fixedClock struct{ now time.Time }

func (f *fixedClock) Now() time.Time { return f.now }

type stubConfig struct {
	config.Config
	strings   map[string]string
	int32s    map[string]int32
	durations map[string]time.Duration
}

func (s *stubConfig) GetString(key string) string        { return s.strings[key] }
func (s *stubConfig) GetInt32(key string) int32          { return s.int32s[key] }
func (s *stubConfig) GetMinute(key string) time.Duration { return s.durations[key] }

type fixture struct {
	uc       *Usecase
	db       *fakeDB
	provider *fakeProvider
	storage  *fakeStorage
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("NewV10Validator() error = %v", err)
	}

	db := &fakeDB{}
	provider := &fakeProvider{img: &entity.GeneratedImage{
		Data:        []byte("png-bytes"),
		ContentType: "image/png",
	}}
	stg := newFakeStorage()

	uc := New(Dependency{
		RepoDB:    db,
		Provider:  provider,
		Storage:   stg,
		Validator: v,
		Config: &stubConfig{
			strings: map[string]string{
				"modules.studio.bucket":        "visiondraft-artworks",
				"modules.studio.default_model": "flux",
			},
			int32s: map[string]int32{
				"modules.studio.default_width":  1024,
				"modules.studio.default_height": 1024,
			},
			durations: map[string]time.Duration{
				"modules.studio.presign_expiry_minutes": 15 * time.Minute,
			},
		},
		UID:        &seqNumberID{},
		Clock:      &fixedClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
		Instrument: instrument.NewNoop(),
	})

	return &fixture{uc: uc, db: db, provider: provider, storage: stg}
}

func authCtx(userID int64) context.Context {
	clm := jwt.Claims{UserID: userID}
	clm.Subject = "painter"
	return jwt.SetAuth(context.Background(), clm)
}

func TestArtworkGenerateStoresImageAndRecord(t *testing.T) {
	f := newFixture(t)

	out, err := f.uc.ArtworkGenerate(authCtx(7), ArtworkGenerateInput{Prompt: "a fox in the snow"})
	if err != nil {
		t.Fatalf("ArtworkGenerate() error = %v", err)
	}

	if f.provider.spec.Model != "flux" || f.provider.spec.Width != 1024 || f.provider.spec.Height != 1024 {
		t.Fatalf("provider spec = %+v, want config defaults applied", f.provider.spec)
	}
	if f.provider.spec.Seed == 0 {
		t.Fatal("seed should default to a non-zero value")
	}

	if len(f.db.artworks) != 1 {
		t.Fatalf("recorded %d artworks, want 1", len(f.db.artworks))
	}
	art := f.db.artworks[0]
	if art.UserID != 7 || art.Prompt != "a fox in the snow" {
		t.Fatalf("artwork = %+v", art)
	}

	if _, ok := f.storage.objects[art.ObjectKey]; !ok {
		t.Fatalf("image object %q was not stored", art.ObjectKey)
	}
	if !strings.HasPrefix(out.ImageURL, "https://signed.example/") {
		t.Fatalf("ImageURL = %q, want presigned url", out.ImageURL)
	}
}

func TestArtworkGenerateRequiresAuth(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.ArtworkGenerate(context.Background(), ArtworkGenerateInput{Prompt: "a fox"})

	var gerr *goerror.Error
	if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeUnauthorized {
		t.Fatalf("error = %v, want Unauthorized", err)
	}
}

func TestArtworkGenerateCleansUpOrphanedObject(t *testing.T) {
	f := newFixture(t)
	f.db.createErr = errors.New("insert failed")

	_, err := f.uc.ArtworkGenerate(authCtx(7), ArtworkGenerateInput{Prompt: "a fox in the snow"})
	if err == nil {
		t.Fatal("expected an error when the record insert fails")
	}

	if len(f.storage.objects) != 0 {
		t.Fatal("stored object must be removed when the record insert fails")
	}
}

func TestArtworkDelete(t *testing.T) {
	f := newFixture(t)

	out, err := f.uc.ArtworkGenerate(authCtx(7), ArtworkGenerateInput{Prompt: "a fox in the snow"})
	if err != nil {
		t.Fatalf("ArtworkGenerate() error = %v", err)
	}

	if err := f.uc.ArtworkDelete(authCtx(7), ArtworkDeleteInput{ID: out.Artwork.ID}); err != nil {
		t.Fatalf("ArtworkDelete() error = %v", err)
	}
	if len(f.db.artworks) != 0 {
		t.Fatal("artwork record should be gone")
	}
	if len(f.storage.objects) != 0 {
		t.Fatal("image object should be gone")
	}

	err = f.uc.ArtworkDelete(authCtx(7), ArtworkDeleteInput{ID: out.Artwork.ID})
	var gerr *goerror.Error
	if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeNotFound {
		t.Fatalf("second delete error = %v, want NotFound", err)
	}
}

func TestArtworkDeleteScopedToOwner(t *testing.T) {
	f := newFixture(t)

	out, err := f.uc.ArtworkGenerate(authCtx(7), ArtworkGenerateInput{Prompt: "a fox in the snow"})
	if err != nil {
		t.Fatalf("ArtworkGenerate() error = %v", err)
	}

	err = f.uc.ArtworkDelete(authCtx(8), ArtworkDeleteInput{ID: out.Artwork.ID})
	var gerr *goerror.Error
	if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeNotFound {
		t.Fatalf("cross-user delete error = %v, want NotFound", err)
	}
	if len(f.db.artworks) != 1 {
		t.Fatal("another user's artwork must survive")
	}
}

func TestArtworkListAttachesURLs(t *testing.T) {
	f := newFixture(t)

	for _, prompt := range []string{"a fox in the snow", "a city at dusk"} {
		if _, err := f.uc.ArtworkGenerate(authCtx(7), ArtworkGenerateInput{Prompt: prompt}); err != nil {
			t.Fatalf("ArtworkGenerate() error = %v", err)
		}
	}

	out, err := f.uc.ArtworkList(authCtx(7), ArtworkListInput{})
	if err != nil {
		t.Fatalf("ArtworkList() error = %v", err)
	}

	if out.Total != 2 || len(out.Artworks) != 2 {
		t.Fatalf("Total = %d, items = %d, want 2 and 2", out.Total, len(out.Artworks))
	}
	for _, item := range out.Artworks {
		if !strings.HasPrefix(item.ImageURL, "https://signed.example/") {
			t.Fatalf("ImageURL = %q, want presigned url", item.ImageURL)
		}
	}
}

func TestGalleryClear(t *testing.T) {
	f := newFixture(t)

	for _, prompt := range []string{"a fox in the snow", "a city at dusk"} {
		if _, err := f.uc.ArtworkGenerate(authCtx(7), ArtworkGenerateInput{Prompt: prompt}); err != nil {
			t.Fatalf("ArtworkGenerate() error = %v", err)
		}
	}

	out, err := f.uc.GalleryClear(authCtx(7))
	if err != nil {
		t.Fatalf("GalleryClear() error = %v", err)
	}
	if out.Removed != 2 {
		t.Fatalf("Removed = %d, want 2", out.Removed)
	}
	if len(f.storage.objects) != 0 {
		t.Fatal("all image objects should be gone")
	}
}

func TestGalleryExportStreamsZip(t *testing.T) {
	f := newFixture(t)

	for _, prompt := range []string{"a fox in the snow", "a city at dusk"} {
		if _, err := f.uc.ArtworkGenerate(authCtx(7), ArtworkGenerateInput{Prompt: prompt}); err != nil {
			t.Fatalf("ArtworkGenerate() error = %v", err)
		}
	}

	var buf bytes.Buffer
	if err := f.uc.GalleryExport(authCtx(7), &buf); err != nil {
		t.Fatalf("GalleryExport() error = %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("zip.NewReader() error = %v", err)
	}
	if len(zr.File) != 3 {
		t.Fatalf("archive has %d entries, want 2 images plus manifest", len(zr.File))
	}
	var sawManifest bool
	for _, zf := range zr.File {
		if zf.Name == "manifest.json" {
			sawManifest = true
			rc, err := zf.Open()
			if err != nil {
				t.Fatalf("open manifest: %v", err)
			}
			data, err := io.ReadAll(rc)
			rc.Close()
			if err != nil {
				t.Fatalf("read manifest: %v", err)
			}
			if !strings.Contains(string(data), "a fox in the snow") {
				t.Fatalf("manifest = %s, want prompts recorded", data)
			}
			continue
		}
		if !strings.HasSuffix(zf.Name, ".png") {
			t.Fatalf("entry %q should carry the png extension", zf.Name)
		}
		rc, err := zf.Open()
		if err != nil {
			t.Fatalf("open entry %q: %v", zf.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read entry %q: %v", zf.Name, err)
		}
		if string(data) != "png-bytes" {
			t.Fatalf("entry %q content = %q", zf.Name, data)
		}
	}
	if !sawManifest {
		t.Fatal("archive should include manifest.json")
	}
}

func TestGalleryExportEmptyGallery(t *testing.T) {
	f := newFixture(t)

	var buf bytes.Buffer
	err := f.uc.GalleryExport(authCtx(7), &buf)

	var gerr *goerror.Error
	if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeNotFound {
		t.Fatalf("error = %v, want NotFound", err)
	}
}

func TestConsumeUserDeletedPurgesGallery(t *testing.T) {
	f := newFixture(t)

	if _, err := f.uc.ArtworkGenerate(authCtx(7), ArtworkGenerateInput{Prompt: "a fox in the snow"}); err != nil {
		t.Fatalf("ArtworkGenerate() error = %v", err)
	}
	if _, err := f.uc.ArtworkGenerate(authCtx(8), ArtworkGenerateInput{Prompt: "a city at dusk"}); err != nil {
		t.Fatalf("ArtworkGenerate() error = %v", err)
	}

	if err := f.uc.ConsumeUserDeleted(context.Background(), ConsumeUserDeletedInput{UserID: 7, Username: "painter"}); err != nil {
		t.Fatalf("ConsumeUserDeleted() error = %v", err)
	}

	if len(f.db.artworks) != 1 || f.db.artworks[0].UserID != 8 {
		t.Fatalf("artworks after purge = %+v, want only user 8's", f.db.artworks)
	}
}
