package db

import (
	"context"

	"github.com/visiondraft/visiondraft/internal/pkg/goerror"
	"github.com/visiondraft/visiondraft/internal/studio/entity"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

func (d artworkDoc) toArtwork() entity.Artwork {
	return entity.Artwork{
		ID:          d.ID,
		UserID:      d.UserID,
		Prompt:      d.Prompt,
		Model:       d.Model,
		Width:       d.Width,
		Height:      d.Height,
		Seed:        d.Seed,
		ObjectKey:   d.ObjectKey,
		ContentType: d.ContentType,
		Size:        d.Size,
		CreatedAt:   d.CreatedAt,
	}
}

func fromArtwork(a entity.Artwork) artworkDoc {
	return artworkDoc{
		ID:          a.ID,
		UserID:      a.UserID,
		Prompt:      a.Prompt,
		Model:       a.Model,
		Width:       a.Width,
		Height:      a.Height,
		Seed:        a.Seed,
		ObjectKey:   a.ObjectKey,
		ContentType: a.ContentType,
		Size:        a.Size,
		CreatedAt:   a.CreatedAt,
	}
}

func (s *DB) CreateArtwork(ctx context.Context, art entity.Artwork) (err error) {
	ctx, span := s.startSpan(ctx, "CreateArtwork")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Collection(collArtworks).InsertOne(ctx, fromArtwork(art))

	return s.mapError(err)
}

// GetArtwork is always scoped by owner; one user cannot address another's art.
func (s *DB) GetArtwork(ctx context.Context, id, userID int64) (_ *entity.Artwork, err error) {
	ctx, span := s.startSpan(ctx, "GetArtwork")
	defer func() { s.endSpan(span, err) }()

	var doc artworkDoc
	err = s.mapError(s.conn.Collection(collArtworks).
		FindOne(ctx, bson.M{"_id": id, "user_id": userID}).
		Decode(&doc))
	if err != nil {
		return nil, err
	}

	art := doc.toArtwork()
	return &art, nil
}

func (s *DB) GetArtworkList(ctx context.Context, filter entity.ArtworkListFilterData) (_ []entity.Artwork, _ int64, err error) {
	ctx, span := s.startSpan(ctx, "GetArtworkList")
	defer func() { s.endSpan(span, err) }()

	query := bson.M{"user_id": filter.UserID}
	coll := s.conn.Collection(collArtworks)

	total, err := coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, s.mapError(err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(filter.Page)).
		SetLimit(int64(filter.Size))

	cur, err := coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, s.mapError(err)
	}
	defer cur.Close(ctx)

	var docs []artworkDoc
	if err = cur.All(ctx, &docs); err != nil {
		return nil, 0, s.mapError(err)
	}

	arts := make([]entity.Artwork, len(docs))
	for i, doc := range docs {
		arts[i] = doc.toArtwork()
	}

	return arts, total, nil
}

// GetAllArtworks loads every artwork a user owns, oldest first, for export
// and purge flows.
func (s *DB) GetAllArtworks(ctx context.Context, userID int64) (_ []entity.Artwork, err error) {
	ctx, span := s.startSpan(ctx, "GetAllArtworks")
	defer func() { s.endSpan(span, err) }()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cur, err := s.conn.Collection(collArtworks).Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer cur.Close(ctx)

	var docs []artworkDoc
	if err = cur.All(ctx, &docs); err != nil {
		return nil, s.mapError(err)
	}

	arts := make([]entity.Artwork, len(docs))
	for i, doc := range docs {
		arts[i] = doc.toArtwork()
	}

	return arts, nil
}

func (s *DB) DeleteArtwork(ctx context.Context, id, userID int64) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteArtwork")
	defer func() { s.endSpan(span, err) }()

	res, err := s.conn.Collection(collArtworks).DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return s.mapError(err)
	}
	if res.DeletedCount == 0 {
		return goerror.ErrNotFound
	}

	return nil
}

func (s *DB) DeleteArtworksByUser(ctx context.Context, userID int64) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "DeleteArtworksByUser")
	defer func() { s.endSpan(span, err) }()

	res, err := s.conn.Collection(collArtworks).DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, s.mapError(err)
	}

	return res.DeletedCount, nil
}
