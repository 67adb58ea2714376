package db

import (
	"context"
	"time"

	"github.com/visiondraft/visiondraft/internal/identity/entity"
	"github.com/visiondraft/visiondraft/internal/pkg/goerror"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func (s *DB) CreateRefreshToken(ctx context.Context, in entity.RefreshToken) (err error) {
	ctx, span := s.startSpan(ctx, "CreateRefreshToken")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Collection(collRefreshTokens).InsertOne(ctx, refreshTokenDoc{
		ID:        in.ID,
		UserID:    in.UserID,
		Token:     in.Token,
		ExpiresAt: in.ExpiresAt,
		CreatedAt: time.Now(),
	})

	return s.mapError(err)
}

// GetUserRefreshToken loads a refresh token together with the owning user's
// status so callers can gate on account state in one lookup.
func (s *DB) GetUserRefreshToken(ctx context.Context, token string) (_ *entity.UserRefreshToken, err error) {
	ctx, span := s.startSpan(ctx, "GetUserRefreshToken")
	defer func() { s.endSpan(span, err) }()

	var rt refreshTokenDoc
	err = s.mapError(s.conn.Collection(collRefreshTokens).
		FindOne(ctx, bson.M{"token": token}).
		Decode(&rt))
	if err != nil {
		return nil, err
	}

	var user userDoc
	err = s.mapError(s.conn.Collection(collUsers).
		FindOne(ctx, bson.M{"_id": rt.UserID}).
		Decode(&user))
	if err != nil {
		return nil, err
	}

	return &entity.UserRefreshToken{
		UserID:                   user.ID,
		UserEmail:                user.Email,
		UserStatus:               entity.UserStatus(user.Status),
		RefreshID:                rt.ID,
		RefreshToken:             rt.Token,
		RefreshRevoked:           rt.Revoked,
		RefreshReplacedByTokenID: rt.ReplacedByTokenID,
		RefreshExpiresAt:         rt.ExpiresAt,
	}, nil
}

// RotateRefreshToken revokes the old token and inserts its replacement. The
// conditional update on revoked=false makes rotation first-writer-wins; a
// loser sees ErrNotFound.
func (s *DB) RotateRefreshToken(ctx context.Context, ro entity.RotateRefreshToken) (err error) {
	ctx, span := s.startSpan(ctx, "RotateRefreshToken")
	defer func() { s.endSpan(span, err) }()

	res, err := s.conn.Collection(collRefreshTokens).UpdateOne(ctx,
		bson.M{"_id": ro.OldID, "user_id": ro.UserID, "revoked": false},
		bson.M{"$set": bson.M{"revoked": true, "replaced_by_token_id": ro.NewID}},
	)
	if err != nil {
		return s.mapError(err)
	}
	if res.MatchedCount == 0 {
		return goerror.ErrNotFound
	}

	_, err = s.conn.Collection(collRefreshTokens).InsertOne(ctx, refreshTokenDoc{
		ID:        ro.NewID,
		UserID:    ro.UserID,
		Token:     ro.NewToken,
		ExpiresAt: ro.NewExpiresAt,
		CreatedAt: time.Now(),
	})

	return s.mapError(err)
}

func (s *DB) RevokeRefreshToken(ctx context.Context, token string) (err error) {
	ctx, span := s.startSpan(ctx, "RevokeRefreshToken")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Collection(collRefreshTokens).UpdateOne(ctx,
		bson.M{"token": token},
		bson.M{"$set": bson.M{"revoked": true}},
	)

	return s.mapError(err)
}

func (s *DB) RevokeAllRefreshToken(ctx context.Context, userID int64) (err error) {
	ctx, span := s.startSpan(ctx, "RevokeAllRefreshToken")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Collection(collRefreshTokens).UpdateMany(ctx,
		bson.M{"user_id": userID, "revoked": false},
		bson.M{"$set": bson.M{"revoked": true}},
	)

	return s.mapError(err)
}
