package db

import (
	"context"
	"regexp"
	"time"

	"github.com/visiondraft/visiondraft/internal/identity/entity"
	"github.com/visiondraft/visiondraft/internal/pkg/goerror"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

func (d userDoc) toUser() entity.User {
	return entity.User{
		ID:        d.ID,
		Username:  d.Username,
		Email:     d.Email,
		Status:    entity.UserStatus(d.Status),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func (s *DB) GetUserByUsername(ctx context.Context, username string) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByUsername")
	defer func() { s.endSpan(span, err) }()

	var doc userDoc
	err = s.mapError(s.conn.Collection(collUsers).
		FindOne(ctx, bson.M{"username": username}).
		Decode(&doc))
	if err != nil {
		return nil, err
	}

	user := doc.toUser()
	return &user, nil
}

func (s *DB) GetUserByEmail(ctx context.Context, email string) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByEmail")
	defer func() { s.endSpan(span, err) }()

	var doc userDoc
	err = s.mapError(s.conn.Collection(collUsers).
		FindOne(ctx, bson.M{"email": email}).
		Decode(&doc))
	if err != nil {
		return nil, err
	}

	user := doc.toUser()
	return &user, nil
}

// GetUserLoginInfo resolves a login value that may be a username or an email.
func (s *DB) GetUserLoginInfo(ctx context.Context, login string) (_ *entity.UserLoginInfo, err error) {
	ctx, span := s.startSpan(ctx, "GetUserLoginInfo")
	defer func() { s.endSpan(span, err) }()

	filter := bson.M{"$or": bson.A{
		bson.M{"username": login},
		bson.M{"email": login},
	}}

	var doc userDoc
	err = s.mapError(s.conn.Collection(collUsers).FindOne(ctx, filter).Decode(&doc))
	if err != nil {
		return nil, err
	}

	return &entity.UserLoginInfo{
		ID:       doc.ID,
		Username: doc.Username,
		Email:    doc.Email,
		Status:   entity.UserStatus(doc.Status),
		Password: doc.Password,
	}, nil
}

func (s *DB) GetUserCredentialInfo(ctx context.Context, id int64) (_ *entity.UserCredentialInfo, err error) {
	ctx, span := s.startSpan(ctx, "GetUserCredentialInfo")
	defer func() { s.endSpan(span, err) }()

	var doc userDoc
	err = s.mapError(s.conn.Collection(collUsers).FindOne(ctx, bson.M{"_id": id}).Decode(&doc))
	if err != nil {
		return nil, err
	}

	return &entity.UserCredentialInfo{
		ID:       doc.ID,
		Email:    doc.Email,
		Status:   entity.UserStatus(doc.Status),
		Password: doc.Password,
	}, nil
}

// userSearchRegex builds a case-insensitive literal-substring match. The
// term is escaped so metacharacters never reach Mongo as a pattern.
func userSearchRegex(term string) bson.Regex {
	return bson.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
}

// userSortField maps a requested sort field onto the allowlist, falling back
// to created_at for anything unknown.
func userSortField(orderBy string) string {
	switch orderBy {
	case "username", "email", "created_at":
		return orderBy
	}
	return "created_at"
}

func (s *DB) GetUserList(ctx context.Context, filter entity.UserListFilterData) (_ []entity.User, _ int64, err error) {
	ctx, span := s.startSpan(ctx, "GetUserList")
	defer func() { s.endSpan(span, err) }()

	query := bson.M{}
	if filter.IsFilterBySearch {
		re := userSearchRegex(filter.Search)
		query["$or"] = bson.A{
			bson.M{"username": re},
			bson.M{"email": re},
		}
	}
	if filter.IsFilterByStatus {
		query["status"] = bson.M{"$in": filter.Statuses}
	}
	created := bson.M{}
	if !filter.DateFrom.IsZero() {
		created["$gte"] = filter.DateFrom
	}
	if !filter.DateTo.IsZero() {
		created["$lte"] = filter.DateTo
	}
	if len(created) > 0 {
		query["created_at"] = created
	}

	coll := s.conn.Collection(collUsers)

	total, err := coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, s.mapError(err)
	}

	sortBy := userSortField(filter.OrderBy)
	order := -1
	if filter.OrderDirection == "asc" {
		order = 1
	}

	opts := options.Find().
		SetSort(bson.D{{Key: sortBy, Value: order}}).
		SetSkip(int64(filter.Page)).
		SetLimit(int64(filter.Size))

	cur, err := coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, s.mapError(err)
	}
	defer cur.Close(ctx)

	var docs []userDoc
	if err = cur.All(ctx, &docs); err != nil {
		return nil, 0, s.mapError(err)
	}

	users := make([]entity.User, len(docs))
	for i, doc := range docs {
		users[i] = doc.toUser()
	}

	return users, total, nil
}

func (s *DB) CreateUser(ctx context.Context, user entity.NewUser, hash string) (err error) {
	ctx, span := s.startSpan(ctx, "CreateUser")
	defer func() { s.endSpan(span, err) }()

	now := time.Now()
	_, err = s.conn.Collection(collUsers).InsertOne(ctx, userDoc{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Password:  hash,
		Status:    int16(user.Status),
		CreatedAt: now,
		UpdatedAt: now,
	})

	return s.mapError(err)
}

func (s *DB) UpdateUserCredential(ctx context.Context, userID int64, hash string) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateUserCredential")
	defer func() { s.endSpan(span, err) }()

	res, err := s.conn.Collection(collUsers).UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"password": hash, "updated_at": time.Now()}},
	)
	if err != nil {
		return s.mapError(err)
	}
	if res.MatchedCount == 0 {
		return goerror.ErrNotFound
	}

	return nil
}

func (s *DB) DeleteUser(ctx context.Context, id int64) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteUser")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Collection(collUsers).DeleteOne(ctx, bson.M{"_id": id})

	return s.mapError(err)
}
