package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/adityar/secrets-wall/internal/models"
)

var (
	// ErrDuplicateUsername means the username is already taken.
	ErrDuplicateUsername = errors.New("username already registered")
	// ErrNotFound means no user matched the lookup.
	ErrNotFound = errors.New("user not found")
)

// UserStore handles user document CRUD in MongoDB.
type UserStore struct {
	col *mongo.Collection
}

func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{col: db.Collection("users")}
}

// EnsureIndexes creates the unique partial indexes on username and google_id.
// The google_id index is what makes the OAuth find-or-create safe under
// concurrent callbacks for the same identifier.
func (s *UserStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{"username": bson.M{"$type": "string"}}),
		},
		{
			Keys: bson.D{{Key: "google_id", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{"google_id": bson.M{"$type": "string"}}),
		},
	})
	if err != nil {
		return fmt.Errorf("mongo create indexes: %w", err)
	}
	return nil
}

// CreateUser inserts a local account. The unique index turns the
// insert race between concurrent registrations into ErrDuplicateUsername.
func (s *UserStore) CreateUser(ctx context.Context, username, hashedPw string) (*models.User, error) {
	u := &models.User{
		Username:  username,
		Password:  hashedPw,
		CreatedAt: time.Now(),
	}
	res, err := s.col.InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("mongo insert user: %w", err)
	}
	u.ID = res.InsertedID.(primitive.ObjectID)
	return u, nil
}

func (s *UserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := s.col.FindOne(ctx, bson.M{"username": username}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo find user: %w", err)
	}
	return &u, nil
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid id: %w", err)
	}
	var u models.User
	err = s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo find user: %w", err)
	}
	return &u, nil
}

// UpsertByGoogleID finds the user with the given external identifier,
// creating the document if it does not exist. The upsert plus the unique
// index guarantee exactly one document per identifier even when two
// callbacks race on a first-time login.
func (s *UserStore) UpsertByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	var u models.User
	err := s.col.FindOneAndUpdate(ctx,
		bson.M{"google_id": googleID},
		bson.M{"$setOnInsert": bson.M{"created_at": time.Now()}},
		opts,
	).Decode(&u)
	if mongo.IsDuplicateKeyError(err) {
		// Lost the insert race; the winner's document exists now.
		err = s.col.FindOne(ctx, bson.M{"google_id": googleID}).Decode(&u)
	}
	if err != nil {
		return nil, fmt.Errorf("mongo upsert by google_id: %w", err)
	}
	return &u, nil
}

// SetSecret overwrites the user's secret. Last writer wins.
func (s *UserStore) SetSecret(ctx context.Context, id, secret string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid id: %w", err)
	}
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"secret": secret}},
	)
	if err != nil {
		return fmt.Errorf("mongo set secret: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListWithSecrets returns every user whose secret is set, newest first.
func (s *UserStore) ListWithSecrets(ctx context.Context) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.col.Find(ctx, bson.M{"secret": bson.M{"$exists": true, "$ne": ""}}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo list secrets: %w", err)
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}
