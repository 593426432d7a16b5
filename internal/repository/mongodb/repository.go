package mongodb

import (
	"context"
	"errors"

	"github.com/fillog/blog-service/internal/config"
	"github.com/fillog/blog-service/internal/repository"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const (
	postsCollection            = "posts"
	repliesCollection          = "replies"
	usersCollection            = "users"
	guestbooksCollection       = "guestbooks"
	guestbookRepliesCollection = "guestbookreplies"
	legacyFollowsCollection    = "follows"
)

func Connect(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	return client, nil
}

func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "account", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		postsCollection: {
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "category", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		repliesCollection: {
			{Keys: bson.D{{Key: "repliedArticle", Value: 1}}},
		},
		guestbooksCollection: {
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
	}

	for collection, models := range indexes {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
	}

	return nil
}

type MongoRepository struct {
	Post      repository.Post
	Comment   repository.Comment
	User      repository.User
	Guestbook repository.Guestbook
}

func New(db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		Post:      newPostRepo(db),
		Comment:   newCommentRepo(db),
		User:      newUserRepo(db),
		Guestbook: newGuestbookRepo(db),
	}
}

func translate(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repository.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return repository.ErrDuplicate
	}
	return err
}

func byID(id string) bson.M {
	return bson.M{"_id": id}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
