package mongodb

import (
	"context"

	"github.com/fillog/blog-service/internal/model"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// LegacyStore gives the migrator raw access to the collections.
type LegacyStore struct {
	db *mongo.Database
}

func NewLegacyStore(db *mongo.Database) *LegacyStore {
	return &LegacyStore{db: db}
}

func (s *LegacyStore) Users(ctx context.Context) ([]bson.M, error) {
	return s.all(ctx, usersCollection)
}

func (s *LegacyStore) Posts(ctx context.Context) ([]bson.M, error) {
	return s.all(ctx, postsCollection)
}

func (s *LegacyStore) Replies(ctx context.Context) ([]bson.M, error) {
	return s.all(ctx, repliesCollection)
}

func (s *LegacyStore) Guestbooks(ctx context.Context) ([]bson.M, error) {
	return s.all(ctx, guestbooksCollection)
}

func (s *LegacyStore) GuestbookReplies(ctx context.Context) ([]bson.M, error) {
	return s.all(ctx, guestbookRepliesCollection)
}

func (s *LegacyStore) Follows(ctx context.Context) ([]bson.M, error) {
	return s.all(ctx, legacyFollowsCollection)
}

func (s *LegacyStore) all(ctx context.Context, collection string) ([]bson.M, error) {
	cursor, err := s.db.Collection(collection).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}

	docs := []bson.M{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	return docs, nil
}

func (s *LegacyStore) ReplaceUser(ctx context.Context, oldID any, user model.User) error {
	user.LikedArticles = nonNil(user.LikedArticles)
	user.CommentedArticles = nonNil(user.CommentedArticles)
	return s.replace(ctx, usersCollection, oldID, user.ID, user)
}

func (s *LegacyStore) ReplacePost(ctx context.Context, oldID any, post model.Post) error {
	post.Likes = nonNil(post.Likes)
	post.Comments = nonNil(post.Comments)
	post.Images = nonNil(post.Images)
	return s.replace(ctx, postsCollection, oldID, post.ID, post)
}

func (s *LegacyStore) ReplaceComment(ctx context.Context, oldID any, comment model.Comment) error {
	comment.ReReplies = nonNil(comment.ReReplies)
	return s.replace(ctx, repliesCollection, oldID, comment.ID, comment)
}

func (s *LegacyStore) ReplaceGuestbook(ctx context.Context, oldID any, guestbook model.Guestbook) error {
	guestbook.Replies = nonNil(guestbook.Replies)
	return s.replace(ctx, guestbooksCollection, oldID, guestbook.ID, guestbook)
}

func (s *LegacyStore) ReplaceGuestbookReply(ctx context.Context, oldID any, reply model.GuestbookReply) error {
	return s.replace(ctx, guestbookRepliesCollection, oldID, reply.ID, reply)
}

// replace writes doc under newID. A document stored under a different _id
// type or value is removed first so the account index stays unique.
func (s *LegacyStore) replace(ctx context.Context, collection string, oldID any, newID string, doc any) error {
	coll := s.db.Collection(collection)

	if oldID != newID {
		if _, err := coll.DeleteOne(ctx, bson.M{"_id": oldID}); err != nil {
			return err
		}
	}

	_, err := coll.ReplaceOne(ctx, byID(newID), doc, options.Replace().SetUpsert(true))
	return translate(err)
}

func (s *LegacyStore) UpsertComments(ctx context.Context, comments []model.Comment) error {
	coll := s.db.Collection(repliesCollection)
	for _, comment := range comments {
		comment.ReReplies = nonNil(comment.ReReplies)
		if _, err := coll.ReplaceOne(ctx, byID(comment.ID), comment, options.Replace().SetUpsert(true)); err != nil {
			return translate(err)
		}
	}

	return nil
}
