package mongodb

import (
	"context"

	"github.com/fillog/blog-service/internal/model"
	"github.com/fillog/blog-service/internal/repository"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type guestbookRepo struct {
	coll    *mongo.Collection
	replies *mongo.Collection
}

func newGuestbookRepo(db *mongo.Database) repository.Guestbook {
	return &guestbookRepo{
		coll:    db.Collection(guestbooksCollection),
		replies: db.Collection(guestbookRepliesCollection),
	}
}

func (r *guestbookRepo) Create(ctx context.Context, guestbook model.Guestbook) (*model.Guestbook, error) {
	guestbook.Replies = nonNil(guestbook.Replies)
	if _, err := r.coll.InsertOne(ctx, guestbook); err != nil {
		return nil, translate(err)
	}

	return &guestbook, nil
}

func (r *guestbookRepo) FindByID(ctx context.Context, id string) (*model.Guestbook, error) {
	var guestbook model.Guestbook
	if err := r.coll.FindOne(ctx, byID(id)).Decode(&guestbook); err != nil {
		return nil, translate(err)
	}

	return &guestbook, nil
}

func (r *guestbookRepo) FindAll(ctx context.Context) ([]*model.Guestbook, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}

	guestbooks := []*model.Guestbook{}
	if err := cursor.All(ctx, &guestbooks); err != nil {
		return nil, err
	}

	return guestbooks, nil
}

func (r *guestbookRepo) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, byID(id))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *guestbookRepo) CreateReply(ctx context.Context, reply model.GuestbookReply) (*model.GuestbookReply, error) {
	if _, err := r.replies.InsertOne(ctx, reply); err != nil {
		return nil, translate(err)
	}

	return &reply, nil
}

func (r *guestbookRepo) AppendReply(ctx context.Context, guestbookID string, replyID string) error {
	res, err := r.coll.UpdateOne(ctx, byID(guestbookID), bson.M{"$push": bson.M{"replies": replyID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *guestbookRepo) FindReplies(ctx context.Context, ids []string) ([]*model.GuestbookReply, error) {
	if len(ids) == 0 {
		return []*model.GuestbookReply{}, nil
	}

	cursor, err := r.replies.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}

	replies := []*model.GuestbookReply{}
	if err := cursor.All(ctx, &replies); err != nil {
		return nil, err
	}

	return replies, nil
}

func (r *guestbookRepo) DeleteReplies(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	_, err := r.replies.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	return err
}
