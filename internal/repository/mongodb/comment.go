package mongodb

import (
	"context"

	"github.com/fillog/blog-service/internal/model"
	"github.com/fillog/blog-service/internal/repository"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type commentRepo struct {
	coll *mongo.Collection
}

func newCommentRepo(db *mongo.Database) repository.Comment {
	return &commentRepo{
		coll: db.Collection(repliesCollection),
	}
}

func (r *commentRepo) Create(ctx context.Context, comment model.Comment) (*model.Comment, error) {
	comment.ReReplies = nonNil(comment.ReReplies)
	if _, err := r.coll.InsertOne(ctx, comment); err != nil {
		return nil, translate(err)
	}

	return &comment, nil
}

func (r *commentRepo) FindByID(ctx context.Context, id string) (*model.Comment, error) {
	var comment model.Comment
	if err := r.coll.FindOne(ctx, byID(id)).Decode(&comment); err != nil {
		return nil, translate(err)
	}

	return &comment, nil
}

func (r *commentRepo) FindByIDs(ctx context.Context, ids []string) ([]*model.Comment, error) {
	if len(ids) == 0 {
		return []*model.Comment{}, nil
	}

	cursor, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}

	comments := []*model.Comment{}
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, err
	}

	return comments, nil
}

func (r *commentRepo) AppendReReply(ctx context.Context, parentID string, childID string) error {
	res, err := r.coll.UpdateOne(ctx, byID(parentID), bson.M{"$push": bson.M{"reReplies": childID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *commentRepo) RemoveReReply(ctx context.Context, parentID string, childID string) (bool, error) {
	res, err := r.coll.UpdateOne(
		ctx,
		bson.M{"_id": parentID, "reReplies": childID},
		bson.M{"$pull": bson.M{"reReplies": childID}},
	)
	if err != nil {
		return false, err
	}

	return res.ModifiedCount > 0, nil
}

func (r *commentRepo) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, byID(id))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}

	return nil
}
