package mongodb

import (
	"context"
	"time"

	"github.com/fillog/blog-service/internal/model"
	"github.com/fillog/blog-service/internal/repository"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type postRepo struct {
	coll *mongo.Collection
}

func newPostRepo(db *mongo.Database) repository.Post {
	return &postRepo{
		coll: db.Collection(postsCollection),
	}
}

func (r *postRepo) Create(ctx context.Context, post model.Post) (*model.Post, error) {
	post.Images = nonNil(post.Images)
	post.Likes = nonNil(post.Likes)
	post.Comments = nonNil(post.Comments)
	if _, err := r.coll.InsertOne(ctx, post); err != nil {
		return nil, translate(err)
	}

	return &post, nil
}

func (r *postRepo) FindByID(ctx context.Context, id string) (*model.Post, error) {
	var post model.Post
	if err := r.coll.FindOne(ctx, byID(id)).Decode(&post); err != nil {
		return nil, translate(err)
	}

	return &post, nil
}

func (r *postRepo) FindAll(ctx context.Context, filter model.PostFilter) ([]*model.Post, error) {
	query := bson.M{}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.AuthorID != "" {
		query["author.userID"] = filter.AuthorID
	}

	cursor, err := r.coll.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}

	posts := []*model.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, err
	}

	return posts, nil
}

func (r *postRepo) Update(ctx context.Context, id string, update model.PostUpdate) (*model.Post, error) {
	set := bson.M{"updatedAt": time.Now()}
	if update.Title != nil {
		set["title"] = *update.Title
	}
	if update.Category != nil {
		set["category"] = *update.Category
	}
	if update.Text != nil {
		set["text"] = *update.Text
	}
	if update.MovieID != nil {
		set["movieID"] = *update.MovieID
	}
	if update.ThumbIndex != nil {
		set["thumbIndex"] = *update.ThumbIndex
	}
	if update.Images != nil {
		set["images"] = update.Images
	}

	return r.findOneAndUpdate(ctx, byID(id), bson.M{"$set": set})
}

func (r *postRepo) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, byID(id))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *postRepo) AddLiker(ctx context.Context, postID string, userID string) (*model.Post, error) {
	return r.findOneAndUpdate(ctx, byID(postID), bson.M{"$addToSet": bson.M{"likes": userID}})
}

func (r *postRepo) RemoveLiker(ctx context.Context, postID string, userID string) (*model.Post, error) {
	return r.findOneAndUpdate(ctx, byID(postID), bson.M{"$pull": bson.M{"likes": userID}})
}

func (r *postRepo) AppendComment(ctx context.Context, postID string, commentID string) error {
	res, err := r.coll.UpdateOne(ctx, byID(postID), bson.M{"$push": bson.M{"comments": commentID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *postRepo) RemoveComment(ctx context.Context, postID string, commentID string) (bool, error) {
	res, err := r.coll.UpdateOne(
		ctx,
		bson.M{"_id": postID, "comments": commentID},
		bson.M{"$pull": bson.M{"comments": commentID}},
	)
	if err != nil {
		return false, err
	}

	return res.ModifiedCount > 0, nil
}

func (r *postRepo) findOneAndUpdate(ctx context.Context, filter bson.M, update bson.M) (*model.Post, error) {
	var post model.Post
	if err := r.coll.FindOneAndUpdate(
		ctx,
		filter,
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&post); err != nil {
		return nil, translate(err)
	}

	return &post, nil
}
