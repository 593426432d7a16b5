package mongodb

import (
	"context"

	"github.com/fillog/blog-service/internal/model"
	"github.com/fillog/blog-service/internal/repository"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type userRepo struct {
	coll *mongo.Collection
}

func newUserRepo(db *mongo.Database) repository.User {
	return &userRepo{
		coll: db.Collection(usersCollection),
	}
}

func (r *userRepo) Create(ctx context.Context, user model.User) (*model.User, error) {
	user.LikedArticles = nonNil(user.LikedArticles)
	user.CommentedArticles = nonNil(user.CommentedArticles)
	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		return nil, translate(err)
	}

	return &user, nil
}

func (r *userRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, byID(id))
}

func (r *userRepo) FindByAccount(ctx context.Context, account string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"account": account})
}

func (r *userRepo) FindAll(ctx context.Context) ([]*model.User, error) {
	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}

	users := []*model.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}

	return users, nil
}

func (r *userRepo) AddLikedArticle(ctx context.Context, userID string, postID string) (bool, error) {
	return r.updateIf(
		ctx,
		bson.M{"_id": userID, "likedArticles": bson.M{"$ne": postID}},
		bson.M{"$push": bson.M{"likedArticles": postID}},
	)
}

func (r *userRepo) RemoveLikedArticle(ctx context.Context, userID string, postID string) (bool, error) {
	return r.updateIf(
		ctx,
		bson.M{"_id": userID, "likedArticles": postID},
		bson.M{"$pull": bson.M{"likedArticles": postID}},
	)
}

func (r *userRepo) AddCommentedArticle(ctx context.Context, userID string, postID string) (bool, error) {
	return r.updateIf(
		ctx,
		bson.M{"_id": userID, "commentedArticles": bson.M{"$ne": postID}},
		bson.M{"$push": bson.M{"commentedArticles": postID}},
	)
}

func (r *userRepo) RemoveCommentedArticle(ctx context.Context, userID string, postID string) (bool, error) {
	return r.updateIf(
		ctx,
		bson.M{"_id": userID, "commentedArticles": postID},
		bson.M{"$pull": bson.M{"commentedArticles": postID}},
	)
}

func (r *userRepo) UpdateBlogSettings(ctx context.Context, userID string, settings model.BlogSettings) (*model.User, error) {
	settings.FavoriteGenres = nonNil(settings.FavoriteGenres)
	settings.BlogCategories = nonNil(settings.BlogCategories)

	var user model.User
	if err := r.coll.FindOneAndUpdate(
		ctx,
		byID(userID),
		bson.M{"$set": bson.M{"blogSettings": settings}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user); err != nil {
		return nil, translate(err)
	}

	return &user, nil
}

func (r *userRepo) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	var user model.User
	if err := r.coll.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, translate(err)
	}

	return &user, nil
}

// updateIf applies update only when filter still matches, which makes the
// membership check and the write a single atomic step.
func (r *userRepo) updateIf(ctx context.Context, filter bson.M, update bson.M) (bool, error) {
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}

	return res.ModifiedCount > 0, nil
}
