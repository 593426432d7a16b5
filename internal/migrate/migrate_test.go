package migrate

import (
	"context"
	"testing"
	"time"

	"github.com/fillog/blog-service/internal/dto"
	"github.com/fillog/blog-service/internal/model"
	"github.com/fillog/blog-service/internal/repository/memory"
	"github.com/fillog/blog-service/internal/service"
	"github.com/fillog/blog-service/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"
)

type fakeStore struct {
	users            []bson.M
	posts            []bson.M
	replies          []bson.M
	guestbooks       []bson.M
	guestbookReplies []bson.M
	follows          []bson.M
	saved            map[string]model.Post
	savedU           map[string]model.User
	comments         map[string]model.Comment
	savedG           map[string]model.Guestbook
	savedGR          map[string]model.GuestbookReply
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		saved:    map[string]model.Post{},
		savedU:   map[string]model.User{},
		comments: map[string]model.Comment{},
		savedG:   map[string]model.Guestbook{},
		savedGR:  map[string]model.GuestbookReply{},
	}
}

func (s *fakeStore) Users(ctx context.Context) ([]bson.M, error)      { return s.users, nil }
func (s *fakeStore) Posts(ctx context.Context) ([]bson.M, error)      { return s.posts, nil }
func (s *fakeStore) Replies(ctx context.Context) ([]bson.M, error)    { return s.replies, nil }
func (s *fakeStore) Guestbooks(ctx context.Context) ([]bson.M, error) { return s.guestbooks, nil }
func (s *fakeStore) Follows(ctx context.Context) ([]bson.M, error)    { return s.follows, nil }

func (s *fakeStore) GuestbookReplies(ctx context.Context) ([]bson.M, error) {
	return s.guestbookReplies, nil
}

func (s *fakeStore) ReplaceUser(ctx context.Context, oldID any, user model.User) error {
	s.savedU[user.ID] = user
	return nil
}

func (s *fakeStore) ReplacePost(ctx context.Context, oldID any, post model.Post) error {
	s.saved[post.ID] = post
	return nil
}

func (s *fakeStore) ReplaceComment(ctx context.Context, oldID any, comment model.Comment) error {
	s.comments[comment.ID] = comment
	return nil
}

func (s *fakeStore) ReplaceGuestbook(ctx context.Context, oldID any, guestbook model.Guestbook) error {
	s.savedG[guestbook.ID] = guestbook
	return nil
}

func (s *fakeStore) ReplaceGuestbookReply(ctx context.Context, oldID any, reply model.GuestbookReply) error {
	s.savedGR[reply.ID] = reply
	return nil
}

func (s *fakeStore) UpsertComments(ctx context.Context, comments []model.Comment) error {
	for _, comment := range comments {
		s.comments[comment.ID] = comment
	}
	return nil
}

// reload feeds the saved documents back as the next run's input.
func (s *fakeStore) reload(t *testing.T) {
	t.Helper()

	s.replies = nil
	for _, comment := range s.comments {
		s.replies = append(s.replies, toDoc(t, comment))
	}
	s.posts = nil
	for _, post := range s.saved {
		s.posts = append(s.posts, toDoc(t, post))
	}
	s.users = nil
	for _, user := range s.savedU {
		s.users = append(s.users, toDoc(t, user))
	}
}

func toDoc(t *testing.T, v any) bson.M {
	t.Helper()

	raw, err := bson.Marshal(v)
	require.NoError(t, err)
	var doc bson.M
	require.NoError(t, bson.Unmarshal(raw, &doc))
	return doc
}

func TestMigrator_Run(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.users = []bson.M{
		{"_id": "a", "account": "a", "likedArticles": bson.A{int32(1)}, "followers": bson.A{bson.M{"follow": "b"}}},
		{"_id": "b", "account": "b", "likedArticles": bson.A{int32(1)}},
	}
	store.posts = []bson.M{
		{"_id": bson.NewObjectID(), "id": int32(1), "title": "T", "likes": int32(2), "comments": bson.A{
			bson.M{"id": int32(1), "userId": "a", "commentText": "hi", "date": "2023-01-01", "time": "10:00"},
		}},
	}
	store.follows = []bson.M{
		{"id": "a", "followers": bson.A{bson.M{"user": "b"}, bson.M{"user": "c"}}},
	}

	repo := memory.New()
	report, err := New(zap.NewNop(), store, repo.Follow).Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Users)
	assert.Equal(t, 1, report.Posts)
	assert.Equal(t, 1, report.LikeCountersSet)
	assert.Equal(t, 1, report.CommentsSplit)
	assert.Equal(t, 2, report.FollowEdges)
	assert.Equal(t, 2, report.FollowEdgesAdded)

	post := store.saved["1"]
	assert.ElementsMatch(t, []string{"a", "b"}, post.Likes)
	require.Len(t, post.Comments, 1)
	assert.Equal(t, "hi", store.comments[post.Comments[0]].Text)

	assert.Equal(t, []string{"1"}, store.savedU["a"].LikedArticles)

	followers, err := repo.Follow.Followers(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, followers)

	report, err = New(zap.NewNop(), store, repo.Follow).Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.FollowEdgesAdded)
}

func legacyReplies() (*fakeStore, bson.ObjectID, bson.ObjectID, bson.ObjectID) {
	postOID := bson.NewObjectID()
	replyOID := bson.NewObjectID()
	nestedOID := bson.NewObjectID()
	created := time.Date(2023, 5, 1, 9, 0, 0, 0, time.UTC)

	store := newFakeStore()
	store.users = []bson.M{
		{"_id": "admin", "account": "admin", "password": "rootpw", "type": "admin"},
	}
	store.posts = []bson.M{
		{"_id": postOID, "id": int32(7), "title": "T", "likes": bson.A{}, "comments": bson.A{}},
	}
	store.replies = []bson.M{
		{
			"_id":            nestedOID,
			"repliedArticle": postOID,
			"replyTarget":    bson.M{"target": "reply", "targetID": replyOID.Hex()},
			"userName":       "guest2",
			"password":       "5678",
			"replyText":      "me too",
			"reReplies":      bson.A{},
			"createdAt":      created.Add(time.Minute),
		},
		{
			"_id":            replyOID,
			"repliedArticle": postOID,
			"replyTarget":    bson.M{"target": "article"},
			"userName":       "guest",
			"password":       "1234",
			"replyText":      "nice",
			"reReplies":      bson.A{nestedOID.Hex()},
			"createdAt":      created,
		},
	}

	return store, postOID, replyOID, nestedOID
}

func TestMigrator_RepliesArePasswordHashedAndRelinked(t *testing.T) {
	ctx := context.Background()
	store, _, replyOID, nestedOID := legacyReplies()

	report, err := New(zap.NewNop(), store, memory.New().Follow).Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Replies)
	assert.Equal(t, 2, report.RepliesRelinked)
	assert.Equal(t, 1, report.RepliesAttached)
	assert.Equal(t, 3, report.PasswordsHashed)

	reply := store.comments[replyOID.Hex()]
	assert.Equal(t, "7", reply.PostID)
	assert.Equal(t, model.TargetPost, reply.ReplyTarget.Kind)
	assert.NotEqual(t, "1234", reply.PasswordHash)
	assert.True(t, utils.CheckPassword(reply.PasswordHash, "1234"))
	assert.Equal(t, []string{nestedOID.Hex()}, reply.ReReplies)

	nested := store.comments[nestedOID.Hex()]
	assert.Equal(t, "7", nested.PostID)
	assert.Equal(t, model.ReplyTarget{Kind: model.TargetComment, TargetID: replyOID.Hex()}, nested.ReplyTarget)
	assert.True(t, utils.CheckPassword(nested.PasswordHash, "5678"))

	assert.Equal(t, []string{replyOID.Hex()}, store.saved["7"].Comments)
	assert.True(t, utils.CheckPassword(store.savedU["admin"].PasswordHash, "rootpw"))
}

func TestMigrator_SecondRunKeepsHashes(t *testing.T) {
	ctx := context.Background()
	store, _, replyOID, _ := legacyReplies()

	_, err := New(zap.NewNop(), store, memory.New().Follow).Run(ctx)
	require.NoError(t, err)
	hash := store.comments[replyOID.Hex()].PasswordHash

	store.reload(t)
	report, err := New(zap.NewNop(), store, memory.New().Follow).Run(ctx)
	require.NoError(t, err)

	assert.Zero(t, report.PasswordsHashed)
	assert.Zero(t, report.RepliesRelinked)
	assert.Zero(t, report.RepliesAttached)
	assert.Equal(t, hash, store.comments[replyOID.Hex()].PasswordHash)
	assert.Equal(t, []string{replyOID.Hex()}, store.saved["7"].Comments)
}

func TestMigrator_MigratedReplyCanBeDeleted(t *testing.T) {
	ctx := context.Background()
	store, _, replyOID, nestedOID := legacyReplies()

	_, err := New(zap.NewNop(), store, memory.New().Follow).Run(ctx)
	require.NoError(t, err)

	repo := memory.New()
	_, err = repo.Post.Create(ctx, store.saved["7"])
	require.NoError(t, err)
	for _, comment := range store.comments {
		_, err = repo.Comment.Create(ctx, comment)
		require.NoError(t, err)
	}
	_, err = repo.User.Create(ctx, store.savedU["admin"])
	require.NoError(t, err)

	services := service.New(zap.NewNop(), repo, service.Options{JWTSecret: []byte("secret")})

	err = services.Comment.Delete(ctx, "7", replyOID.Hex(), "wrong", nil)
	assert.Error(t, err)
	require.NoError(t, services.Comment.Delete(ctx, "7", nestedOID.Hex(), "", &model.Actor{UserID: "admin", Role: model.RoleAdmin}))
	require.NoError(t, services.Comment.Delete(ctx, "7", replyOID.Hex(), "1234", nil))

	_, err = services.User.Login(ctx, dto.LoginRequest{Account: "admin", Password: "rootpw"})
	require.NoError(t, err)
}

func TestMigrator_Guestbooks(t *testing.T) {
	ctx := context.Background()
	bookOID := bson.NewObjectID()
	replyOID := bson.NewObjectID()

	store := newFakeStore()
	store.guestbooks = []bson.M{
		{
			"_id":         bookOID,
			"writtenUser": bson.M{"isUser": false, "userName": "guest", "password": "pw"},
			"text":        "hello",
			"replies":     bson.A{replyOID.Hex()},
		},
	}
	store.guestbookReplies = []bson.M{
		{"_id": replyOID, "replyUserID": "admin", "replyText": "welcome"},
	}

	report, err := New(zap.NewNop(), store, memory.New().Follow).Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Guestbooks)
	assert.Equal(t, 1, report.GuestbookReplies)
	assert.Equal(t, 1, report.PasswordsHashed)

	guestbook := store.savedG[bookOID.Hex()]
	assert.True(t, utils.CheckPassword(guestbook.WrittenUser.PasswordHash, "pw"))
	assert.Equal(t, []string{replyOID.Hex()}, guestbook.Replies)
	assert.Equal(t, bookOID.Hex(), store.savedGR[replyOID.Hex()].GuestbookID)
}
