package service

import (
	"context"
	"testing"

	"github.com/fillog/blog-service/internal/config"
	"github.com/fillog/blog-service/internal/dto"
	"github.com/fillog/blog-service/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func actor(id string) *model.Actor {
	return &model.Actor{UserID: id, Role: model.RoleNormal}
}

func TestComment_TopLevelKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t, testOptions())
	seedUser(t, repo, "u1", model.RoleNormal)
	seedPost(t, repo, "p1", "u1")

	var ids []string
	for _, text := range []string{"first", "second", "third"} {
		comment, err := svc.Comment.Add(ctx, "p1", actor("u1"), dto.CreateCommentRequest{ReplyText: text})
		require.NoError(t, err)
		assert.Equal(t, model.TargetPost, comment.ReplyTarget.Kind)
		assert.Equal(t, "u1-name", comment.AuthorName)
		ids = append(ids, comment.ID)
	}

	cursor, err := svc.Thread.PostComments(ctx, "p1")
	require.NoError(t, err)
	comments, err := Collect(ctx, cursor)
	require.NoError(t, err)

	var got []string
	for _, comment := range comments {
		got = append(got, comment.ID)
	}
	assert.Equal(t, ids, got)

	user, err := repo.User.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, user.CommentedArticles)
}

func TestComment_NestedReplyScenario(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t, testOptions())
	seedUser(t, repo, "u1", model.RoleNormal)
	seedUser(t, repo, "u2", model.RoleNormal)
	seedPost(t, repo, "p1", "u1")

	top, err := svc.Comment.Add(ctx, "p1", actor("u1"), dto.CreateCommentRequest{ReplyText: "hello"})
	require.NoError(t, err)

	child, err := svc.Comment.Add(ctx, "p1", actor("u2"), dto.CreateCommentRequest{
		ReplyTarget: &model.ReplyTarget{Kind: model.TargetComment, TargetID: top.ID},
		ReplyText:   "reply",
	})
	require.NoError(t, err)

	cursor, err := svc.Thread.PostComments(ctx, "p1")
	require.NoError(t, err)
	comments, err := Collect(ctx, cursor)
	require.NoError(t, err)

	require.Len(t, comments, 1)
	assert.Equal(t, top.ID, comments[0].ID)
	assert.Equal(t, []string{child.ID}, comments[0].ReReplies)

	replies, err := svc.Thread.ReReplies(ctx, top.ID)
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, "reply", replies[0].Text)

	user, err := repo.User.FindByID(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, user.CommentedArticles)
}

func TestComment_AnonymousSkipsUserSide(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t, testOptions())
	seedUser(t, repo, "u1", model.RoleNormal)
	seedPost(t, repo, "p1", "u1")

	_, err := svc.Comment.Add(ctx, "p1", nil, dto.CreateCommentRequest{ReplyText: "hi"})
	assertKind(t, err, KindValidation)
	assert.Contains(t, err.Error(), "userName")

	comment, err := svc.Comment.Add(ctx, "p1", nil, dto.CreateCommentRequest{UserName: "guest", Password: "pw", ReplyText: "hi"})
	require.NoError(t, err)
	assert.Empty(t, comment.AuthorID)
	assert.True(t, comment.HasPassword())
	assert.NotEqual(t, "pw", comment.PasswordHash)

	comment, err = svc.Comment.Add(ctx, "p1", actor("deleted-user"), dto.CreateCommentRequest{UserName: "ghost", ReplyText: "hi"})
	require.NoError(t, err)
	assert.Empty(t, comment.AuthorID)
}

func TestComment_LoggedInAuthorKeepsOwnName(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t, testOptions())
	seedUser(t, repo, "u1", model.RoleNormal)
	seedPost(t, repo, "p1", "u1")

	comment, err := svc.Comment.Add(ctx, "p1", actor("u1"), dto.CreateCommentRequest{UserName: "admin", ReplyText: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "u1", comment.AuthorID)
	assert.Equal(t, "u1-name", comment.AuthorName)
}

func TestComment_Validation(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t, testOptions())
	seedUser(t, repo, "u1", model.RoleNormal)
	seedPost(t, repo, "p1", "u1")
	seedPost(t, repo, "p2", "u1")

	_, err := svc.Comment.Add(ctx, "p1", actor("u1"), dto.CreateCommentRequest{ReplyText: "   "})
	assertKind(t, err, KindValidation)

	_, err = svc.Comment.Add(ctx, "missing", actor("u1"), dto.CreateCommentRequest{ReplyText: "x"})
	assertKind(t, err, KindNotFound)

	_, err = svc.Comment.Add(ctx, "p1", actor("u1"), dto.CreateCommentRequest{
		ReplyTarget: &model.ReplyTarget{Kind: model.TargetComment, TargetID: "nope"},
		ReplyText:   "x",
	})
	assertKind(t, err, KindNotFound)

	_, err = svc.Comment.Add(ctx, "p1", actor("u1"), dto.CreateCommentRequest{
		ReplyTarget: &model.ReplyTarget{Kind: model.TargetComment},
		ReplyText:   "x",
	})
	assertKind(t, err, KindValidation)

	_, err = svc.Comment.Add(ctx, "p1", actor("u1"), dto.CreateCommentRequest{
		ReplyTarget: &model.ReplyTarget{Kind: "article"},
		ReplyText:   "x",
	})
	assertKind(t, err, KindValidation)

	other, err := svc.Comment.Add(ctx, "p2", actor("u1"), dto.CreateCommentRequest{ReplyText: "elsewhere"})
	require.NoError(t, err)
	_, err = svc.Comment.Add(ctx, "p1", actor("u1"), dto.CreateCommentRequest{
		ReplyTarget: &model.ReplyTarget{Kind: model.TargetComment, TargetID: other.ID},
		ReplyText:   "x",
	})
	assertKind(t, err, KindConflict)
}

func TestComment_RollsBackWhenAttachFails(t *testing.T) {
	ctx := context.Background()
	_, repo := newTestService(t, testOptions())
	seedUser(t, repo, "u1", model.RoleNormal)
	seedPost(t, repo, "p1", "u1")
	comments := &flakyComment{Comment: repo.Comment}
	repo.Comment = comments
	repo.Post = &flakyPost{Post: repo.Post, appendCommentFails: 2}
	svc := New(zap.NewNop(), repo, testOptions())

	_, err := svc.Comment.Add(ctx, "p1", actor("u1"), dto.CreateCommentRequest{ReplyText: "hi"})
	assertKind(t, err, KindStoreUnavailable)

	require.Len(t, comments.created, 1)
	_, err = repo.Comment.FindByID(ctx, comments.created[0])
	assert.Error(t, err)

	user, err := repo.User.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, user.CommentedArticles)
}

func TestComment_JournalsWhenUserSideAndRollbackFail(t *testing.T) {
	ctx := context.Background()
	_, repo := newTestService(t, testOptions())
	seedUser(t, repo, "u1", model.RoleNormal)
	seedPost(t, repo, "p1", "u1")
	comments := &flakyComment{Comment: repo.Comment, deleteFails: 1}
	repo.Comment = comments
	repo.User = &flakyUser{User: repo.User, addCommentedFails: 2}
	svc := New(zap.NewNop(), repo, testOptions())

	_, err := svc.Comment.Add(ctx, "p1", actor("u1"), dto.CreateCommentRequest{ReplyText: "hi"})
	assertKind(t, err, KindPartialConsistent)

	// The post reference was undone before the record delete failed.
	post, err := repo.Post.FindByID(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, post.Comments)

	pending, err := repo.Journal.Len(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, pending)

	report, err := svc.Reconciler.Run(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.JournalRepaired)

	_, err = repo.Comment.FindByID(ctx, comments.created[0])
	assert.Error(t, err)
}

func TestComment_DeleteUnattachedIsNoop(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t, testOptions())
	seedUser(t, repo, "u1", model.RoleNormal)
	seedPost(t, repo, "p1", "u1")
	seedPost(t, repo, "p2", "u1")

	comment, err := svc.Comment.Add(ctx, "p1", actor("u1"), dto.CreateCommentRequest{ReplyText: "hi"})
	require.NoError(t, err)

	err = svc.Comment.Delete(ctx, "p2", comment.ID, "", actor("u1"))
	assertKind(t, err, KindConflict)

	post, err := repo.Post.FindByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{comment.ID}, post.Comments)
	_, err = repo.Comment.FindByID(ctx, comment.ID)
	require.NoError(t, err)

	err = svc.Comment.Delete(ctx, "p1", "missing", "", actor("u1"))
	assertKind(t, err, KindNotFound)
	err = svc.Comment.Delete(ctx, "missing", comment.ID, "", actor("u1"))
	assertKind(t, err, KindNotFound)
}

func TestComment_DeleteDetachesNested(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t, testOptions())
	seedUser(t, repo, "u1", model.RoleNormal)
	seedPost(t, repo, "p1", "u1")

	top, err := svc.Comment.Add(ctx, "p1", actor("u1"), dto.CreateCommentRequest{ReplyText: "top"})
	require.NoError(t, err)
	child, err := svc.Comment.Add(ctx, "p1", actor("u1"), dto.CreateCommentRequest{
		ReplyTarget: &model.ReplyTarget{Kind: model.TargetComment, TargetID: top.ID},
		ReplyText:   "child",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Comment.Delete(ctx, "p1", child.ID, "", actor("u1")))

	parent, err := repo.Comment.FindByID(ctx, top.ID)
	require.NoError(t, err)
	assert.Empty(t, parent.ReReplies)
	_, err = repo.Comment.FindByID(ctx, child.ID)
	assert.Error(t, err)

	err = svc.Comment.Delete(ctx, "p1", child.ID, "", actor("u1"))
	assertKind(t, err, KindNotFound)
}

func TestComment_DeletePasswordPolicy(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t, testOptions())
	seedUser(t, repo, "u1", model.RoleNormal)
	seedUser(t, repo, "u2", model.RoleNormal)
	seedUser(t, repo, "admin", model.RoleAdmin)
	seedPost(t, repo, "p1", "u1")

	protected, err := svc.Comment.Add(ctx, "p1", nil, dto.CreateCommentRequest{UserName: "guest", Password: "1234", ReplyText: "hi"})
	require.NoError(t, err)

	err = svc.Comment.Delete(ctx, "p1", protected.ID, "", nil)
	assertKind(t, err, KindUnauthorized)
	err = svc.Comment.Delete(ctx, "p1", protected.ID, "4321", actor("u2"))
	assertKind(t, err, KindUnauthorized)
	require.NoError(t, svc.Comment.Delete(ctx, "p1", protected.ID, "1234", nil))

	open, err := svc.Comment.Add(ctx, "p1", actor("u1"), dto.CreateCommentRequest{ReplyText: "mine"})
	require.NoError(t, err)

	err = svc.Comment.Delete(ctx, "p1", open.ID, "", nil)
	assertKind(t, err, KindUnauthorized)
	err = svc.Comment.Delete(ctx, "p1", open.ID, "", actor("u2"))
	assertKind(t, err, KindUnauthorized)
	require.NoError(t, svc.Comment.Delete(ctx, "p1", open.ID, "", actor("u1")))

	another, err := svc.Comment.Add(ctx, "p1", actor("u1"), dto.CreateCommentRequest{ReplyText: "again"})
	require.NoError(t, err)
	require.NoError(t, svc.Comment.Delete(ctx, "p1", another.ID, "", &model.Actor{UserID: "admin", Role: model.RoleAdmin}))
}

func TestComment_DeleteAnyonePolicy(t *testing.T) {
	ctx := context.Background()
	opts := testOptions()
	opts.PasswordlessDelete = config.PasswordlessDeleteAnyone
	svc, repo := newTestService(t, opts)
	seedUser(t, repo, "u1", model.RoleNormal)
	seedPost(t, repo, "p1", "u1")

	comment, err := svc.Comment.Add(ctx, "p1", actor("u1"), dto.CreateCommentRequest{ReplyText: "hi"})
	require.NoError(t, err)

	require.NoError(t, svc.Comment.Delete(ctx, "p1", comment.ID, "", nil))
}

func TestComment_DeleteJournalsWhenRecordSurvives(t *testing.T) {
	ctx := context.Background()
	_, repo := newTestService(t, testOptions())
	seedUser(t, repo, "u1", model.RoleNormal)
	seedPost(t, repo, "p1", "u1")
	comments := &flakyComment{Comment: repo.Comment}
	repo.Comment = comments
	svc := New(zap.NewNop(), repo, testOptions())

	comment, err := svc.Comment.Add(ctx, "p1", actor("u1"), dto.CreateCommentRequest{ReplyText: "hi"})
	require.NoError(t, err)

	comments.deleteFails = 2
	err = svc.Comment.Delete(ctx, "p1", comment.ID, "", actor("u1"))
	assertKind(t, err, KindPartialConsistent)

	post, err := repo.Post.FindByID(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, post.Comments)

	report, err := svc.Reconciler.Run(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.JournalRepaired)

	_, err = repo.Comment.FindByID(ctx, comment.ID)
	assert.Error(t, err)
}
