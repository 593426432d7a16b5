package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/fillog/blog-service/internal/dto"
	"github.com/fillog/blog-service/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThread_ReRepliesNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t, testOptions())
	seedUser(t, repo, "u1", model.RoleNormal)
	seedPost(t, repo, "p1", "u1")

	top, err := svc.Comment.Add(ctx, "p1", actor("u1"), dto.CreateCommentRequest{ReplyText: "top"})
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		_, err := svc.Comment.Add(ctx, "p1", actor("u1"), dto.CreateCommentRequest{
			ReplyTarget: &model.ReplyTarget{Kind: model.TargetComment, TargetID: top.ID},
			ReplyText:   fmt.Sprintf("reply %d", i),
		})
		require.NoError(t, err)
	}

	replies, err := svc.Thread.ReReplies(ctx, top.ID)
	require.NoError(t, err)
	require.Len(t, replies, 3)
	assert.Equal(t, "reply 3", replies[0].Text)
	assert.Equal(t, "reply 2", replies[1].Text)
	assert.Equal(t, "reply 1", replies[2].Text)
}

func TestThread_ReRepliesTiesKeepNewestAppendedFirst(t *testing.T) {
	ctx := context.Background()
	opts := testOptions()
	frozen := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	opts.Now = func() time.Time { return frozen }
	svc, repo := newTestService(t, opts)
	seedUser(t, repo, "u1", model.RoleNormal)
	seedPost(t, repo, "p1", "u1")

	top, err := svc.Comment.Add(ctx, "p1", actor("u1"), dto.CreateCommentRequest{ReplyText: "top"})
	require.NoError(t, err)
	for _, text := range []string{"a", "b"} {
		_, err := svc.Comment.Add(ctx, "p1", actor("u1"), dto.CreateCommentRequest{
			ReplyTarget: &model.ReplyTarget{Kind: model.TargetComment, TargetID: top.ID},
			ReplyText:   text,
		})
		require.NoError(t, err)
	}

	replies, err := svc.Thread.ReReplies(ctx, top.ID)
	require.NoError(t, err)
	require.Len(t, replies, 2)
	assert.Equal(t, "b", replies[0].Text)
	assert.Equal(t, "a", replies[1].Text)
}

func TestThread_PostCommentsNotFound(t *testing.T) {
	svc, _ := newTestService(t, testOptions())

	_, err := svc.Thread.PostComments(context.Background(), "missing")
	assertKind(t, err, KindNotFound)

	_, err = svc.Thread.ReReplies(context.Background(), "missing")
	assertKind(t, err, KindNotFound)
}

func TestCommentCursor_BatchesAndSkipsDangling(t *testing.T) {
	ctx := context.Background()

	var ids []string
	for i := range 120 {
		ids = append(ids, fmt.Sprintf("c%03d", i))
	}

	var batches [][]string
	cursor := newCommentCursor(ids, func(ctx context.Context, ids []string) ([]*model.Comment, error) {
		batches = append(batches, ids)
		var found []*model.Comment
		// Returned in reverse to check the cursor restores list order.
		for i := len(ids) - 1; i >= 0; i-- {
			if ids[i] == "c007" {
				continue
			}
			found = append(found, &model.Comment{ID: ids[i]})
		}
		return found, nil
	})

	require.True(t, cursor.Next(ctx))
	assert.Equal(t, "c000", cursor.Comment().ID)
	assert.Len(t, batches, 1)

	rest, err := Collect(ctx, cursor)
	require.NoError(t, err)
	assert.Len(t, rest, 118)
	assert.Equal(t, "c001", rest[0].ID)
	assert.Equal(t, "c119", rest[len(rest)-1].ID)
	assert.Len(t, batches, 3)
	assert.Len(t, batches[0], commentBatchSize)

	assert.False(t, cursor.Next(ctx))
}

func TestCommentCursor_StopsOnError(t *testing.T) {
	ctx := context.Background()

	cursor := newCommentCursor([]string{"a", "b"}, func(ctx context.Context, ids []string) ([]*model.Comment, error) {
		return nil, StoreUnavailable(errStore)
	})

	assert.False(t, cursor.Next(ctx))
	assertKind(t, cursor.Err(), KindStoreUnavailable)
	assert.Nil(t, cursor.Comment())
}
