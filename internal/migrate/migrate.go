package migrate

import (
	"context"
	"fmt"
	"slices"

	"github.com/fillog/blog-service/internal/model"
	"github.com/fillog/blog-service/internal/repository"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"
)

// Store reads legacy documents and writes their converted form back. Replace
// methods receive the document's original _id, which may differ from the
// converted id.
type Store interface {
	Users(ctx context.Context) ([]bson.M, error)
	Posts(ctx context.Context) ([]bson.M, error)
	Replies(ctx context.Context) ([]bson.M, error)
	Guestbooks(ctx context.Context) ([]bson.M, error)
	GuestbookReplies(ctx context.Context) ([]bson.M, error)
	// Follows returns the documents of the old Follow collection.
	Follows(ctx context.Context) ([]bson.M, error)
	ReplaceUser(ctx context.Context, oldID any, user model.User) error
	ReplacePost(ctx context.Context, oldID any, post model.Post) error
	ReplaceComment(ctx context.Context, oldID any, comment model.Comment) error
	ReplaceGuestbook(ctx context.Context, oldID any, guestbook model.Guestbook) error
	ReplaceGuestbookReply(ctx context.Context, oldID any, reply model.GuestbookReply) error
	UpsertComments(ctx context.Context, comments []model.Comment) error
}

type Report struct {
	Users            int
	Posts            int
	LikeCountersSet  int
	CommentsSplit    int
	Replies          int
	RepliesRelinked  int
	RepliesAttached  int
	Guestbooks       int
	GuestbookReplies int
	PasswordsHashed  int
	FollowEdges      int
	FollowEdgesAdded int
}

type Migrator struct {
	logger *zap.Logger
	store  Store
	follow repository.Follow
}

func New(logger *zap.Logger, store Store, follow repository.Follow) *Migrator {
	return &Migrator{
		logger: logger,
		store:  store,
		follow: follow,
	}
}

type legacyPost struct {
	oldID    any
	post     model.Post
	comments []model.Comment
}

// Run converts every document. Converted documents convert to themselves, so
// Run can be repeated after a partial run.
func (m *Migrator) Run(ctx context.Context) (*Report, error) {
	report := &Report{}

	userDocs, err := m.store.Users(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to read users: %w", err)
	}

	users := make([]model.User, 0, len(userDocs))
	var edges []model.Follow
	for _, doc := range userDocs {
		user, followers := ConvertUser(doc)
		users = append(users, user)
		edges = append(edges, followers...)
	}
	likers := LikersByPost(users)

	postDocs, err := m.store.Posts(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to read posts: %w", err)
	}

	posts := make([]*legacyPost, 0, len(postDocs))
	byID := make(map[string]*legacyPost, len(postDocs))
	postIDs := make(map[string]string, len(postDocs))
	for _, doc := range postDocs {
		if _, counter := IDList(doc["likes"]); counter {
			report.LikeCountersSet++
		}

		post, comments := ConvertPost(doc, likers[PostID(doc)])
		lp := &legacyPost{oldID: doc["_id"], post: post, comments: comments}
		posts = append(posts, lp)
		byID[post.ID] = lp
		postIDs[DocID(doc["_id"])] = post.ID
		postIDs[post.ID] = post.ID
	}

	replies, err := m.convertReplies(ctx, postIDs, report)
	if err != nil {
		return report, err
	}

	// Replies were looked up by post, not listed on it.
	for _, reply := range replies {
		if reply.comment.ReplyTarget.IsNested() {
			continue
		}
		lp, ok := byID[reply.comment.PostID]
		if !ok || lp.post.HasComment(reply.comment.ID) {
			continue
		}
		lp.post.Comments = append(lp.post.Comments, reply.comment.ID)
		report.RepliesAttached++
	}

	for _, reply := range replies {
		if err := m.store.ReplaceComment(ctx, reply.oldID, reply.comment); err != nil {
			return report, fmt.Errorf("failed to write reply(%s): %w", reply.comment.ID, err)
		}
		report.Replies++
	}

	for _, lp := range posts {
		if len(lp.comments) > 0 {
			if err := m.store.UpsertComments(ctx, lp.comments); err != nil {
				return report, fmt.Errorf("failed to write comments of post(%s): %w", lp.post.ID, err)
			}
			report.CommentsSplit += len(lp.comments)
		}
		if err := m.store.ReplacePost(ctx, lp.oldID, lp.post); err != nil {
			return report, fmt.Errorf("failed to write post(%s): %w", lp.post.ID, err)
		}
		report.Posts++
	}

	if err := m.migrateGuestbooks(ctx, report); err != nil {
		return report, err
	}

	followDocs, err := m.store.Follows(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to read follows: %w", err)
	}
	for _, doc := range followDocs {
		edges = append(edges, ConvertFollowDoc(doc)...)
	}

	edges = DedupFollows(edges)
	report.FollowEdges = len(edges)
	for _, edge := range edges {
		added, err := m.follow.Add(ctx, edge.FollowerID, edge.FolloweeID)
		if err != nil {
			return report, fmt.Errorf("failed to add follow edge %s->%s: %w", edge.FollowerID, edge.FolloweeID, err)
		}
		if added {
			report.FollowEdgesAdded++
		}
	}

	for i, doc := range userDocs {
		if err := m.hash(&users[i].PasswordHash, report); err != nil {
			return report, fmt.Errorf("failed to hash password of user(%s): %w", users[i].ID, err)
		}
		if err := m.store.ReplaceUser(ctx, doc["_id"], users[i]); err != nil {
			return report, fmt.Errorf("failed to write user(%s): %w", users[i].ID, err)
		}
		report.Users++
	}

	m.logger.Info("migration finished",
		zap.Int("users", report.Users),
		zap.Int("posts", report.Posts),
		zap.Int("like_counters_replaced", report.LikeCountersSet),
		zap.Int("comments_split", report.CommentsSplit),
		zap.Int("replies", report.Replies),
		zap.Int("replies_relinked", report.RepliesRelinked),
		zap.Int("replies_attached", report.RepliesAttached),
		zap.Int("guestbooks", report.Guestbooks),
		zap.Int("guestbook_replies", report.GuestbookReplies),
		zap.Int("passwords_hashed", report.PasswordsHashed),
		zap.Int("follow_edges", report.FollowEdges),
		zap.Int("follow_edges_added", report.FollowEdgesAdded),
	)

	return report, nil
}

type legacyReply struct {
	oldID   any
	comment model.Comment
}

// convertReplies returns the replies oldest first.
func (m *Migrator) convertReplies(ctx context.Context, postIDs map[string]string, report *Report) ([]legacyReply, error) {
	docs, err := m.store.Replies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read replies: %w", err)
	}

	replies := make([]legacyReply, 0, len(docs))
	for _, doc := range docs {
		comment := ConvertReply(doc, postIDs)
		if comment.PostID != str(doc, "repliedArticle") {
			report.RepliesRelinked++
		}
		if err := m.hash(&comment.PasswordHash, report); err != nil {
			return nil, fmt.Errorf("failed to hash password of reply(%s): %w", comment.ID, err)
		}
		replies = append(replies, legacyReply{oldID: doc["_id"], comment: comment})
	}

	slices.SortStableFunc(replies, func(a, b legacyReply) int {
		return a.comment.CreatedAt.Compare(b.comment.CreatedAt)
	})

	return replies, nil
}

func (m *Migrator) migrateGuestbooks(ctx context.Context, report *Report) error {
	docs, err := m.store.Guestbooks(ctx)
	if err != nil {
		return fmt.Errorf("failed to read guestbooks: %w", err)
	}

	owners := make(map[string]string)
	for _, doc := range docs {
		guestbook := ConvertGuestbook(doc)
		for _, replyID := range guestbook.Replies {
			owners[replyID] = guestbook.ID
		}
		if err := m.hash(&guestbook.WrittenUser.PasswordHash, report); err != nil {
			return fmt.Errorf("failed to hash password of guestbook(%s): %w", guestbook.ID, err)
		}
		if err := m.store.ReplaceGuestbook(ctx, doc["_id"], guestbook); err != nil {
			return fmt.Errorf("failed to write guestbook(%s): %w", guestbook.ID, err)
		}
		report.Guestbooks++
	}

	replyDocs, err := m.store.GuestbookReplies(ctx)
	if err != nil {
		return fmt.Errorf("failed to read guestbook replies: %w", err)
	}
	for _, doc := range replyDocs {
		reply := ConvertGuestbookReply(doc, owners[DocID(doc["_id"])])
		if err := m.store.ReplaceGuestbookReply(ctx, doc["_id"], reply); err != nil {
			return fmt.Errorf("failed to write guestbook reply(%s): %w", reply.ID, err)
		}
		report.GuestbookReplies++
	}

	return nil
}

func (m *Migrator) hash(password *string, report *Report) error {
	hash, hashed, err := hashLegacyPassword(*password)
	if err != nil {
		return err
	}
	if hashed {
		*password = hash
		report.PasswordsHashed++
	}

	return nil
}
