// Package migrate rewrites documents written by earlier schema revisions into
// the current model: liker sets instead of like counters, referenced comments
// instead of embedded ones, string identifiers and a single follow edge table.
package migrate

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/fillog/blog-service/internal/model"
	"github.com/fillog/blog-service/pkg/utils"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// commentNamespace makes converted comment ids stable across runs.
var commentNamespace = uuid.MustParse("6f1c1f38-6f0b-4b53-9c5e-3b7a3c0e5a11")

var (
	dateLayouts = []string{"2006-01-02", "2006.01.02", "2006/01/02", "2006. 1. 2."}
	timeLayouts = []string{"15:04:05", "15:04"}
)

// DocID renders an identifier of any legacy type as an opaque string.
func DocID(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case bson.ObjectID:
		return id.Hex()
	case int32:
		return strconv.FormatInt(int64(id), 10)
	case int64:
		return strconv.FormatInt(id, 10)
	case int:
		return strconv.Itoa(id)
	case float64:
		if id == math.Trunc(id) {
			return strconv.FormatInt(int64(id), 10)
		}
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return fmt.Sprint(id)
	}
}

// IDList converts a legacy id array into a de-duplicated list of strings.
// counter is true when the field held a bare number instead of an array.
func IDList(v any) (ids []string, counter bool) {
	var items []any
	switch list := v.(type) {
	case nil:
		return []string{}, false
	case int32, int64, int, float64:
		return []string{}, true
	case bson.A:
		items = list
	case []any:
		items = list
	case []string:
		for _, s := range list {
			items = append(items, s)
		}
	default:
		return []string{}, false
	}

	ids = []string{}
	for _, item := range items {
		id := DocID(unwrapRef(item))
		if id == "" || slices.Contains(ids, id) {
			continue
		}
		ids = append(ids, id)
	}

	return ids, false
}

// unwrapRef turns {follow: 7} or {user: 7} style entries into 7.
func unwrapRef(item any) any {
	doc, ok := asDoc(item)
	if !ok {
		return item
	}
	for _, key := range []string{"user", "follow", "id", "_id"} {
		if v, ok := doc[key]; ok {
			return v
		}
	}
	return nil
}

func asDoc(v any) (bson.M, bool) {
	switch doc := v.(type) {
	case bson.M:
		return doc, true
	case map[string]any:
		return bson.M(doc), true
	case bson.D:
		m := make(bson.M, len(doc))
		for _, e := range doc {
			m[e.Key] = e.Value
		}
		return m, true
	default:
		return nil, false
	}
}

func str(doc bson.M, keys ...string) string {
	for _, key := range keys {
		if v, ok := doc[key]; ok && v != nil {
			if s := DocID(v); s != "" {
				return s
			}
		}
	}
	return ""
}

func integer(doc bson.M, key string) (int64, bool) {
	switch v := doc[key].(type) {
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}

func timestamp(doc bson.M, key string) (time.Time, bool) {
	switch v := doc[key].(type) {
	case time.Time:
		return v.UTC(), true
	case bson.DateTime:
		return v.Time().UTC(), true
	default:
		return time.Time{}, false
	}
}

// parseDateTime reads the separate date and time strings older documents
// carried instead of a timestamp.
func parseDateTime(date string, clock string) (time.Time, bool) {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)
	for _, dl := range dateLayouts {
		d, err := time.Parse(dl, date)
		if err != nil {
			continue
		}
		for _, tl := range timeLayouts {
			if t, err := time.Parse(tl, clock); err == nil {
				return d.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute + time.Duration(t.Second())*time.Second), true
			}
		}
		return d, true
	}
	return time.Time{}, false
}

// ConvertReplyTarget maps the "article"/"reply" target names to the current ones.
func ConvertReplyTarget(kind string) model.TargetKind {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "article", "post", "":
		return model.TargetPost
	case "reply", "comment":
		return model.TargetComment
	default:
		return model.TargetKind(kind)
	}
}

// PostID prefers the numeric id older posts carried, since users'
// likedArticles refer to posts by that number.
func PostID(doc bson.M) string {
	if id := str(doc, "id"); id != "" {
		return id
	}
	return DocID(doc["_id"])
}

// ConvertUser returns the user document and the follow edges held in its
// legacy followers array.
func ConvertUser(doc bson.M) (model.User, []model.Follow) {
	user := model.User{
		ID:           DocID(doc["_id"]),
		Account:      str(doc, "account"),
		PasswordHash: str(doc, "password"),
		UserName:     str(doc, "userName"),
		UserImage:    str(doc, "userImage"),
		Role:         model.Role(str(doc, "type")),
	}
	if user.Role == "" {
		user.Role = model.RoleNormal
	}
	user.LikedArticles, _ = IDList(doc["likedArticles"])
	user.CommentedArticles, _ = IDList(doc["commentedArticles"])
	if created, ok := timestamp(doc, "dateCreated"); ok {
		user.CreatedAt = created
	}

	if settings, ok := asDoc(doc["blogSettings"]); ok {
		user.BlogSettings = convertBlogSettings(settings)
	}

	followers, _ := IDList(doc["followers"])
	edges := make([]model.Follow, 0, len(followers))
	for _, follower := range followers {
		edges = append(edges, model.Follow{FollowerID: follower, FolloweeID: user.ID, CreatedAt: user.CreatedAt})
	}

	return user, edges
}

func convertBlogSettings(doc bson.M) *model.BlogSettings {
	settings := &model.BlogSettings{
		BlogName:       str(doc, "blogName"),
		FavoriteGenres: []int{},
		BlogCategories: []model.BlogCategory{},
	}

	genres, _ := IDList(doc["favoriteGenres"])
	for _, genre := range genres {
		if n, err := strconv.Atoi(genre); err == nil {
			settings.FavoriteGenres = append(settings.FavoriteGenres, n)
		}
	}

	if categories, ok := doc["blogCategories"].(bson.A); ok {
		for _, item := range categories {
			category, ok := asDoc(item)
			if !ok {
				continue
			}
			id, _ := integer(category, "id")
			settings.BlogCategories = append(settings.BlogCategories, model.BlogCategory{ID: int(id), Name: str(category, "name")})
		}
	}

	return settings
}

// ConvertFollowDoc expands a document of the old Follow collection into edges.
func ConvertFollowDoc(doc bson.M) []model.Follow {
	followee := str(doc, "id", "_id")
	followers, _ := IDList(doc["followers"])

	edges := make([]model.Follow, 0, len(followers))
	for _, follower := range followers {
		edges = append(edges, model.Follow{FollowerID: follower, FolloweeID: followee})
	}

	return edges
}

// DedupFollows drops self edges and repeated pairs, keeping the first.
func DedupFollows(edges []model.Follow) []model.Follow {
	seen := make(map[[2]string]bool, len(edges))
	out := make([]model.Follow, 0, len(edges))
	for _, edge := range edges {
		key := [2]string{edge.FollowerID, edge.FolloweeID}
		if edge.FollowerID == "" || edge.FolloweeID == "" || edge.FollowerID == edge.FolloweeID || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, edge)
	}
	return out
}

// LikersByPost indexes users' likedArticles by post id.
func LikersByPost(users []model.User) map[string][]string {
	likers := make(map[string][]string)
	for _, user := range users {
		for _, postID := range user.LikedArticles {
			likers[postID] = append(likers[postID], user.ID)
		}
	}
	return likers
}

// ConvertPost returns the post in its current shape and the comment records
// split out of its embedded comments array. likers replaces a likes counter.
func ConvertPost(doc bson.M, likers []string) (model.Post, []model.Comment) {
	post := model.Post{
		ID:       PostID(doc),
		Title:    str(doc, "title"),
		Category: str(doc, "category"),
		Text:     str(doc, "text", "content"),
		Images:   []model.PostImage{},
		Comments: []string{},
	}

	if movieID, ok := integer(doc, "movieID"); ok {
		post.MovieID = &movieID
	}
	if thumbIndex, ok := integer(doc, "thumbIndex"); ok {
		post.ThumbIndex = int(thumbIndex)
	}

	post.CreatedAt, _ = timestamp(doc, "createdAt")
	if post.CreatedAt.IsZero() {
		post.CreatedAt, _ = parseDateTime(str(doc, "date"), str(doc, "time"))
	}
	post.UpdatedAt = post.CreatedAt

	if author, ok := asDoc(doc["author"]); ok {
		post.Author = model.Author{
			ID:    str(author, "userID", "id", "_id"),
			Name:  str(author, "userName", "name"),
			Image: str(author, "userImage", "image"),
		}
	}

	if images, ok := doc["images"].(bson.A); ok {
		for i, item := range images {
			switch image := item.(type) {
			case string:
				post.Images = append(post.Images, model.PostImage{Index: i, ImageURL: image})
			default:
				if img, ok := asDoc(image); ok {
					index, found := integer(img, "index")
					if !found {
						index = int64(i)
					}
					post.Images = append(post.Images, model.PostImage{Index: int(index), ImageURL: str(img, "imageURL"), Alt: str(img, "alt")})
				}
			}
		}
	}

	likes, counter := IDList(doc["likes"])
	if counter {
		likes = slices.Clone(likers)
	}
	if likes == nil {
		likes = []string{}
	}
	post.Likes = likes

	var comments []model.Comment
	if embedded, ok := doc["comments"].(bson.A); ok {
		for _, item := range embedded {
			if id, ok := item.(string); ok {
				post.Comments = append(post.Comments, id)
				continue
			}
			legacy, ok := asDoc(item)
			if !ok {
				continue
			}
			comment := convertEmbeddedComment(post, legacy)
			post.Comments = append(post.Comments, comment.ID)
			comments = append(comments, comment)
		}
	}

	return post, comments
}

func convertEmbeddedComment(post model.Post, legacy bson.M) model.Comment {
	authorID := str(legacy, "userId", "userID")

	createdAt, ok := parseDateTime(str(legacy, "date"), str(legacy, "time"))
	if !ok {
		createdAt = post.CreatedAt
	}

	name := str(legacy, "userName")
	if name == "" {
		name = "user " + authorID
	}

	return model.Comment{
		ID:          uuid.NewSHA1(commentNamespace, []byte(post.ID+"/"+str(legacy, "id"))).String(),
		PostID:      post.ID,
		ReplyTarget: model.ReplyTarget{Kind: model.TargetPost},
		AuthorID:    authorID,
		AuthorName:  name,
		Text:        str(legacy, "commentText", "replyText"),
		ReReplies:   []string{},
		CreatedAt:   createdAt,
	}
}

// ConvertReply reads a document of the replies collection. postIDs maps the
// post _id a reply was written against to the post's current id; unknown
// posts keep the stored value.
func ConvertReply(doc bson.M, postIDs map[string]string) model.Comment {
	comment := model.Comment{
		ID:           DocID(doc["_id"]),
		PostID:       str(doc, "repliedArticle"),
		ReplyTarget:  model.ReplyTarget{Kind: model.TargetPost},
		AuthorID:     str(doc, "userID"),
		AuthorName:   str(doc, "userName"),
		PasswordHash: str(doc, "password"),
		Text:         str(doc, "replyText"),
	}
	if id, ok := postIDs[comment.PostID]; ok {
		comment.PostID = id
	}

	if target, ok := asDoc(doc["replyTarget"]); ok {
		comment.ReplyTarget.Kind = ConvertReplyTarget(str(target, "target"))
		if comment.ReplyTarget.IsNested() {
			comment.ReplyTarget.TargetID = str(target, "targetID")
		}
	}

	comment.ReReplies, _ = IDList(doc["reReplies"])
	comment.CreatedAt, _ = timestamp(doc, "createdAt")

	return comment
}

func ConvertGuestbook(doc bson.M) model.Guestbook {
	guestbook := model.Guestbook{
		ID:   DocID(doc["_id"]),
		Text: str(doc, "text"),
	}

	if author, ok := asDoc(doc["writtenUser"]); ok {
		isUser, _ := author["isUser"].(bool)
		guestbook.WrittenUser = model.GuestbookAuthor{
			IsUser:       isUser,
			UserID:       str(author, "userID"),
			UserName:     str(author, "userName"),
			UserImage:    str(author, "userImage"),
			PasswordHash: str(author, "password"),
		}
	}

	guestbook.Replies, _ = IDList(doc["replies"])
	guestbook.CreatedAt, _ = timestamp(doc, "createdAt")

	return guestbook
}

// ConvertGuestbookReply reads a guestbook reply. Older replies did not store
// their guestbook, so guestbookID is used when the document has none.
func ConvertGuestbookReply(doc bson.M, guestbookID string) model.GuestbookReply {
	reply := model.GuestbookReply{
		ID:          DocID(doc["_id"]),
		GuestbookID: str(doc, "guestbookID"),
		ReplyUserID: str(doc, "replyUserID"),
		ReplyText:   str(doc, "replyText"),
	}
	if reply.GuestbookID == "" {
		reply.GuestbookID = guestbookID
	}
	reply.CreatedAt, _ = timestamp(doc, "createdAt")

	return reply
}

// hashLegacyPassword bcrypt-hashes a password stored in plain text. Values
// that are already hashes and empty values are returned unchanged.
func hashLegacyPassword(password string) (string, bool, error) {
	if password == "" || utils.IsPasswordHash(password) {
		return password, false, nil
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return "", false, err
	}

	return hash, true, nil
}
