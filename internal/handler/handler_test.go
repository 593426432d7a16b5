package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fillog/blog-service/internal/dto"
	"github.com/fillog/blog-service/internal/model"
	"github.com/fillog/blog-service/internal/repository"
	"github.com/fillog/blog-service/internal/repository/memory"
	"github.com/fillog/blog-service/internal/service"
	"github.com/fillog/blog-service/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) (*gin.Engine, *repository.Repository) {
	t.Helper()
	repo := memory.New()
	services := service.New(zap.NewNop(), repo, service.Options{
		JWTSecret:           []byte("test-secret"),
		TokenTTL:            time.Hour,
		CompensationTimeout: time.Second,
	})
	return New(zap.NewNop(), services, "http://localhost:5173").InitRoutes(), repo
}

func doJSON(t *testing.T, r *gin.Engine, method string, path string, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func registerAndLogin(t *testing.T, r *gin.Engine, account string) (string, string) {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/register", "", dto.RegisterRequest{Account: account, Password: "1234", UserName: account})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodPost, "/login", "", dto.LoginRequest{Account: account, Password: "1234"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	session := decode[dto.LoginResponse](t, w)
	return session.Token, session.User.ID
}

func TestPostLikeScenario(t *testing.T) {
	r, _ := newTestRouter(t)
	token, _ := registerAndLogin(t, r, "writer")
	readerToken, _ := registerAndLogin(t, r, "reader")

	w := doJSON(t, r, http.MethodPost, "/post", token, dto.CreatePostRequest{Title: "T", Category: "c", Text: "body"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	post := decode[model.Post](t, w)

	w = doJSON(t, r, http.MethodGet, "/posts", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	posts := decode[[]model.Post](t, w)
	require.Len(t, posts, 1)
	assert.Equal(t, post.ID, posts[0].ID)

	w = doJSON(t, r, http.MethodPost, "/posts/"+post.ID+"/like", readerToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	liked := decode[dto.LikeResponse](t, w)
	assert.True(t, liked.Liked)
	assert.Equal(t, 1, liked.LikeCount)

	w = doJSON(t, r, http.MethodGet, "/posts/"+post.ID, readerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[dto.GetPost](t, w)
	assert.True(t, got.IsLiked)
	assert.Equal(t, 1, got.LikeCount)

	w = doJSON(t, r, http.MethodPost, "/posts/"+post.ID+"/like", readerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	unliked := decode[dto.LikeResponse](t, w)
	assert.False(t, unliked.Liked)
	assert.Equal(t, 0, unliked.LikeCount)
}

func TestNestedReplyScenario(t *testing.T) {
	r, _ := newTestRouter(t)
	token, _ := registerAndLogin(t, r, "u1")
	otherToken, _ := registerAndLogin(t, r, "u2")

	w := doJSON(t, r, http.MethodPost, "/post", token, dto.CreatePostRequest{Title: "T", Category: "c", Text: "body"})
	require.Equal(t, http.StatusCreated, w.Code)
	post := decode[model.Post](t, w)

	w = doJSON(t, r, http.MethodPost, "/posts/"+post.ID+"/comment", token, dto.CreateCommentRequest{ReplyText: "hello"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	top := decode[model.Comment](t, w)

	w = doJSON(t, r, http.MethodPost, "/posts/"+post.ID+"/comment", otherToken, dto.CreateCommentRequest{
		ReplyTarget: &model.ReplyTarget{Kind: model.TargetComment, TargetID: top.ID},
		ReplyText:   "reply",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	child := decode[model.Comment](t, w)

	w = doJSON(t, r, http.MethodGet, "/replies/post/"+post.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	comments := decode[[]model.Comment](t, w)
	require.Len(t, comments, 1)
	assert.Equal(t, []string{child.ID}, comments[0].ReReplies)

	w = doJSON(t, r, http.MethodGet, "/rereplies/"+top.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	replies := decode[[]model.Comment](t, w)
	require.Len(t, replies, 1)
	assert.Equal(t, "reply", replies[0].Text)
}

func TestCommentDeleteStatusCodes(t *testing.T) {
	r, _ := newTestRouter(t)
	token, _ := registerAndLogin(t, r, "u1")

	w := doJSON(t, r, http.MethodPost, "/post", token, dto.CreatePostRequest{Title: "T", Category: "c", Text: "body"})
	first := decode[model.Post](t, w)
	w = doJSON(t, r, http.MethodPost, "/post", token, dto.CreatePostRequest{Title: "T2", Category: "c", Text: "body"})
	second := decode[model.Post](t, w)

	w = doJSON(t, r, http.MethodPost, "/posts/"+first.ID+"/comment", "", dto.CreateCommentRequest{UserName: "guest", Password: "pw", ReplyText: "hi"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	comment := decode[model.Comment](t, w)

	w = doJSON(t, r, http.MethodDelete, "/posts/"+second.ID+"/comment/"+comment.ID, "", dto.DeleteCommentRequest{Password: "pw"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, r, http.MethodDelete, "/posts/"+first.ID+"/comment/"+comment.ID, "", dto.DeleteCommentRequest{Password: "nope"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	resp := decode[dto.BasicResponse](t, w)
	assert.False(t, resp.Ok)

	w = doJSON(t, r, http.MethodDelete, "/posts/"+first.ID+"/comment/"+comment.ID, "", dto.DeleteCommentRequest{Password: "pw"})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodDelete, "/posts/"+first.ID+"/comment/"+comment.ID, "", dto.DeleteCommentRequest{Password: "pw"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteReadsChunkedBody(t *testing.T) {
	r, _ := newTestRouter(t)
	token, _ := registerAndLogin(t, r, "u1")

	w := doJSON(t, r, http.MethodPost, "/post", token, dto.CreatePostRequest{Title: "T", Category: "c", Text: "body"})
	post := decode[model.Post](t, w)
	w = doJSON(t, r, http.MethodPost, "/posts/"+post.ID+"/comment", "", dto.CreateCommentRequest{UserName: "guest", Password: "pw", ReplyText: "hi"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	comment := decode[model.Comment](t, w)

	// io.MultiReader hides the length, as a chunked upload does.
	body := io.MultiReader(strings.NewReader(`{"password":"pw"}`))
	req := httptest.NewRequest(http.MethodDelete, "/posts/"+post.ID+"/comment/"+comment.ID, body)
	req.ContentLength = -1
	req.Header.Set("Content-Type", "application/json")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestDeleteWithoutBodyByAuthor(t *testing.T) {
	r, _ := newTestRouter(t)
	token, _ := registerAndLogin(t, r, "u1")

	w := doJSON(t, r, http.MethodPost, "/post", token, dto.CreatePostRequest{Title: "T", Category: "c", Text: "body"})
	post := decode[model.Post](t, w)
	w = doJSON(t, r, http.MethodPost, "/posts/"+post.ID+"/comment", token, dto.CreateCommentRequest{ReplyText: "mine"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	comment := decode[model.Comment](t, w)

	w = doJSON(t, r, http.MethodDelete, "/posts/"+post.ID+"/comment/"+comment.ID, token, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestAuthAndValidationErrors(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/post", "", dto.CreatePostRequest{Title: "T", Category: "c", Text: "body"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, r, http.MethodPost, "/post", "not-a-token", dto.CreatePostRequest{Title: "T", Category: "c", Text: "body"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	token, _ := registerAndLogin(t, r, "u1")
	w = doJSON(t, r, http.MethodPost, "/post", token, dto.CreatePostRequest{Category: "c", Text: "body"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode[dto.BasicResponse](t, w)
	assert.Contains(t, resp.Message, "title")

	w = doJSON(t, r, http.MethodGet, "/posts/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodPost, "/register", "", dto.RegisterRequest{Account: "u1", Password: "1234", UserName: "dup"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestFollowTwiceKeepsOneFollower(t *testing.T) {
	r, _ := newTestRouter(t)
	_, aliceID := registerAndLogin(t, r, "alice")
	bobToken, bobID := registerAndLogin(t, r, "bob")

	for range 2 {
		w := doJSON(t, r, http.MethodPost, "/users/"+aliceID+"/follow", bobToken, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w := doJSON(t, r, http.MethodGet, "/users/"+aliceID+"/followers", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	followers := decode[map[string][]string](t, w)
	assert.Equal(t, []string{bobID}, followers["followers"])

	w = doJSON(t, r, http.MethodGet, "/users/"+bobID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	profile := decode[dto.ProfileResponse](t, w)
	assert.Equal(t, []string{aliceID}, profile.Following)

	w = doJSON(t, r, http.MethodPost, "/users/"+bobID+"/follow", bobToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGuestbookRoutes(t *testing.T) {
	r, _ := newTestRouter(t)
	token, _ := registerAndLogin(t, r, "host")

	w := doJSON(t, r, http.MethodPost, "/guestbooks/write", "", dto.WriteGuestbookRequest{UserName: "guest", Password: "pw", Text: "hello"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	entry := decode[model.Guestbook](t, w)

	w = doJSON(t, r, http.MethodPost, "/guestbooks/reply/"+entry.ID, "", dto.ReplyGuestbookRequest{ReplyText: "thanks"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, r, http.MethodPost, "/guestbooks/reply/"+entry.ID, token, dto.ReplyGuestbookRequest{ReplyText: "thanks"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodGet, "/guestbooks", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	entries := decode[[]model.FullGuestbook](t, w)
	require.Len(t, entries, 1)
	require.Len(t, entries[0].ReplyList, 1)
	assert.Equal(t, "thanks", entries[0].ReplyList[0].ReplyText)

	w = doJSON(t, r, http.MethodDelete, "/guestbooks/"+entry.ID, "", dto.DeleteGuestbookRequest{Password: "pw"})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestBlogSettings(t *testing.T) {
	r, _ := newTestRouter(t)
	token, _ := registerAndLogin(t, r, "blogger")

	w := doJSON(t, r, http.MethodPut, "/settings/blog", token, dto.BlogSettingsRequest{BlogName: "reviews", FavoriteGenres: []int{18}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	user := decode[model.User](t, w)
	require.NotNil(t, user.BlogSettings)
	assert.Equal(t, "reviews", user.BlogSettings.BlogName)
}

func TestAdminReconcile(t *testing.T) {
	r, repo := newTestRouter(t)
	token, _ := registerAndLogin(t, r, "normal")

	w := doJSON(t, r, http.MethodPost, "/admin/reconcile", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	hash, err := utils.HashPassword("1234")
	require.NoError(t, err)
	_, err = repo.User.Create(context.Background(), model.User{ID: "admin", Account: "admin", PasswordHash: hash, UserName: "admin", Role: model.RoleAdmin})
	require.NoError(t, err)

	w = doJSON(t, r, http.MethodPost, "/login", "", dto.LoginRequest{Account: "admin", Password: "1234"})
	require.Equal(t, http.StatusOK, w.Code)
	adminToken := decode[dto.LoginResponse](t, w).Token

	w = doJSON(t, r, http.MethodPost, "/admin/reconcile?full=true", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	report := decode[service.ReconcileReport](t, w)
	assert.Zero(t, report.LikesFixed)
}

func TestMetricsEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
