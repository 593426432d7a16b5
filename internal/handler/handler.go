package handler

import (
	"github.com/fillog/blog-service/internal/model"
	"github.com/fillog/blog-service/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Handler struct {
	logger       *zap.Logger
	services     *service.Service
	clientOrigin string
}

func New(logger *zap.Logger, services *service.Service, clientOrigin string) *Handler {
	return &Handler{
		logger:       logger,
		services:     services,
		clientOrigin: clientOrigin,
	}
}

func (h *Handler) InitRoutes() *gin.Engine {
	r := gin.New()

	r.Use(h.loggerMiddleware, h.recoveryMiddleware)
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{h.clientOrigin},
		AllowMethods:     []string{"POST", "GET", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/register", h.usersRegister)
	r.POST("/login", h.usersLogin)

	r.POST("/post", h.authMiddleware, h.postsCreate)

	posts := r.Group("/posts")
	{
		posts.GET("", h.postsGet)

		post := posts.Group("/:postID")
		{
			post.GET("", h.notRequiredAuthMiddleware, h.postsGetByID)
			post.PUT("", h.authMiddleware, h.postsEdit)
			post.DELETE("", h.authMiddleware, h.postsDelete)
			post.POST("/like", h.authMiddleware, h.postsLike)
			post.POST("/comment", h.notRequiredAuthMiddleware, h.commentsCreate)
			post.DELETE("/comment/:commentID", h.notRequiredAuthMiddleware, h.commentsDelete)
		}
	}

	r.GET("/replies/post/:postID", h.commentsGet)
	r.GET("/rereplies/:commentID", h.commentsGetReReplies)

	users := r.Group("/users/:userID")
	{
		users.GET("", h.usersGet)
		users.GET("/followers", h.usersFollowers)
		users.POST("/follow", h.authMiddleware, h.usersFollow)
		users.POST("/unfollow", h.authMiddleware, h.usersUnfollow)
	}

	r.PUT("/settings/blog", h.authMiddleware, h.usersUpdateBlogSettings)

	guestbooks := r.Group("/guestbooks")
	{
		guestbooks.GET("", h.guestbooksGet)
		guestbooks.POST("/write", h.notRequiredAuthMiddleware, h.guestbooksWrite)
		guestbooks.POST("/reply/:guestbookID", h.authMiddleware, h.guestbooksReply)
		guestbooks.DELETE("/:guestbookID", h.notRequiredAuthMiddleware, h.guestbooksDelete)
	}

	admin := r.Group("/admin", h.adminMiddleware)
	{
		admin.POST("/reconcile", h.adminReconcile)
	}

	return r
}

// getActorFromRequest returns nil for anonymous requests.
func (h *Handler) getActorFromRequest(c *gin.Context) *model.Actor {
	actorReq, exists := c.Get("user")
	if !exists {
		return nil
	}

	actor, ok := actorReq.(model.Actor)
	if !ok {
		return nil
	}

	return &actor
}
