package server

import (
	"github.com/gin-gonic/gin"
)

// SetupRouter creates and configures the Gin router.
func SetupRouter(api *API, hub *Hub) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(api.log))
	r.Use(corsMiddleware())

	r.GET("/health", api.Health)

	// Uploaded files
	r.GET("/objects/*path", api.ServeObject)
	r.HEAD("/objects/*path", api.ServeObject)

	// Public site
	public := r.Group("/api")
	{
		public.GET("/posts", api.ListPosts)
		public.GET("/posts/:slug", api.GetPost)
		public.GET("/categories", api.ListCategories)
		public.GET("/resources", api.ListResources)
		public.POST("/resources/:id/play", api.PlayResource)
		public.GET("/social-links", api.ListSocialLinks)
		public.POST("/newsletter/subscribe", api.Subscribe)
		public.POST("/newsletter/unsubscribe", api.Unsubscribe)
		public.POST("/contact", api.Contact)
	}

	// Floating player
	player := r.Group("/api/player")
	{
		player.GET("", api.GetPlayer)
		player.GET("/download", api.Download)
		for _, typ := range []CommandType{
			CommandPlay, CommandPause, CommandResume, CommandClose,
			CommandSeek, CommandVolume, CommandMute, CommandMinimize,
			CommandMedia, CommandPointer, CommandViewport,
		} {
			player.POST("/"+string(typ), api.PlayerCommand(typ))
		}
	}
	r.GET("/ws/player", hub.ServeWS)

	// Admin panel
	r.POST("/api/admin/login", api.Login)
	admin := r.Group("/api/admin", requireAdmin(api.auth))
	{
		admin.GET("/dashboard", api.Dashboard)

		admin.GET("/posts", api.AdminListPosts)
		admin.POST("/posts", api.CreatePost)
		admin.GET("/posts/:id", api.AdminGetPost)
		admin.PUT("/posts/:id", api.UpdatePost)
		admin.DELETE("/posts/:id", api.DeletePost)

		admin.GET("/categories", api.ListCategories)
		admin.POST("/categories", api.CreateCategory)
		admin.GET("/categories/:id", api.AdminGetCategory)
		admin.PUT("/categories/:id", api.UpdateCategory)
		admin.DELETE("/categories/:id", api.DeleteCategory)

		admin.GET("/resources", api.AdminListResources)
		admin.POST("/resources", api.CreateResource)
		admin.GET("/resources/:id", api.AdminGetResource)
		admin.PUT("/resources/:id", api.UpdateResource)
		admin.DELETE("/resources/:id", api.DeleteResource)

		admin.GET("/subscribers", api.AdminListSubscribers)
		admin.GET("/subscribers/:id", api.AdminGetSubscriber)
		admin.PUT("/subscribers/:id", api.UpdateSubscriber)
		admin.DELETE("/subscribers/:id", api.DeleteSubscriber)

		admin.GET("/messages", api.AdminListMessages)
		admin.GET("/messages/:id", api.AdminGetMessage)
		admin.PATCH("/messages/:id", api.MarkMessageRead)
		admin.DELETE("/messages/:id", api.DeleteMessage)

		admin.GET("/social-links", api.AdminListSocialLinks)
		admin.POST("/social-links", api.CreateSocialLink)
		admin.PUT("/social-links/:id", api.UpdateSocialLink)
		admin.POST("/social-links/:id/move", api.MoveSocialLink)
		admin.DELETE("/social-links/:id", api.DeleteSocialLink)

		admin.GET("/uploads", api.ListObjects)
		admin.POST("/uploads", api.UploadObject)
		admin.POST("/uploads/delete", api.DeleteObjects)
		admin.DELETE("/uploads/*path", api.DeleteObject)
	}

	return r
}
