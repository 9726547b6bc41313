package routes

import (
	"github.com/01moynul/relique/internal/handlers"
	"github.com/01moynul/relique/internal/middleware"
	"github.com/01moynul/relique/internal/models"
	"github.com/gin-gonic/gin"
)

// SetupRouter builds the engine with every /v1 route. One API serves the
// public marketplace, the client portal and the admin dashboard.
func SetupRouter(h *handlers.Handlers) *gin.Engine {
	handlers.RegisterValidators()

	router := gin.New()

	// --- Global middleware ---
	// CORS must see preflight requests before anything else aborts them.
	router.Use(
		middleware.RequestID(),
		middleware.Logger(h.Logger),
		gin.Recovery(),
		middleware.CORS(h.Config.CORSOrigins),
	)

	// --- Uploaded images ---
	router.Static("/uploads", h.Config.UploadDir)

	requireAuth := middleware.AuthMiddleware(h.Config.JWTSecret, h.Store, h.Logger)
	optionalAuth := middleware.OptionalAuthMiddleware(h.Config.JWTSecret, h.Store)

	v1 := router.Group("/v1")
	{
		// --- Health (Public) ---
		v1.GET("/ping", h.Ping)
		v1.GET("/healthz", h.Healthz)

		// --- Auth Routes (Public) ---
		v1.POST("/auth/register", h.Register)
		v1.POST("/auth/login", h.Login)

		// --- Public Content ---
		v1.GET("/posts", h.ListPublicPosts)
		v1.GET("/posts/:slug", h.GetPublicPost)
		v1.GET("/events", h.ListPublicEvents)
		v1.GET("/events/:slug", h.GetPublicEvent)
		v1.GET("/globals", h.GetGlobals)

		// --- Public, personalised when signed in ---
		public := v1.Group("/")
		public.Use(optionalAuth)
		{
			public.GET("/listings", h.ListPublicListings)
			public.GET("/listings/facets", h.GetListingFacets)
			public.GET("/listings/:id", h.GetPublicListing)
			public.POST("/submissions", h.CreateSubmission)
			public.GET("/verify/:code", h.VerifyCode)
		}

		// --- Protected Routes (Login Required) ---
		auth := v1.Group("/")
		auth.Use(requireAuth)
		{
			// --- Notification Routes ---
			auth.GET("/notifications", h.GetMyNotifications)
			auth.PATCH("/notifications/:id/read", h.MarkNotificationAsRead)

			// --- Uploads ---
			auth.POST("/uploads", h.UploadFile)

			// --- Client portal ---
			me := auth.Group("/me")
			{
				me.GET("", h.GetMe)

				me.GET("/listings", h.ListMyListings)
				me.POST("/listings", h.CreateListing)
				me.GET("/listings/:id", h.GetMyListing)
				me.PUT("/listings/:id", h.UpdateMyListing)
				me.DELETE("/listings/:id", h.DeleteMyListing)

				me.GET("/submissions", h.ListMySubmissions)

				me.GET("/activity", h.ListActivity)

				me.GET("/favorites", h.ListFavorites)
				me.PUT("/favorites/:listingId", h.AddFavorite)
				me.DELETE("/favorites/:listingId", h.RemoveFavorite)

				me.GET("/views", h.ListViews)
				me.PUT("/views", h.SaveView)
				me.DELETE("/views/:name", h.DeleteView)

				me.GET("/drafts", h.ListDrafts)
				me.GET("/drafts/:key", h.GetDraft)
				me.PUT("/drafts/:key", h.PutDraft)
				me.DELETE("/drafts/:key", h.DeleteDraft)

				me.GET("/search-history", h.ListSearchHistory)
				me.DELETE("/search-history", h.ClearSearchHistory)
			}

			// --- CMS Routes (Editor or Admin) ---
			cms := auth.Group("/cms")
			cms.Use(middleware.RequireRole(models.RoleEditor, models.RoleAdmin))
			{
				cms.GET("/posts", h.ListCMSPosts)
				cms.POST("/posts", h.CreatePost)
				cms.PUT("/posts/:id", h.UpdatePost)
				cms.DELETE("/posts/:id", h.DeletePost)

				cms.GET("/events", h.ListCMSEvents)
				cms.POST("/events", h.CreateEvent)
				cms.PUT("/events/:id", h.UpdateEvent)
				cms.DELETE("/events/:id", h.DeleteEvent)
			}

			// --- Admin Routes ---
			admin := auth.Group("/admin")
			admin.Use(middleware.RequireRole(models.RoleAdmin))
			{
				admin.GET("/dashboard-stats", h.GetDashboardStats)

				admin.GET("/listings", h.AdminListListings)
				admin.PATCH("/listings/:id/status", h.UpdateListingStatus)
				admin.PATCH("/listings/:id/approve", h.ApproveListing)

				admin.GET("/submissions", h.AdminListSubmissions)
				admin.PATCH("/submissions/:id", h.UpdateSubmission)

				admin.POST("/verify-records", h.IssueVerifyRecord)
				admin.GET("/verify-records/:code", h.GetVerifyRecord)

				admin.GET("/audit-logs", h.ListAuditLogs)

				admin.GET("/settings", h.GetSettings)
				admin.PATCH("/settings", h.UpdateSettings)

				admin.GET("/users", h.ListUsers)
				admin.POST("/users", h.CreateUser)

				admin.POST("/assistant", h.ChatAI)
			}
		}
	}

	return router
}
