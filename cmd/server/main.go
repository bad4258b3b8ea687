package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/appstorewatch/insights/internal/analytics"
	"github.com/appstorewatch/insights/internal/cache"
	"github.com/appstorewatch/insights/internal/database"
	apperrors "github.com/appstorewatch/insights/internal/errors"
	"github.com/appstorewatch/insights/internal/factcheck"
	"github.com/appstorewatch/insights/internal/frontend"
	"github.com/appstorewatch/insights/internal/kvstore"
	"github.com/appstorewatch/insights/internal/listquery"
	"github.com/appstorewatch/insights/internal/middleware"
	"github.com/appstorewatch/insights/internal/monitoring"
	"github.com/appstorewatch/insights/internal/quiz"
	"github.com/appstorewatch/insights/internal/ratelimit"
	"github.com/appstorewatch/insights/internal/security"
	"github.com/appstorewatch/insights/internal/trending"
	"github.com/appstorewatch/insights/internal/types"
)

// appDeps bundles the wired services the router is built from
type appDeps struct {
	db               *database.DB
	repo             *database.Repository
	adminService     *database.AdminService
	adminPassword    string
	factcheckService *factcheck.Service
	trendingService  *trending.Service
	checklistStore   kvstore.Store
	catalog          *quiz.Catalog
	analyticsClient  *analytics.Client
	appMetrics       *monitoring.Metrics
	appLogger        *monitoring.Logger
	rateLimiter      *ratelimit.RateLimiter
	appCache         *cache.Cache
	compression      *middleware.CompressionMiddleware
	security         *security.SecurityMiddleware
	corsOrigins      []string
}

func main() {
	// Structured logging setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Configuration from environment with defaults
	port := getEnvOrDefault("PORT", "8080")
	dataDir := getEnvOrDefault("DATA_DIR", "./data")
	jwtSecret := getEnvOrDefault("JWT_SECRET", "insights-dev-secret-change-in-production")
	adminUser := getEnvOrDefault("ADMIN_USER", "admin")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	redisAddr := os.Getenv("REDIS_ADDR")
	redisPassword := os.Getenv("REDIS_PASSWORD")
	analyticsBaseURL := os.Getenv("ANALYTICS_BASE_URL")
	analyticsSiteID := os.Getenv("ANALYTICS_SITE_ID")
	analyticsToken := os.Getenv("ANALYTICS_TOKEN")
	allowAppendAfterComplete := os.Getenv("ALLOW_APPEND_AFTER_COMPLETE") == "true"

	if adminPassword == "" {
		slog.Warn("ADMIN_PASSWORD not set, admin API is disabled until configured")
	}

	// Initialize database and services
	db, err := database.NewDB(dataDir)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer apperrors.SafeClose(db, "database")

	repo := database.NewRepository(db)
	adminService := database.NewAdminService(repo, jwtSecret, adminUser, adminPassword)
	factcheckService := factcheck.NewService(repo, factcheck.Config{
		AllowAppendAfterComplete: allowAppendAfterComplete,
	})
	trendingService := trending.NewService(repo)
	checklistStore := kvstore.NewSQLStore(db)

	// Quiz catalog: data-dir override falls back to the embedded default
	catalog, err := quiz.LoadCatalog(dataDir)
	if err != nil {
		slog.Error("Failed to load quiz catalog", "error", err)
		os.Exit(1)
	}

	// External analytics adapter; unconfigured means the dashboard serves
	// site statistics only
	analyticsClient := analytics.NewClient(analyticsBaseURL, analyticsSiteID, analyticsToken)
	defer apperrors.SafeClose(analyticsClient, "analytics client")

	// Monitoring
	appMetrics := monitoring.NewMetrics()
	appLogger := monitoring.NewLogger()

	// Rate limiting: Redis when configured, in-memory fallback otherwise
	redisClient, err := ratelimit.NewRedisClient(redisAddr, redisPassword, 0)
	if err != nil {
		slog.Warn("Redis unavailable, continuing with in-memory rate limiting", "error", err)
	}
	defer apperrors.SafeClose(redisClient, "redis client")
	rateLimiter := ratelimit.NewRateLimiter(redisClient, ratelimit.DefaultConfig(), appMetrics)

	// Response cache for public listing GETs
	appCache := cache.NewCache(5 * time.Minute)

	compressionMiddleware := middleware.NewCompressionMiddleware(middleware.DefaultCompressionConfig())

	securityMiddleware := security.NewSecurityMiddleware(security.DefaultSecurityConfig())

	trendingService.AutoRefresh(10 * time.Minute)

	deps := &appDeps{
		db:               db,
		repo:             repo,
		adminService:     adminService,
		adminPassword:    adminPassword,
		factcheckService: factcheckService,
		trendingService:  trendingService,
		checklistStore:   checklistStore,
		catalog:          catalog,
		analyticsClient:  analyticsClient,
		appMetrics:       appMetrics,
		appLogger:        appLogger,
		rateLimiter:      rateLimiter,
		appCache:         appCache,
		compression:      compressionMiddleware,
		security:         securityMiddleware,
		corsOrigins: strings.Split(
			getEnvOrDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173"), ","),
	}

	r := buildRouter(deps)

	// Start server with graceful shutdown
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		slog.Info("Starting server", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited")
}

// buildRouter assembles the middleware chain and every route of the service
func buildRouter(deps *appDeps) *gin.Engine {
	repo := deps.repo
	adminService := deps.adminService
	adminPassword := deps.adminPassword
	factcheckService := deps.factcheckService
	trendingService := deps.trendingService
	checklistStore := deps.checklistStore
	catalog := deps.catalog
	analyticsClient := deps.analyticsClient
	appMetrics := deps.appMetrics
	appLogger := deps.appLogger
	rateLimiter := deps.rateLimiter
	appCache := deps.appCache
	compressionMiddleware := deps.compression
	securityMiddleware := deps.security
	db := deps.db

	r := gin.New()

	r.Use(monitoring.MonitoringMiddleware(appMetrics, appLogger))
	r.Use(monitoring.SecurityMonitoringMiddleware(appLogger))
	r.Use(apperrors.ErrorHandler())
	r.Use(apperrors.RecoveryHandler())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = deps.corsOrigins
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	r.Use(cors.New(corsConfig))

	r.Use(security.SecurityHeadersMiddleware())
	r.Use(security.CSPMiddleware())
	r.Use(securityMiddleware.RequestTimeout)
	r.Use(securityMiddleware.ValidateContentType)
	r.Use(compressionMiddleware.Handler())
	r.Use(rateLimiter.IPRateLimitMiddleware())
	r.Use(appCache.Middleware(appMetrics,
		"/api/articles", "/api/stores", "/api/topics", "/api/timeline", "/api/quiz"))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   "1.0.0",
			"database":  db.GetPoolStats(),
		})
	})

	// ---- public content API ----

	r.GET("/api/articles", func(c *gin.Context) {
		articles, err := repo.ListPublishedArticles()
		if err != nil {
			respondError(c, err)
			return
		}

		category := c.DefaultQuery("category", listquery.FilterAll)
		region := c.DefaultQuery("region", listquery.FilterAll)
		query := c.Query("q")

		articles = listquery.Filter(articles, func(a *database.Article) bool {
			return listquery.MatchEquals(a.Category, category) &&
				listquery.MatchEquals(a.Region, region) &&
				listquery.MatchAnySubstring(query, a.Title, a.Summary, a.Body)
		})

		sortArticles(articles, c.Query("sort"), parseDirection(c, listquery.Descending))

		c.JSON(http.StatusOK, gin.H{"articles": articles, "total": len(articles)})
	})

	r.GET("/api/articles/:slug", func(c *gin.Context) {
		slug := c.Param("slug")
		if err := security.ValidateSlug(slug); err != nil {
			respondError(c, apperrors.NewValidationError(err.Error()))
			return
		}

		article, err := repo.GetArticleBySlug(slug)
		if err != nil {
			respondError(c, err)
			return
		}
		if article.Status != database.ArticleStatusPublished {
			respondError(c, apperrors.NewNotFoundError("article", nil))
			return
		}

		c.JSON(http.StatusOK, article)
	})

	r.GET("/api/stores", func(c *gin.Context) {
		stores, err := repo.ListStoreListings()
		if err != nil {
			respondError(c, err)
			return
		}

		region := c.DefaultQuery("region", listquery.FilterAll)
		status := c.DefaultQuery("status", listquery.FilterAll)
		query := c.Query("q")

		stores = listquery.Filter(stores, func(s *database.StoreListing) bool {
			return listquery.MatchEquals(s.Region, region) &&
				listquery.MatchEquals(s.Status, status) &&
				listquery.MatchAnySubstring(query, s.Name, s.Operator, s.Notes)
		})

		sortStores(stores, c.Query("sort"), parseDirection(c, listquery.Ascending))

		c.JSON(http.StatusOK, gin.H{"stores": stores, "total": len(stores)})
	})

	r.GET("/api/topics", func(c *gin.Context) {
		topics, err := repo.ListTrendingTopics(-1)
		if err != nil {
			respondError(c, err)
			return
		}

		category := c.DefaultQuery("category", listquery.FilterAll)
		priority := c.DefaultQuery("priority", listquery.FilterAll)

		topics = listquery.Filter(topics, func(t *database.TrendingTopic) bool {
			return listquery.MatchEquals(t.Category, category) &&
				listquery.MatchEquals(t.Priority, priority)
		})

		c.JSON(http.StatusOK, gin.H{"topics": topics, "total": len(topics)})
	})

	r.GET("/api/trending", func(c *gin.Context) {
		limit := trending.DefaultLimit
		if limitStr := c.Query("limit"); limitStr != "" {
			if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
				limit = l
			}
		}

		snapshot, err := trendingService.GetTrending(limit)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, snapshot)
	})

	r.GET("/api/timeline", func(c *gin.Context) {
		events, err := repo.ListTimelineEvents()
		if err != nil {
			respondError(c, err)
			return
		}

		category := c.DefaultQuery("category", listquery.FilterAll)
		events = listquery.Filter(events, func(e *database.TimelineEvent) bool {
			return listquery.MatchEquals(e.Category, category)
		})

		dir := parseDirection(c, listquery.Ascending)
		listquery.Sort(events, dir, func(a, b *database.TimelineEvent) int {
			return listquery.CompareTimes(listquery.ParseDate(a.OccurredOn), listquery.ParseDate(b.OccurredOn))
		})

		c.JSON(http.StatusOK, gin.H{"events": events, "total": len(events)})
	})

	// ---- quiz ----

	r.GET("/api/quiz", func(c *gin.Context) {
		c.JSON(http.StatusOK, catalog)
	})

	r.POST("/api/quiz/score", rateLimiter.EndpointRateLimitMiddleware("quiz_score", 30), func(c *gin.Context) {
		start := time.Now()

		var req types.QuizScoreRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, apperrors.NewValidationError("invalid quiz answers payload"))
			return
		}

		answers := quiz.AnswerSetFrom(req.Answers, catalog)
		totals := quiz.Aggregate(answers, catalog.Questions)
		results := quiz.Rank(totals, catalog)

		appMetrics.IncrementQuizScore()
		topKey := ""
		if len(results) > 0 {
			topKey = string(results[0].Key)
		}
		appLogger.QuizScoreLogger(answers.Len(), len(results), topKey, time.Since(start))

		c.JSON(http.StatusOK, gin.H{
			"results":            results,
			"answered_questions": answers.Len(),
		})
	})

	// ---- dashboard: statistics degrade independently of analytics ----

	r.GET("/api/dashboard", func(c *gin.Context) {
		stats, err := adminService.GetSiteStatistics()
		if err != nil {
			respondError(c, err)
			return
		}

		response := gin.H{"statistics": stats}

		if analyticsClient.Enabled() {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
			defer cancel()

			appMetrics.IncrementAnalyticsCalls()
			external, err := analyticsClient.FetchStats(ctx, 7)
			if err != nil {
				appMetrics.RecordExternalAPIRequest("analytics", false)
				slog.Warn("Analytics fetch failed, serving statistics only", "error", err)
				response["analytics_error"] = "analytics temporarily unavailable"
			} else {
				appMetrics.RecordExternalAPIRequest("analytics", true)
				response["analytics"] = external
			}
		}

		c.JSON(http.StatusOK, response)
	})

	// ---- checklist progress (server-side replacement for local storage) ----

	r.GET("/api/checklist/:key", func(c *gin.Context) {
		key := c.Param("key")
		if err := security.ValidateSlug(key); err != nil {
			respondError(c, apperrors.NewValidationError(err.Error()))
			return
		}

		entry, err := checklistStore.Get(key)
		if err != nil {
			if errors.Is(err, kvstore.ErrNotFound) {
				respondError(c, apperrors.NewNotFoundError("checklist entry", err))
				return
			}
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, entry)
	})

	r.PUT("/api/checklist/:key", func(c *gin.Context) {
		key := c.Param("key")
		if err := security.ValidateSlug(key); err != nil {
			respondError(c, apperrors.NewValidationError(err.Error()))
			return
		}

		var req types.ChecklistRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, apperrors.NewValidationError("value is required"))
			return
		}

		entry, err := checklistStore.Set(key, req.Value)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, entry)
	})

	r.DELETE("/api/checklist/:key", func(c *gin.Context) {
		key := c.Param("key")
		if err := security.ValidateSlug(key); err != nil {
			respondError(c, apperrors.NewValidationError(err.Error()))
			return
		}

		if err := checklistStore.Delete(key); err != nil {
			respondError(c, err)
			return
		}

		c.Status(http.StatusNoContent)
	})

	// ---- observability ----

	r.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, appMetrics.GetStats())
	})

	r.GET("/cache/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"response_cache": appCache.Stats(),
			"trending":       trendingService.CacheStats(),
			"compression":    compressionMiddleware.GetStats(),
			"rate_limit":     rateLimiter.GetStats(),
			"analytics_pool": analyticsClient.PoolStats(),
		})
	})

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// ---- admin API ----

	r.POST("/api/admin/login", rateLimiter.EndpointRateLimitMiddleware("admin_login", 10), func(c *gin.Context) {
		if adminPassword == "" {
			respondError(c, apperrors.NewConfigurationError("admin password is not set", nil))
			return
		}

		var req types.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, apperrors.NewValidationError("username and password are required"))
			return
		}

		token, err := adminService.Authenticate(req.Username, req.Password)
		if err != nil {
			appLogger.SecurityLogger("admin_login_failed", c.ClientIP(), c.GetHeader("User-Agent"), map[string]interface{}{
				"username": req.Username,
			})
			respondError(c, apperrors.NewUnauthorizedError("invalid credentials"))
			return
		}

		c.JSON(http.StatusOK, types.LoginResponse{Token: token})
	})

	admin := r.Group("/api/admin", adminAuthMiddleware(adminService))

	admin.GET("/articles", func(c *gin.Context) {
		articles, err := repo.ListArticles()
		if err != nil {
			respondError(c, err)
			return
		}

		status := c.DefaultQuery("status", listquery.FilterAll)
		articles = listquery.Filter(articles, func(a *database.Article) bool {
			return listquery.MatchEquals(a.Status, status)
		})

		c.JSON(http.StatusOK, gin.H{"articles": articles, "total": len(articles)})
	})

	admin.POST("/articles", func(c *gin.Context) {
		var req types.ArticleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, apperrors.NewValidationError("slug and title are required"))
			return
		}

		article, appErr := articleFromRequest(&req)
		if appErr != nil {
			respondError(c, appErr)
			return
		}

		created, err := repo.CreateArticle(article)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, created)
	})

	admin.GET("/articles/:id", func(c *gin.Context) {
		article, err := repo.GetArticle(c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, article)
	})

	admin.PUT("/articles/:id", func(c *gin.Context) {
		var req types.ArticleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, apperrors.NewValidationError("slug and title are required"))
			return
		}

		existing, err := repo.GetArticle(c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}

		updated, appErr := articleFromRequest(&req)
		if appErr != nil {
			respondError(c, appErr)
			return
		}
		updated.ID = existing.ID
		updated.CreatedAt = existing.CreatedAt

		saved, err := repo.UpdateArticle(updated)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, saved)
	})

	admin.DELETE("/articles/:id", func(c *gin.Context) {
		if err := repo.DeleteArticle(c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	admin.GET("/stores", func(c *gin.Context) {
		stores, err := repo.ListStoreListings()
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"stores": stores, "total": len(stores)})
	})

	admin.POST("/stores", func(c *gin.Context) {
		var req types.StoreListingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, apperrors.NewValidationError("name is required"))
			return
		}

		created, err := repo.CreateStoreListing(storeFromRequest(&req))
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, created)
	})

	admin.GET("/stores/:id", func(c *gin.Context) {
		store, err := repo.GetStoreListing(c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, store)
	})

	admin.PUT("/stores/:id", func(c *gin.Context) {
		var req types.StoreListingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, apperrors.NewValidationError("name is required"))
			return
		}

		existing, err := repo.GetStoreListing(c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}

		updated := storeFromRequest(&req)
		updated.ID = existing.ID
		updated.CreatedAt = existing.CreatedAt

		saved, err := repo.UpdateStoreListing(updated)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, saved)
	})

	admin.DELETE("/stores/:id", func(c *gin.Context) {
		if err := repo.DeleteStoreListing(c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	admin.GET("/topics", func(c *gin.Context) {
		topics, err := repo.ListTrendingTopics(-1)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"topics": topics, "total": len(topics)})
	})

	admin.POST("/topics", func(c *gin.Context) {
		var req types.TrendingTopicRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, apperrors.NewValidationError("title is required"))
			return
		}

		created, err := repo.CreateTrendingTopic(topicFromRequest(&req))
		if err != nil {
			respondError(c, err)
			return
		}

		trendingService.Invalidate()
		c.JSON(http.StatusCreated, created)
	})

	admin.PUT("/topics/:id", func(c *gin.Context) {
		var req types.TrendingTopicRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, apperrors.NewValidationError("title is required"))
			return
		}

		existing, err := repo.GetTrendingTopic(c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}

		updated := topicFromRequest(&req)
		updated.ID = existing.ID
		updated.CreatedAt = existing.CreatedAt

		saved, err := repo.UpdateTrendingTopic(updated)
		if err != nil {
			respondError(c, err)
			return
		}

		trendingService.Invalidate()
		c.JSON(http.StatusOK, saved)
	})

	admin.DELETE("/topics/:id", func(c *gin.Context) {
		if err := repo.DeleteTrendingTopic(c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		trendingService.Invalidate()
		c.Status(http.StatusNoContent)
	})

	admin.GET("/timeline", func(c *gin.Context) {
		events, err := repo.ListTimelineEvents()
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"events": events, "total": len(events)})
	})

	admin.POST("/timeline", func(c *gin.Context) {
		var req types.TimelineEventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, apperrors.NewValidationError("title and occurred_on are required"))
			return
		}
		if listquery.ParseDate(req.OccurredOn).IsZero() {
			respondError(c, apperrors.NewValidationError("occurred_on must be a 2006-01-02 date"))
			return
		}

		created, err := repo.CreateTimelineEvent(
			database.NewTimelineEvent(req.Title, req.Description, req.Category, req.OccurredOn))
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, created)
	})

	admin.DELETE("/timeline/:id", func(c *gin.Context) {
		if err := repo.DeleteTimelineEvent(c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	// ---- fact-check workflow ----

	admin.POST("/factcheck", func(c *gin.Context) {
		var req types.FactCheckCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, apperrors.NewValidationError("title is required"))
			return
		}

		session, err := factcheckService.Create(req.Title, req.TotalItems, req.Notes)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, session)
	})

	admin.GET("/factcheck", func(c *gin.Context) {
		sessions, err := factcheckService.List()
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"sessions": sessions, "total": len(sessions)})
	})

	admin.GET("/factcheck/:id/report", func(c *gin.Context) {
		report, err := factcheckService.Report(c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, report)
	})

	admin.POST("/factcheck/:id/items", func(c *gin.Context) {
		var req types.FactCheckItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, apperrors.NewValidationError("item_id and status are required"))
			return
		}

		record, err := factcheckService.RecordItemResult(
			c.Param("id"), req.ItemID, req.Status, req.PreviousValue, req.NewValue, req.Notes)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, record)
	})

	admin.PUT("/factcheck/:id", func(c *gin.Context) {
		var req types.FactCheckUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, apperrors.NewValidationError("invalid session update payload"))
			return
		}

		session, err := factcheckService.Update(c.Param("id"), factcheck.SessionUpdate{
			Title:      req.Title,
			Notes:      req.Notes,
			TotalItems: req.TotalItems,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, session)
	})

	admin.POST("/factcheck/:id/complete", func(c *gin.Context) {
		session, err := factcheckService.Complete(c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, session)
	})

	admin.POST("/factcheck/:id/cancel", func(c *gin.Context) {
		session, err := factcheckService.Cancel(c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, session)
	})

	// ---- embedded admin shell ----

	distFS, err := frontend.GetDistFS()
	if err != nil {
		slog.Error("Failed to load embedded frontend", "error", err)
		os.Exit(1)
	}
	indexTemplate, err := frontend.LoadIndexTemplate(distFS)
	if err != nil {
		slog.Error("Failed to parse index template", "error", err)
		os.Exit(1)
	}
	r.NoRoute(frontend.NewShellHandler(distFS, indexTemplate))

	return r
}

// adminAuthMiddleware validates the bearer token on every admin route
func adminAuthMiddleware(adminService *database.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		subject, err := adminService.ValidateSessionToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set("admin_subject", subject)
		c.Next()
	}
}

// respondError maps any error to its HTTP view. Repository not-found
// sentinels become 404s; everything else goes through the AppError taxonomy.
func respondError(c *gin.Context, err error) {
	if errors.Is(err, database.ErrNotFound) {
		appErr := apperrors.NewNotFoundError("record", err)
		apperrors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, gin.H{"error": appErr.Msg, "category": appErr.Category})
		return
	}

	appErr := apperrors.ToAppError(err)
	apperrors.LogError(c, appErr)
	c.JSON(appErr.HTTPStatus, gin.H{"error": appErr.Msg, "category": appErr.Category})
}

// articleFromRequest validates and converts an admin payload into a model
func articleFromRequest(req *types.ArticleRequest) (*database.Article, *apperrors.AppError) {
	if err := security.ValidateSlug(req.Slug); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	status := req.Status
	if status == "" {
		status = database.ArticleStatusDraft
	}
	if status != database.ArticleStatusDraft && status != database.ArticleStatusPublished {
		return nil, apperrors.NewValidationError("status must be draft or published")
	}

	article := database.NewArticle(req.Slug, req.Title, req.Summary, req.Body, req.Category, req.Region)
	article.Status = status

	if req.PublishedAt != "" {
		t, err := time.Parse(time.RFC3339, req.PublishedAt)
		if err != nil {
			return nil, apperrors.NewValidationError("published_at must be RFC 3339")
		}
		article.PublishedAt = &t
	} else if status == database.ArticleStatusPublished {
		now := time.Now()
		article.PublishedAt = &now
	}

	return article, nil
}

// storeFromRequest converts an admin payload into a store listing model
func storeFromRequest(req *types.StoreListingRequest) *database.StoreListing {
	store := database.NewStoreListing(req.Name, req.Operator, req.Region)
	store.CommissionRate = req.CommissionRate
	store.MinPayout = req.MinPayout
	store.AppCount = req.AppCount
	if req.Status != "" {
		store.Status = req.Status
	}
	store.Notes = req.Notes
	return store
}

// topicFromRequest converts an admin payload into a trending topic model
func topicFromRequest(req *types.TrendingTopicRequest) *database.TrendingTopic {
	topic := database.NewTrendingTopic(req.Title, req.Category, req.Priority, req.Score)
	topic.Summary = req.Summary
	topic.SourceURL = req.SourceURL
	return topic
}

// parseDirection reads the direction query parameter, defaulting per endpoint
func parseDirection(c *gin.Context, fallback listquery.Direction) listquery.Direction {
	switch c.Query("direction") {
	case "asc":
		return listquery.Ascending
	case "desc":
		return listquery.Descending
	default:
		return fallback
	}
}

// sortArticles orders articles by the requested key
func sortArticles(items []*database.Article, key string, dir listquery.Direction) {
	switch key {
	case "title":
		listquery.Sort(items, dir, func(a, b *database.Article) int {
			return listquery.CompareStrings(a.Title, b.Title)
		})
	case "created":
		listquery.Sort(items, dir, func(a, b *database.Article) int {
			return listquery.CompareTimes(a.CreatedAt, b.CreatedAt)
		})
	default:
		listquery.Sort(items, dir, func(a, b *database.Article) int {
			return listquery.CompareTimes(timeOrZero(a.PublishedAt), timeOrZero(b.PublishedAt))
		})
	}
}

// sortStores orders store listings by the requested key
func sortStores(items []*database.StoreListing, key string, dir listquery.Direction) {
	switch key {
	case "commission":
		listquery.Sort(items, dir, func(a, b *database.StoreListing) int {
			return listquery.CompareNumeric(a.CommissionRate, b.CommissionRate)
		})
	case "payout":
		listquery.Sort(items, dir, func(a, b *database.StoreListing) int {
			return listquery.CompareNumeric(a.MinPayout, b.MinPayout)
		})
	case "apps":
		listquery.Sort(items, dir, func(a, b *database.StoreListing) int {
			return a.AppCount - b.AppCount
		})
	default:
		listquery.Sort(items, dir, func(a, b *database.StoreListing) int {
			return listquery.CompareStrings(a.Name, b.Name)
		})
	}
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

// getEnvOrDefault reads an environment variable with a fallback
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
