package server

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/watchlater-dev/watchlater/internal/handlers"
	"github.com/watchlater-dev/watchlater/internal/middleware"
	"github.com/watchlater-dev/watchlater/internal/platform/logger"
	"github.com/watchlater-dev/watchlater/web"
)

type RouterConfig struct {
	Log            *logger.Logger
	AllowOrigins   []string
	SearchHandler  *handlers.SearchHandler
	ChannelHandler *handlers.ChannelHandler
	TopicHandler   *handlers.TopicHandler
	StatusHandler  *handlers.StatusHandler
	PageHandler    *handlers.PageHandler
}

func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.AttachTraceContext())
	router.Use(otelgin.Middleware("watchlater"))
	router.Use(middleware.RequestLogger(cfg.Log))

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:8080"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "X-Requested-With"},
	}))

	templ, err := template.ParseFS(web.FS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	router.SetHTMLTemplate(templ)

	staticFS, err := fs.Sub(web.FS, "static")
	if err != nil {
		return nil, fmt.Errorf("static fs: %w", err)
	}
	router.StaticFS("/static", http.FS(staticFS))

	router.GET("/", cfg.PageHandler.Index)
	router.GET("/healthcheck", cfg.StatusHandler.GetHealthcheck)
	router.GET("/app-config", cfg.StatusHandler.GetAppConfig)
	router.POST("/search", cfg.SearchHandler.Search)
	router.GET("/channels", cfg.ChannelHandler.GetChannels)
	router.GET("/channel_videos", cfg.ChannelHandler.GetChannelVideos)
	router.GET("/topics", cfg.TopicHandler.GetTopics)
	router.GET("/topics/videos", cfg.TopicHandler.GetTopicVideos)

	return router, nil
}
