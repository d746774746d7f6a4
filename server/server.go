package server

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/motivateai/rag/pkg/history"
	"github.com/motivateai/rag/pkg/rag"
)

//go:embed templates/*.html
var templatesFS embed.FS

type Config struct {
	Addr             string
	DefaultK         int
	DefaultThreshold float64
}

// Server is the web UI and JSON API over the query engine.
type Server struct {
	config  Config
	engine  rag.Querier
	history *history.Store
	log     *slog.Logger
	router  *gin.Engine
}

func New(config Config, engine rag.Querier, hist *history.Store, log *slog.Logger) *Server {
	if config.Addr == "" {
		config.Addr = ":8080"
	}
	if config.DefaultK == 0 {
		config.DefaultK = 5
	}
	if config.DefaultThreshold == 0 {
		config.DefaultThreshold = 0.5
	}
	if log == nil {
		log = slog.Default()
	}

	s := &Server{
		config:  config,
		engine:  engine,
		history: hist,
		log:     log,
	}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.SetHTMLTemplate(template.Must(template.ParseFS(templatesFS, "templates/*.html")))

	router.GET("/", s.home)
	router.POST("/query", s.query)
	router.GET("/history", s.historyPage)
	router.GET("/clear-history", s.clearHistory)
	router.GET("/ws", s.websocketQuery)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "transcript RAG",
		})
	})

	api := router.Group("/api/v1")
	{
		api.POST("/query", s.apiQuery)
	}

	return router
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) Run() error {
	s.log.Info("starting server", "addr", s.config.Addr)
	return s.router.Run(s.config.Addr)
}
