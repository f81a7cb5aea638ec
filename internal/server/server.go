package server

import (
	"fmt"
	"log"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"jamlo/internal/api"
	"jamlo/internal/config"
	"jamlo/internal/importer"
	"jamlo/internal/service/excel"
	"jamlo/internal/session"
	"jamlo/internal/store"
)

// Server HTTP服务器
type Server struct {
	router  *gin.Engine
	session *session.Session
	sheets  *store.Store // sqlite 后端；其他后端为空
	api     *api.Handler
}

// NewServer 创建服务器：选择表格存储、创建会话并注册路由
func NewServer(cfg *config.AppConfig) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	devMode := cfg.Server.DevMode
	if !devMode {
		gin.SetMode(gin.ReleaseMode)
	}

	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		dataDir = config.ResolveDataDir(cfg)
	}

	s := &Server{router: gin.Default()}

	opts := session.Options{
		DefaultUser:  cfg.Session.DefaultUser,
		Location:     cfg.Location(),
		Backend:      cfg.Sheets.Backend,
		FileRef:      cfg.Sheets.FileRef,
		SheetTimeout: cfg.SheetTimeout(),
	}
	switch cfg.Sheets.Backend {
	case config.BackendSQLite:
		dbPath := cfg.Sheets.DBFile
		if !filepath.IsAbs(dbPath) {
			dbPath = filepath.Join(dataDir, dbPath)
		}
		st, err := store.New(dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sheet store: %w", err)
		}
		if err := st.SetPassphrase(cfg.Passphrase()); err != nil {
			_ = st.Close()
			return nil, err
		}
		s.sheets = st
		opts.Sheets = st
		log.Printf("[server] sheet store: sqlite %s (encrypted=%v)", dbPath, st.Encrypted())
	case config.BackendWorkbook:
		opts.Sheets = excel.NewWorkbookStore()
		log.Printf("[server] sheet store: workbook %s", cfg.Sheets.FileRef)
	default:
		log.Printf("[server] sheet store: none, data lives in memory only")
	}

	s.session = session.New(opts)
	coordinator := importer.NewCoordinator(s.session, opts.Location)
	s.api = api.NewHandler(s.session, coordinator, filepath.Join(dataDir, "exports"))
	s.setupRoutes(devMode)

	return s, nil
}

// setupRoutes 设置路由
func (s *Server) setupRoutes(devMode bool) {
	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, "+api.RoleHeader)
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	apiGroup := s.router.Group("/api")
	{
		s.api.RegisterRoutes(apiGroup)
	}

	if devMode {
		// 开发模式：代理到前端开发服务器
		s.router.NoRoute(func(c *gin.Context) {
			c.Redirect(http.StatusTemporaryRedirect, "http://localhost:5173"+c.Request.URL.Path)
		})
		return
	}
	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "nie znaleziono: " + c.Request.URL.Path})
	})
}

// Handler 路由（用于测试）
func (s *Server) Handler() http.Handler {
	return s.router
}

// Session 当前会话
func (s *Server) Session() *session.Session {
	return s.session
}

// Run 启动服务器
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Close 关闭表格存储
func (s *Server) Close() error {
	if s.sheets != nil {
		return s.sheets.Close()
	}
	return nil
}
