// Package server assembles the HTTP surface: middleware, health, API docs,
// feature routes and the front-end fallback.
package server

import (
	"mime"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"library-backend/internal/borrowings"
	"library-backend/internal/catalog"
	"library-backend/internal/docs"
	"library-backend/internal/platform/apperr"
	"library-backend/internal/platform/auth"
	"library-backend/internal/platform/config"
	"library-backend/internal/platform/ratelimit"
)

// NewRouter wires every route against conn. The caller owns conn.
func NewRouter(cfg *config.Config, conn *sqlx.DB) *gin.Engine {
	startedAt := time.Now()
	issuer := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	_ = r.SetTrustedProxies(nil)

	if len(cfg.Server.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.Server.AllowedOrigins,
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", "Location", "Content-Disposition"},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// health
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	if cfg.Server.Swagger {
		docs.SwaggerInfo.Version = versionOr(cfg.Version, docs.SwaggerInfo.Version)
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// /api
	api := r.Group("/api")
	if cfg.Server.RateLimit.Enabled {
		api.Use(ratelimit.Middleware(ratelimit.New(cfg.Server.RateLimit)))
	}
	api.Use(auth.Identify(issuer))
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "OK",
			"timestamp": time.Now().UTC(),
			"uptime":    time.Since(startedAt).Seconds(),
			"version":   versionOr(cfg.Version, "dev"),
		})
	})
	auth.RegisterRoutes(api, auth.NewService(auth.NewStore(conn), issuer, cfg.Auth.BcryptCost))
	catalog.RegisterRoutes(api, catalog.NewService(conn))
	borrowings.RegisterRoutes(api, borrowings.NewService(conn))

	r.NoRoute(frontend(cfg.Server.StaticDir))
	return r
}

// frontend serves the built front end from dir with an index.html fallback
// for client-side routes. /api paths always get a JSON 404.
func frontend(dir string) gin.HandlerFunc {
	var fileFS http.FileSystem
	if dir != "" {
		fileFS = http.FS(os.DirFS(dir))
	}

	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") || fileFS == nil {
			apperr.Respond(c, apperr.ErrNotFound("Route not found."))
			return
		}
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			apperr.Respond(c, apperr.ErrNotFound("Route not found."))
			return
		}

		reqPath := strings.TrimPrefix(path.Clean("/"+c.Request.URL.Path), "/")
		if reqPath == "" {
			reqPath = "index.html"
		}

		// real file: guess Content-Type and let the browser cache it
		if f, err := fileFS.Open(reqPath); err == nil {
			defer f.Close()
			if fi, err := f.Stat(); err == nil && !fi.IsDir() {
				if ct := mime.TypeByExtension(path.Ext(reqPath)); ct != "" {
					c.Header("Content-Type", ct)
				}
				if !strings.HasSuffix(reqPath, "index.html") {
					c.Header("Cache-Control", "public, max-age=86400, immutable")
				}
				http.ServeContent(c.Writer, c.Request, reqPath, fi.ModTime(), f)
				return
			}
		}

		// otherwise index.html
		if idx, err := fileFS.Open("index.html"); err == nil {
			defer idx.Close()
			c.Header("Content-Type", "text/html; charset=utf-8")
			if fi, err := idx.Stat(); err == nil {
				http.ServeContent(c.Writer, c.Request, "index.html", fi.ModTime(), idx)
			} else {
				c.Status(http.StatusInternalServerError)
			}
			return
		}

		apperr.Respond(c, apperr.ErrNotFound("Route not found."))
	}
}

func versionOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
