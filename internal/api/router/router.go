package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dong641/R-CG-Promotion-Dashboard/config"
	"github.com/dong641/R-CG-Promotion-Dashboard/internal/api/handler"
	"github.com/dong641/R-CG-Promotion-Dashboard/internal/api/middleware"
	"github.com/dong641/R-CG-Promotion-Dashboard/pkg/jwt"
	"github.com/dong641/R-CG-Promotion-Dashboard/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(1 << 20)) // 1MB

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证；口令接口限速防爆破）
		auth := v1.Group("/auth")
		auth.Use(middleware.RateLimit(rdb, 10, time.Minute))
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/elevate", h.Auth.Elevate)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)

			// 看板模块（viewer 即可）
			dashboard := authorized.Group("/dashboard")
			{
				dashboard.GET("", h.Dashboard.GetDashboard)
				dashboard.POST("/query", h.Dashboard.QueryDashboard)
			}

			// 周报模块（viewer 可读可交）
			weekly := authorized.Group("/weekly-reports")
			{
				weekly.GET("", h.Weekly.GetWeek)
				weekly.GET("/weeks", h.Weekly.ListWeeks)
				weekly.POST("", h.Weekly.Submit)
			}

			// 导出模块（viewer 即可，只读已提交数据）
			export := authorized.Group("/export")
			{
				export.GET("/promotions.csv", h.Export.ExportPromotionsCSV)
				export.GET("/promotions.xlsx", h.Export.ExportPromotionsExcel)
				export.GET("/weekly.xlsx", h.Export.ExportWeeklyExcel)
				export.GET("/calendar.ics", h.Export.ExportCalendar)
			}

			// 编辑模块（仅 admin）
			editor := authorized.Group("/editor", middleware.RoleAuth(jwt.RoleAdmin))
			{
				editor.POST("/sessions", h.Editor.OpenSession)
				editor.GET("/sessions/:id", h.Editor.GetSession)
				editor.DELETE("/sessions/:id", h.Editor.Discard)
				editor.PUT("/sessions/:id/cells", h.Editor.UpdateCell)
				editor.POST("/sessions/:id/rows", h.Editor.AddRow)
				editor.DELETE("/sessions/:id/rows/:rowId", h.Editor.DeleteRow)
				editor.POST("/sessions/:id/columns", h.Editor.AddColumn)
				editor.DELETE("/sessions/:id/columns/:name", h.Editor.RemoveColumn)
				editor.POST("/sessions/:id/import", h.Editor.ImportCSV)
				editor.POST("/sessions/:id/save", h.Editor.Save)
			}
		}
	}

	return r
}
