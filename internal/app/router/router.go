// Package router はHTTPルーティングを定義します。
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	priceshandler "stockaivo/internal/feature/prices/transport/handler"
)

func NewRouter(prices *priceshandler.PricesHandler) *gin.Engine {
	r := gin.Default()

	// 導通確認用
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	stocks := r.Group("/stocks")
	{
		stocks.GET("/:ticker/daily", prices.GetDaily)
		stocks.GET("/:ticker/weekly", prices.GetWeekly)
		stocks.GET("/:ticker/hourly", prices.GetHourly)
	}

	return r
}
