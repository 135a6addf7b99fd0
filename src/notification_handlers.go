package main

import (
	"net/http"

	"eventmate/src/common"

	"github.com/gin-gonic/gin"
)

func notificationHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/notifications", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			notifications, err := common.GetUserNotifications(userId)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": notifications, "count": len(notifications)})
		}).
		POST("/notifications/read", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			if err := common.MarkNotificationsRead(userId); err != nil {
				respondError(ctx, err)
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}
