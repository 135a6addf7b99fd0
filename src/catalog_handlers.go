package main

import (
	"net/http"

	"eventmate/src/types"
	"eventmate/src/utils"

	"github.com/gin-gonic/gin"
)

// Catalog reads. Create/update of services and events belongs to the vendor
// console, not this core; the routes here are the lookups the negotiation
// and inventory flows lean on.
func catalogHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/services/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			service, err := utils.GetServiceByID(params.ID)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": service})
		}).
		GET("/services/:id/bookings", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			vendorId := ctx.GetUint("id")
			bookings, err := utils.GetServiceBookings(params.ID, vendorId)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": bookings, "count": len(bookings)})
		}).
		GET("/events/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			event, err := utils.GetEventByID(params.ID)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": event})
		})
	return g
}
