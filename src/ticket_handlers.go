package main

import (
	"net/http"

	"eventmate/src/types"
	"eventmate/src/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func ticketHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/events/:id/tickets", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			userId := ctx.GetUint("id")
			tickets, err := utils.GetEventTickets(params.ID, userId)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": tickets, "count": len(tickets)})
		}).
		POST("/events/:id/tickets", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.CreateTicketRequestBody
			if err := ctx.ShouldBindBodyWithJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			organizerId := ctx.GetUint("id")
			ticket, err := utils.CreateNewTicket(params.ID, organizerId, &body)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": ticket})
		}).
		PUT("/events/:id/tickets/:tid", func(ctx *gin.Context) {
			var params types.EventTicketURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.UpdateTicketRequestBody
			if err := ctx.ShouldBindBodyWithJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			organizerId := ctx.GetUint("id")
			ticket, err := utils.UpdateTicket(params.EventID, params.TicketID, organizerId, &body)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": ticket})
		}).
		DELETE("/events/:id/tickets/:tid", func(ctx *gin.Context) {
			var params types.EventTicketURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			organizerId := ctx.GetUint("id")
			if err := utils.DeleteTicket(params.EventID, params.TicketID, organizerId); err != nil {
				respondError(ctx, err)
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		POST("/events/:id/tickets/:tid/purchase", func(ctx *gin.Context) {
			var params types.EventTicketURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.PurchaseTicketRequestBody
			if err := ctx.ShouldBindBodyWithJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			idemKey := ctx.GetHeader("X-Idempotency-Key")
			result, err := utils.PurchaseTicket(params.EventID, params.TicketID, body.Quantity, userId, idemKey)
			if err != nil {
				respondError(ctx, err)
				return
			}
			status := http.StatusCreated
			if result.Replayed {
				status = http.StatusOK
			}
			ctx.JSON(status, gin.H{"data": result})
		}).
		GET("/passes", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			passes, err := utils.GetUserPasses(userId)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": passes, "count": len(passes)})
		}).
		POST("/passes/:id/share", func(ctx *gin.Context) {
			idParam := ctx.Params.ByName("id")
			purchaseId, err := uuid.Parse(idParam)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			url, err := utils.SharePass(purchaseId, userId)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": gin.H{"url": url}})
		})
	return g
}
