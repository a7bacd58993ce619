package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/openresto/restaurant-orders/realtime"
	"github.com/openresto/restaurant-orders/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WSController struct {
	Hub *realtime.Hub
}

func NewWSController(hub *realtime.Hub) *WSController {
	return &WSController{Hub: hub}
}

// Connect -> websocket endpoint for staff and customers alike.
//
// A token is optional: customers connect anonymously and gain access to
// rooms through correlation ids and order access keys instead. A token that
// is present but invalid terminates the connection attempt.
func (wc *WSController) Connect(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	}

	var ident *realtime.Identity
	if token != "" {
		claims, err := utils.ParseToken(token)
		if err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		ident = &realtime.Identity{UserID: claims.UserID, Role: claims.Role}
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	// Blocks for the lifetime of the connection.
	wc.Hub.HandleConnection(ws, ident)
}
