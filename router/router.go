package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/openresto/restaurant-orders/controllers"
	"github.com/openresto/restaurant-orders/middlewares"
	"github.com/openresto/restaurant-orders/models"
	"github.com/openresto/restaurant-orders/realtime"
	"github.com/openresto/restaurant-orders/services"
)

func SetupRouter(db *gorm.DB, orderSvc *services.OrderService, hub *realtime.Hub, publisher controllers.OrderPublisher) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.CORSMiddleware())

	userCtrl := controllers.NewUserController(db)
	tableCtrl := controllers.NewTableController(db)
	categoryCtrl := controllers.NewCategoryController(db)
	productCtrl := controllers.NewProductController(db)
	floorCtrl := controllers.NewFloorController(db)
	orderCtrl := controllers.NewOrderController(orderSvc, publisher)
	wsCtrl := controllers.NewWSController(hub)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.POST("/register", userCtrl.Register)
	r.POST("/login", userCtrl.Login)

	// Realtime channel; token optional (customers connect anonymously).
	r.GET("/ws", wsCtrl.Connect)

	// Customer-facing catalog browsing.
	r.GET("/categories", categoryCtrl.GetAllCategories)
	r.GET("/products", productCtrl.GetAllProducts)
	r.GET("/tables", tableCtrl.GetAllTables)
	r.GET("/tables/:number", tableCtrl.GetTableByNumber)
	r.GET("/floors", floorCtrl.GetAllFloors)

	// Order intake: accepted immediately, processed asynchronously; the
	// outcome arrives in the websocket waiting room for the tempId.
	r.POST("/orders", orderCtrl.SubmitOrder)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/admin")
	auth.Use(middlewares.AuthMiddleware())
	{
		auth.GET("/profile", userCtrl.GetProfile)
		auth.GET("/users", middlewares.RequireRoles(models.RoleAdmin), userCtrl.GetAllUsers)

		// ORDERS
		auth.GET("/orders", orderCtrl.GetAllOrders)
		auth.GET("/orders/:order_id", orderCtrl.GetOrderByID)
		auth.PATCH("/orders/:order_id/items", orderCtrl.UpdateOrderItems)
		auth.PATCH("/orders/:order_id/status", orderCtrl.AdvanceOrderStatus)
		auth.DELETE("/orders/:order_id", middlewares.RequireRoles(models.RoleAdmin), orderCtrl.DeleteOrder)

		// TABLES
		auth.POST("/tables", middlewares.RequireRoles(models.RoleAdmin), tableCtrl.CreateTable)
		auth.PATCH("/tables/:table_id", middlewares.RequireRoles(models.RoleAdmin), tableCtrl.UpdateTable)
		auth.DELETE("/tables/:table_id", middlewares.RequireRoles(models.RoleAdmin), tableCtrl.DeleteTable)

		// CATALOG
		auth.POST("/categories", middlewares.RequireRoles(models.RoleAdmin), categoryCtrl.CreateCategory)
		auth.DELETE("/categories/:category_id", middlewares.RequireRoles(models.RoleAdmin), categoryCtrl.DeleteCategory)
		auth.POST("/products", middlewares.RequireRoles(models.RoleAdmin), productCtrl.CreateProduct)
		auth.PATCH("/products/:product_id", middlewares.RequireRoles(models.RoleAdmin), productCtrl.UpdateProduct)
		auth.DELETE("/products/:product_id", middlewares.RequireRoles(models.RoleAdmin), productCtrl.DeleteProduct)

		// FLOORS
		auth.POST("/floors", middlewares.RequireRoles(models.RoleAdmin), floorCtrl.CreateFloor)
	}

	return r
}
