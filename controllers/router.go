package controllers

import (
	"net/http"

	"commerce-service/middlewares"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

type Dependencies struct {
	Tokens   middlewares.TokenParser
	Catalog  ProductCatalog
	Orders   OrderEngine
	Profiles ProfileFinder
	Log      *logrus.Logger
}

func NewRouter(d Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestLogger(d.Log))
	r.Use(middlewares.PrometheusMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	products := NewProductController(d.Catalog, d.Log)
	orders := NewOrderController(d.Orders, d.Log)
	users := NewUserController(d.Profiles)
	authn := middlewares.AuthMiddleware(d.Tokens, d.Log, AbortWithError)

	r.GET("/products", products.FindAll)
	r.GET("/products/:id", products.FindByID)
	r.GET("/categories", products.ListCategories)

	authGroup := r.Group("/")
	authGroup.Use(authn)
	{
		authGroup.POST("/products", products.Insert)
		authGroup.DELETE("/products/:id", products.Delete)

		authGroup.POST("/orders", orders.CreateOrder)
		authGroup.GET("/orders/:id", orders.GetOrderDetails)
		authGroup.PUT("/orders/:id/status", orders.UpdateOrderStatus)

		authGroup.GET("/users/me", users.Me)
	}

	return r
}
