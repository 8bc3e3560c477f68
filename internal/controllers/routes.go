package controllers

import (
	"github.com/gin-gonic/gin"
)

// Routes bundles what RegisterRoutes wires onto the router.
type Routes struct {
	Auth   *AuthController
	Health *HealthController

	RequireAuth gin.HandlerFunc // bearer token check for protected routes
	APILimit    gin.HandlerFunc // applied to every /api route
	AuthLimit   gin.HandlerFunc // stricter limit for register/login
}

func RegisterRoutes(router *gin.Engine, rt Routes) {
	router.GET("/", rt.Health.Root)
	router.GET("/health", rt.Health.Health)

	api := router.Group("/api")
	if rt.APILimit != nil {
		api.Use(rt.APILimit)
	}
	{
		credentials := api.Group("")
		if rt.AuthLimit != nil {
			credentials.Use(rt.AuthLimit)
		}
		credentials.POST("/register", rt.Auth.Register)
		credentials.POST("/login", rt.Auth.Login)

		protected := api.Group("/user")
		protected.Use(rt.RequireAuth)
		protected.GET("/profile", rt.Auth.Profile)
	}
}
