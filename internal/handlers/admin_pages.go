package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bijouterie/internal/models"
)

func Home() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/admin")
	}
}

func AdminLoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{"Title": "Sign in"})
}

func AdminFirstLoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "first-login.html", gin.H{"Title": "New password"})
}

func AdminDashboardPage(c *gin.Context) {
	c.HTML(http.StatusOK, "dashboard.html", gin.H{"Title": "Dashboard", "Nav": true})
}

func AdminCollectionsPage(c *gin.Context) {
	c.HTML(http.StatusOK, "collections.html", gin.H{"Title": "Collections", "Nav": true})
}

func AdminProductsPage(c *gin.Context) {
	c.HTML(http.StatusOK, "products.html", gin.H{"Title": "Products", "Nav": true})
}

func AdminOrdersPage(c *gin.Context) {
	c.HTML(http.StatusOK, "orders.html", gin.H{"Title": "Orders", "Nav": true, "Statuses": models.OrderStatuses})
}
