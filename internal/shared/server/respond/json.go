package respond

import "github.com/gin-gonic/gin"

// JSON writes the payload as a JSON body with the given status code.
func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}
