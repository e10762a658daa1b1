package controller

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the API. The POST endpoints answer with and without a
// trailing slash so clients never hit a redirect that drops the body.
func RegisterRoutes(router *gin.Engine, c *AnalysisController) {
	router.GET("/", c.Root)
	router.GET("/health", c.Health)

	api := router.Group("/api")
	{
		for _, path := range []string{"/analyze", "/analyze/"} {
			api.POST(path, c.Analyze)
		}
		for _, path := range []string{"/research", "/research/"} {
			api.POST(path, c.Research)
		}
		for _, path := range []string{"/predict", "/predict/"} {
			api.POST(path, c.Predict)
		}
	}
}
