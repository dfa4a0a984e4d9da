package api

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ProjectName is shown in the page title and header
const ProjectName = "ChatOnline.World"

//go:embed templates/*.html
var templateFS embed.FS

// RegisterIndex installs the page templates and serves the main page at /
func RegisterIndex(router *gin.Engine) error {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return err
	}
	router.SetHTMLTemplate(tmpl)

	router.GET("/", func(ctx *gin.Context) {
		ctx.HTML(http.StatusOK, "index.html", gin.H{
			"project_name": ProjectName,
		})
	})
	return nil
}
