package router

import (
	"path/filepath"

	"chatonline-world/backend/pkg/validator"
)

// AddOpenAPIValidation checks request parameters against the OpenAPI
// document and publishes it under /api/docs/. Call it before SetupRoutes
// so the middleware covers every route.
func (r *Router) AddOpenAPIValidation(documentPath string) error {
	v, err := validator.Load(documentPath)
	if err != nil {
		return err
	}
	r.Engine.Use(v.Middleware())

	docsURL := "/api/docs/" + filepath.Base(documentPath)
	r.Engine.StaticFile(docsURL, documentPath)
	r.Logger.Info("OpenAPI validation enabled", "document", documentPath, "docs", docsURL)
	return nil
}
