package main

import (
	"context"

	"github.com/JaimeStill/scribe/internal/api"
	"github.com/JaimeStill/scribe/internal/config"
	"github.com/JaimeStill/scribe/internal/infrastructure"
	"github.com/JaimeStill/scribe/pkg/middleware"
	"github.com/JaimeStill/scribe/pkg/module"
	"github.com/JaimeStill/scribe/web/docs"
)

const docsPath = "/docs"

// Modules holds the prefixed modules mounted on the root router.
type Modules struct {
	API  *module.Module
	Docs *module.Module
}

// NewModules creates the API and documentation modules.
func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, err := api.NewModule(context.Background(), cfg, infra)
	if err != nil {
		return nil, err
	}

	docsModule, err := docs.NewModule(docsPath, cfg.OpenAPI.Title, cfg.API.BasePath+api.SpecPath)
	if err != nil {
		return nil, err
	}
	docsModule.Use(middleware.Logger(infra.Logger))

	return &Modules{
		API:  apiModule,
		Docs: docsModule,
	}, nil
}

// Mount registers every module on router.
func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
	router.Mount(m.Docs)
}
