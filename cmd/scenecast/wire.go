//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/scenecast/scenecast/internal/bootstrap"
	"github.com/scenecast/scenecast/internal/engine/conf"
	"github.com/scenecast/scenecast/pkg/cache"
)

func initEngine(appConf conf.AppConfig) (*bootstrap.Engine, error) {
	panic(wire.Build(
		// storage layer
		storeProviderSet,
		cache.ProviderSet,
		// task queue layer
		queueProviderSet,
		// repository layer
		repoProviderSet,
		// service layer
		serviceProviderSet,
		// route table
		routerProviderSet,
		wire.Struct(new(bootstrap.Engine), "*"),
	))
}
