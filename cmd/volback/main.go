package main

import (
	"time"

	"go.uber.org/fx"

	"github.com/ostanin/volback/internal/configfx"
	"github.com/ostanin/volback/internal/dockerfx"
	"github.com/ostanin/volback/internal/domainfx"
	"github.com/ostanin/volback/internal/loggerfx"
	"github.com/ostanin/volback/internal/metricsfx"
	"github.com/ostanin/volback/internal/notifyfx"
	"github.com/ostanin/volback/internal/s3fx"
	"github.com/ostanin/volback/internal/sqlfx"
)

func main() {
	logger := loggerfx.Logger()

	app := fx.New(
		fx.StartTimeout(15*time.Second),
		fx.StopTimeout(15*time.Second),

		fx.Logger(logger),

		loggerfx.Module,
		configfx.Module,
		sqlfx.Module,
		dockerfx.Module,
		s3fx.Module,
		notifyfx.Module,
		metricsfx.Module,
		domainfx.Module,
	)

	app.Run()
}
