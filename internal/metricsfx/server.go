package metricsfx

import (
	"context"
	"log"
	"net"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.uber.org/fx"

	"github.com/ostanin/volback/internal/configfx"
	"github.com/ostanin/volback/pkg/http/middleware"
)

func HttpServer(
	config *configfx.Config,
	logger *logrus.Logger,
	defaultLogger *log.Logger,
	router *mux.Router,
) (*http.Server, error) {
	var h http.Handler = router

	if config.Server.EnableRequestsLog {
		h = middleware.WithRequestLogging(router, logger)
	}

	h = middleware.WithRequestId(h, middleware.DefaultRequestIdProvider)

	return &http.Server{
		Addr:         config.Server.Address,
		ReadTimeout:  config.Server.ReadTimeout,
		WriteTimeout: config.Server.WriteTimeout,
		ErrorLog:     defaultLogger,
		Handler:      h,
	}, nil
}

func HttpRouter() (*mux.Router, error) {
	return mux.NewRouter(), nil
}

// RunServer starts the metrics server when an address is configured. With no
// address (the default, and the usual one-shot setup) the server stays off.
func RunServer(lc fx.Lifecycle, config *configfx.Config, logger *logrus.Logger, server *http.Server) {
	if config.Server.Address == "" {
		logger.Debug("Metrics server is disabled")
		return
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			listener, err := net.Listen("tcp", config.Server.Address)
			if err != nil {
				return err
			}

			go server.Serve(listener)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return server.Shutdown(ctx)
		},
	})
}
