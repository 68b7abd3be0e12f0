package metricsfx

import (
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/ostanin/volback/pkg/http/handler"
)

func LastRunHandler(
	logger *logrus.Logger,
	repository handler.RunRepository,
) *handler.LastRunHandler {
	return handler.NewLastRunHandler(logger, repository)
}

func RegisterLastRunHandler(router *mux.Router, h *handler.LastRunHandler) {
	router.Handle("/metrics/last-run", h)
}
