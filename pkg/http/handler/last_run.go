package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ostanin/volback/pkg/appcontext"
	"github.com/ostanin/volback/pkg/domain"
)

type RunRepository interface {
	FindLastSuccessful(context.Context) (domain.Run, error)
}

// LastRunHandler reports the most recent successful backup run, for
// host-level monitoring of backup freshness.
type LastRunHandler struct {
	logger logrus.FieldLogger
	repo   RunRepository
}

func NewLastRunHandler(logger logrus.FieldLogger, repo RunRepository) *LastRunHandler {
	return &LastRunHandler{
		logger: logger,
		repo:   repo,
	}
}

type lastRunResponse struct {
	RunDate          string `json:"run_date"`
	VolumeCount      int    `json:"volume_count"`
	BundleSize       int64  `json:"bundle_size"`
	RemoteKey        string `json:"remote_key"`
	LastSuccessfulAt int64  `json:"last_successful_at_mtime"`
	LastCompletion   int64  `json:"last_completion_mtime"`
}

func (h *LastRunHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	logger := appcontext.LoggerFromContext(h.logger, ctx)

	run, err := h.repo.FindLastSuccessful(ctx)
	if err == sql.ErrNoRows {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		logger.WithError(err).Error("Unable to query last successful run")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	result := lastRunResponse{
		RunDate:          run.RunDate,
		VolumeCount:      run.VolumeCount,
		BundleSize:       run.BundleSize,
		RemoteKey:        run.RemoteKey,
		LastSuccessfulAt: run.CreatedAt.UnixNano() / 1e6,
	}
	if run.FinishedAt != nil {
		result.LastCompletion = run.FinishedAt.Sub(run.CreatedAt).Nanoseconds() / 1e6
	}

	enc := json.NewEncoder(w)
	err = enc.Encode(result)
	if err != nil {
		logger.WithError(err).Error("Unable to encode response")
		w.WriteHeader(http.StatusInternalServerError)
	}
}
