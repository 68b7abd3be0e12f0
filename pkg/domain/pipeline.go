package domain

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/ostanin/volback/pkg/appcontext"
)

const remoteKeyPrefix = "backups/"

// Message is an operator notification. A non-empty ButtonURL attaches a
// single inline button opening the link.
type Message struct {
	Text       string
	ButtonText string
	ButtonURL  string
}

type notifier interface {
	Notify(ctx context.Context, msg Message) error
}

type volumeArchiver interface {
	ListVolumes(ctx context.Context) ([]string, error)
	ArchiveVolume(ctx context.Context, name, stagingDir string) error
}

type bundler interface {
	Bundle(dir, outfile string) (int64, error)
}

type uploader interface {
	Upload(ctx context.Context, localPath, key string) error
	Presign(ctx context.Context, key string, expiry time.Duration) (string, error)
}

type stagingManager interface {
	Allocate(date string) (string, error)
	Deallocate(date string) error
	BundlePath(date string) string
}

type runRepository interface {
	Create(ctx context.Context, run Run) (Run, error)
	Update(ctx context.Context, run Run) error
}

// Pipeline is the core of volback: one linear backup run from volume
// discovery to the uploaded bundle and its operator notification. It owns
// the lifecycle of the staging directory and the local bundle file and is
// the single place deciding which failures are fatal.
type Pipeline struct {
	logger logrus.FieldLogger

	staging  stagingManager
	archiver volumeArchiver
	bundler  bundler
	uploader uploader
	notifier notifier
	runs     runRepository

	retentionDays int

	now func() time.Time
}

func NewPipeline(
	logger logrus.FieldLogger,
	staging stagingManager,
	archiver volumeArchiver,
	bundler bundler,
	uploader uploader,
	notifier notifier,
	runs runRepository,
	retentionDays int,
) *Pipeline {
	return &Pipeline{
		logger: logger,

		staging:  staging,
		archiver: archiver,
		bundler:  bundler,
		uploader: uploader,
		notifier: notifier,
		runs:     runs,

		retentionDays: retentionDays,

		now: time.Now,
	}
}

// Run executes one backup run and returns the process exit code. Every
// failure not already reported from within the pipeline is reported here
// with a best-effort notification; a failure of that notification itself is
// logged and swallowed so it never masks the original error.
func (p *Pipeline) Run(ctx context.Context) int {
	err := p.Execute(ctx)
	if err == nil {
		return 0
	}

	p.logger.WithError(err).Error("Backup run failed")

	if !isReported(err) {
		p.tryNotify(ctx, Message{Text: fmt.Sprintf("❌ Backup failed: %v", err)})
	}

	return 1
}

func (p *Pipeline) Execute(ctx context.Context) error {
	now := p.now()
	date := RunDateAt(now)
	prev := PreviousRunDateAt(now)

	ctx = appcontext.WithRunDate(ctx, date)
	logger := appcontext.LoggerFromContext(p.logger, ctx)

	run := p.record(ctx, Run{RunDate: date, Status: RunStatusStarted, CreatedAt: now})

	// Prepare: stale leftovers of the previous run are removed best-effort,
	// the run continues regardless.
	if err := p.staging.Deallocate(prev); err != nil {
		logger.WithError(err).Warn("Unable to remove stale staging directory")
		p.tryNotify(ctx, Message{
			Text: fmt.Sprintf("⚠️ Unable to remove stale staging directory for %s: %v", prev, err),
		})
	}

	dir, err := p.staging.Allocate(date)
	if err != nil {
		return p.fail(ctx, &run, errors.Wrap(err, "unable to create staging directory"))
	}

	// Discover
	volumes, err := p.archiver.ListVolumes(ctx)
	if err != nil {
		return p.fail(ctx, &run, errors.Wrap(err, "unable to list volumes"))
	}

	if len(volumes) == 0 {
		logger.Warn("No volumes found, nothing to back up")
		p.tryNotify(ctx, Message{
			Text: fmt.Sprintf("⚠️ Backup for <b>%s</b> skipped: no volumes found.", date),
		})
		p.finish(ctx, &run, RunStatusEmpty, "")
		return nil
	}

	run.VolumeCount = len(volumes)

	// Archive: strictly sequential, first failure aborts the run and leaves
	// already staged archives on disk.
	for _, name := range volumes {
		logger.WithField("volume", name).Info("Archiving volume")

		if err := p.archiver.ArchiveVolume(ctx, name, dir); err != nil {
			err = errors.Wrapf(err, "unable to archive volume %s", name)
			p.tryNotify(ctx, Message{
				Text: fmt.Sprintf("❌ Backup for <b>%s</b> failed: %v", date, err),
			})
			return p.fail(ctx, &run, markReported(err))
		}
	}

	// Bundle
	bundlePath := p.staging.BundlePath(date)

	size, err := p.bundler.Bundle(dir, bundlePath)
	if err != nil {
		return p.fail(ctx, &run, errors.Wrap(err, "unable to bundle staging directory"))
	}
	run.BundleSize = size

	if err := p.staging.Deallocate(date); err != nil {
		return p.fail(ctx, &run, errors.Wrap(err, "unable to remove staging directory"))
	}

	// Publish
	key := remoteKeyPrefix + date + ".tar.gz"

	if err := p.uploader.Upload(ctx, bundlePath, key); err != nil {
		return p.fail(ctx, &run, errors.Wrapf(err, "unable to upload bundle as %s", key))
	}

	link, err := p.uploader.Presign(ctx, key, time.Duration(p.retentionDays)*24*time.Hour)
	if err != nil {
		return p.fail(ctx, &run, errors.Wrap(err, "unable to presign download link"))
	}

	err = p.notifier.Notify(ctx, Message{
		Text: fmt.Sprintf(
			"✅ Backup for <b>%s</b> completed: %d volume(s) archived. The download link below is valid for %d day(s).",
			date, len(volumes), p.retentionDays,
		),
		ButtonText: "Download backup",
		ButtonURL:  link,
	})
	if err != nil {
		return p.fail(ctx, &run, errors.Wrap(err, "unable to deliver success notification"))
	}

	if err := os.Remove(bundlePath); err != nil {
		return p.fail(ctx, &run, errors.Wrap(err, "unable to remove local bundle"))
	}

	run.RemoteKey = key
	p.finish(ctx, &run, RunStatusSuccess, "")

	logger.WithFields(logrus.Fields{
		"volumes":     len(volumes),
		"bundle_size": size,
		"remote_key":  key,
	}).Info("Backup run completed")

	return nil
}

// tryNotify delivers a notification best-effort: a delivery failure is
// logged and discarded.
func (p *Pipeline) tryNotify(ctx context.Context, msg Message) {
	if err := p.notifier.Notify(ctx, msg); err != nil {
		appcontext.LoggerFromContext(p.logger, ctx).
			WithError(err).
			Error("Unable to deliver notification")
	}
}

// Run ledger writes never fail a run.
func (p *Pipeline) record(ctx context.Context, run Run) Run {
	created, err := p.runs.Create(ctx, run)
	if err != nil {
		appcontext.LoggerFromContext(p.logger, ctx).WithError(err).Warn("Unable to record run")
		return run
	}
	return created
}

func (p *Pipeline) finish(ctx context.Context, run *Run, status runStatus, errText string) {
	now := p.now()

	run.Status = status
	run.Error = errText
	run.FinishedAt = &now

	if err := p.runs.Update(ctx, *run); err != nil {
		appcontext.LoggerFromContext(p.logger, ctx).WithError(err).Warn("Unable to update run record")
	}
}

func (p *Pipeline) fail(ctx context.Context, run *Run, err error) error {
	p.finish(ctx, run, RunStatusFailure, err.Error())
	return err
}

// reportedError marks an error whose operator notification was already sent
// from within the pipeline, so the top-level handler does not report it
// twice.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string {
	return e.err.Error()
}

func (e *reportedError) Cause() error {
	return e.err
}

func markReported(err error) error {
	return &reportedError{err: err}
}

func isReported(err error) bool {
	_, ok := err.(*reportedError)
	return ok
}
