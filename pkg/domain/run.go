package domain

import "time"

type runStatus int

const (
	// Run created, pipeline is in progress
	RunStatusStarted runStatus = iota

	// Run finished early: volume discovery returned nothing
	RunStatusEmpty

	// Run aborted by a pipeline failure
	RunStatusFailure

	// Run finished, bundle uploaded and reported
	RunStatusSuccess
)

// DateLayout is the calendar-date format used for staging directories,
// bundle files and remote object keys.
const DateLayout = "2006-01-02"

func RunDateAt(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

func PreviousRunDateAt(t time.Time) string {
	return t.UTC().AddDate(0, 0, -1).Format(DateLayout)
}

type Run struct {
	Id int64 // identifier for DB

	RunDate string

	Status runStatus

	VolumeCount int
	BundleSize  int64

	// object storage key of the uploaded bundle (empty unless successful)
	RemoteKey string

	// failure cause for unsuccessful runs
	Error string

	CreatedAt  time.Time
	FinishedAt *time.Time
}
