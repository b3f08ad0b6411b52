// Package models describes scheduled jobs and their observable state.
package models

import (
	"context"
	"time"
)

// Job is the work a scheduled entry performs.
type Job func(ctx context.Context) error

type JobStatus struct {
	Name         string
	Schedule     string
	Active       bool
	Running      bool
	Runs         int
	Failures     int
	LastRunAt    *time.Time
	LastDuration time.Duration
	LastError    string
	NextRunAt    *time.Time
}
