package runtime

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/vinodismyname/xlquery/config"
)

// Limits bounds how many tool calls run at once, how many workbooks are open
// at once, and how long one call may take end to end.
type Limits struct {
	MaxConcurrentRequests int
	MaxOpenWorkbooks      int

	OperationTimeout      time.Duration
	AcquireRequestTimeout time.Duration
}

// NewLimits fills unset values from the config defaults.
func NewLimits(maxConcurrentRequests, maxOpenWorkbooks int) Limits {
	if maxConcurrentRequests <= 0 {
		maxConcurrentRequests = config.DefaultMaxConcurrentRequests
	}
	if maxOpenWorkbooks <= 0 {
		maxOpenWorkbooks = config.DefaultMaxOpenWorkbooks
	}
	return Limits{
		MaxConcurrentRequests: maxConcurrentRequests,
		MaxOpenWorkbooks:      maxOpenWorkbooks,
		OperationTimeout:      config.DefaultOperationTimeout,
		AcquireRequestTimeout: config.DefaultAcquireRequestTimeout,
	}
}

// LimitsFromSettings derives Limits from resolved process settings.
func LimitsFromSettings(s config.Settings) Limits {
	l := NewLimits(s.MaxConcurrentRequests, s.MaxOpenWorkbooks)
	if s.OperationTimeout > 0 {
		l.OperationTimeout = s.OperationTimeout
	}
	return l
}

// Controller hands out request and open-workbook slots. It satisfies
// workbooks.Gate, so every scoped workbook open holds one slot.
type Controller struct {
	limits    Limits
	requests  *semaphore.Weighted
	workbooks *semaphore.Weighted

	inFlight atomic.Int64
	open     atomic.Int64
}

// NewController constructs a Controller backed by weighted semaphores.
func NewController(limits Limits) *Controller {
	return &Controller{
		limits:    limits,
		requests:  semaphore.NewWeighted(int64(limits.MaxConcurrentRequests)),
		workbooks: semaphore.NewWeighted(int64(limits.MaxOpenWorkbooks)),
	}
}

// AcquireRequest reserves capacity for an incoming tool call.
func (c *Controller) AcquireRequest(ctx context.Context) error {
	if err := c.requests.Acquire(ctx, 1); err != nil {
		return err
	}
	c.inFlight.Add(1)
	return nil
}

// ReleaseRequest frees capacity taken by AcquireRequest.
func (c *Controller) ReleaseRequest() {
	c.inFlight.Add(-1)
	c.requests.Release(1)
}

// AcquireWorkbook reserves an open-workbook slot.
func (c *Controller) AcquireWorkbook(ctx context.Context) error {
	if err := c.workbooks.Acquire(ctx, 1); err != nil {
		return err
	}
	c.open.Add(1)
	return nil
}

// ReleaseWorkbook frees an open-workbook slot.
func (c *Controller) ReleaseWorkbook() {
	c.open.Add(-1)
	c.workbooks.Release(1)
}

// Usage reports slots currently held.
type Usage struct {
	InFlightRequests int
	OpenWorkbooks    int
}

// Usage returns a point-in-time view of held slots.
func (c *Controller) Usage() Usage {
	return Usage{
		InFlightRequests: int(c.inFlight.Load()),
		OpenWorkbooks:    int(c.open.Load()),
	}
}

// LimitsSnapshot exposes the configured guardrails for telemetry.
func (c *Controller) LimitsSnapshot() Limits {
	return c.limits
}
