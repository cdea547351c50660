package workbooks

import (
	"context"
	"errors"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/vinodismyname/xlquery/internal/security"
	"github.com/vinodismyname/xlquery/pkg/mcperr"
)

// Gate coordinates capacity for open workbooks (backed by runtime.Controller).
type Gate interface {
	AcquireWorkbook(ctx context.Context) error
	ReleaseWorkbook()
}

// PathValidator abstracts filesystem path validation. Implementations should
// return a canonical absolute path if allowed, or an error when denied.
type PathValidator interface {
	ValidateOpenPath(path string) (string, error)
}

// Manager opens workbooks for the duration of a single call. Nothing is
// cached: every With opens the file, runs the callback, and closes it.
type Manager struct {
	gate      Gate
	validator PathValidator
}

// NewManager constructs a Manager. Gate and validator may be nil.
func NewManager(gate Gate, validator PathValidator) *Manager {
	return &Manager{gate: gate, validator: validator}
}

// With opens the workbook at path, runs fn, and releases the file handle and
// gate slot exactly once on every exit path. Open failures are IOFailure.
func (m *Manager) With(ctx context.Context, path string, fn func(*Workbook) error) (err error) {
	wb, err := m.Open(ctx, path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := wb.Close(); cerr != nil && err == nil {
			err = mcperr.Wrapf(mcperr.IOFailure, cerr, "close workbook %s", wb.Path)
		}
	}()
	return fn(wb)
}

// Open acquires a gate slot and opens the workbook. The caller owns the
// returned Workbook and must Close it; Close releases the slot.
func (m *Manager) Open(ctx context.Context, path string) (*Workbook, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, mcperr.New(mcperr.IOFailure, "workbook path is required")
	}
	if err := m.acquire(ctx); err != nil {
		return nil, mcperr.Wrap(mcperr.BusyResource, err, "no workbook slot available")
	}

	if m.validator != nil {
		canonical, err := m.validator.ValidateOpenPath(path)
		if err != nil {
			m.release()
			return nil, pathError(path, err)
		}
		path = canonical
	}

	if err := detectContainer(path); err != nil {
		m.release()
		return nil, err
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		m.release()
		return nil, mcperr.Wrapf(mcperr.IOFailure, err, "cannot read workbook %s", path)
	}
	return &Workbook{Path: path, file: f, release: m.release}, nil
}

func (m *Manager) acquire(ctx context.Context) error {
	if m.gate == nil {
		return nil
	}
	return m.gate.AcquireWorkbook(ctx)
}

func (m *Manager) release() {
	if m.gate == nil {
		return
	}
	m.gate.ReleaseWorkbook()
}

func pathError(path string, err error) error {
	switch {
	case errors.Is(err, security.ErrNotFound):
		return mcperr.Wrapf(mcperr.IOFailure, err, "workbook %s does not exist", path)
	case errors.Is(err, security.ErrNotAllowed):
		return mcperr.Wrapf(mcperr.IOFailure, err, "workbook %s is outside the allowed directories", path)
	}
	return mcperr.Wrapf(mcperr.IOFailure, err, "cannot access workbook %s", path)
}
