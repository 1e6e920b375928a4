package reporter

import (
	"sync"

	"github.com/lutaml/unibuf-go/source"
)

// ErrorReporter is responsible for reporting the given error. If the reporter
// returns a non-nil error, parsing aborts with that error. If the reporter
// returns nil, parsing continues, allowing the grammar to report as many
// errors as it can find in one pass.
type ErrorReporter func(err ErrorWithPos) error

// WarningReporter is responsible for reporting the given warning. Warnings
// never abort parsing.
type WarningReporter func(ErrorWithPos)

// Reporter handles both errors and warnings encountered while parsing a
// schema or data message.
type Reporter interface {
	Error(ErrorWithPos) error
	Warning(ErrorWithPos)
}

// NewReporter creates a Reporter that invokes the given functions.
func NewReporter(errs ErrorReporter, warnings WarningReporter) Reporter {
	return reporterFuncs{errs: errs, warnings: warnings}
}

type reporterFuncs struct {
	errs     ErrorReporter
	warnings WarningReporter
}

func (r reporterFuncs) Error(err ErrorWithPos) error {
	if r.errs == nil {
		return err
	}
	return r.errs(err)
}

func (r reporterFuncs) Warning(err ErrorWithPos) {
	if r.warnings != nil {
		r.warnings(err)
	}
}

// Handler accumulates errors/warnings reported during a single parse or
// serialize call. The zero value is not usable; use NewHandler.
type Handler struct {
	reporter Reporter

	mu           sync.Mutex
	errsReported bool
	err          error
}

// NewHandler creates a Handler that reports through rep. A nil rep means
// every error aborts immediately and warnings are discarded.
func NewHandler(rep Reporter) *Handler {
	if rep == nil {
		rep = NewReporter(nil, nil)
	}
	return &Handler{reporter: rep}
}

// HandleErrorf reports an error built from a format string at pos.
func (h *Handler) HandleErrorf(kind Kind, pos source.Pos, format string, args ...any) error {
	return h.HandleError(Errorf(kind, pos, format, args...))
}

// HandleError reports err. If err already aborted a prior call, the same
// error is returned without reporting err again.
func (h *Handler) HandleError(err error) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.err != nil {
		return h.err
	}
	if ewp, ok := err.(ErrorWithPos); ok {
		h.errsReported = true
		err = h.reporter.Error(ewp)
	}
	h.err = err
	return err
}

// HandleWarning reports a warning at pos.
func (h *Handler) HandleWarning(kind Kind, pos source.Pos, err error) {
	h.reporter.Warning(errorWithPos{kind: kind, pos: pos, underlying: err})
}

// Error returns the terminal error for this handler, or nil if nothing
// aborted the operation. If errors were reported but the reporter always
// returned nil, ErrInvalidSource is returned.
func (h *Handler) Error() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.errsReported && h.err == nil {
		return ErrInvalidSource
	}
	return h.err
}
