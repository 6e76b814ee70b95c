package jobs

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rohmanhakim/sitecrawler/pkg/failure"
	"github.com/rohmanhakim/sitecrawler/pkg/fileutil"
)

// LockError reports that a crawl by this name is already in flight.
type LockError struct {
	Name string
}

func (e *LockError) Error() string {
	return fmt.Sprintf("crawl %q is already running", e.Name)
}

func (e *LockError) Severity() failure.Severity { return failure.SeverityFatal }

// Lock is a held, name-scoped exclusive lock. Release must be called
// exactly once to free the name for a future crawl.
type Lock struct {
	path string
}

// Acquire creates a lock file for name under dir, failing if one already
// exists. The lock file is created with O_EXCL so two processes racing to
// start the same crawl never both succeed.
func Acquire(dir, name string) (*Lock, failure.ClassifiedError) {
	path := filepath.Join(dir, name+".lock")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, &LockError{Name: name}
		}
		return nil, &fileutil.FileError{Message: err.Error(), Retryable: false, Cause: fileutil.ErrCausePathError}
	}
	f.Close()
	return &Lock{path: path}, nil
}

// Release removes the lock file, freeing the name for a future crawl.
func (l *Lock) Release() error {
	return os.Remove(l.path)
}

// Registry tracks in-process job state: which named crawls are currently
// running, completed, or failed, keyed by name. Job submission surfaces
// that live outside this process poll it through whatever transport they
// bring; the engine itself only records transitions here.
type Registry struct {
	mu    sync.Mutex
	state map[string]Status
}

type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

func NewRegistry() *Registry {
	return &Registry{state: make(map[string]Status)}
}

func (r *Registry) SetStatus(name string, status Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state[name] = status
}

func (r *Registry) Status(name string) (Status, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	status, ok := r.state[name]
	return status, ok
}
