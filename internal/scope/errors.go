package scope

import (
	"fmt"

	"github.com/rohmanhakim/sitecrawler/pkg/failure"
)

// FilterError marks a malformed allow/deny regex supplied in settings. A bad
// pattern is a configuration mistake and always fatal.
type FilterError struct {
	Field   string
	Message string
}

func (e *FilterError) Error() string {
	return fmt.Sprintf("scope filter: field %q: %s", e.Field, e.Message)
}

func (e *FilterError) Severity() failure.Severity { return failure.SeverityFatal }
