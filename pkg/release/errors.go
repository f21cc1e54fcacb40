package release

import (
	"errors"
	"fmt"
)

// Process exit codes. The release pipeline distinguishes which stage
// aborted the run from the exit status alone.
const (
	ExitSuccess    = 0
	ExitUsage      = 1
	ExitDependency = 2
	ExitConnection = 3
	ExitMigration  = 4
	ExitSeed       = 5
)

// DependencyStartError reports a runtime subsystem that failed to start.
type DependencyStartError struct {
	Subsystem string
	Err       error
}

func (e *DependencyStartError) Error() string {
	return fmt.Sprintf("starting dependencies: subsystem %q: %v", e.Subsystem, e.Err)
}

func (e *DependencyStartError) Unwrap() error { return e.Err }

// ExitCode returns the process exit status for this failure.
func (e *DependencyStartError) ExitCode() int { return ExitDependency }

// ConnectionError reports a store whose connection pool could not be
// established.
type ConnectionError struct {
	Store string
	Err   error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connecting stores: store %q: %v", e.Store, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ExitCode returns the process exit status for this failure.
func (e *ConnectionError) ExitCode() int { return ExitConnection }

// MigrationError reports a failed migration run for one store. Version is
// the version the migration engine recorded when the failure happened;
// zero when no version was recorded at all.
type MigrationError struct {
	Store   string
	Version uint
	Dirty   bool
	Err     error
}

func (e *MigrationError) Error() string {
	if e.Version > 0 {
		return fmt.Sprintf("running migrations: store %q version %d: %v", e.Store, e.Version, e.Err)
	}
	return fmt.Sprintf("running migrations: store %q: %v", e.Store, e.Err)
}

func (e *MigrationError) Unwrap() error { return e.Err }

// ExitCode returns the process exit status for this failure.
func (e *MigrationError) ExitCode() int { return ExitMigration }

// SeedError reports a store whose seed failed to execute.
type SeedError struct {
	Store string
	Err   error
}

func (e *SeedError) Error() string {
	return fmt.Sprintf("seeding stores: store %q: %v", e.Store, e.Err)
}

func (e *SeedError) Unwrap() error { return e.Err }

// ExitCode returns the process exit status for this failure.
func (e *SeedError) ExitCode() int { return ExitSeed }

type exitCoder interface {
	ExitCode() int
}

// ExitCode maps an error to the process exit status. nil maps to 0,
// unrecognized errors to ExitUsage.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var coder exitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return ExitUsage
}

// Stage names used in failure summaries and progress lines.
func stageOf(err error) string {
	var dep *DependencyStartError
	var conn *ConnectionError
	var mig *MigrationError
	var seed *SeedError
	switch {
	case errors.As(err, &dep):
		return "dependency start"
	case errors.As(err, &conn):
		return "store connection"
	case errors.As(err, &mig):
		return "migration"
	case errors.As(err, &seed):
		return "seed"
	default:
		return "startup"
	}
}
