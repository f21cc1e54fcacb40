package release

import (
	"context"
	"crypto/x509"
	"database/sql"
	"fmt"
	"net"
	"slices"

	"github.com/andreapavoni/distillery/internal/logger"
	"github.com/andreapavoni/distillery/pkg/store"
)

// Subsystem is one runtime dependency that must be up before any store
// connection is attempted.
type Subsystem struct {
	Name  string
	Start func(ctx context.Context) error
}

// DependencyStarter activates the configured runtime subsystems, each
// exactly once, in declared order. A failed subsystem aborts the whole
// run: there is no partial-success mode and no retry, since a failure
// here means a misconfigured host rather than a transient condition.
type DependencyStarter struct {
	subsystems map[string]Subsystem
	started    map[string]bool
}

// NewDependencyStarter builds a starter with the built-in subsystems
// wired for the given store set.
func NewDependencyStarter(stores []store.Config) *DependencyStarter {
	d := &DependencyStarter{
		subsystems: make(map[string]Subsystem),
		started:    make(map[string]bool),
	}
	for _, s := range builtinSubsystems(stores) {
		d.Register(s)
	}
	return d
}

// Register adds or replaces a subsystem. Callers embedding the task
// runner can hook their own runtime dependencies in before StartAll.
func (d *DependencyStarter) Register(s Subsystem) {
	d.subsystems[s.Name] = s
}

// StartAll activates the named subsystems in order. Unknown and repeated
// names are configuration errors.
func (d *DependencyStarter) StartAll(ctx context.Context, names []string) error {
	for _, name := range names {
		sub, ok := d.subsystems[name]
		if !ok {
			return &DependencyStartError{Subsystem: name, Err: fmt.Errorf("unknown subsystem")}
		}
		if d.started[name] {
			return &DependencyStartError{Subsystem: name, Err: fmt.Errorf("listed more than once")}
		}

		logger.Debug("starting subsystem", "subsystem", name)
		if err := sub.Start(ctx); err != nil {
			return &DependencyStartError{Subsystem: name, Err: err}
		}
		d.started[name] = true
	}
	return nil
}

// Started reports whether the named subsystem has been activated.
func (d *DependencyStarter) Started(name string) bool {
	return d.started[name]
}

// builtinSubsystems returns the subsystems every run knows about:
//
//	tls:     loads the system certificate pool so TLS-backed database
//	         connections can verify their peers
//	network: verifies the host network stack is usable
//	drivers: verifies a database/sql driver is registered for every
//	         configured store backend
func builtinSubsystems(stores []store.Config) []Subsystem {
	return []Subsystem{
		{
			Name: "tls",
			Start: func(ctx context.Context) error {
				if _, err := x509.SystemCertPool(); err != nil {
					return fmt.Errorf("loading system cert pool: %w", err)
				}
				return nil
			},
		},
		{
			Name: "network",
			Start: func(ctx context.Context) error {
				ifaces, err := net.Interfaces()
				if err != nil {
					return fmt.Errorf("enumerating network interfaces: %w", err)
				}
				if len(ifaces) == 0 {
					return fmt.Errorf("no network interfaces available")
				}
				return nil
			},
		},
		{
			Name: "drivers",
			Start: func(ctx context.Context) error {
				registered := sql.Drivers()
				for _, s := range stores {
					if !slices.Contains(registered, s.DriverName()) {
						return fmt.Errorf("driver %q for store %q not registered", s.DriverName(), s.Name)
					}
				}
				return nil
			},
		},
	}
}
