// Package release implements the one-shot release task runner.
//
// A task run prepares an application's persistent stores before a new
// version starts serving traffic: it starts the minimal runtime needed to
// reach the data layer, applies pending schema migrations to every
// configured store, optionally seeds data, and reports success or failure
// through a typed error that maps to the process exit status.
//
// Every stage is synchronous and must fully succeed before the next
// begins. Nothing is retried: this runs once per deployment before
// traffic is accepted, and failing loudly while the release stays
// unpromoted is the safe default.
package release

import (
	"context"

	"github.com/andreapavoni/distillery/internal/logger"
	"github.com/andreapavoni/distillery/pkg/config"
)

// State is the lifecycle controller's position in the run.
type State int

const (
	StateIdle State = iota
	StateDependenciesStarted
	StateStoresConnected
	StateMigrated
	StateSeeded
	StateTerminated
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDependenciesStarted:
		return "dependencies-started"
	case StateStoresConnected:
		return "stores-connected"
	case StateMigrated:
		return "migrated"
	case StateSeeded:
		return "seeded"
	case StateTerminated:
		return "terminated"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Controller sequences a task run through its stages. Transitions are
// strictly linear; any stage failure moves the controller into the
// absorbing Failed state. A Controller runs once: build a fresh one per
// invocation.
type Controller struct {
	cfg     *config.Config
	deps    *DependencyStarter
	seeders map[string]Seeder
	state   State
	conns   []Conn
}

// New builds a controller for the given configuration.
func New(cfg *config.Config) *Controller {
	return &Controller{
		cfg:     cfg,
		deps:    NewDependencyStarter(cfg.Stores),
		seeders: make(map[string]Seeder),
		state:   StateIdle,
	}
}

// RegisterSeeder installs an in-process seeder for the named store. It
// takes precedence over an on-disk seed executable.
func (c *Controller) RegisterSeeder(storeName string, fn Seeder) {
	c.seeders[storeName] = fn
}

// RegisterSubsystem installs an extra runtime subsystem, available to the
// configured subsystem list alongside the built-ins.
func (c *Controller) RegisterSubsystem(s Subsystem) {
	c.deps.Register(s)
}

// State returns the controller's current lifecycle state.
func (c *Controller) State() State {
	return c.state
}

// Migrate runs the task through the Migrated stage.
func (c *Controller) Migrate(ctx context.Context) error {
	return c.run(ctx, false)
}

// MigrateAndSeed runs the task through the Seeded stage.
func (c *Controller) MigrateAndSeed(ctx context.Context) error {
	return c.run(ctx, true)
}

func (c *Controller) run(ctx context.Context, seed bool) error {
	logger.Info("starting dependencies", "subsystems", c.cfg.Runtime.Subsystems)
	if err := c.deps.StartAll(ctx, c.cfg.Runtime.Subsystems); err != nil {
		return c.fail(err)
	}
	c.state = StateDependenciesStarted

	logger.Info("connecting stores", "count", len(c.cfg.Stores))
	conns, err := ConnectAll(ctx, c.cfg.Stores)
	if err != nil {
		return c.fail(err)
	}
	c.conns = conns
	c.state = StateStoresConnected

	if err := MigrateAll(c.conns, c.cfg.DataRoot); err != nil {
		return c.fail(err)
	}
	c.state = StateMigrated

	if seed {
		logger.Info("seeding stores", "count", len(c.conns))
		if err := SeedAll(ctx, c.conns, c.cfg.DataRoot, c.seeders); err != nil {
			return c.fail(err)
		}
		c.state = StateSeeded
	}

	// Log before shutdown: closing a file-backed log output would drop
	// the success line.
	logger.Info("success")
	c.shutdown()
	c.state = StateTerminated
	return nil
}

// fail moves the controller into the absorbing Failed state, emits the
// failure summary, and releases held resources.
func (c *Controller) fail(err error) error {
	c.state = StateFailed
	logger.Error("task run failed",
		"stage", stageOf(err),
		"error", err)
	c.shutdown()
	return err
}

// shutdown releases the held connection pools and flushes log output.
func (c *Controller) shutdown() {
	CloseAll(c.conns)
	c.conns = nil
	_ = logger.Close()
}
