package app

import (
	"context"
	"log/slog"

	"github.com/tabdeel/pulse/internal/accounts"
	"github.com/tabdeel/pulse/internal/activity"
	"github.com/tabdeel/pulse/internal/dashboard"
	"github.com/tabdeel/pulse/internal/finance"
	"github.com/tabdeel/pulse/internal/messages"
	"github.com/tabdeel/pulse/internal/projects"
	"github.com/tabdeel/pulse/internal/rbac"
	"github.com/tabdeel/pulse/internal/servicejobs"
	"github.com/tabdeel/pulse/internal/tasks"
	"github.com/tabdeel/pulse/internal/users"
)

// WorkspaceConfig selects the persistence collaborators of a Workspace.
type WorkspaceConfig struct {
	RoleStore    rbac.Store
	AuditSink    activity.Sink
	PasswordHash string
	Logger       *slog.Logger
}

// Workspace owns every store and domain service of a running instance.
type Workspace struct {
	Registry  *rbac.Registry
	Directory *users.Directory
	Feed      *activity.Feed
	Tasks     *tasks.Store
	Finance   *finance.Service
	Jobs      *servicejobs.Service
	Messages  *messages.Service
	Projects  *projects.Store
	Accounts  *accounts.Store
	Dashboard *dashboard.Service
}

// NewWorkspace seeds the stores and loads the persisted role registry.
func NewWorkspace(ctx context.Context, cfg WorkspaceConfig) *Workspace {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	registry := rbac.NewRegistry(cfg.RoleStore, logger, nil)
	registry.Load(ctx)

	directory := users.NewDirectory(registry, users.SeedUsers(cfg.PasswordHash))
	feed := activity.NewFeed(activity.DefaultCapacity, cfg.AuditSink, logger)
	taskStore := tasks.NewStore(tasks.SeedTasks())
	projectStore := projects.NewStore(projects.SeedProjects())
	accountStore := accounts.NewStore(accounts.SeedAccountHeads())

	ledger := finance.NewLedger(finance.SeedData())
	financeService := finance.NewService(finance.ServiceConfig{
		Ledger:       ledger,
		Feed:         feed,
		Tasks:        taskStore,
		AccountHeads: accountStore,
		Projects:     projectStore,
		Logger:       logger,
	})

	threads := messages.NewStore(messages.SeedThreads())
	messageService := messages.NewService(threads, directory, feed, logger)

	board := servicejobs.NewBoard(servicejobs.SeedJobs(), servicejobs.SeedComments())
	jobService := servicejobs.NewService(board, directory, messageService, feed, logger)

	return &Workspace{
		Registry:  registry,
		Directory: directory,
		Feed:      feed,
		Tasks:     taskStore,
		Finance:   financeService,
		Jobs:      jobService,
		Messages:  messageService,
		Projects:  projectStore,
		Accounts:  accountStore,
		Dashboard: dashboard.NewService(dashboard.Sources{
			Finance:  ledger,
			Jobs:     board,
			Projects: projectStore,
			Inbox:    threads,
			Tasks:    taskStore,
			Feed:     feed,
		}),
	}
}
