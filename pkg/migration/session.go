package migration

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dukex/n8nmigrate/pkg/backup"
	"github.com/dukex/n8nmigrate/pkg/config"
	"github.com/dukex/n8nmigrate/pkg/models"
)

// State is a step of an interactive session.
type State int

const (
	StateSelectingServer State = iota
	StateSelectingProject
	StateBackup
	StateRestore
	StateCleanup
	StateReporting
	StateDone
)

func (s State) String() string {
	switch s {
	case StateSelectingServer:
		return "selecting_server"
	case StateSelectingProject:
		return "selecting_project"
	case StateBackup:
		return "backup"
	case StateRestore:
		return "restore"
	case StateCleanup:
		return "cleanup"
	case StateReporting:
		return "reporting"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Prompter asks the operator to choose. Select returns the index of the chosen option.
type Prompter interface {
	Select(ctx context.Context, title string, options []string) (int, error)
	Confirm(ctx context.Context, message string) (bool, error)
}

// Connector builds the engine for the selected server.
type Connector func(ctx context.Context, server *config.Server) (*Engine, error)

// SessionConfig holds the choices made up front; anything left empty is prompted for.
type SessionConfig struct {
	Action      Action
	Servers     *config.Servers
	Credentials *config.Credentials

	Server      string
	Project     string
	NewProject  string
	Backup      string
	Environment string
}

// Session walks SelectingServer -> SelectingProject -> action -> Reporting.
type Session struct {
	logger   *slog.Logger
	cfg      SessionConfig
	prompter Prompter
	connect  Connector

	state   State
	engine  *Engine
	project models.Project
	report  *Report
}

func NewSession(logger *slog.Logger, cfg SessionConfig, prompter Prompter, connect Connector) *Session {
	return &Session{
		logger:   logger.With("module", "session", "action", cfg.Action),
		cfg:      cfg,
		prompter: prompter,
		connect:  connect,
		state:    StateSelectingServer,
	}
}

func (s *Session) State() State {
	return s.state
}

// Run drives the session to completion and returns the report of its action.
func (s *Session) Run(ctx context.Context) (*Report, error) {
	if _, err := ParseAction(string(s.cfg.Action)); err != nil {
		return nil, err
	}

	for s.state != StateDone {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		s.logger.DebugContext(ctx, "Session step", "state", s.state)

		if err := s.step(ctx); err != nil {
			return nil, err
		}
	}

	return s.report, nil
}

func (s *Session) step(ctx context.Context) error {
	var err error

	switch s.state {
	case StateSelectingServer:
		err = s.selectServer(ctx)
	case StateSelectingProject:
		err = s.selectProject(ctx)
	case StateBackup:
		s.report, err = s.engine.Backup(ctx, s.project)
		s.state = StateReporting
	case StateRestore:
		err = s.restore(ctx)
	case StateCleanup:
		err = s.cleanup(ctx)
	case StateReporting:
		s.logger.InfoContext(ctx, "Operation finished",
			"run_id", s.report.RunID,
			"warnings", len(s.report.Warnings),
			"failures", len(s.report.Failures),
		)
		s.state = StateDone
	case StateDone:
	}

	return err
}

func (s *Session) selectServer(ctx context.Context) error {
	if s.cfg.Servers == nil || s.cfg.Servers.Entries.Len() == 0 {
		return ErrNoServers
	}

	var server *config.Server

	if s.cfg.Server != "" {
		selected, err := s.cfg.Servers.Get(s.cfg.Server)
		if err != nil {
			return err
		}

		server = selected
	} else {
		servers := s.cfg.Servers.List()

		options := make([]string, len(servers))
		for i, srv := range servers {
			options[i] = srv.Label()
		}

		choice, err := s.prompter.Select(ctx, "Select Server", options)
		if err != nil {
			return err
		}

		server = servers[choice]
	}

	engine, err := s.connect(ctx, server)
	if err != nil {
		return err
	}

	if err := engine.Connect(ctx); err != nil {
		return err
	}

	s.engine = engine
	s.state = StateSelectingProject

	return nil
}

func (s *Session) selectProject(ctx context.Context) error {
	project, err := s.chooseProject(ctx)
	if err != nil {
		return err
	}

	s.project = project
	s.logger.InfoContext(ctx, "Project selected", "project", project.Name, "project_id", project.ID)

	switch s.cfg.Action {
	case ActionBackup:
		s.state = StateBackup
	case ActionRestore:
		s.state = StateRestore
	case ActionCleanup:
		s.state = StateCleanup
	}

	return nil
}

func (s *Session) chooseProject(ctx context.Context) (models.Project, error) {
	if s.cfg.NewProject != "" {
		return s.engine.CreateProject(ctx, s.cfg.NewProject)
	}

	projects, err := s.engine.Projects(ctx)
	if err != nil {
		return models.Project{}, err
	}

	if s.cfg.Project != "" {
		for _, project := range projects {
			if project.ID == s.cfg.Project || project.Name == s.cfg.Project {
				return project, nil
			}
		}

		return models.Project{}, fmt.Errorf("%w: %s", ErrProjectNotFound, s.cfg.Project)
	}

	if len(projects) == 1 && projects[0].IsDefault() {
		return projects[0], nil
	}

	options := make([]string, len(projects))
	for i, project := range projects {
		options[i] = fmt.Sprintf("%s (ID: %s)", project.Name, project.ID)
	}

	choice, err := s.prompter.Select(ctx, "Select Project", options)
	if err != nil {
		return models.Project{}, err
	}

	return projects[choice], nil
}

func (s *Session) restore(ctx context.Context) error {
	info, err := s.chooseBackup(ctx)
	if err != nil {
		return err
	}

	environment, err := s.chooseEnvironment(ctx)
	if err != nil {
		return err
	}

	report, err := s.engine.Restore(ctx, RestoreRequest{
		Project:     s.project,
		Backup:      info.Name,
		Environment: environment,
		Credentials: s.cfg.Credentials,
	})
	if err != nil {
		return err
	}

	report.Backup = &info
	s.report = report
	s.state = StateReporting

	return nil
}

func (s *Session) chooseBackup(ctx context.Context) (backup.Info, error) {
	if s.cfg.Backup != "" {
		return backup.Info{Name: s.cfg.Backup}, nil
	}

	backups, err := s.engine.backups.List(ctx)
	if err != nil {
		return backup.Info{}, err
	}

	if len(backups) == 0 {
		return backup.Info{}, ErrNoBackups
	}

	options := make([]string, len(backups))
	for i, info := range backups {
		options[i] = info.Name
	}

	choice, err := s.prompter.Select(ctx, "Select Backup", options)
	if err != nil {
		return backup.Info{}, err
	}

	return backups[choice], nil
}

func (s *Session) chooseEnvironment(ctx context.Context) (string, error) {
	if s.cfg.Environment != "" {
		return s.cfg.Environment, nil
	}

	keys := []string{config.EnvironmentProduction, config.EnvironmentDevelopment}
	if s.cfg.Credentials != nil && s.cfg.Credentials.Environments.Len() > 0 {
		keys = s.cfg.Credentials.Environments.Keys()
	}

	options := make([]string, len(keys))
	for i, key := range keys {
		options[i] = key
		if s.cfg.Credentials == nil {
			continue
		}

		if env, err := s.cfg.Credentials.Environment(key); err == nil {
			options[i] = env.DisplayName()
		}
	}

	choice, err := s.prompter.Select(ctx, "Select Target Environment", options)
	if err != nil {
		return "", err
	}

	return keys[choice], nil
}

func (s *Session) cleanup(ctx context.Context) error {
	set, err := s.engine.Tracked(ctx)
	if err != nil {
		return err
	}

	message := fmt.Sprintf(
		"Delete %d workflows and %d credentials created by this tool on %s? Manually created resources are not affected.",
		len(set.Workflows), len(set.Credentials), s.engine.Server().Label(),
	)

	confirmed, err := s.prompter.Confirm(ctx, message)
	if err != nil {
		return err
	}

	s.state = StateReporting

	if !confirmed {
		s.logger.InfoContext(ctx, "Cleanup cancelled")

		s.report = newReport(s.engine.RunID(), ActionCleanup, s.engine.Server().Label(), s.project)
		s.report.Cancelled = true

		return nil
	}

	s.report, err = s.engine.Cleanup(ctx, s.project)

	return err
}
