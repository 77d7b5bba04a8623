package services

import (
	"context"

	"examprep/internal/logger"
	"examprep/pkg/preptypes"
)

// FrameworkGenerator is the model-facing half of a Workspace.
type FrameworkGenerator interface {
	GenerateFramework(ctx context.Context, topic string) (*preptypes.FrameworkResult, error)
	AskFollowUp(ctx context.Context, topic, question string) (*preptypes.FollowUpResult, error)
}

// Workspace is everything one user agent sees: its session, its history and the
// generator. Generation requires a session and is recorded in that account's history.
type Workspace struct {
	Auth      *AuthService
	History   *HistoryService
	generator FrameworkGenerator
}

// NewWorkspace builds a Workspace over store.
func NewWorkspace(store preptypes.Storage, generator FrameworkGenerator, cfg AppConfig) *Workspace {
	return &Workspace{
		Auth:      NewAuthService(store, AuthOptionsFromConfig(cfg)),
		History:   NewHistoryService(store, cfg.HistoryLimit),
		generator: generator,
	}
}

// NewWorkspaceFrom assembles a Workspace from existing services.
func NewWorkspaceFrom(auth *AuthService, history *HistoryService, generator FrameworkGenerator) *Workspace {
	return &Workspace{Auth: auth, History: history, generator: generator}
}

// Generate produces a framework for the logged-in account and records the topic.
// A history write failure is logged and does not fail the generation.
func (w *Workspace) Generate(ctx context.Context, topic string) (*preptypes.FrameworkResult, error) {
	session, err := w.requireSession(ctx)
	if err != nil {
		return nil, err
	}

	result, err := w.generator.GenerateFramework(ctx, topic)
	if err != nil {
		return nil, err
	}

	if _, err := w.History.RecordTopic(ctx, session.Email, result.Topic); err != nil {
		logger.Warn("Failed to record history", "email", session.Email, "error", err)
	}
	return result, nil
}

// AskFollowUp answers a question about topic for the logged-in account.
func (w *Workspace) AskFollowUp(ctx context.Context, topic, question string) (*preptypes.FollowUpResult, error) {
	if _, err := w.requireSession(ctx); err != nil {
		return nil, err
	}
	return w.generator.AskFollowUp(ctx, topic, question)
}

// CurrentHistory lists the logged-in account's topics.
func (w *Workspace) CurrentHistory(ctx context.Context) ([]string, error) {
	session, err := w.requireSession(ctx)
	if err != nil {
		return nil, err
	}
	return w.History.List(ctx, session.Email)
}

// ClearCurrentHistory forgets the logged-in account's topics.
func (w *Workspace) ClearCurrentHistory(ctx context.Context) error {
	session, err := w.requireSession(ctx)
	if err != nil {
		return err
	}
	return w.History.Clear(ctx, session.Email)
}

func (w *Workspace) requireSession(ctx context.Context) (*preptypes.Session, error) {
	session := w.Auth.GetCurrentUser(ctx)
	if session == nil {
		return nil, preptypes.NewError(preptypes.ErrNotLoggedIn, nil)
	}
	return session, nil
}
