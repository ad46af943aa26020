package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ashfall-game/ashfall/internal/engine"
	"github.com/ashfall-game/ashfall/internal/store"
	"github.com/ashfall-game/ashfall/internal/util"
)

// Run boots the TUI program and blocks until it exits.
func Run(ctx context.Context, users *store.UserRepo, narrator engine.Narrator, status engine.StatusExtractor, imager engine.Imager, cfg util.Config) error {
	m := initialModel(ctx, users, narrator, status, imager, cfg)
	program := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
