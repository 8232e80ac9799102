package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kalev/gymdesk/internal/di"
)

// screen is one full-terminal view bound to a view-model. teardown closes
// the view-model's coordinator so its tasks and watcher cmds unwind.
type screen interface {
	tea.Model
	teardown()
}

// App owns the active screen and swaps screens on navigateMsg. View-models
// come out of the registry so each navigation gets a fresh coordinator.
type App struct {
	reg     *di.Registry
	gym     string
	current screen
	width   int
	height  int
}

func NewApp(reg *di.Registry, gymName string) *App {
	return &App{reg: reg, gym: gymName}
}

func (a *App) Init() tea.Cmd {
	a.current = a.build(screenLogin)
	return a.current.Init()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			if a.current != nil {
				a.current.teardown()
				a.current = nil
			}
			return a, tea.Quit
		}

	case navigateMsg:
		if a.current != nil {
			a.current.teardown()
		}
		a.current = a.build(msg.to)
		cmds := []tea.Cmd{a.current.Init()}
		if a.width > 0 {
			next, cmd := a.current.Update(tea.WindowSizeMsg{Width: a.width, Height: a.height})
			a.current = next.(screen)
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)
	}

	if a.current == nil {
		return a, nil
	}
	next, cmd := a.current.Update(msg)
	a.current = next.(screen)
	return a, cmd
}

func (a *App) View() string {
	if a.current == nil {
		return ""
	}
	return a.current.View()
}

func (a *App) build(to screenID) screen {
	switch to {
	case screenRegister:
		return newRegisterScreen(di.MustResolve[*RegisterViewModel](a.reg), a.gym)
	case screenHome:
		return newHomeScreen(di.MustResolve[*HomeViewModel](a.reg), a.gym)
	default:
		return newLoginScreen(di.MustResolve[*LoginViewModel](a.reg), a.gym)
	}
}
