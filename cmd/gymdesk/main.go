package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kalev/gymdesk/internal/backend"
	"github.com/kalev/gymdesk/internal/cache"
	"github.com/kalev/gymdesk/internal/cache/repository"
	"github.com/kalev/gymdesk/internal/config"
	"github.com/kalev/gymdesk/internal/di"
	"github.com/kalev/gymdesk/internal/session"
	"github.com/kalev/gymdesk/internal/tui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Cache.Path), 0o755); err != nil {
		log.Fatalf("mkdir cache dir: %v", err)
	}

	if err := cache.RunMigrations(cfg.Cache.Path, "internal/cache/migrations"); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	db, err := cache.Open(cfg.Cache.Path)
	if err != nil {
		log.Fatalf("open cache: %v", err)
	}
	defer db.Close()

	tokens, err := session.NewStore()
	if err != nil {
		log.Fatalf("session store: %v", err)
	}

	client := backend.New(cfg.Service.URL, cfg.Service.AnonKey)
	sessions := session.NewHolder()
	deps := tui.Deps{
		Backend:  client,
		Sessions: sessions,
		Tokens:   tokens,
		Profiles: repository.NewProfileRepo(db),
		Prefs:    repository.NewPrefsRepo(db),
	}

	reg := di.New()
	di.RegisterSingleton(reg, func() config.Config { return cfg })
	di.RegisterSingleton(reg, func() *backend.Client { return client })
	di.RegisterSingleton(reg, func() *session.Holder { return sessions })
	di.RegisterFactory(reg, func() *tui.LoginViewModel { return tui.NewLoginViewModel(deps) })
	di.RegisterFactory(reg, func() *tui.RegisterViewModel { return tui.NewRegisterViewModel(deps) })
	di.RegisterFactory(reg, func() *tui.HomeViewModel { return tui.NewHomeViewModel(deps) })

	p := tea.NewProgram(tui.NewApp(reg, cfg.UI.GymName), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("error: %v\n", err)
	}
}
