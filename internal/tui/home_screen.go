package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type homeScreen struct {
	vm     *HomeViewModel
	gym    string
	width  int
	height int
}

func newHomeScreen(vm *HomeViewModel, gym string) *homeScreen {
	return &homeScreen{vm: vm, gym: gym}
}

func (s *homeScreen) teardown() { s.vm.Close() }

func (s *homeScreen) Init() tea.Cmd {
	return tea.Batch(
		watchChanges(s.vm.Changes()),
		watchHomeEvents(s.vm.Events()),
	)
}

func (s *homeScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width, s.height = msg.Width, msg.Height
		return s, nil

	case stateChangedMsg:
		return s, watchChanges(s.vm.Changes())

	case homeEventMsg:
		if _, ok := msg.ev.(SignedOut); ok {
			return s, navigateCmd(screenLogin)
		}
		return s, watchHomeEvents(s.vm.Events())

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			s.vm.Dispatch(RefreshPressed{})
		case "q":
			s.vm.Dispatch(SignOutPressed{})
		}
		return s, nil
	}
	return s, nil
}

func (s *homeScreen) View() string {
	st, ok := s.vm.State()
	if !ok {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(s.gym) + "\n\n")

	name := st.FullName
	if name == "" {
		name = st.Email
	}
	b.WriteString(valueStyle.Render("Welcome back, "+name) + "\n\n")

	row := func(label, value string) {
		if value == "" {
			value = "—"
		}
		b.WriteString(labelStyle.Render(label+": ") + valueStyle.Render(value) + "\n")
	}
	row("Email", st.Email)
	row("Membership", st.MembershipTier)
	row("Home gym", st.HomeGym)

	switch {
	case st.Loading:
		b.WriteString("\n" + busyStyle.Render("Refreshing…") + "\n")
	case st.ErrText != "":
		b.WriteString("\n" + errStyle.Render(st.ErrText) + "\n")
	case st.FromCache:
		b.WriteString("\n" + hintStyle.Render("Showing cached profile") + "\n")
	default:
		b.WriteString("\n\n")
	}

	box := boxStyle.Render(b.String())
	help := helpLine("r", "refresh", "q", "sign out", "ctrl+c", "quit")
	content := lipgloss.JoinVertical(lipgloss.Left, box, help)
	if s.width > 0 && s.height > 0 {
		return lipgloss.Place(s.width, s.height, lipgloss.Center, lipgloss.Center, content)
	}
	return content
}
