package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type loginScreen struct {
	vm       *LoginViewModel
	gym      string
	email    textinput.Model
	password textinput.Model
	focus    int // 0 email, 1 password
	width    int
	height   int
}

func newLoginScreen(vm *LoginViewModel, gym string) *loginScreen {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.CharLimit = 64
	email.Width = 32
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 64
	password.Width = 32

	return &loginScreen{vm: vm, gym: gym, email: email, password: password}
}

func (s *loginScreen) teardown() { s.vm.Close() }

func (s *loginScreen) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		watchChanges(s.vm.Changes()),
		watchLoginEvents(s.vm.Events()),
	)
}

func (s *loginScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width, s.height = msg.Width, msg.Height
		return s, nil

	case stateChangedMsg:
		// state can change underneath the inputs (prefill, suggestion)
		if st, ok := s.vm.State(); ok {
			if st.Email != s.email.Value() {
				s.email.SetValue(st.Email)
				s.email.CursorEnd()
			}
			if st.Password != s.password.Value() {
				s.password.SetValue(st.Password)
				s.password.CursorEnd()
			}
		}
		return s, watchChanges(s.vm.Changes())

	case loginEventMsg:
		switch msg.ev.(type) {
		case LoggedIn:
			return s, navigateCmd(screenHome)
		case GoToRegister:
			return s, navigateCmd(screenRegister)
		}
		return s, watchLoginEvents(s.vm.Events())

	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "down", "shift+tab", "up":
			s.setFocus((s.focus + 1) % 2)
			return s, nil
		case "enter":
			s.vm.Dispatch(SubmitPressed{})
			return s, nil
		case "ctrl+r":
			s.vm.Dispatch(RegisterPressed{})
			return s, nil
		case "ctrl+y":
			s.vm.Dispatch(AcceptSuggestion{})
			return s, nil
		}
		return s, s.forwardKey(msg)
	}
	return s, nil
}

func (s *loginScreen) setFocus(i int) {
	s.focus = i
	if i == 0 {
		s.email.Focus()
		s.password.Blur()
	} else {
		s.email.Blur()
		s.password.Focus()
	}
}

func (s *loginScreen) forwardKey(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	if s.focus == 0 {
		s.email, cmd = s.email.Update(msg)
		s.vm.Dispatch(EmailChanged{Value: s.email.Value()})
	} else {
		s.password, cmd = s.password.Update(msg)
		s.vm.Dispatch(PasswordChanged{Value: s.password.Value()})
	}
	return cmd
}

func (s *loginScreen) View() string {
	st, ok := s.vm.State()
	if !ok {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(s.gym) + "\n")
	b.WriteString(labelStyle.Render("Member sign in") + "\n\n")
	b.WriteString(labelStyle.Render("Email") + "\n" + s.email.View() + "\n")
	b.WriteString(labelStyle.Render("Password") + "\n" + s.password.View() + "\n")

	switch {
	case st.Restoring:
		b.WriteString("\n" + busyStyle.Render("Restoring your session…") + "\n")
	case st.Busy:
		b.WriteString("\n" + busyStyle.Render("Signing in…") + "\n")
	case st.ErrText != "":
		b.WriteString("\n" + errStyle.Render(st.ErrText) + "\n")
	case st.Suggestion != "":
		b.WriteString("\n" + hintStyle.Render(fmt.Sprintf("Did you mean %s? (ctrl+y)", st.Suggestion)) + "\n")
	default:
		b.WriteString("\n\n")
	}

	box := boxStyle.Render(b.String())
	help := helpLine("enter", "sign in", "ctrl+r", "register", "ctrl+c", "quit")
	content := lipgloss.JoinVertical(lipgloss.Left, box, help)
	if s.width > 0 && s.height > 0 {
		return lipgloss.Place(s.width, s.height, lipgloss.Center, lipgloss.Center, content)
	}
	return content
}
