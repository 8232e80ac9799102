package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const regFieldCount = 4

type registerScreen struct {
	vm     *RegisterViewModel
	gym    string
	inputs [regFieldCount]textinput.Model // name, email, password, confirm
	focus  int
	width  int
	height int
}

func newRegisterScreen(vm *RegisterViewModel, gym string) *registerScreen {
	s := &registerScreen{vm: vm, gym: gym}

	name := textinput.New()
	name.Placeholder = "Full name"
	name.CharLimit = 64
	name.Width = 32
	name.Focus()

	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.CharLimit = 64
	email.Width = 32

	password := textinput.New()
	password.Placeholder = "password (8+ characters)"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 64
	password.Width = 32

	confirm := textinput.New()
	confirm.Placeholder = "repeat password"
	confirm.EchoMode = textinput.EchoPassword
	confirm.EchoCharacter = '•'
	confirm.CharLimit = 64
	confirm.Width = 32

	s.inputs = [regFieldCount]textinput.Model{name, email, password, confirm}
	return s
}

func (s *registerScreen) teardown() { s.vm.Close() }

func (s *registerScreen) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		watchChanges(s.vm.Changes()),
		watchRegisterEvents(s.vm.Events()),
	)
}

func (s *registerScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width, s.height = msg.Width, msg.Height
		return s, nil

	case stateChangedMsg:
		if st, ok := s.vm.State(); ok {
			if st.Email != s.inputs[1].Value() {
				s.inputs[1].SetValue(st.Email)
				s.inputs[1].CursorEnd()
			}
		}
		return s, watchChanges(s.vm.Changes())

	case registerEventMsg:
		switch msg.ev.(type) {
		case Registered:
			return s, navigateCmd(screenHome)
		case BackToLogin:
			return s, navigateCmd(screenLogin)
		}
		return s, watchRegisterEvents(s.vm.Events())

	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "down":
			s.setFocus((s.focus + 1) % regFieldCount)
			return s, nil
		case "shift+tab", "up":
			s.setFocus((s.focus + regFieldCount - 1) % regFieldCount)
			return s, nil
		case "enter":
			if s.focus == regFieldCount-1 {
				s.vm.Dispatch(RegSubmitPressed{})
			} else {
				s.setFocus(s.focus + 1)
			}
			return s, nil
		case "esc":
			s.vm.Dispatch(RegCancelPressed{})
			return s, nil
		case "ctrl+y":
			s.vm.Dispatch(RegAcceptSuggestion{})
			return s, nil
		}
		return s, s.forwardKey(msg)
	}
	return s, nil
}

func (s *registerScreen) setFocus(i int) {
	s.focus = i
	for n := range s.inputs {
		if n == i {
			s.inputs[n].Focus()
		} else {
			s.inputs[n].Blur()
		}
	}
}

func (s *registerScreen) forwardKey(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	s.inputs[s.focus], cmd = s.inputs[s.focus].Update(msg)
	v := s.inputs[s.focus].Value()
	switch s.focus {
	case 0:
		s.vm.Dispatch(RegFullNameChanged{Value: v})
	case 1:
		s.vm.Dispatch(RegEmailChanged{Value: v})
	case 2:
		s.vm.Dispatch(RegPasswordChanged{Value: v})
	case 3:
		s.vm.Dispatch(RegConfirmChanged{Value: v})
	}
	return cmd
}

func (s *registerScreen) View() string {
	st, ok := s.vm.State()
	if !ok {
		return ""
	}

	labels := [regFieldCount]string{"Name", "Email", "Password", "Confirm"}
	var b strings.Builder
	b.WriteString(titleStyle.Render(s.gym) + "\n")
	b.WriteString(labelStyle.Render("New membership") + "\n\n")
	for i := range s.inputs {
		b.WriteString(labelStyle.Render(labels[i]) + "\n" + s.inputs[i].View() + "\n")
	}

	switch {
	case st.Busy:
		b.WriteString("\n" + busyStyle.Render("Creating your account…") + "\n")
	case st.ErrText != "":
		b.WriteString("\n" + errStyle.Render(st.ErrText) + "\n")
	case st.Suggestion != "":
		b.WriteString("\n" + hintStyle.Render(fmt.Sprintf("Did you mean %s? (ctrl+y)", st.Suggestion)) + "\n")
	default:
		b.WriteString("\n\n")
	}

	box := boxStyle.Render(b.String())
	help := helpLine("enter", "next/submit", "esc", "back", "ctrl+c", "quit")
	content := lipgloss.JoinVertical(lipgloss.Left, box, help)
	if s.width > 0 && s.height > 0 {
		return lipgloss.Place(s.width, s.height, lipgloss.Center, lipgloss.Center, content)
	}
	return content
}
