package tui

import tea "github.com/charmbracelet/bubbletea"

type screenID int

const (
	screenLogin screenID = iota
	screenRegister
	screenHome
)

// navigateMsg switches the app to another screen.
type navigateMsg struct {
	to screenID
}

// stateChangedMsg wakes a screen after its coordinator wrote state.
type stateChangedMsg struct{}

type loginEventMsg struct{ ev LoginEvent }
type registerEventMsg struct{ ev RegisterEvent }
type homeEventMsg struct{ ev HomeEvent }

func navigateCmd(to screenID) tea.Cmd {
	return func() tea.Msg { return navigateMsg{to: to} }
}

// watchChanges blocks until the coordinator signals a state write. A nil
// message (closed channel, screen torn down) is dropped by bubbletea.
func watchChanges(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return stateChangedMsg{}
	}
}

func watchLoginEvents(ch <-chan LoginEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return loginEventMsg{ev: ev}
	}
}

func watchRegisterEvents(ch <-chan RegisterEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return registerEventMsg{ev: ev}
	}
}

func watchHomeEvents(ch <-chan HomeEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return homeEventMsg{ev: ev}
	}
}
