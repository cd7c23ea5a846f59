package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tripmate/internal/store"
	"github.com/desertthunder/tripmate/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgStateChanged MsgKind = iota
	MsgRouteChanged
	MsgActionDone
	MsgWriteUpdate
)

// actionResult is the payload of [MsgActionDone].
type actionResult struct {
	op  string
	err error
}

// stateChangedMsg is the constructor for [MsgStateChanged]
func stateChangedMsg(change store.Change) Msg {
	return Msg{kind: MsgStateChanged, data: change}
}

// routeChangedMsg is the constructor for [MsgRouteChanged]
func routeChangedMsg(path string) Msg {
	return Msg{kind: MsgRouteChanged, data: path}
}

// actionDoneMsg is the constructor for [MsgActionDone]
func actionDoneMsg(op string, err error) Msg {
	return Msg{kind: MsgActionDone, data: actionResult{op: op, err: err}}
}

// writeUpdateMsg is the constructor for [MsgWriteUpdate]
func writeUpdateMsg(update tasks.WriteUpdate) Msg {
	return Msg{kind: MsgWriteUpdate, data: update}
}
