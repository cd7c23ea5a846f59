package store

import (
	"maps"
	"slices"

	"github.com/desertthunder/tripmate/internal/models"
)

// Change names the mutation that produced a state change.
type Change string

const (
	ChangeModalVisible    Change = "modal_visible"
	ChangeSideMenuVisible Change = "side_menu_visible"
	ChangeUser            Change = "user"
	ChangeInitLiked       Change = "init_liked"
	ChangeAddLiked        Change = "add_liked"
	ChangeRemoveLiked     Change = "remove_liked"
	ChangeInitSchedules   Change = "init_schedules"
	ChangeAddSchedule     Change = "add_schedule"
	ChangeAlert           Change = "alert"
)

// Subscribe registers fn to run after every mutation. The returned func removes it.
//
// Listeners run on the mutating goroutine after the state lock is released.
func (s *AppState) Subscribe(fn func(Change)) (cancel func()) {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	return func() {
		s.listenerMu.Lock()
		defer s.listenerMu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *AppState) notify(c Change) {
	s.listenerMu.Lock()
	fns := make([]func(Change), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.listenerMu.Unlock()

	for _, fn := range fns {
		fn(c)
	}
}

// apply runs fn under the write lock, then notifies listeners.
func (s *AppState) apply(c Change, fn func()) {
	s.mu.Lock()
	fn()
	s.mu.Unlock()
	s.notify(c)
}

func (s *AppState) SetModalVisible(visible bool) {
	s.apply(ChangeModalVisible, func() { s.modal = visible })
}

func (s *AppState) SetSideMenuVisible(visible bool) {
	s.apply(ChangeSideMenuVisible, func() { s.sideMenu = visible })
}

// SetUser replaces the signed-in user; nil logs out locally.
func (s *AppState) SetUser(user *models.User) {
	var u *models.User
	if user != nil {
		copied := *user
		u = &copied
	}
	s.apply(ChangeUser, func() { s.user = u })
}

// InitLiked replaces the liked ids wholesale.
func (s *AppState) InitLiked(ids []int) {
	replacement := slices.Clone(ids)
	if replacement == nil {
		replacement = []int{}
	}
	s.apply(ChangeInitLiked, func() { s.liked = replacement })
}

// AddLiked appends id without checking for duplicates.
func (s *AppState) AddLiked(id int) {
	s.apply(ChangeAddLiked, func() { s.addLiked(id) })
}

// RemoveLiked removes every occurrence of id.
func (s *AppState) RemoveLiked(id int) {
	s.apply(ChangeRemoveLiked, func() { s.removeLiked(id) })
}

// InitSchedules replaces the schedule list wholesale.
func (s *AppState) InitSchedules(entries []models.ScheduleEntry) {
	replacement := cloneSchedules(entries)
	s.apply(ChangeInitSchedules, func() { s.schedules = replacement })
}

// AddSchedule appends entry to the schedule list.
func (s *AppState) AddSchedule(entry models.ScheduleEntry) {
	s.apply(ChangeAddSchedule, func() { s.addSchedule(entry) })
}

// SetAlert replaces the pending alert; nil clears it.
func (s *AppState) SetAlert(alert *models.AlertData) {
	s.apply(ChangeAlert, func() { s.alert = alert })
}

func (s *AppState) addLiked(id int) {
	s.liked = append(s.liked, id)
}

func (s *AppState) removeLiked(id int) {
	s.liked = slices.DeleteFunc(s.liked, func(v int) bool { return v == id })
}

func (s *AppState) addSchedule(entry models.ScheduleEntry) {
	s.schedules = append(s.schedules, maps.Clone(entry))
}
