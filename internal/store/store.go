package store

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tripmate/internal/catalog"
	"github.com/desertthunder/tripmate/internal/models"
	"github.com/desertthunder/tripmate/internal/shared"
	"github.com/desertthunder/tripmate/internal/tasks"
)

// Options contains the collaborators injected into an [AppState].
type Options struct {
	Catalog   *catalog.Catalog
	Identity  Identity
	Documents Documents
	Navigator Navigator
	Writer    Writer      // Defaults to a [tasks.WriteQueue] over Documents
	Logger    *log.Logger // Defaults to [shared.NewLogger] on stderr
}

// AppState is the centralized, observable application state.
type AppState struct {
	mu sync.RWMutex

	places    []models.Place
	locations []models.Location
	liked     []int
	schedules []models.ScheduleEntry
	user      *models.User
	alert     *models.AlertData
	modal     bool
	sideMenu  bool

	identity  Identity
	documents Documents
	navigator Navigator
	writer    Writer
	logger    *log.Logger

	listenerMu sync.Mutex
	listeners  map[int]func(Change)
	nextID     int
}

// New creates the state with the catalog loaded and every user-scoped field empty.
func New(opts Options) *AppState {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	s := &AppState{
		liked:     []int{},
		schedules: []models.ScheduleEntry{},
		identity:  opts.Identity,
		documents: opts.Documents,
		navigator: opts.Navigator,
		writer:    opts.Writer,
		logger:    logger,
		listeners: make(map[int]func(Change)),
	}

	if opts.Catalog != nil {
		s.places = slices.Clone(opts.Catalog.Places)
		s.locations = slices.Clone(opts.Catalog.Locations)
	}
	if s.writer == nil && s.documents != nil {
		s.writer = tasks.NewWriteQueue(s.documents, tasks.WriteQueueOpts{Logger: logger})
	}
	return s
}

// Places returns the full catalog.
func (s *AppState) Places() []models.Place {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.places)
}

// LikedPlaces returns the catalog entries whose id is liked, in catalog order.
func (s *AppState) LikedPlaces() []models.Place {
	s.mu.RLock()
	defer s.mu.RUnlock()

	liked := make(map[int]bool, len(s.liked))
	for _, id := range s.liked {
		liked[id] = true
	}

	result := []models.Place{}
	for _, p := range s.places {
		if liked[p.ID] {
			result = append(result, p)
		}
	}
	return result
}

// Liked returns the raw liked ids, duplicates included.
func (s *AppState) Liked() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.liked)
}

// IsLiked reports whether id is in the liked set.
func (s *AppState) IsLiked(id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.liked, id)
}

func (s *AppState) Locations() []models.Location {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.locations)
}

func (s *AppState) Schedules() []models.ScheduleEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSchedules(s.schedules)
}

func (s *AppState) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// User returns a copy of the signed-in user, or nil.
func (s *AppState) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *AppState) ModalVisible() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modal
}

func (s *AppState) SideMenuVisible() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sideMenu
}

// Alert returns the pending alert, or nil.
func (s *AppState) Alert() *models.AlertData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.alert
}

// Flush waits for pending write-through snapshots.
func (s *AppState) Flush(ctx context.Context) error {
	if s.writer == nil {
		return nil
	}
	return s.writer.Flush(ctx)
}

// record captures the persisted shape of the current user data. Callers hold s.mu.
func (s *AppState) record() models.UserRecord {
	return models.UserRecord{
		Liked:     slices.Clone(s.liked),
		Schedules: cloneSchedules(s.schedules),
	}.Normalize()
}

func cloneSchedules(entries []models.ScheduleEntry) []models.ScheduleEntry {
	out := make([]models.ScheduleEntry, len(entries))
	for i, e := range entries {
		out[i] = maps.Clone(e)
	}
	return out
}
