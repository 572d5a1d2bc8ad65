// Package memory хранилище в памяти с теми же гарантиями, что и Postgres-репозитории:
// резервирование слотов атомарно, создание слотов не допускает пересечений.
// Используется при STORE_DRIVER=memory и в тестах сервисов.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/Freeeeeet/lesson_booking/internal/model"
	"github.com/google/uuid"
)

type profile struct {
	fullName          string
	role              string
	passphraseVersion int
	updatedAt         time.Time
}

// Store общее состояние. Все операции выполняются под одним мьютексом.
type Store struct {
	mu sync.Mutex

	profiles        map[uuid.UUID]*profile
	teacherProfiles map[uuid.UUID]*model.TeacherProfile
	matches         map[uuid.UUID]*model.Match
	settings        map[string]string

	slots      map[int64]*model.AvailabilitySlot
	nextSlotID int64
	exceptions map[exceptionKey]*model.AvailabilitySlot // удалённые учителем часы

	bookings      map[int64]*model.Booking
	nextBookingID int64

	recurring       map[int64]*model.RecurringAvailability
	nextRecurringID int64

	now func() time.Time
}

func New() *Store {
	return &Store{
		profiles:        make(map[uuid.UUID]*profile),
		teacherProfiles: make(map[uuid.UUID]*model.TeacherProfile),
		matches:         make(map[uuid.UUID]*model.Match),
		settings:        make(map[string]string),
		slots:           make(map[int64]*model.AvailabilitySlot),
		exceptions:      make(map[exceptionKey]*model.AvailabilitySlot),
		bookings:        make(map[int64]*model.Booking),
		recurring:       make(map[int64]*model.RecurringAvailability),
		now:             func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Slots() *SlotStore { return &SlotStore{s} }
func (s *Store) Bookings() *BookingStore { return &BookingStore{s} }
func (s *Store) Teachers() *TeacherStore { return &TeacherStore{s} }
func (s *Store) Matches() *MatchStore { return &MatchStore{s} }
func (s *Store) Recurring() *RecurringStore { return &RecurringStore{s} }
func (s *Store) Settings() *SettingsStore { return &SettingsStore{s} }

// AddProfile добавляет пользователя. Профили выдаёт провайдер идентификации,
// здесь они только заводятся для локального запуска и тестов.
func (s *Store) AddProfile(id uuid.UUID, fullName, role string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profiles[id] = &profile{fullName: fullName, role: role, updatedAt: s.now()}
}

// AddMatch добавляет матч учитель/студент
func (s *Store) AddMatch(m *model.Match) *model.Match {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.Status == "" {
		m.Status = model.MatchStatusActive
	}
	now := s.now()
	m.CreatedAt, m.UpdatedAt = now, now

	stored := *m
	s.matches[m.ID] = &stored
	return m
}

// SetMatchStatus меняет статус матча (например, архивирует)
func (s *Store) SetMatchStatus(id uuid.UUID, status model.MatchStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m, ok := s.matches[id]; ok {
		m.Status = status
		m.UpdatedAt = s.now()
	}
}

func copySlot(slot *model.AvailabilitySlot) *model.AvailabilitySlot {
	c := *slot
	return &c
}

func sortSlots(slots []*model.AvailabilitySlot) {
	sort.Slice(slots, func(i, j int) bool { return slots[i].Before(slots[j]) })
}
