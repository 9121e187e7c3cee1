package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type registryEntry struct {
	session *Session
	touched time.Time
}

// Registry хранит сессии по id. Каждая сессия живёт в памяти до Delete или Sweep.
type Registry struct {
	translator Translator
	opts       []Option
	log        *zap.Logger
	now        func() time.Time

	mu       sync.Mutex
	sessions map[string]*registryEntry
}

// NewRegistry: opts применяются к каждой новой сессии.
func NewRegistry(translator Translator, log *zap.Logger, opts ...Option) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		translator: translator,
		opts:       opts,
		log:        log,
		now:        time.Now,
		sessions:   make(map[string]*registryEntry),
	}
}

// Create заводит сессию со случайным id.
func (r *Registry) Create() *Session {
	return r.GetOrCreate(uuid.NewString())
}

// GetOrCreate — для фронтов со своим ключом (например, чат телеграма).
func (r *Registry) GetOrCreate(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.sessions[id]; ok {
		e.touched = r.now()
		return e.session
	}

	opts := append(append([]Option(nil), r.opts...), WithID(id), WithLogger(r.log))
	s := New(r.translator, opts...)
	r.sessions[id] = &registryEntry{session: s, touched: r.now()}
	r.log.Info("session created", zap.String("session_id", id))
	return s
}

func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	e.touched = r.now()
	return e.session, true
}

func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep удаляет сессии, к которым не обращались дольше maxIdle.
// Сессии с незавершённым действием не трогаются.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-maxIdle)
	removed := 0
	for id, e := range r.sessions {
		if e.touched.After(cutoff) || e.session.Busy() {
			continue
		}
		delete(r.sessions, id)
		removed++
	}
	return removed
}

// Busy — true, пока выполняется действие.
func (s *Session) Busy() bool {
	return len(s.slot) > 0
}
