package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hairult/hairstyle-service/internal/domain"
	"github.com/hairult/hairstyle-service/internal/generation"
	"github.com/hairult/hairstyle-service/internal/persistence"
	"github.com/hairult/hairstyle-service/internal/repository"
)

// memoryDB backs the guest, hairstyle and suggestion repositories in tests.
type memoryDB struct {
	mu          sync.Mutex
	clock       time.Time
	guests      map[string]*domain.Guest
	hairstyles  map[string]*domain.Hairstyle
	suggestions map[string]*domain.HairstyleSuggestion
	// stealClaims makes Claim report a lost race for these ids.
	stealClaims map[string]bool
}

func newMemoryDB() *memoryDB {
	return &memoryDB{
		clock:       time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		guests:      map[string]*domain.Guest{},
		hairstyles:  map[string]*domain.Hairstyle{},
		suggestions: map[string]*domain.HairstyleSuggestion{},
		stealClaims: map[string]bool{},
	}
}

func (db *memoryDB) tick() time.Time {
	db.clock = db.clock.Add(time.Second)
	return db.clock
}

func (db *memoryDB) addHairstyle(name string) *domain.Hairstyle {
	db.mu.Lock()
	defer db.mu.Unlock()
	now := db.tick()
	h := &domain.Hairstyle{ID: uuid.NewString(), Name: name, HairLength: domain.HairLengthShoulder, CreatedAt: now, UpdatedAt: now}
	db.hairstyles[h.ID] = h
	return h
}

func (db *memoryDB) addGuest(email string, portrait *string) *domain.Guest {
	db.mu.Lock()
	defer db.mu.Unlock()
	now := db.tick()
	g := &domain.Guest{ID: uuid.NewString(), Email: email, PortraitImagePath: portrait, CreatedAt: now, UpdatedAt: now}
	db.guests[g.ID] = g
	return g
}

func (db *memoryDB) addSuggestion(guestID, hairstyleID string, status domain.SuggestionStatus) *domain.HairstyleSuggestion {
	db.mu.Lock()
	defer db.mu.Unlock()
	now := db.tick()
	s := &domain.HairstyleSuggestion{ID: uuid.NewString(), GuestID: guestID, HairstyleID: hairstyleID, Status: status, CreatedAt: now, UpdatedAt: now}
	db.suggestions[s.ID] = s
	return s
}

func (db *memoryDB) get(id string) domain.HairstyleSuggestion {
	db.mu.Lock()
	defer db.mu.Unlock()
	return *db.suggestions[id]
}

func (db *memoryDB) countByStatus(status domain.SuggestionStatus) int {
	db.mu.Lock()
	defer db.mu.Unlock()
	n := 0
	for _, s := range db.suggestions {
		if s.Status == status {
			n++
		}
	}
	return n
}

// transition applies a conditional status change, mirroring the SQL guards.
func (db *memoryDB) transition(id string, from, to domain.SuggestionStatus, apply func(*domain.HairstyleSuggestion)) bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	s, ok := db.suggestions[id]
	if !ok || s.Status != from || !from.CanTransition(to) {
		return false
	}
	s.Status = to
	s.UpdatedAt = db.tick()
	if apply != nil {
		apply(s)
	}
	return true
}

type memorySuggestionRepo struct{ db *memoryDB }

func (r memorySuggestionRepo) CreateSubmission(_ context.Context, guest *domain.Guest, hairstyleIDs []string) ([]domain.HairstyleSuggestion, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, g := range r.db.guests {
		if g.Email == guest.Email {
			return nil, repository.ErrDuplicateEmail
		}
	}
	now := r.db.tick()
	guest.CreatedAt, guest.UpdatedAt = now, now
	stored := *guest
	r.db.guests[guest.ID] = &stored

	out := make([]domain.HairstyleSuggestion, 0, len(hairstyleIDs))
	for _, hid := range hairstyleIDs {
		now := r.db.tick()
		s := &domain.HairstyleSuggestion{ID: uuid.NewString(), GuestID: guest.ID, HairstyleID: hid, Status: domain.SuggestionStatusPending, CreatedAt: now, UpdatedAt: now}
		r.db.suggestions[s.ID] = s
		out = append(out, *s)
	}
	return out, nil
}

func (r memorySuggestionRepo) ListPending(_ context.Context, limit int) ([]domain.PendingSuggestion, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var pending []*domain.HairstyleSuggestion
	for _, s := range r.db.suggestions {
		if s.Status == domain.SuggestionStatusPending {
			pending = append(pending, s)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		if pending[i].CreatedAt.Equal(pending[j].CreatedAt) {
			return pending[i].ID < pending[j].ID
		}
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})
	if len(pending) > limit {
		pending = pending[:limit]
	}
	out := make([]domain.PendingSuggestion, 0, len(pending))
	for _, s := range pending {
		out = append(out, domain.PendingSuggestion{
			Suggestion: *s,
			Guest:      *r.db.guests[s.GuestID],
			Hairstyle:  *r.db.hairstyles[s.HairstyleID],
		})
	}
	return out, nil
}

func (r memorySuggestionRepo) Claim(_ context.Context, id string) (bool, error) {
	r.db.mu.Lock()
	stolen := r.db.stealClaims[id]
	r.db.mu.Unlock()
	if stolen {
		return false, nil
	}
	return r.db.transition(id, domain.SuggestionStatusPending, domain.SuggestionStatusGenerating, nil), nil
}

func (r memorySuggestionRepo) Complete(_ context.Context, id, imagePath string) (bool, error) {
	return r.db.transition(id, domain.SuggestionStatusGenerating, domain.SuggestionStatusCompleted, func(s *domain.HairstyleSuggestion) {
		s.ImagePath = &imagePath
	}), nil
}

func (r memorySuggestionRepo) Fail(_ context.Context, id, reason string) (bool, error) {
	return r.db.transition(id, domain.SuggestionStatusGenerating, domain.SuggestionStatusFailed, func(s *domain.HairstyleSuggestion) {
		s.ErrorMessage = &reason
	}), nil
}

func (r memorySuggestionRepo) FailStale(_ context.Context, olderThan time.Time, reason string) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for _, s := range r.db.suggestions {
		if s.Status == domain.SuggestionStatusGenerating && s.UpdatedAt.Before(olderThan) {
			s.Status = domain.SuggestionStatusFailed
			msg := reason
			s.ErrorMessage = &msg
			n++
		}
	}
	return n, nil
}

func (r memorySuggestionRepo) ListByGuest(_ context.Context, guestID string) ([]domain.SuggestionView, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []domain.SuggestionView
	for _, s := range r.db.suggestions {
		if s.GuestID == guestID {
			out = append(out, domain.SuggestionView{HairstyleSuggestion: *s, HairstyleName: r.db.hairstyles[s.HairstyleID].Name})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r memorySuggestionRepo) ListByStatus(_ context.Context, status domain.SuggestionStatus, limit int) ([]domain.HairstyleSuggestion, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []domain.HairstyleSuggestion
	for _, s := range r.db.suggestions {
		if s.Status == status && len(out) < limit {
			out = append(out, *s)
		}
	}
	return out, nil
}

type memoryGuestRepo struct{ db *memoryDB }

func (r memoryGuestRepo) GetByID(_ context.Context, id string) (*domain.Guest, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	g, ok := r.db.guests[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *g
	return &cp, nil
}

func (r memoryGuestRepo) GetByEmail(_ context.Context, email string) (*domain.Guest, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, g := range r.db.guests {
		if g.Email == email {
			cp := *g
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r memoryGuestRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

type memoryHairstyleRepo struct{ db *memoryDB }

func (r memoryHairstyleRepo) Create(_ context.Context, h *domain.Hairstyle) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.hairstyles {
		if existing.Name == h.Name {
			return repository.ErrDuplicateName
		}
	}
	h.ID = uuid.NewString()
	h.CreatedAt = r.db.tick()
	h.UpdatedAt = h.CreatedAt
	stored := *h
	r.db.hairstyles[h.ID] = &stored
	return nil
}

func (r memoryHairstyleRepo) GetByID(_ context.Context, id string) (*domain.Hairstyle, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	h, ok := r.db.hairstyles[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *h
	return &cp, nil
}

func (r memoryHairstyleRepo) GetByName(_ context.Context, name string) (*domain.Hairstyle, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, h := range r.db.hairstyles {
		if h.Name == name {
			cp := *h
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r memoryHairstyleRepo) List(_ context.Context) ([]domain.Hairstyle, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]domain.Hairstyle, 0, len(r.db.hairstyles))
	for _, h := range r.db.hairstyles {
		out = append(out, *h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r memoryHairstyleRepo) ListByIDs(_ context.Context, ids []string) ([]domain.Hairstyle, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []domain.Hairstyle
	for _, id := range ids {
		if h, ok := r.db.hairstyles[id]; ok {
			out = append(out, *h)
		}
	}
	return out, nil
}

// memoryStore is an in-memory ObjectStore.
type memoryStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	downloads int
	// failUpload rejects uploads whose path matches.
	failUpload func(path string) bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: map[string][]byte{}}
}

func (m *memoryStore) Upload(_ context.Context, path string, data []byte, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failUpload != nil && m.failUpload(path) {
		return "", fmt.Errorf("upload %s rejected", path)
	}
	full := "images/" + path
	m.objects[full] = data
	return full, nil
}

func (m *memoryStore) Download(_ context.Context, fullPath string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.downloads++
	data, ok := m.objects[fullPath]
	if !ok {
		return nil, errors.New("object not found")
	}
	return data, nil
}

func (m *memoryStore) PublicURL(fullPath string) string {
	return "https://cdn.test/storage/v1/object/public/" + fullPath
}

func (m *memoryStore) put(path string, data []byte) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	full := "images/" + path
	m.objects[full] = data
	return full
}

func (m *memoryStore) count(prefix string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k := range m.objects {
		if strings.HasPrefix(k, prefix) {
			n++
		}
	}
	return n
}

// scriptedGenerator returns per-hairstyle results.
type scriptedGenerator struct {
	mu      sync.Mutex
	calls   map[string]int
	results map[string][]generation.Image
	errs    map[string]error
	def     []generation.Image
}

func newScriptedGenerator(def ...generation.Image) *scriptedGenerator {
	return &scriptedGenerator{
		calls:   map[string]int{},
		results: map[string][]generation.Image{},
		errs:    map[string]error{},
		def:     def,
	}
}

func (g *scriptedGenerator) Generate(_ context.Context, _ generation.Image, h domain.Hairstyle) ([]generation.Image, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls[h.ID]++
	if err, ok := g.errs[h.Name]; ok {
		return nil, err
	}
	if imgs, ok := g.results[h.Name]; ok {
		return imgs, nil
	}
	return g.def, nil
}

func (g *scriptedGenerator) total() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, c := range g.calls {
		n += c
	}
	return n
}

type stubLocker struct {
	held     bool
	released int
}

func (l *stubLocker) Acquire(context.Context, string, time.Duration) (func(context.Context) error, error) {
	if l.held {
		return nil, persistence.ErrLockHeld
	}
	return func(context.Context) error {
		l.released++
		return nil
	}, nil
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 7), G: uint8(y * 5), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// noisyPNG compresses poorly, so its encoded size tracks its pixel count.
func noisyPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	rng := rand.New(rand.NewSource(int64(w*h + 1)))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(rng.Intn(256)), G: uint8(rng.Intn(256)), B: uint8(rng.Intn(256)), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

type memoryHistoryRepo struct {
	mu      sync.Mutex
	entries []domain.SuggestionHistory
	err     error
}

func (r *memoryHistoryRepo) Create(_ context.Context, entry *domain.SuggestionHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	entry.ID = uuid.NewString()
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *memoryHistoryRepo) ListBySuggestion(_ context.Context, suggestionID string) ([]domain.SuggestionHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.SuggestionHistory
	for _, e := range r.entries {
		if e.SuggestionID == suggestionID {
			out = append(out, e)
		}
	}
	return out, nil
}
