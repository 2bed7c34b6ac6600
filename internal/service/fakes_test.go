package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"ai-voice-assistant-be/internal/entity"
	"ai-voice-assistant-be/internal/repository/contract"
	"ai-voice-assistant-be/internal/repository/specification"
	"ai-voice-assistant-be/internal/repository/unitofwork"
	"ai-voice-assistant-be/pkg/events"
	"ai-voice-assistant-be/pkg/vapi"

	"github.com/google/uuid"
)

var errFakeDB = errors.New("fake db failure")

// memStore is a tiny in-memory database shared by every unit of work the
// fake factory hands out.
type memStore struct {
	mu            sync.Mutex
	users         map[uuid.UUID]entity.User
	assistants    map[uuid.UUID]entity.VoiceAssistant
	conversations map[uuid.UUID]entity.VoiceConversation

	failAssistantCreate    bool
	failAssistantCreates   int // fails this many inserts, then succeeds
	failConversationCreate bool
}

func newMemStore() *memStore {
	return &memStore{
		users:         make(map[uuid.UUID]entity.User),
		assistants:    make(map[uuid.UUID]entity.VoiceAssistant),
		conversations: make(map[uuid.UUID]entity.VoiceConversation),
	}
}

func (s *memStore) userByAuth(authID uuid.UUID) *entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.AuthUserId == authID {
			u := u
			return &u
		}
	}
	return nil
}

func (s *memStore) assistantList() []entity.VoiceAssistant {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.VoiceAssistant, 0, len(s.assistants))
	for _, a := range s.assistants {
		out = append(out, a)
	}
	return out
}

func (s *memStore) conversationList() []entity.VoiceConversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.VoiceConversation, 0, len(s.conversations))
	for _, c := range s.conversations {
		out = append(out, c)
	}
	return out
}

type fakeFactory struct {
	store *memStore
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUoW{store: f.store}
}

// fakeUoW records an undo step for every write made inside Begin/Commit so a
// Rollback only reverts its own writes, even with concurrent callers.
type fakeUoW struct {
	store *memStore
	inTx  bool
	undo  []func()
}

func (u *fakeUoW) Begin(ctx context.Context) error {
	if u.inTx {
		return errors.New("transaction already started")
	}
	u.inTx = true
	u.undo = nil
	return nil
}

func (u *fakeUoW) Commit() error {
	if !u.inTx {
		return errors.New("no transaction to commit")
	}
	u.inTx = false
	u.undo = nil
	return nil
}

func (u *fakeUoW) Rollback() error {
	if !u.inTx {
		return errors.New("no transaction to rollback")
	}
	u.store.mu.Lock()
	for i := len(u.undo) - 1; i >= 0; i-- {
		u.undo[i]()
	}
	u.store.mu.Unlock()
	u.inTx = false
	u.undo = nil
	return nil
}

func (u *fakeUoW) record(fn func()) {
	if u.inTx {
		u.undo = append(u.undo, fn)
	}
}

func (u *fakeUoW) UserRepository() contract.UserRepository {
	return &fakeUserRepo{uow: u}
}

func (u *fakeUoW) VoiceAssistantRepository() contract.VoiceAssistantRepository {
	return &fakeAssistantRepo{uow: u}
}

func (u *fakeUoW) VoiceConversationRepository() contract.VoiceConversationRepository {
	return &fakeConversationRepo{uow: u}
}

// --- users ---

type fakeUserRepo struct {
	uow *fakeUoW
}

func matchUser(u entity.User, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if u.Id != s.ID {
				return false
			}
		case specification.ByAuthUserID:
			if u.AuthUserId != s.AuthUserID {
				return false
			}
		}
	}
	return true
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	st := r.uow.store
	st.mu.Lock()
	defer st.mu.Unlock()
	for _, u := range st.users {
		if u.AuthUserId == user.AuthUserId {
			return errors.New("duplicate key value violates unique constraint")
		}
	}
	st.users[user.Id] = *user
	id := user.Id
	r.uow.record(func() { delete(st.users, id) })
	return nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	st := r.uow.store
	st.mu.Lock()
	defer st.mu.Unlock()
	st.users[user.Id] = *user
	return nil
}

func (r *fakeUserRepo) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	st := r.uow.store
	st.mu.Lock()
	defer st.mu.Unlock()
	u, ok := st.users[id]
	if !ok {
		return nil
	}
	for k, v := range fields {
		switch k {
		case "name":
			u.Name = v.(string)
		case "phone":
			if v == nil {
				u.Phone = nil
			} else {
				p := v.(string)
				u.Phone = &p
			}
		case "preferred_mode":
			m := v.(string)
			u.PreferredMode = &m
		case "onboarding_completed":
			u.OnboardingCompleted = v.(bool)
		}
	}
	st.users[id] = u
	return nil
}

func (r *fakeUserRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	st := r.uow.store
	st.mu.Lock()
	defer st.mu.Unlock()
	for _, u := range st.users {
		if matchUser(u, specs) {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) IncrementCallCount(ctx context.Context, id uuid.UUID, limit int) (bool, error) {
	st := r.uow.store
	st.mu.Lock()
	defer st.mu.Unlock()
	u, ok := st.users[id]
	if !ok || (limit > 0 && u.CallCount >= limit) {
		return false, nil
	}
	u.CallCount++
	st.users[id] = u
	r.uow.record(func() {
		cur := st.users[id]
		cur.CallCount--
		st.users[id] = cur
	})
	return true, nil
}

// --- assistants ---

type fakeAssistantRepo struct {
	uow *fakeUoW
}

func matchAssistant(a entity.VoiceAssistant, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if a.Id != s.ID {
				return false
			}
		case specification.UserOwnedBy:
			if a.UserId != s.UserID {
				return false
			}
		case specification.ByMode:
			if a.Mode != s.Mode {
				return false
			}
		case specification.ByVapiAssistantID:
			if a.VapiAssistantId != s.VapiAssistantID {
				return false
			}
		}
	}
	return true
}

func (r *fakeAssistantRepo) Create(ctx context.Context, assistant *entity.VoiceAssistant) error {
	st := r.uow.store
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.failAssistantCreate {
		return errFakeDB
	}
	if st.failAssistantCreates > 0 {
		st.failAssistantCreates--
		return errFakeDB
	}
	st.assistants[assistant.Id] = *assistant
	id := assistant.Id
	r.uow.record(func() { delete(st.assistants, id) })
	return nil
}

func (r *fakeAssistantRepo) Delete(ctx context.Context, id uuid.UUID) error {
	st := r.uow.store
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.assistants, id)
	return nil
}

func (r *fakeAssistantRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.VoiceAssistant, error) {
	all, _ := r.FindAll(ctx, specs...)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r *fakeAssistantRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.VoiceAssistant, error) {
	st := r.uow.store
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make([]*entity.VoiceAssistant, 0)
	for _, a := range st.assistants {
		if matchAssistant(a, specs) {
			a := a
			out = append(out, &a)
		}
	}
	desc := isDesc(specs)
	sort.Slice(out, func(i, j int) bool {
		if desc {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *fakeAssistantRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

// --- conversations ---

type fakeConversationRepo struct {
	uow *fakeUoW
}

func matchConversation(c entity.VoiceConversation, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if c.Id != s.ID {
				return false
			}
		case specification.OwnedByAuthUser:
			if c.UserAuthId != s.AuthUserID {
				return false
			}
		case specification.ByMode:
			if c.Mode != s.Mode {
				return false
			}
		case specification.OpenConversation:
			if c.EndedAt != nil {
				return false
			}
		}
	}
	return true
}

func (r *fakeConversationRepo) Create(ctx context.Context, conversation *entity.VoiceConversation) error {
	st := r.uow.store
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.failConversationCreate {
		return errFakeDB
	}
	st.conversations[conversation.Id] = *conversation
	id := conversation.Id
	r.uow.record(func() { delete(st.conversations, id) })
	return nil
}

func (r *fakeConversationRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.VoiceConversation, error) {
	all, _ := r.FindAll(ctx, specs...)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r *fakeConversationRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.VoiceConversation, error) {
	st := r.uow.store
	st.mu.Lock()
	out := make([]*entity.VoiceConversation, 0)
	for _, c := range st.conversations {
		if matchConversation(c, specs) {
			c := c
			out = append(out, &c)
		}
	}
	st.mu.Unlock()

	desc := isDesc(specs)
	sort.Slice(out, func(i, j int) bool {
		if desc {
			return out[i].StartedAt.After(out[j].StartedAt)
		}
		return out[i].StartedAt.Before(out[j].StartedAt)
	})

	for _, spec := range specs {
		if p, ok := spec.(specification.Pagination); ok {
			if p.Offset >= len(out) {
				return []*entity.VoiceConversation{}, nil
			}
			end := p.Offset + p.Limit
			if end > len(out) {
				end = len(out)
			}
			out = out[p.Offset:end]
		}
	}
	return out, nil
}

func (r *fakeConversationRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func (r *fakeConversationRepo) Finish(ctx context.Context, conversation *entity.VoiceConversation) (bool, error) {
	st := r.uow.store
	st.mu.Lock()
	defer st.mu.Unlock()
	stored, ok := st.conversations[conversation.Id]
	if !ok || stored.UserAuthId != conversation.UserAuthId || stored.EndedAt != nil {
		return false, nil
	}
	stored.EndedAt = conversation.EndedAt
	stored.DurationSeconds = conversation.DurationSeconds
	stored.Transcript = conversation.Transcript
	stored.RecordingURL = conversation.RecordingURL
	stored.VapiCallId = conversation.VapiCallId
	st.conversations[conversation.Id] = stored
	return true, nil
}

func (r *fakeConversationRepo) CountByMode(ctx context.Context, authUserId uuid.UUID) (map[string]int64, error) {
	st := r.uow.store
	st.mu.Lock()
	defer st.mu.Unlock()
	counts := make(map[string]int64)
	for _, c := range st.conversations {
		if c.UserAuthId == authUserId {
			counts[c.Mode]++
		}
	}
	return counts, nil
}

func isDesc(specs []specification.Specification) bool {
	for _, spec := range specs {
		if o, ok := spec.(specification.OrderBy); ok {
			return o.Desc
		}
	}
	return false
}

// --- vapi ---

type fakeVapi struct {
	mu        sync.Mutex
	remote    map[string]bool
	existsErr error
	createErr []error // consumed one per CreateAssistant call
	requests  []vapi.AssistantRequest
	deleted   []string
	calls     map[string]*vapi.Call
	callErr   error
	nextID    int
}

func newFakeVapi() *fakeVapi {
	return &fakeVapi{remote: make(map[string]bool), calls: make(map[string]*vapi.Call)}
}

func (f *fakeVapi) CreateAssistant(ctx context.Context, req vapi.AssistantRequest) (*vapi.Assistant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if len(f.createErr) > 0 {
		err := f.createErr[0]
		f.createErr = f.createErr[1:]
		if err != nil {
			return nil, err
		}
	}
	f.nextID++
	id := "asst-" + string(rune('a'+f.nextID-1))
	f.remote[id] = true
	return &vapi.Assistant{ID: id, Name: req.Name}, nil
}

func (f *fakeVapi) GetAssistant(ctx context.Context, id string) (*vapi.Assistant, error) {
	exists, err := f.AssistantExists(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, &vapi.APIError{StatusCode: 404}
	}
	return &vapi.Assistant{ID: id}, nil
}

func (f *fakeVapi) AssistantExists(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.existsErr != nil {
		return false, f.existsErr
	}
	return f.remote[id], nil
}

func (f *fakeVapi) DeleteAssistant(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.remote, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeVapi) GetCall(ctx context.Context, id string) (*vapi.Call, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.callErr != nil {
		return nil, f.callErr
	}
	call, ok := f.calls[id]
	if !ok {
		return nil, &vapi.APIError{StatusCode: 404}
	}
	return call, nil
}

func (f *fakeVapi) createCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeVapi) deletedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

// --- publishers ---

type recordingEvents struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingEvents) Publish(ctx context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingEvents) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.EventType())
	}
	return out
}

type recordingOrphans struct {
	mu       sync.Mutex
	payloads []interface{}
}

func (r *recordingOrphans) Publish(ctx context.Context, payload interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payloads = append(r.payloads, payload)
	return nil
}

var testAuthUser = entity.AuthUser{
	Id:    uuid.MustParse("6f1b7a8e-51d4-4a0e-9a55-2c7d0e8e3a11"),
	Email: "ana@example.com",
}
