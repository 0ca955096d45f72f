package api

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"merchant-kyc-portal/completion"
	"merchant-kyc-portal/session"
	"merchant-kyc-portal/shared"
	"merchant-kyc-portal/store"
	"merchant-kyc-portal/upload"
)

type memUsers struct {
	mu      sync.Mutex
	byEmail map[string]store.User
}

func newMemUsers() *memUsers {
	return &memUsers{byEmail: map[string]store.User{}}
}

func (m *memUsers) Create(_ context.Context, u store.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[u.Email]; ok {
		return store.ErrEmailTaken
	}
	m.byEmail[u.Email] = u
	return nil
}

func (m *memUsers) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for email, u := range m.byEmail {
		if u.ID == id {
			delete(m.byEmail, email)
			return nil
		}
	}
	return store.ErrUserNotFound
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (store.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byEmail[store.NormalizeEmail(email)]
	if !ok {
		return store.User{}, store.ErrUserNotFound
	}
	return u, nil
}

// memMerchants follows the same rules as the Mongo store's update filters.
type memMerchants struct {
	mu        sync.Mutex
	profiles  map[string]store.MerchantProfile
	forms     map[string]map[completion.Step]shared.StepForm
	createErr error
}

func newMemMerchants() *memMerchants {
	return &memMerchants{
		profiles: map[string]store.MerchantProfile{},
		forms:    map[string]map[completion.Step]shared.StepForm{},
	}
}

func (m *memMerchants) Create(_ context.Context, p store.MerchantProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.profiles[p.MerchantID]; ok {
		return store.ErrMerchantExists
	}
	m.profiles[p.MerchantID] = p
	m.forms[p.MerchantID] = map[completion.Step]shared.StepForm{}
	return nil
}

func (m *memMerchants) Get(_ context.Context, merchantID string) (store.MerchantProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[merchantID]
	if !ok {
		return store.MerchantProfile{}, store.ErrMerchantNotFound
	}
	return p, nil
}

func (m *memMerchants) List(_ context.Context, status shared.OnboardingStatus) ([]store.MerchantProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []store.MerchantProfile{}
	for _, p := range m.profiles {
		if status == "" || p.OnboardingStatus == status {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MerchantID < out[j].MerchantID })
	return out, nil
}

func (m *memMerchants) SaveStep(_ context.Context, merchantID string, step completion.Step, form shared.StepForm, mode store.SaveMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[merchantID]
	if !ok {
		return store.ErrMerchantNotFound
	}
	if p.OnboardingStatus != shared.StatusPending {
		return store.ErrAlreadyDecided
	}
	if p.PaymentsDisabled {
		return store.ErrPaymentsDisabled
	}
	_, exists := m.forms[merchantID][step]
	if mode == store.SaveCreate && exists {
		return store.ErrStepExists
	}
	if mode == store.SaveReplace && !exists {
		return store.ErrStepNotFound
	}
	m.forms[merchantID][step] = form
	summary := map[string]bool{}
	for k, v := range p.CompletionSummary {
		summary[k] = v
	}
	summary[string(step)] = true
	p.CompletionSummary = summary
	m.profiles[merchantID] = p
	return nil
}

func (m *memMerchants) Decide(_ context.Context, merchantID string, d shared.ReviewDecision) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[merchantID]
	if !ok {
		return store.ErrMerchantNotFound
	}
	if p.OnboardingStatus != shared.StatusPending {
		return store.ErrAlreadyDecided
	}
	if d.Decision == shared.DecisionApprove && p.PaymentsDisabled {
		return store.ErrPaymentsDisabled
	}
	if d.Decision == shared.DecisionApprove && !completion.Approvable(p.Flags()) {
		return store.ErrNotApprovable
	}
	p.OnboardingStatus = d.Decision.Status()
	p.Review = &d
	m.profiles[merchantID] = p
	return nil
}

// completeAll marks every step done without going through the handlers.
func (m *memMerchants) completeAll(merchantID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.profiles[merchantID]
	all := completion.Flags{}
	for _, s := range completion.Steps {
		all[s] = true
	}
	p.CompletionSummary = all.ToStrings()
	m.profiles[merchantID] = p
}

// suspend marks payments disabled, as the workflow does at the deadline.
func (m *memMerchants) suspend(merchantID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.profiles[merchantID]
	p.PaymentsDisabled = true
	m.profiles[merchantID] = p
}

type memSessions struct {
	mu       sync.Mutex
	sessions map[string]session.Session
}

func newMemSessions() *memSessions {
	return &memSessions{sessions: map[string]session.Session{}}
}

func (m *memSessions) Save(_ context.Context, s session.Session, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *memSessions) Load(_ context.Context, id string) (session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return session.Session{}, session.ErrNotFound
	}
	return s, nil
}

func (m *memSessions) Clear(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

type mockEngine struct {
	mock.Mock
}

func (m *mockEngine) Start(ctx context.Context, req shared.OnboardingRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *mockEngine) StepCompleted(ctx context.Context, merchantID string, s shared.StepCompletion) error {
	return m.Called(ctx, merchantID, s).Error(0)
}

func (m *mockEngine) Decide(ctx context.Context, merchantID string, d shared.ReviewDecision) error {
	return m.Called(ctx, merchantID, d).Error(0)
}

func (m *mockEngine) Status(ctx context.Context, merchantID string) (shared.OnboardingStatusResponse, error) {
	args := m.Called(ctx, merchantID)
	return args.Get(0).(shared.OnboardingStatusResponse), args.Error(1)
}

type fakeUploader struct {
	url  string
	err  error
	got  upload.File
	hits int
}

func (f *fakeUploader) Upload(_ context.Context, file upload.File) (string, error) {
	f.hits++
	f.got = file
	return f.url, f.err
}
