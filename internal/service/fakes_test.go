package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/contractchecker-server/internal/model"
)

type memWaitlist struct {
	mu      sync.Mutex
	byEmail map[string]model.WaitlistEntry
	creates int
}

func newMemWaitlist() *memWaitlist {
	return &memWaitlist{byEmail: map[string]model.WaitlistEntry{}}
}

func (s *memWaitlist) GetByEmail(_ context.Context, email string) (model.WaitlistEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.byEmail[email]
	if !ok {
		return model.WaitlistEntry{}, model.ErrNotFound
	}
	return e, nil
}

func (s *memWaitlist) GetByID(_ context.Context, id uuid.UUID) (model.WaitlistEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.byEmail {
		if e.ID == id {
			return e, nil
		}
	}
	return model.WaitlistEntry{}, model.ErrNotFound
}

func (s *memWaitlist) Create(_ context.Context, entry model.WaitlistEntry) (model.WaitlistEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creates++
	if _, ok := s.byEmail[entry.Email]; ok {
		return model.WaitlistEntry{}, model.ErrAlreadyExists
	}
	s.byEmail[entry.Email] = entry
	return entry, nil
}

type deviceKey struct{ userID, deviceID string }

type memDevices struct {
	mu      sync.Mutex
	devices map[deviceKey]model.TrustedDevice
	// failNextCreate is returned once by the next Create call.
	failNextCreate error
}

func newMemDevices() *memDevices {
	return &memDevices{devices: map[deviceKey]model.TrustedDevice{}}
}

func (s *memDevices) Create(_ context.Context, d model.TrustedDevice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failNextCreate; err != nil {
		s.failNextCreate = nil
		return err
	}
	k := deviceKey{d.UserID, d.DeviceID}
	if _, ok := s.devices[k]; ok {
		return model.ErrAlreadyExists
	}
	s.devices[k] = d
	return nil
}

func (s *memDevices) Touch(_ context.Context, userID, deviceID string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := deviceKey{userID, deviceID}
	d, ok := s.devices[k]
	if !ok {
		return false, nil
	}
	d.LastUsed = at
	s.devices[k] = d
	return true, nil
}

func (s *memDevices) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.devices)
}

type memChallenges struct {
	mu         sync.Mutex
	challenges map[string]model.OTPChallenge
	// devices receives the device of a successful Redeem.
	devices *memDevices
}

func newMemChallenges() *memChallenges {
	return &memChallenges{challenges: map[string]model.OTPChallenge{}}
}

func (s *memChallenges) Upsert(_ context.Context, c model.OTPChallenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenges[c.UserID] = c
	return nil
}

func (s *memChallenges) Get(_ context.Context, userID string) (model.OTPChallenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.challenges[userID]
	if !ok {
		return model.OTPChallenge{}, model.ErrNotFound
	}
	return c, nil
}

func (s *memChallenges) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.challenges, userID)
	return nil
}

func (s *memChallenges) Redeem(ctx context.Context, userID, code string, device model.TrustedDevice) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.challenges[userID]
	if !ok || c.Code != code {
		return false, nil
	}
	if err := s.devices.Create(ctx, device); err != nil {
		return false, err
	}
	delete(s.challenges, userID)
	return true, nil
}

func (s *memChallenges) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for uid, c := range s.challenges {
		if c.ExpiresAt.Before(before) {
			delete(s.challenges, uid)
			n++
		}
	}
	return n, nil
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []model.Email
}

func (m *recordingMailer) Send(_ context.Context, msg model.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
