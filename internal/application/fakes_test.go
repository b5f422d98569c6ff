package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/synqit/synqit-backend/internal/domain/entity"
	repo "github.com/synqit/synqit-backend/internal/domain/repository"
)

var errBoom = errors.New("boom")

type idGen struct {
	mu sync.Mutex
	n  int
}

func (g *idGen) next(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", prefix, g.n)
}

var ids idGen

// ---- users ----

type fakeUsers struct {
	mu   sync.Mutex
	rows map[string]*entity.User
}

func newFakeUsers() *fakeUsers { return &fakeUsers{rows: map[string]*entity.User{}} }

func (f *fakeUsers) Create(_ context.Context, u *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, x := range f.rows {
		if strings.EqualFold(x.Email, u.Email) {
			return repo.ErrDuplicate
		}
	}
	u.ID = ids.next("user")
	u.CreatedAt, u.UpdatedAt = time.Now(), time.Now()
	cp := *u
	f.rows[u.ID] = &cp
	return nil
}

func (f *fakeUsers) get(pred func(*entity.User) bool) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.rows {
		if pred(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	return f.get(func(u *entity.User) bool { return u.ID == id })
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	return f.get(func(u *entity.User) bool { return strings.EqualFold(u.Email, email) })
}

func (f *fakeUsers) GetByWalletAddress(_ context.Context, w string) (*entity.User, error) {
	return f.get(func(u *entity.User) bool { return u.WalletAddress != nil && strings.EqualFold(*u.WalletAddress, w) })
}

func (f *fakeUsers) mutate(id string, fn func(*entity.User)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.rows[id]
	if !ok {
		return repo.ErrNotFound
	}
	fn(u)
	return nil
}

func (f *fakeUsers) Update(_ context.Context, u *entity.User) error {
	return f.mutate(u.ID, func(x *entity.User) {
		pw, attempts, locked := x.Password, x.FailedLoginAttempts, x.LockedUntil
		*x = *u
		x.Password, x.FailedLoginAttempts, x.LockedUntil = pw, attempts, locked
	})
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id, hash string) error {
	return f.mutate(id, func(x *entity.User) { x.Password, x.FailedLoginAttempts, x.LockedUntil = hash, 0, nil })
}

func (f *fakeUsers) RecordLoginFailure(_ context.Context, id string, now time.Time, maxAttempts int, lockFor time.Duration) (int, *time.Time, error) {
	var (
		attempts int
		locked   *time.Time
	)
	err := f.mutate(id, func(x *entity.User) {
		if x.LockedUntil != nil && !x.LockedUntil.After(now) {
			x.FailedLoginAttempts, x.LockedUntil = 0, nil
		}
		x.FailedLoginAttempts++
		if x.LockedUntil == nil && x.FailedLoginAttempts >= maxAttempts {
			lu := now.Add(lockFor)
			x.LockedUntil = &lu
		}
		attempts, locked = x.FailedLoginAttempts, x.LockedUntil
	})
	return attempts, locked, err
}

func (f *fakeUsers) RecordLoginSuccess(_ context.Context, id string, at time.Time) error {
	return f.mutate(id, func(x *entity.User) { x.FailedLoginAttempts, x.LockedUntil, x.LastLoginAt = 0, nil, &at })
}

func (f *fakeUsers) SetVerified(_ context.Context, id string) error {
	return f.mutate(id, func(x *entity.User) { x.IsVerified = true })
}

func (f *fakeUsers) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return repo.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

// ---- sessions ----

type fakeSessions struct {
	mu   sync.Mutex
	rows map[string]*entity.UserSession
}

func newFakeSessions() *fakeSessions { return &fakeSessions{rows: map[string]*entity.UserSession{}} }

func (f *fakeSessions) Create(_ context.Context, s *entity.UserSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s.IsActive = true
	s.CreatedAt, s.LastUsedAt = time.Now(), time.Now()
	cp := *s
	f.rows[s.ID] = &cp
	return nil
}

func (f *fakeSessions) GetByID(_ context.Context, id string) (*entity.UserSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.rows[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessions) Extend(_ context.Context, id, token string, exp time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.rows[id]
	if !ok || !s.IsActive {
		return repo.ErrNotFound
	}
	s.Token, s.ExpiresAt = token, exp
	return nil
}

func (f *fakeSessions) Deactivate(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.rows[id]; ok {
		s.IsActive = false
	}
	return nil
}

func (f *fakeSessions) DeactivateAllForUser(_ context.Context, userID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, s := range f.rows {
		if s.UserID == userID && s.IsActive {
			s.IsActive = false
			out = append(out, s.ID)
		}
	}
	return out, nil
}

func (f *fakeSessions) DeactivateExpired(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, s := range f.rows {
		if s.IsActive && !now.Before(s.ExpiresAt) {
			s.IsActive = false
			n++
		}
	}
	return n, nil
}

func (f *fakeSessions) activeFor(userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range f.rows {
		if s.UserID == userID && s.IsActive {
			n++
		}
	}
	return n
}

// ---- projects ----

type fakeProjects struct {
	mu    sync.Mutex
	rows  map[string]*entity.Project
	views map[string]int
}

func newFakeProjects() *fakeProjects {
	return &fakeProjects{rows: map[string]*entity.Project{}, views: map[string]int{}}
}

func cloneProject(p *entity.Project) *entity.Project {
	cp := *p
	cp.Blockchains = append([]entity.BlockchainPreference{}, p.Blockchains...)
	cp.Tags = append([]string{}, p.Tags...)
	cp.ViewCount = p.ViewCount
	return &cp
}

func (f *fakeProjects) Create(_ context.Context, p *entity.Project) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, x := range f.rows {
		if x.OwnerID == p.OwnerID {
			return repo.ErrDuplicate
		}
	}
	p.ID = ids.next("project")
	p.CreatedAt, p.UpdatedAt = time.Now(), time.Now()
	f.rows[p.ID] = cloneProject(p)
	return nil
}

func (f *fakeProjects) Update(_ context.Context, p *entity.Project) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	old, ok := f.rows[p.ID]
	if !ok {
		return repo.ErrNotFound
	}
	cp := cloneProject(p)
	cp.ViewCount, cp.LogoURL = old.ViewCount, old.LogoURL
	f.rows[p.ID] = cp
	return nil
}

func (f *fakeProjects) ReplaceBlockchainPreferences(_ context.Context, id string, prefs []entity.BlockchainPreference) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok {
		return repo.ErrNotFound
	}
	p.Blockchains = append([]entity.BlockchainPreference{}, prefs...)
	return nil
}

func (f *fakeProjects) UpdateLogo(_ context.Context, id, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok {
		return repo.ErrNotFound
	}
	p.LogoURL = url
	return nil
}

func (f *fakeProjects) GetByID(_ context.Context, id string) (*entity.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return cloneProject(p), nil
}

func (f *fakeProjects) GetByOwnerID(_ context.Context, ownerID string) (*entity.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.rows {
		if p.OwnerID == ownerID {
			return cloneProject(p), nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeProjects) GetByIDs(_ context.Context, idList []string) ([]entity.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.Project
	for _, id := range idList {
		if p, ok := f.rows[id]; ok {
			out = append(out, *cloneProject(p))
		}
	}
	return out, nil
}

func (f *fakeProjects) List(_ context.Context, flt entity.ProjectFilter) ([]entity.Project, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.Project
	for _, p := range f.rows {
		if flt.ExcludeOwnerID != "" && p.OwnerID == flt.ExcludeOwnerID {
			continue
		}
		if flt.IsLookingForPartners != nil && p.IsLookingForPartners != *flt.IsLookingForPartners {
			continue
		}
		if flt.ProjectType != "" && string(p.ProjectType) != flt.ProjectType {
			continue
		}
		if flt.Search != "" && !strings.Contains(strings.ToLower(p.Name+" "+p.Description), strings.ToLower(flt.Search)) {
			continue
		}
		out = append(out, *cloneProject(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	total := len(out)
	if flt.Offset < len(out) {
		out = out[flt.Offset:]
	} else {
		out = nil
	}
	if flt.Limit > 0 && len(out) > flt.Limit {
		out = out[:flt.Limit]
	}
	return out, total, nil
}

func (f *fakeProjects) IncrementViewCount(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.rows[id]; ok {
		p.ViewCount++
	}
	return nil
}

// ---- partnerships ----

type fakePartnerships struct {
	mu   sync.Mutex
	rows map[string]*entity.Partnership
}

func newFakePartnerships() *fakePartnerships {
	return &fakePartnerships{rows: map[string]*entity.Partnership{}}
}

func samePair(p *entity.Partnership, a, b string) bool {
	return (p.RequesterProjectID == a && p.ReceiverProjectID == b) || (p.RequesterProjectID == b && p.ReceiverProjectID == a)
}

// Create mirrors the partial unique index on active project pairs.
func (f *fakePartnerships) Create(_ context.Context, p *entity.Partnership) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, x := range f.rows {
		if x.Status.IsActive() && samePair(x, p.RequesterProjectID, p.ReceiverProjectID) {
			return repo.ErrDuplicate
		}
	}
	p.ID = ids.next("partnership")
	p.Status = entity.PartnershipPending
	p.CreatedAt, p.UpdatedAt = time.Now(), time.Now()
	cp := *p
	f.rows[p.ID] = &cp
	return nil
}

func (f *fakePartnerships) GetByID(_ context.Context, id string) (*entity.Partnership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePartnerships) FindActiveBetween(_ context.Context, a, b string) (*entity.Partnership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.rows {
		if p.Status.IsActive() && samePair(p, a, b) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakePartnerships) Transition(_ context.Context, id string, status entity.PartnershipStatus, at time.Time, msg string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok || p.Status != entity.PartnershipPending {
		return false, nil
	}
	p.Status, p.RespondedAt, p.ResponseMessage, p.UpdatedAt = status, &at, msg, at
	return true, nil
}

func (f *fakePartnerships) list(pred func(*entity.Partnership) bool, status entity.PartnershipStatus) []entity.Partnership {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []entity.Partnership{}
	for _, p := range f.rows {
		if pred(p) && (status == "" || p.Status == status) {
			out = append(out, *p)
		}
	}
	return out
}

func (f *fakePartnerships) ListSent(_ context.Context, userID string, status entity.PartnershipStatus) ([]entity.Partnership, error) {
	return f.list(func(p *entity.Partnership) bool { return p.RequesterID == userID }, status), nil
}

func (f *fakePartnerships) ListReceived(_ context.Context, userID string, status entity.PartnershipStatus) ([]entity.Partnership, error) {
	return f.list(func(p *entity.Partnership) bool { return p.ReceiverID == userID }, status), nil
}

func (f *fakePartnerships) ActiveCounterpartProjects(_ context.Context, projectID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, p := range f.rows {
		if !p.Status.IsActive() {
			continue
		}
		switch projectID {
		case p.RequesterProjectID:
			out = append(out, p.ReceiverProjectID)
		case p.ReceiverProjectID:
			out = append(out, p.RequesterProjectID)
		}
	}
	return out, nil
}

func (f *fakePartnerships) CountAccepted(_ context.Context, projectIDs []string) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	want := map[string]bool{}
	for _, id := range projectIDs {
		want[id] = true
	}
	out := map[string]int{}
	for _, p := range f.rows {
		if p.Status != entity.PartnershipAccepted {
			continue
		}
		for _, id := range []string{p.RequesterProjectID, p.ReceiverProjectID} {
			if want[id] {
				out[id]++
			}
		}
	}
	return out, nil
}

func (f *fakePartnerships) Stats(_ context.Context, userID string) (entity.PartnershipStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var s entity.PartnershipStats
	for _, p := range f.rows {
		if !p.IsParticipant(userID) {
			continue
		}
		if p.RequesterID == userID {
			s.TotalSent++
		}
		if p.ReceiverID == userID {
			s.TotalReceived++
		}
		switch p.Status {
		case entity.PartnershipPending:
			s.Pending++
		case entity.PartnershipAccepted:
			s.Accepted++
		case entity.PartnershipRejected:
			s.Rejected++
		case entity.PartnershipCancelled:
			s.Cancelled++
		}
	}
	return s, nil
}

func (f *fakePartnerships) activeBetween(a, b string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.rows {
		if p.Status.IsActive() && samePair(p, a, b) {
			n++
		}
	}
	return n
}

// ---- messages ----

type fakeMessages struct {
	mu   sync.Mutex
	rows []*entity.Message
}

func (f *fakeMessages) Create(_ context.Context, m *entity.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m.ID = ids.next("message")
	m.CreatedAt = time.Now().Add(time.Duration(len(f.rows)) * time.Millisecond)
	m.UpdatedAt = m.CreatedAt
	cp := *m
	f.rows = append(f.rows, &cp)
	return nil
}

func (f *fakeMessages) GetByID(_ context.Context, id string) (*entity.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.rows {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeMessages) ListByPartnership(_ context.Context, pid string, limit, offset int) ([]entity.Message, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []entity.Message
	for i := len(f.rows) - 1; i >= 0; i-- {
		if f.rows[i].PartnershipID == pid {
			all = append(all, *f.rows[i])
		}
	}
	total := len(all)
	if offset >= len(all) {
		return []entity.Message{}, total, nil
	}
	all = all[offset:]
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, total, nil
}

func (f *fakeMessages) MarkReadForReceiver(_ context.Context, pid, receiverID string, at time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, m := range f.rows {
		if m.PartnershipID == pid && m.ReceiverID == receiverID && !m.IsRead {
			m.IsRead, m.ReadAt = true, &at
			n++
		}
	}
	return n, nil
}

func (f *fakeMessages) Search(_ context.Context, userID, q string, limit int) ([]entity.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []entity.Message{}
	for _, m := range f.rows {
		if (m.SenderID == userID || m.ReceiverID == userID) && m.MessageType != entity.MessageTypeSystem &&
			strings.Contains(strings.ToLower(m.Content), strings.ToLower(q)) {
			out = append(out, *m)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeMessages) Conversations(context.Context, string) ([]entity.Conversation, error) {
	return []entity.Conversation{}, nil
}

func (f *fakeMessages) Stats(_ context.Context, userID string) (entity.MessageStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var s entity.MessageStats
	for _, m := range f.rows {
		if m.MessageType == entity.MessageTypeSystem {
			continue
		}
		if m.SenderID == userID {
			s.Sent++
		}
		if m.ReceiverID == userID {
			s.Received++
			if !m.IsRead {
				s.Unread++
			}
		}
	}
	return s, nil
}

func (f *fakeMessages) SoftDelete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.rows {
		if m.ID == id {
			m.Content, m.MessageType = entity.DeletedMessagePlaceholder, entity.MessageTypeSystem
			return nil
		}
	}
	return repo.ErrNotFound
}

// ---- notifications ----

type fakeNotifications struct {
	mu   sync.Mutex
	rows []*entity.Notification
	err  error
}

func (f *fakeNotifications) Create(_ context.Context, n *entity.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	n.ID = ids.next("notification")
	n.CreatedAt = time.Now()
	cp := *n
	f.rows = append(f.rows, &cp)
	return nil
}

func (f *fakeNotifications) ListByUser(_ context.Context, userID string, unreadOnly bool, limit, offset int) ([]entity.Notification, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []entity.Notification{}
	for _, n := range f.rows {
		if n.UserID == userID && (!unreadOnly || !n.IsRead) {
			out = append(out, *n)
		}
	}
	return out, len(out), nil
}

func (f *fakeNotifications) MarkRead(_ context.Context, userID, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.rows {
		if n.ID == id && n.UserID == userID {
			n.IsRead, n.ReadAt = true, &at
			return nil
		}
	}
	return repo.ErrNotFound
}

func (f *fakeNotifications) MarkAllRead(_ context.Context, userID string, at time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var c int64
	for _, n := range f.rows {
		if n.UserID == userID && !n.IsRead {
			n.IsRead, n.ReadAt = true, &at
			c++
		}
	}
	return c, nil
}

func (f *fakeNotifications) CountUnread(_ context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := 0
	for _, n := range f.rows {
		if n.UserID == userID && !n.IsRead {
			c++
		}
	}
	return c, nil
}

func (f *fakeNotifications) forUser(userID string, typ entity.NotificationType) []entity.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.Notification
	for _, n := range f.rows {
		if n.UserID == userID && n.Type == typ {
			out = append(out, *n)
		}
	}
	return out
}

// ---- cache, images, publisher ----

type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newFakeCache() *fakeCache { return &fakeCache{data: map[string][]byte{}} }

func (c *fakeCache) SetJSON(_ context.Context, key string, v any, _ time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = b
	return nil
}

func (c *fakeCache) GetJSON(_ context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	b, ok := c.data[key]
	c.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dest)
}

func (c *fakeCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *fakeCache) DelPrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	return nil
}

func (c *fakeCache) keysWithPrefix(prefix string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out
}

type fakeImages struct {
	mu      sync.Mutex
	uploads []string
	deleted []string
}

func (f *fakeImages) Upload(_ context.Context, objectPath, _ string, r io.Reader) (string, error) {
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, objectPath)
	return "https://cdn.test/" + objectPath, nil
}

func (f *fakeImages) Delete(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, url)
	return nil
}

type fakePublisher struct {
	mu   sync.Mutex
	jobs []any
	err  error
}

func (f *fakePublisher) PublishJSON(_ context.Context, body any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, body)
	return nil
}

type failingSink struct{ calls int }

func (s *failingSink) Deliver(context.Context, *entity.Notification) error {
	s.calls++
	return errBoom
}
