package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/resourcehub/internal/common"
	"github.com/dmitrijs2005/resourcehub/internal/dbx"
	"github.com/dmitrijs2005/resourcehub/internal/server/models"
	"github.com/dmitrijs2005/resourcehub/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/resourcehub/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/resourcehub/internal/server/repositories/refreshtokens"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

type fakeAccountsRepo struct {
	mu        sync.Mutex
	byEmail   map[string]*models.Account
	byID      map[string]*models.Account
	createErr error
	getErr    error
	updErr    error

	deleted    []string
	passwords  map[string][]byte
	avatarKeys map[string]string
}

func newFakeAccounts(accs ...*models.Account) *fakeAccountsRepo {
	f := &fakeAccountsRepo{
		byEmail:    map[string]*models.Account{},
		byID:       map[string]*models.Account{},
		passwords:  map[string][]byte{},
		avatarKeys: map[string]string{},
	}
	for _, a := range accs {
		f.byEmail[a.Email] = a
		f.byID[a.ID] = a
	}
	return f
}

func (f *fakeAccountsRepo) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.byEmail[a.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}
	if a.ID == "" {
		a.ID = "acc-new"
	}
	a.CreatedAt = time.Now()
	f.byEmail[a.Email] = a
	f.byID[a.ID] = a
	return a, nil
}

func (f *fakeAccountsRepo) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	a, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return a, nil
}

func (f *fakeAccountsRepo) GetByID(ctx context.Context, id string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	a, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return a, nil
}

func (f *fakeAccountsRepo) UpdatePassword(ctx context.Context, id string, hash []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updErr != nil {
		return f.updErr
	}
	f.passwords[id] = hash
	return nil
}

func (f *fakeAccountsRepo) SetAvatarKey(ctx context.Context, id, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updErr != nil {
		return f.updErr
	}
	f.avatarKeys[id] = key
	return nil
}

func (f *fakeAccountsRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return common.ErrorNotFound
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeProfilesRepo struct {
	byEmail   map[string]*models.Profile
	getErr    error
	insertErr error

	inserted   []*models.Profile
	lastLogins map[string]time.Time
	updErr     error
}

func newFakeProfiles() *fakeProfilesRepo {
	return &fakeProfilesRepo{byEmail: map[string]*models.Profile{}, lastLogins: map[string]time.Time{}}
}

func (f *fakeProfilesRepo) Insert(ctx context.Context, p *models.Profile) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, p)
	return nil
}

func (f *fakeProfilesRepo) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	p, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return p, nil
}

func (f *fakeProfilesRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	if f.updErr != nil {
		return f.updErr
	}
	f.lastLogins[id] = at
	return nil
}

type fakeRefreshRepo struct {
	findOut *models.RefreshToken
	findErr error
	delErr  error

	createErr error

	created        []models.RefreshToken
	deleted        []string
	deletedForAcct []string
}

func (f *fakeRefreshRepo) Create(ctx context.Context, accountID string, token string, expires time.Time) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, models.RefreshToken{UserID: accountID, Token: token, Expires: expires})
	return nil
}

func (f *fakeRefreshRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}

func (f *fakeRefreshRepo) Delete(ctx context.Context, token string) error {
	if f.delErr != nil {
		return f.delErr
	}
	f.deleted = append(f.deleted, token)
	return nil
}

func (f *fakeRefreshRepo) DeleteAllForAccount(ctx context.Context, accountID string) error {
	if f.delErr != nil {
		return f.delErr
	}
	f.deletedForAcct = append(f.deletedForAcct, accountID)
	return nil
}

type fakeRepoManager struct {
	a *fakeAccountsRepo
	p *fakeProfilesRepo
	r *fakeRefreshRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{a: newFakeAccounts(), p: newFakeProfiles(), r: &fakeRefreshRepo{}}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error       { return nil }
func (m *fakeRepoManager) Accounts(db dbx.DBTX) accounts.Repository           { return m.a }
func (m *fakeRepoManager) Profiles(db dbx.DBTX) profiles.Repository           { return m.p }
func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository { return m.r }

type fakeLockout struct {
	locked   bool
	lockNext bool
	err      error
	failures int
	resets   int
}

func (f *fakeLockout) Locked(context.Context, string) (bool, error) {
	return f.locked, f.err
}

func (f *fakeLockout) RecordFailure(context.Context, string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	f.failures++
	return f.lockNext, nil
}

func (f *fakeLockout) Reset(context.Context, string) error {
	f.resets++
	return nil
}
