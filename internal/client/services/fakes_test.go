package services

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/prodauth/internal/client/models"
)

// ---- fake auth API ----

type fakeAuthAPI struct {
	mu sync.Mutex

	loginFn   func(models.Credentials) (*models.LoginResponse, error)
	logoutErr error
	meFn      func(token string) (*models.User, error)
	refreshFn func(ctx context.Context, token string) (*models.RefreshResponse, error)

	loginCalls  int
	logoutCalls []string
	meCalls     []string
}

func (f *fakeAuthAPI) Login(_ context.Context, creds models.Credentials) (*models.LoginResponse, error) {
	f.mu.Lock()
	f.loginCalls++
	fn := f.loginFn
	f.mu.Unlock()
	return fn(creds)
}

func (f *fakeAuthAPI) Logout(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logoutCalls = append(f.logoutCalls, token)
	return f.logoutErr
}

func (f *fakeAuthAPI) Me(_ context.Context, token string) (*models.User, error) {
	f.mu.Lock()
	f.meCalls = append(f.meCalls, token)
	fn := f.meFn
	f.mu.Unlock()
	return fn(token)
}

func (f *fakeAuthAPI) Refresh(ctx context.Context, token string) (*models.RefreshResponse, error) {
	return f.refreshFn(ctx, token)
}

func loginOK(token string, u models.User) func(models.Credentials) (*models.LoginResponse, error) {
	return func(models.Credentials) (*models.LoginResponse, error) {
		return &models.LoginResponse{AccessToken: token, TokenType: "bearer", User: u}, nil
	}
}

// ---- token stores ----

type failingStore struct{}

func (failingStore) Load(context.Context) (string, error) { return "", errors.New("disk gone") }
func (failingStore) Save(context.Context, string) error   { return errors.New("disk gone") }
func (failingStore) Clear(context.Context) error          { return errors.New("disk gone") }

// ---- fake verify API ----

type fakeVerifyAPI struct {
	verifyFn func(ctx context.Context, serial string) (*models.VerificationResult, error)
	statsFn  func(ctx context.Context) (*models.ScanStats, error)

	mu          sync.Mutex
	verifyCalls int
}

func (f *fakeVerifyAPI) Verify(ctx context.Context, serial string) (*models.VerificationResult, error) {
	f.mu.Lock()
	f.verifyCalls++
	f.mu.Unlock()
	return f.verifyFn(ctx, serial)
}

func (f *fakeVerifyAPI) Stats(ctx context.Context) (*models.ScanStats, error) {
	return f.statsFn(ctx)
}

func (f *fakeVerifyAPI) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.verifyCalls
}

// ---- fake resource ----

type fakeResource struct {
	listRet   []models.Product
	listErr   error
	createErr error
	updateErr error
	deleteErr error
	updateID  int64 // overrides the id of the returned record when non-zero

	nextID int64
}

func (f *fakeResource) List(context.Context) ([]models.Product, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]models.Product(nil), f.listRet...), nil
}

func (f *fakeResource) Create(_ context.Context, in models.ProductInput) (models.Product, error) {
	if f.createErr != nil {
		return models.Product{}, f.createErr
	}
	f.nextID++
	return models.Product{ID: 100 + f.nextID, Name: in.Name, SKU: in.SKU}, nil
}

func (f *fakeResource) Update(_ context.Context, id int64, in models.ProductInput) (models.Product, error) {
	if f.updateErr != nil {
		return models.Product{}, f.updateErr
	}
	if f.updateID != 0 {
		id = f.updateID
	}
	return models.Product{ID: id, Name: in.Name, SKU: in.SKU}, nil
}

func (f *fakeResource) Delete(context.Context, int64) error {
	return f.deleteErr
}
