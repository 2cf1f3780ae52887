package users_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/review-aggregator/internal/http/handlers/users"
	"github.com/magabrotheeeer/review-aggregator/internal/http/middlewarectx"
	"github.com/magabrotheeeer/review-aggregator/internal/models"
	"github.com/magabrotheeeer/review-aggregator/internal/policy"
	userservice "github.com/magabrotheeeer/review-aggregator/internal/services/users"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) user(args mock.Arguments) (*models.User, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *ServiceMock) List(ctx context.Context, caller policy.Caller, search string, page models.Page) ([]*models.User, int, error) {
	args := m.Called(ctx, caller, search, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.User), args.Int(1), args.Error(2)
}

func (m *ServiceMock) Get(ctx context.Context, caller policy.Caller, username string) (*models.User, error) {
	return m.user(m.Called(ctx, caller, username))
}

func (m *ServiceMock) Create(ctx context.Context, caller policy.Caller, user models.User) (*models.User, error) {
	return m.user(m.Called(ctx, caller, user))
}

func (m *ServiceMock) Update(ctx context.Context, caller policy.Caller, username string, patch models.UserPatch) (*models.User, error) {
	return m.user(m.Called(ctx, caller, username, patch))
}

func (m *ServiceMock) Delete(ctx context.Context, caller policy.Caller, username string) error {
	return m.Called(ctx, caller, username).Error(0)
}

func (m *ServiceMock) Self(ctx context.Context, caller policy.Caller, op userservice.SelfOp, patch models.UserPatch) (*models.User, error) {
	return m.user(m.Called(ctx, caller, op, patch))
}

var (
	admin = policy.Caller{ID: "uid-admin", Username: "root", Role: policy.RoleAdmin, Authenticated: true}
	bob   = policy.Caller{ID: "uid-bob", Username: "bob", Role: policy.RoleUser, Authenticated: true}
)

func newRouter(svc users.Service, caller policy.Caller) http.Handler {
	h := users.New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middlewarectx.WithCaller(req.Context(), caller)))
		})
	})
	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.HandleFunc("/me", h.Me)
		r.Get("/{username}", h.Read)
		r.Patch("/{username}", h.Update)
		r.Delete("/{username}", h.Delete)
	})
	return r
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = bytes.NewBufferString(body)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, target, rd))
	return rr
}

func TestCreate(t *testing.T) {
	svc := &ServiceMock{}
	svc.On("Create", mock.Anything, admin, models.User{Username: "alice", Email: "alice@example.com", Role: policy.RoleModerator}).
		Return(&models.User{Username: "alice", Email: "alice@example.com", Role: policy.RoleModerator}, nil).Once()

	h := newRouter(svc, admin)
	rr := do(h, http.MethodPost, "/users/", `{"username":"alice","email":"alice@example.com","role":"moderator"}`)
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), `"role":"moderator"`)

	rr = do(h, http.MethodPost, "/users/", `{"username":"alice","email":"alice@example.com","role":"owner"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), `"role"`)

	rr = do(h, http.MethodPost, "/users/", `{"username":"alice","email":"not-an-email"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), `"email"`)
	svc.AssertExpectations(t)
}

func TestList_ForwardsSearchAndForbidden(t *testing.T) {
	svc := &ServiceMock{}
	svc.On("List", mock.Anything, admin, "bo", models.Page{Limit: 5, Offset: 0}).
		Return([]*models.User{{Username: "bob"}}, 1, nil).Once()
	svc.On("List", mock.Anything, bob, "", models.Page{Limit: 10}).
		Return(nil, 0, policy.ErrPermissionDenied).Once()

	rr := do(newRouter(svc, admin), http.MethodGet, "/users/?search=bo&limit=5", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"count":1`)

	assert.Equal(t, http.StatusForbidden, do(newRouter(svc, bob), http.MethodGet, "/users/", "").Code)
	svc.AssertExpectations(t)
}

func TestUpdate_ParsesRole(t *testing.T) {
	role := policy.RoleModerator
	svc := &ServiceMock{}
	svc.On("Update", mock.Anything, admin, "bob", models.UserPatch{Role: &role}).
		Return(&models.User{Username: "bob", Role: role}, nil).Once()
	svc.On("Delete", mock.Anything, admin, "ghost").Return(models.ErrIdentityNotFound).Once()

	h := newRouter(svc, admin)
	assert.Equal(t, http.StatusOK, do(h, http.MethodPatch, "/users/bob", `{"role":"moderator"}`).Code)
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodDelete, "/users/ghost", "").Code)
	svc.AssertExpectations(t)
}

func TestMe(t *testing.T) {
	bio := "reader"
	svc := &ServiceMock{}
	svc.On("Self", mock.Anything, bob, userservice.SelfRead, models.UserPatch{}).
		Return(&models.User{Username: "bob", Role: policy.RoleUser}, nil).Once()
	svc.On("Self", mock.Anything, bob, userservice.SelfPatch, models.UserPatch{Bio: &bio}).
		Return(&models.User{Username: "bob", Bio: bio, Role: policy.RoleUser}, nil).Once()

	h := newRouter(svc, bob)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/users/me", "").Code)

	// role в теле профиля не распознаётся и не доходит до сервиса.
	rr := do(h, http.MethodPatch, "/users/me", `{"bio":"reader","role":"admin"}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"role":"user"`)
	svc.AssertExpectations(t)
}

func TestMe_DeleteNotAllowed(t *testing.T) {
	svc := &ServiceMock{}
	rr := do(newRouter(svc, bob), http.MethodDelete, "/users/me", "")

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, "GET, PUT, PATCH", rr.Header().Get("Allow"))
	svc.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	svc.AssertNotCalled(t, "Self", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMe_Anonymous(t *testing.T) {
	svc := &ServiceMock{}
	h := newRouter(svc, policy.Anonymous)

	assert.Equal(t, http.StatusUnauthorized, do(h, http.MethodGet, "/users/me", "").Code)
	rr := do(h, http.MethodPatch, "/users/me", `{"email":"not-an-email"}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.NotContains(t, rr.Body.String(), `"email"`)
	svc.AssertNotCalled(t, "Self", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAdminWrites_AuthorizedBeforeBody(t *testing.T) {
	tests := []struct {
		name   string
		caller policy.Caller
		method string
		target string
		want   int
	}{
		{name: "create as user", caller: bob, method: http.MethodPost, target: "/users/", want: http.StatusForbidden},
		{name: "create anonymous", caller: policy.Anonymous, method: http.MethodPost, target: "/users/", want: http.StatusUnauthorized},
		{name: "update as user", caller: bob, method: http.MethodPatch, target: "/users/alice", want: http.StatusForbidden},
		{name: "update anonymous", caller: policy.Anonymous, method: http.MethodPatch, target: "/users/alice", want: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &ServiceMock{}
			rr := do(newRouter(svc, tt.caller), tt.method, tt.target, `{"email":"broken","role":"owner"}`)
			assert.Equal(t, tt.want, rr.Code)
			assert.Contains(t, rr.Body.String(), `"detail"`)
			assert.Empty(t, svc.Calls)
		})
	}
}
