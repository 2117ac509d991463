package auth

import (
	"context"
	"database/sql"
	"time"

	"golang.org/x/crypto/bcrypt"

	"library-backend/internal/platform/apperr"
	"library-backend/internal/platform/db"
)

type RegisterRequest struct {
	Surname       string  `json:"surname" binding:"required,max=50,person_name"`
	Firstname     string  `json:"firstname" binding:"required,max=50,person_name"`
	MiddleInitial *string `json:"middleInitial,omitempty" binding:"omitempty,len=1,alpha"`
	Username      string  `json:"username" binding:"required,min=3,max=30,username_chars"`
	Password      string  `json:"password" binding:"required,min=8,max=128,password_classes"`
	DisplayName   string  `json:"displayName" binding:"required,max=100"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UserResponse struct {
	ID            int64   `json:"id"`
	Username      string  `json:"username"`
	DisplayName   string  `json:"display_name"`
	Firstname     string  `json:"firstname"`
	Surname       string  `json:"surname"`
	MiddleInitial *string `json:"middle_initial,omitempty"`
	IsAdmin       bool    `json:"is_admin"`
}

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

type Service struct {
	store      UserStore
	issuer     *Issuer
	bcryptCost int
	now        func() time.Time
}

func NewService(store UserStore, issuer *Issuer, bcryptCost int) *Service {
	return &Service{store: store, issuer: issuer, bcryptCost: bcryptCost, now: time.Now}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (UserResponse, error) {
	req.normalize()
	if err := validateRegistration(&req); err != nil {
		return UserResponse{}, err
	}

	exists, err := s.store.GetByUsername(ctx, req.Username)
	if err != nil {
		return UserResponse{}, err
	}
	if exists != nil {
		return UserResponse{}, apperr.ErrConflict("Username already exists").With("field", "username")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return UserResponse{}, err
	}

	u := &User{
		Surname:     req.Surname,
		Firstname:   req.Firstname,
		Username:    req.Username,
		DisplayName: req.DisplayName,
		// admins are provisioned directly in the database
		IsAdmin:      false,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC().Truncate(time.Microsecond),
	}
	if req.MiddleInitial != nil {
		u.MiddleInitial = sql.NullString{String: *req.MiddleInitial, Valid: true}
	}

	if err := s.store.Create(ctx, u); err != nil {
		// lost the race against a concurrent registration
		if db.IsDuplicateKey(err) {
			return UserResponse{}, apperr.ErrConflict("Username already exists").With("field", "username")
		}
		return UserResponse{}, err
	}
	return toUserResponse(u), nil
}

func (s *Service) Login(ctx context.Context, username, password string) (LoginResponse, error) {
	u, err := s.store.GetByUsername(ctx, username)
	if err != nil {
		return LoginResponse{}, err
	}
	if u == nil {
		return LoginResponse{}, apperr.ErrUnauthorized("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return LoginResponse{}, apperr.ErrUnauthorized("Invalid credentials")
	}

	token, exp, err := s.issuer.Issue(Identity{UserID: u.ID, Username: u.Username, IsAdmin: u.IsAdmin})
	if err != nil {
		return LoginResponse{}, err
	}
	return LoginResponse{Token: token, ExpiresAt: exp.UTC(), User: toUserResponse(u)}, nil
}

func toUserResponse(u *User) UserResponse {
	r := UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Firstname:   u.Firstname,
		Surname:     u.Surname,
		IsAdmin:     u.IsAdmin,
	}
	if u.MiddleInitial.Valid {
		v := u.MiddleInitial.String
		r.MiddleInitial = &v
	}
	return r
}
