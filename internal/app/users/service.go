package users

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"tubeshelf/internal/apperr"
	"tubeshelf/internal/auth"
	"tubeshelf/internal/models"
	"tubeshelf/internal/store"
	"tubeshelf/internal/validation"
)

// maxPasswordBytes is the most bcrypt will hash.
const maxPasswordBytes = 72

// Store describes the persistence operations required by the user service.
type Store interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	CreateUser(ctx context.Context, u *models.User) (*models.User, error)
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Authenticator checks credentials and mints session tokens.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	IssueToken(user *models.User) (string, error)
}

// Service exposes the account workflows.
type Service interface {
	Register(ctx context.Context, in RegisterInput) (*models.User, error)
	SignIn(ctx context.Context, in SignInInput) (string, error)
	Get(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

// RegisterInput is the raw sign-up form.
type RegisterInput struct {
	Email           string `json:"email" validate:"required,email"`
	FirstName       string `json:"first_name" validate:"required"`
	LastName        string `json:"last_name" validate:"required"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"eqfield=Password"`
}

// RegisterParams is a sign-up form that passed the field checks.
type RegisterParams struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
}

// SignInInput is the raw sign-in form.
type SignInInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type service struct {
	store  Store
	hasher auth.PasswordHasher
	authn  Authenticator
}

// New wires a Service backed by the provided Store.
func New(store Store, hasher auth.PasswordHasher, authn Authenticator) Service {
	return &service{store: store, hasher: hasher, authn: authn}
}

// ValidateRegister runs the field checks for registration without touching the store.
func ValidateRegister(in RegisterInput) (RegisterParams, error) {
	in.Email = auth.NormalizeEmail(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)

	errs := validation.Struct(in)
	if len(in.Password) > maxPasswordBytes && !errs.Has("password") {
		errs.Add("password", "must be at most 72 bytes")
	}
	if err := apperr.InvalidFields("users.Register", errs); err != nil {
		return RegisterParams{}, err
	}

	return RegisterParams{
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Password:  in.Password,
	}, nil
}

func (s *service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	const op = "users.Register"
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	params, err := ValidateRegister(in)
	if err != nil {
		return nil, err
	}

	taken, err := s.store.EmailExists(ctx, params.Email)
	if err != nil {
		return nil, apperr.FromStore(op, err)
	}
	if taken {
		return nil, emailTaken(op)
	}

	hash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return nil, apperr.E(op, apperr.Internal, err)
	}

	user, err := s.store.CreateUser(ctx, &models.User{
		Email:        params.Email,
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		PasswordHash: hash,
	})
	if errors.Is(err, store.ErrUserExists) {
		return nil, emailTaken(op)
	}
	if err != nil {
		return nil, apperr.FromStore(op, err)
	}
	return user, nil
}

func emailTaken(op string) error {
	return &apperr.Error{
		Op:     op,
		Kind:   apperr.Invalid,
		Fields: validation.Errors{{Field: "email", Message: "email already registered"}},
		Err:    store.ErrUserExists,
	}
}

func (s *service) SignIn(ctx context.Context, in SignInInput) (string, error) {
	const op = "users.SignIn"
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := apperr.InvalidFields(op, validation.Struct(in)); err != nil {
		return "", err
	}

	user, err := s.authn.Authenticate(ctx, in.Email, in.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		return "", apperr.Field(op, validation.NonField, "incorrect credentials")
	}
	if err != nil {
		return "", apperr.E(op, apperr.Internal, err)
	}

	token, err := s.authn.IssueToken(user)
	if err != nil {
		return "", apperr.E(op, apperr.Internal, err)
	}
	return token, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	user, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return nil, apperr.FromStore("users.Get", err)
	}
	return user, nil
}
