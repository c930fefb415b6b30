// Package auth registers and authenticates users against the document store.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"golang.org/x/crypto/bcrypt"

	"github.com/nikbrunner/linkkoy/internal/docstore"
	"github.com/nikbrunner/linkkoy/internal/model"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
)

// User is a registered account.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// RegisterParams holds parameters for creating a user.
type RegisterParams struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks that every field is filled and the password is long enough.
func (p RegisterParams) Validate() error {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)

	if p.Name == "" || p.Email == "" || p.Password == "" {
		return fmt.Errorf("%w: please fill all fields", model.ErrValidation)
	}
	err := validation.ValidateStruct(&p,
		validation.Field(&p.Email, is.EmailFormat),
		validation.Field(&p.Password,
			validation.Length(MinPasswordLength, 0).Error("password must be at least 6 characters"),
		),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrValidation, err)
	}
	return nil
}

// Service implements registration and login.
type Service struct {
	store  docstore.Store
	logger *slog.Logger
	cost   int
}

// Params holds parameters for creating a Service.
type Params struct {
	Store  docstore.Store
	Logger *slog.Logger
	Cost   int // bcrypt cost; zero = bcrypt.DefaultCost
}

// NewService creates a Service.
func NewService(p Params) *Service {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cost := p.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Service{store: p.Store, logger: logger, cost: cost}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user with a unique email.
func (s *Service) Register(ctx context.Context, p RegisterParams) (User, error) {
	if err := p.Validate(); err != nil {
		return User{}, err
	}
	email := normalizeEmail(p.Email)

	existing, err := s.store.Query(ctx, docstore.Users, docstore.Eq("email", email))
	if err != nil {
		return User{}, fmt.Errorf("while looking up email: %w", err)
	}
	if len(existing) > 0 {
		return User{}, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), s.cost)
	if err != nil {
		return User{}, fmt.Errorf("while hashing password: %w", err)
	}

	u := User{
		Name:      strings.TrimSpace(p.Name),
		Email:     email,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	id, err := s.store.Create(ctx, docstore.Users, docstore.Fields{
		"name":         u.Name,
		"email":        u.Email,
		"passwordHash": string(hash),
		"createdAt":    u.CreatedAt.Format(time.RFC3339),
	})
	if err != nil {
		return User{}, fmt.Errorf("while creating user: %w", err)
	}
	u.ID = id

	s.logger.Info("user registered", "id", id)
	return u, nil
}

// Login checks the credentials and returns the matching user.
func (s *Service) Login(ctx context.Context, email, password string) (User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return User{}, fmt.Errorf("%w: please fill all fields", model.ErrValidation)
	}

	docs, err := s.store.Query(ctx, docstore.Users, docstore.Eq("email", email))
	if err != nil {
		return User{}, fmt.Errorf("while looking up email: %w", err)
	}
	if len(docs) == 0 {
		return User{}, ErrInvalidCredentials
	}

	doc := docs[0]
	if err := bcrypt.CompareHashAndPassword([]byte(doc.String("passwordHash")), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return userFromDoc(doc), nil
}

// GetUser returns the user with the given id.
func (s *Service) GetUser(ctx context.Context, id string) (User, error) {
	doc, err := s.store.Get(ctx, docstore.Users, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("while getting user: %w", err)
	}
	return userFromDoc(doc), nil
}

func userFromDoc(d docstore.Document) User {
	created, _ := time.Parse(time.RFC3339, d.String("createdAt"))
	return User{
		ID:        d.ID,
		Name:      d.String("name"),
		Email:     d.String("email"),
		CreatedAt: created,
	}
}
