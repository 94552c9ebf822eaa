package profile

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Service errors
var ErrNotFound = errors.New("profile not found")

// Profile represents stored profile data.
type Profile struct {
	ID        string
	Name      string
	Email     string
	Age       string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Params carries the writable profile fields for create and update.
type Params struct {
	Name  string
	Email string
	Age   string
}

// normalized trims every field and lowercases the email.
func (p Params) normalized() Params {
	return Params{
		Name:  strings.TrimSpace(p.Name),
		Email: strings.ToLower(strings.TrimSpace(p.Email)),
		Age:   strings.TrimSpace(p.Age),
	}
}

// Service defines profile operations.
//
// List returns profiles in creation order, oldest first. Implementations
// assign IDs on Create and normalize input data:
//   - Name, Age: trim whitespace
//   - Email: lowercase and trim whitespace
type Service interface {
	List(ctx context.Context) ([]Profile, error)
	Get(ctx context.Context, id string) (*Profile, error)
	Create(ctx context.Context, params Params) (*Profile, error)
	Update(ctx context.Context, id string, params Params) (*Profile, error)
}
