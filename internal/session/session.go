package session

import (
	"context"

	"github.com/aerodesk/aerodesk/internal/domain"
)

// Session is the persisted credential + profile identifying the current
// authenticated actor. The zero value is the logged-out state.
type Session struct {
	AccessToken  string       `json:"authToken"`
	RefreshToken string       `json:"refreshToken"`
	User         *domain.User `json:"userInfo"`
}

func (s Session) LoggedIn() bool {
	return s.AccessToken != ""
}

// Store persists the session across process restarts. Load on an empty
// store returns the zero session, not an error; Clear is idempotent.
type Store interface {
	Load(ctx context.Context) (Session, error)
	Save(ctx context.Context, s Session) error
	Clear(ctx context.Context) error
}
