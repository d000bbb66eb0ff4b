package userinfo

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/mvribeiro/suplemarket/internal/logging"
	"github.com/mvribeiro/suplemarket/internal/repo"
)

// Info is the public contact card of a supplier.
type Info struct {
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	PhotoURL    string `json:"photo_url"`
}

// Placeholder is returned when the owner has no user record or the lookup
// fails; checkout still renders a supplier block with it.
var Placeholder = Info{
	DisplayName: "Fornecedor",
	Email:       "contato@fornecedor.com",
}

// Service resolves owner ids to contact info with a process-local cache, so
// a checkout touching the same supplier several times costs one query.
type Service struct {
	Repo *repo.GormRepo

	mu    sync.Mutex
	cache map[uuid.UUID]Info
}

func New(r *repo.GormRepo) *Service {
	return &Service{Repo: r, cache: map[uuid.UUID]Info{}}
}

func (s *Service) Get(ctx context.Context, ownerID uuid.UUID) Info {
	s.mu.Lock()
	if info, ok := s.cache[ownerID]; ok {
		s.mu.Unlock()
		return info
	}
	s.mu.Unlock()

	info := Placeholder
	user, err := s.Repo.GetUser(ctx, ownerID)
	if err != nil {
		logging.FromContext(ctx).Warn("user_lookup_failed", "owner_id", ownerID, "error", err)
	} else {
		info = Info{DisplayName: user.DisplayName, Email: user.Email, PhotoURL: user.PhotoURL}
		if info.DisplayName == "" {
			info.DisplayName = Placeholder.DisplayName
		}
	}

	s.mu.Lock()
	s.cache[ownerID] = info
	s.mu.Unlock()
	return info
}

func (s *Service) ClearCache() {
	s.mu.Lock()
	s.cache = map[uuid.UUID]Info{}
	s.mu.Unlock()
}
