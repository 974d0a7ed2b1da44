package item

import (
	"context"
	"fmt"
	"time"

	"github.com/Recurse-ML/logfire-example/internal/domain"
	"github.com/Recurse-ML/logfire-example/internal/pkg/id"
)

const (
	fieldTitle       = "title"
	fieldDescription = "description"
)

// Actor identifies who is performing an item operation.
type Actor struct {
	UserID    string
	Superuser bool
}

type Service interface {
	Create(ctx context.Context, actor Actor, input domain.ItemInput) (*domain.Item, error)
	List(ctx context.Context, actor Actor, limit int, cursor string) ([]domain.Item, string, error)
	Get(ctx context.Context, actor Actor, itemID string) (*domain.Item, error)
	Update(ctx context.Context, actor Actor, itemID string, input domain.ItemInput) (*domain.Item, error)
	Delete(ctx context.Context, actor Actor, itemID string) error
}

type itemStore interface {
	Put(ctx context.Context, it *domain.Item) error
	Get(ctx context.Context, itemID string) (*domain.Item, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Item, error)
	ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.Item, string, error)
	Update(ctx context.Context, itemID string, updates map[string]interface{}) error
	SoftDelete(ctx context.Context, itemID string) error
}

type service struct {
	repo itemStore
}

func NewService(repo itemStore) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, actor Actor, input domain.ItemInput) (*domain.Item, error) {
	now := time.Now().UTC()
	it := &domain.Item{
		ItemID:      id.New(),
		Title:       input.Title,
		Description: input.Description,
		OwnerID:     actor.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Put(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

// List returns the actor's own items; superusers see every item, paginated.
func (s *service) List(ctx context.Context, actor Actor, limit int, cursor string) ([]domain.Item, string, error) {
	if actor.Superuser {
		if limit < 1 {
			limit = 50
		}
		return s.repo.ScanPage(ctx, int32(limit), cursor)
	}
	items, err := s.repo.ListByOwner(ctx, actor.UserID)
	return items, "", err
}

func (s *service) Get(ctx context.Context, actor Actor, itemID string) (*domain.Item, error) {
	it, err := s.repo.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if it.DeletedAt != nil {
		return nil, fmt.Errorf("item %s: %w", itemID, domain.ErrNotFound)
	}
	if it.OwnerID != actor.UserID && !actor.Superuser {
		return nil, fmt.Errorf("not the item owner: %w", domain.ErrForbidden)
	}
	return it, nil
}

func (s *service) Update(ctx context.Context, actor Actor, itemID string, input domain.ItemInput) (*domain.Item, error) {
	if _, err := s.Get(ctx, actor, itemID); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{
		fieldTitle:       input.Title,
		fieldDescription: input.Description,
	}
	if err := s.repo.Update(ctx, itemID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, itemID)
}

func (s *service) Delete(ctx context.Context, actor Actor, itemID string) error {
	if _, err := s.Get(ctx, actor, itemID); err != nil {
		return err
	}
	return s.repo.SoftDelete(ctx, itemID)
}
