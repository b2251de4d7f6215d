package subscriber

import "context"

type Repository interface {
	Create(ctx context.Context, s *Subscriber) error
	Update(ctx context.Context, s *Subscriber) error
	GetByID(ctx context.Context, id string) (*Subscriber, error)
	GetByPhone(ctx context.Context, phone string) (*Subscriber, error)
	ListActive(ctx context.Context) ([]*Subscriber, error)
	List(ctx context.Context) ([]*Subscriber, error)
}
