package catalog

import (
	"context"
	"strconv"

	"github.com/Elavasaran/yummie-mart-porta/internal/domain"
	"golang.org/x/sync/singleflight"
)

// Service is the read side of the catalog used by the HTTP handlers.
type Service struct {
	repo RepoInterface
	sfg  singleflight.Group // collapses concurrent lookups of the same product
}

func NewService(repo RepoInterface) *Service {
	return &Service{repo: repo}
}

// Product resolves an id to the descriptor a cart line is built from.
func (s *Service) Product(ctx context.Context, id int64) (domain.Product, error) {
	v, err, _ := s.sfg.Do(strconv.FormatInt(id, 10), func() (interface{}, error) {
		return s.repo.GetProduct(ctx, id)
	})
	if err != nil {
		return domain.Product{}, err
	}
	return *v.(*domain.Product), nil
}

// List returns products whose name or seller contains query.
func (s *Service) List(ctx context.Context, query string) ([]*domain.Product, error) {
	products, err := s.repo.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []*domain.Product{}
	}
	return products, nil
}
