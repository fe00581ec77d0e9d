package catalog

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Elavasaran/yummie-mart-porta/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	calls   atomic.Int32
	delay   time.Duration
	product *domain.Product
	err     error
	found   []*domain.Product
}

func (m *mockRepo) GetAllProducts(context.Context) ([]*domain.Product, error) {
	return m.found, m.err
}

func (m *mockRepo) GetProduct(context.Context, int64) (*domain.Product, error) {
	m.calls.Add(1)
	time.Sleep(m.delay)
	if m.err != nil {
		return nil, m.err
	}
	return m.product, nil
}

func (m *mockRepo) Search(context.Context, string) ([]*domain.Product, error) {
	return m.found, m.err
}

func (m *mockRepo) Close() error { return nil }

func TestService_Product_CollapsesConcurrentLookups(t *testing.T) {
	repo := &mockRepo{
		delay:   50 * time.Millisecond,
		product: &domain.Product{ID: 2, Name: "Premium Fresh Fruits Basket", Price: decimal.NewFromInt(450)},
	}
	svc := NewService(repo)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := svc.Product(context.Background(), 2)
			assert.NoError(t, err)
			assert.Equal(t, int64(2), p.ID)
		}()
	}
	wg.Wait()

	assert.Less(t, repo.calls.Load(), int32(10))
}

func TestService_Product_NotFound(t *testing.T) {
	svc := NewService(&mockRepo{err: ErrProductNotFound})

	_, err := svc.Product(context.Background(), 42)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestService_List_NeverNil(t *testing.T) {
	svc := NewService(&mockRepo{})

	products, err := svc.List(context.Background(), "nothing")
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}
