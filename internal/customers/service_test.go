package customers

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/terrace-erp/terrace/internal/shared"
)

type memoryRepo struct {
	customers map[int64]*Customer
	sales     map[int64]int
	nextID    int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{customers: make(map[int64]*Customer), sales: make(map[int64]int), nextID: 1}
}

func (m *memoryRepo) Create(_ context.Context, customer *Customer) error {
	for _, c := range m.customers {
		if c.NationalID == customer.NationalID {
			return shared.ErrAlreadyExists
		}
	}
	customer.ID = m.nextID
	m.nextID++
	clone := *customer
	m.customers[customer.ID] = &clone
	return nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (*Customer, error) {
	customer, ok := m.customers[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *customer
	return &clone, nil
}

func (m *memoryRepo) List(_ context.Context, req ListCustomersRequest) ([]Customer, int, error) {
	var out []Customer
	for _, c := range m.customers {
		if req.Search != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(req.Search)) {
			continue
		}
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (m *memoryRepo) Update(_ context.Context, customer *Customer) error {
	if _, ok := m.customers[customer.ID]; !ok {
		return shared.ErrNotFound
	}
	clone := *customer
	m.customers[customer.ID] = &clone
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.customers[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.customers, id)
	return nil
}

func (m *memoryRepo) CountSales(_ context.Context, customerID int64) (int, error) {
	return m.sales[customerID], nil
}

func TestCreateCustomerDuplicateNationalID(t *testing.T) {
	service := NewService(newMemoryRepo(), nil)

	_, err := service.Create(context.Background(), CreateCustomerRequest{Name: "Ada Bell", NationalID: "A100"}, 1)
	require.NoError(t, err)

	_, err = service.Create(context.Background(), CreateCustomerRequest{Name: "Another Person", NationalID: "A100"}, 1)
	require.ErrorIs(t, err, shared.ErrAlreadyExists)
}

func TestListCustomersSearch(t *testing.T) {
	service := NewService(newMemoryRepo(), nil)

	_, err := service.Create(context.Background(), CreateCustomerRequest{Name: "Ada Bell", NationalID: "A100"}, 1)
	require.NoError(t, err)
	_, err = service.Create(context.Background(), CreateCustomerRequest{Name: "Cem Oran", NationalID: "A200"}, 1)
	require.NoError(t, err)

	customers, total, err := service.List(context.Background(), ListCustomersRequest{Search: "ada"})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, "Ada Bell", customers[0].Name)
}

func TestDeleteCustomerWithSalesRefused(t *testing.T) {
	repo := newMemoryRepo()
	service := NewService(repo, nil)

	customer, err := service.Create(context.Background(), CreateCustomerRequest{Name: "Ada Bell", NationalID: "A100"}, 1)
	require.NoError(t, err)

	repo.sales[customer.ID] = 2
	err = service.Delete(context.Background(), customer.ID, 1)
	require.ErrorIs(t, err, shared.ErrInvalidStatus)
}
