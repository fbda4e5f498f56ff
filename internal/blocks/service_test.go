package blocks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/terrace-erp/terrace/internal/shared"
)

type memoryRepo struct {
	blocks map[int64]*Block
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{blocks: make(map[int64]*Block), nextID: 1}
}

func (m *memoryRepo) Create(_ context.Context, block *Block) error {
	block.ID = m.nextID
	m.nextID++
	clone := *block
	m.blocks[block.ID] = &clone
	return nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (*Block, error) {
	block, ok := m.blocks[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *block
	return &clone, nil
}

func (m *memoryRepo) List(_ context.Context, req ListBlocksRequest) ([]Block, error) {
	var out []Block
	for _, b := range m.blocks {
		if req.ProjectID > 0 && b.ProjectID != req.ProjectID {
			continue
		}
		if req.Status != "" && b.Status != req.Status {
			continue
		}
		out = append(out, *b)
	}
	return out, nil
}

func (m *memoryRepo) Update(_ context.Context, block *Block) error {
	if _, ok := m.blocks[block.ID]; !ok {
		return shared.ErrNotFound
	}
	clone := *block
	m.blocks[block.ID] = &clone
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.blocks[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.blocks, id)
	return nil
}

func (m *memoryRepo) SetStatus(_ context.Context, id int64, status BlockStatus) error {
	block, ok := m.blocks[id]
	if !ok {
		return shared.ErrNotFound
	}
	block.Status = status
	return nil
}

func createBlock(t *testing.T, service *Service) *Block {
	t.Helper()
	block, err := service.Create(context.Background(), CreateBlockRequest{
		ProjectID: 1,
		Number:    "A-101",
		Type:      TypeApartment,
		Price:     120000,
	}, 1)
	require.NoError(t, err)
	return block
}

func TestCreateBlockStartsAvailable(t *testing.T) {
	service := NewService(newMemoryRepo(), nil)
	block := createBlock(t, service)
	require.Equal(t, StatusAvailable, block.Status)
}

func TestMarkSoldRejectsDoubleSale(t *testing.T) {
	repo := newMemoryRepo()
	service := NewService(repo, nil)
	block := createBlock(t, service)

	require.NoError(t, service.MarkSold(context.Background(), block.ID))

	stored, err := service.Get(context.Background(), block.ID)
	require.NoError(t, err)
	require.Equal(t, StatusSold, stored.Status)

	err = service.MarkSold(context.Background(), block.ID)
	require.ErrorIs(t, err, shared.ErrInvalidStatus)
}

func TestReleaseReturnsBlockToMarket(t *testing.T) {
	repo := newMemoryRepo()
	service := NewService(repo, nil)
	block := createBlock(t, service)

	require.NoError(t, service.MarkSold(context.Background(), block.ID))
	require.NoError(t, service.Release(context.Background(), block.ID))

	stored, err := service.Get(context.Background(), block.ID)
	require.NoError(t, err)
	require.Equal(t, StatusAvailable, stored.Status)
}

func TestDeleteSoldBlockRefused(t *testing.T) {
	repo := newMemoryRepo()
	service := NewService(repo, nil)
	block := createBlock(t, service)

	require.NoError(t, service.MarkSold(context.Background(), block.ID))
	err := service.Delete(context.Background(), block.ID, 1)
	require.ErrorIs(t, err, shared.ErrInvalidStatus)
}

func TestUpdateBlockPlacement(t *testing.T) {
	repo := newMemoryRepo()
	service := NewService(repo, nil)
	block := createBlock(t, service)

	placement := &Placement{GridX: 3, GridY: 0, GridZ: 7, Rotation: 90, Width: 12, Height: 3, Depth: 9}
	updated, err := service.Update(context.Background(), block.ID, UpdateBlockRequest{Placement: placement}, 1)
	require.NoError(t, err)
	require.Equal(t, placement, updated.Placement)
	require.Equal(t, "A-101", updated.Number)
}
