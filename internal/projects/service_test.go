package projects

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/terrace-erp/terrace/internal/shared"
)

type memoryRepo struct {
	projects map[int64]*Project
	blocks   map[int64]int
	nextID   int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{projects: make(map[int64]*Project), blocks: make(map[int64]int), nextID: 1}
}

func (m *memoryRepo) Create(_ context.Context, project *Project) error {
	project.ID = m.nextID
	m.nextID++
	clone := *project
	m.projects[project.ID] = &clone
	return nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (*Project, error) {
	project, ok := m.projects[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *project
	return &clone, nil
}

func (m *memoryRepo) List(_ context.Context) ([]Project, error) {
	var out []Project
	for _, p := range m.projects {
		out = append(out, *p)
	}
	return out, nil
}

func (m *memoryRepo) Update(_ context.Context, project *Project) error {
	if _, ok := m.projects[project.ID]; !ok {
		return shared.ErrNotFound
	}
	clone := *project
	m.projects[project.ID] = &clone
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.projects[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.projects, id)
	return nil
}

func (m *memoryRepo) CountBlocks(_ context.Context, projectID int64) (int, error) {
	return m.blocks[projectID], nil
}

func TestCreateProjectDefaultsToPlanning(t *testing.T) {
	repo := newMemoryRepo()
	service := NewService(repo, nil)

	project, err := service.Create(context.Background(), CreateProjectRequest{Name: "Hillside Terraces"}, 1)
	require.NoError(t, err)
	require.NotZero(t, project.ID)
	require.Equal(t, StatusPlanning, project.Status)
}

func TestUpdateProjectPartial(t *testing.T) {
	repo := newMemoryRepo()
	service := NewService(repo, nil)

	project, err := service.Create(context.Background(), CreateProjectRequest{Name: "Hillside Terraces"}, 1)
	require.NoError(t, err)

	status := StatusSelling
	location := "North Ridge"
	updated, err := service.Update(context.Background(), project.ID, UpdateProjectRequest{
		Status:   &status,
		Location: &location,
	}, 1)
	require.NoError(t, err)
	require.Equal(t, "Hillside Terraces", updated.Name)
	require.Equal(t, StatusSelling, updated.Status)
	require.Equal(t, "North Ridge", *updated.Location)
}

func TestDeleteProjectRefusedWithBlocks(t *testing.T) {
	repo := newMemoryRepo()
	service := NewService(repo, nil)

	project, err := service.Create(context.Background(), CreateProjectRequest{Name: "Hillside Terraces"}, 1)
	require.NoError(t, err)

	repo.blocks[project.ID] = 3
	err = service.Delete(context.Background(), project.ID, 1)
	require.ErrorIs(t, err, shared.ErrInvalidStatus)

	repo.blocks[project.ID] = 0
	require.NoError(t, service.Delete(context.Background(), project.ID, 1))

	_, err = service.Get(context.Background(), project.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}
