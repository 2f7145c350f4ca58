package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/BuzzLyutic/crm-api/internal/model"
	"github.com/BuzzLyutic/crm-api/internal/repo"
)

// MockTaskRepository - мок репозитория
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) Create(ctx context.Context, t model.Task) (model.Task, error) {
	args := m.Called(ctx, t)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockTaskRepository) Get(ctx context.Context, id string) (model.Task, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockTaskRepository) GetForUpdate(ctx context.Context, id string) (model.Task, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockTaskRepository) List(ctx context.Context, filter model.TaskFilter, limit int) ([]model.Task, error) {
	args := m.Called(ctx, filter, limit)
	return args.Get(0).([]model.Task), args.Error(1)
}

func (m *MockTaskRepository) Update(ctx context.Context, t model.Task) (model.Task, error) {
	args := m.Called(ctx, t)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockTaskRepository) UpdateStatus(ctx context.Context, id string, status model.TaskStatus, version int) (model.Task, error) {
	args := m.Called(ctx, id, status, version)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockTaskRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTaskRepository) GetStats(ctx context.Context) (repo.Stats, error) {
	args := m.Called(ctx)
	return args.Get(0).(repo.Stats), args.Error(1)
}

type MockActivityRepository struct {
	mock.Mock
}

func (m *MockActivityRepository) Create(ctx context.Context, a model.TaskActivity) (model.TaskActivity, error) {
	args := m.Called(ctx, a)
	return args.Get(0).(model.TaskActivity), args.Error(1)
}

func (m *MockActivityRepository) ListByTask(ctx context.Context, taskID string) ([]model.TaskActivity, error) {
	args := m.Called(ctx, taskID)
	return args.Get(0).([]model.TaskActivity), args.Error(1)
}

type MockEmployeeRepository struct {
	mock.Mock
}

func (m *MockEmployeeRepository) Get(ctx context.Context, id string) (model.Employee, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Employee), args.Error(1)
}

func (m *MockEmployeeRepository) GetByUserID(ctx context.Context, userID string) (model.Employee, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.Employee), args.Error(1)
}

type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) Exists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.User), args.Error(1)
}

// fakeTx runs fn against the same mocks; it counts calls instead of
// opening a transaction.
type fakeTx struct {
	repos repo.Repositories
	calls int
}

func (f *fakeTx) WithinTx(ctx context.Context, fn func(repo.Repositories) error) error {
	f.calls++
	return fn(f.repos)
}

type mocks struct {
	tasks      *MockTaskRepository
	activities *MockActivityRepository
	employees  *MockEmployeeRepository
	projects   *MockProjectRepository
	tx         *fakeTx
}

func newMocks() *mocks {
	m := &mocks{
		tasks:      new(MockTaskRepository),
		activities: new(MockActivityRepository),
		employees:  new(MockEmployeeRepository),
		projects:   new(MockProjectRepository),
	}
	m.tx = &fakeTx{repos: m.repositories()}
	return m
}

func (m *mocks) repositories() repo.Repositories {
	return repo.Repositories{
		Tasks:      m.tasks,
		Activities: m.activities,
		Employees:  m.employees,
		Projects:   m.projects,
	}
}

func (m *mocks) service() *TaskService {
	return NewTaskService(m.repositories(), m.tx)
}

func (m *mocks) assertExpectations(t mock.TestingT) {
	m.tasks.AssertExpectations(t)
	m.activities.AssertExpectations(t)
	m.employees.AssertExpectations(t)
	m.projects.AssertExpectations(t)
}

func strPtr(s string) *string {
	return &s
}
