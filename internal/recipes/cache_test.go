package recipes

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pageza/mealmatch/backend/internal/models"
	"github.com/pageza/mealmatch/backend/internal/testhelpers"
	"github.com/pageza/mealmatch/backend/internal/types"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) ListAll(ctx context.Context) ([]models.Recipe, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Recipe), args.Error(1)
}

func (m *mockProvider) GetByID(ctx context.Context, id string) (*models.Recipe, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recipe), args.Error(1)
}

func TestCachedGetByID(t *testing.T) {
	rdb := testhelpers.SetupRedis(t)
	ctx := context.Background()

	next := new(mockProvider)
	next.On("GetByID", mock.Anything, "52772").
		Return(&models.Recipe{ID: "52772", Title: "Teriyaki Chicken Casserole"}, nil)
	next.On("GetByID", mock.Anything, "404").Return(nil, types.NotFoundf("recipe 404"))

	c := NewCached(next, rdb, time.Minute, zaptest.NewLogger(t))

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := c.GetByID(ctx, "52772")
			assert.NoError(t, err)
			assert.Equal(t, "Teriyaki Chicken Casserole", r.Title)
		}()
	}
	wg.Wait()

	// served from redis now
	calls := len(next.Calls)
	r, err := c.GetByID(ctx, "52772")
	require.NoError(t, err)
	assert.Equal(t, "52772", r.ID)
	assert.Len(t, next.Calls, calls)

	ttl, err := rdb.TTL(ctx, "recipe:52772").Result()
	require.NoError(t, err)
	assert.True(t, ttl > 0 && ttl <= time.Minute)

	_, err = c.GetByID(ctx, "404")
	assert.ErrorIs(t, err, types.ErrNotFound)

	next.AssertExpectations(t)
}

func TestCachedListAllWarmsCache(t *testing.T) {
	rdb := testhelpers.SetupRedis(t)
	ctx := context.Background()

	next := new(mockProvider)
	next.On("ListAll", mock.Anything).Return([]models.Recipe{
		{ID: "1", Title: "Pasta Bake"},
		{ID: "2", Title: "Tofu Stir Fry"},
	}, nil)

	c := NewCached(next, rdb, time.Minute, zaptest.NewLogger(t))
	recipes, err := c.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, recipes, 2)

	r, err := c.GetByID(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, "Tofu Stir Fry", r.Title)
	next.AssertNotCalled(t, "GetByID", mock.Anything, "2")
}

// gatedProvider blocks GetByID until release is closed and fails if the
// context it was called with has ended by then.
type gatedProvider struct {
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func (p *gatedProvider) ListAll(ctx context.Context) ([]models.Recipe, error) {
	return nil, nil
}

func (p *gatedProvider) GetByID(ctx context.Context, id string) (*models.Recipe, error) {
	p.once.Do(func() { close(p.started) })
	<-p.release
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &models.Recipe{ID: id, Title: "Beef Wellington"}, nil
}

func TestCachedGetByIDSurvivesFirstCallerCancel(t *testing.T) {
	rdb := testhelpers.SetupRedis(t)
	next := &gatedProvider{started: make(chan struct{}), release: make(chan struct{})}
	c := NewCached(next, rdb, time.Minute, zaptest.NewLogger(t))

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.GetByID(firstCtx, "52803")
		firstErr <- err
	}()
	<-next.started

	second := make(chan *models.Recipe, 1)
	go func() {
		r, err := c.GetByID(context.Background(), "52803")
		assert.NoError(t, err)
		second <- r
	}()
	// let the second caller join the in-flight lookup
	time.Sleep(100 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)
	close(next.release)

	select {
	case r := <-second:
		require.NotNil(t, r)
		assert.Equal(t, "Beef Wellington", r.Title)
	case <-time.After(5 * time.Second):
		t.Fatal("second caller never got the shared result")
	}
}
