package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/curametric/wound-api/models"
)

var _ AssertionVerifier = (*fakeVerifier)(nil)

type fakeVerifier struct {
	VerifyFunc func(ctx context.Context, assertion string) (*Claims, error)
}

func (f *fakeVerifier) Verify(ctx context.Context, assertion string) (*Claims, error) {
	if f.VerifyFunc != nil {
		return f.VerifyFunc(ctx, assertion)
	}
	return nil, errors.New("VerifyFunc not implemented in fake")
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	// one connection keeps concurrent goroutines off sqlite's table locks
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	return db
}

func TestExchangeRejectsInvalidAssertion(t *testing.T) {
	db := newTestDB(t)
	bridge := NewBridge(db, &fakeVerifier{
		VerifyFunc: func(context.Context, string) (*Claims, error) {
			return nil, fmt.Errorf("%w: signature mismatch", ErrInvalidAssertion)
		},
	})

	_, _, err := bridge.Exchange(context.Background(), "garbage")
	require.ErrorIs(t, err, ErrInvalidAssertion)

	// a failed verification must never provision anyone
	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestExchangeRejectsMissingEmail(t *testing.T) {
	db := newTestDB(t)
	bridge := NewBridge(db, &fakeVerifier{
		VerifyFunc: func(context.Context, string) (*Claims, error) {
			return &Claims{Name: "No Email"}, nil
		},
	})

	_, _, err := bridge.Exchange(context.Background(), "token")
	require.ErrorIs(t, err, ErrInvalidAssertion)
}

func TestExchangeProvisionsOnFirstSightOnly(t *testing.T) {
	db := newTestDB(t)
	bridge := NewBridge(db, &fakeVerifier{
		VerifyFunc: func(context.Context, string) (*Claims, error) {
			return &Claims{Email: "ana@clinic.cl", Name: "Ana"}, nil
		},
	})
	ctx := context.Background()

	first, created, err := bridge.Exchange(ctx, "token")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "ana@clinic.cl", first.Username)
	assert.Equal(t, "Ana", first.FirstName)

	second, created, err := bridge.Exchange(ctx, "token")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestFindOrCreateSurvivesConcurrentFirstLogins(t *testing.T) {
	db := newTestDB(t)
	bridge := NewBridge(db, &fakeVerifier{})
	claims := &Claims{Email: "ana@clinic.cl", Name: "Ana"}

	const logins = 8
	var provisioned int32
	var wg sync.WaitGroup
	errs := make([]error, logins)
	for i := 0; i < logins; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, created, err := bridge.FindOrCreate(context.Background(), claims)
			errs[i] = err
			if created {
				atomic.AddInt32(&provisioned, 1)
			}
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "login %d", i)
	}
	assert.EqualValues(t, 1, provisioned, "exactly one login may see the user as newly provisioned")

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
