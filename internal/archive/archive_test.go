package archive

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/mealmatch/backend/internal/models"
)

type mockS3 struct {
	mock.Mock
	body []byte
}

func (m *mockS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(aws.ToString(params.Bucket), aws.ToString(params.Key))
	if params.Body != nil {
		m.body, _ = io.ReadAll(params.Body)
	}
	if err := args.Error(0); err != nil {
		return nil, err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestArchive(t *testing.T) {
	at := time.Date(2024, 3, 4, 18, 30, 0, 0, time.UTC)
	client := new(mockS3)
	client.On("PutObject", "mealmatch-archive", "sessions/h1/20240304T183000Z.json").Return(nil)

	a := NewS3Archiver(client, "mealmatch-archive")
	a.now = func() time.Time { return at }

	h := &models.Household{
		ID:   "h1",
		Name: "The Flat",
		CurrentSession: models.Session{
			MatchedMeals: []models.Recipe{{ID: "52772", Title: "Teriyaki Chicken Casserole"}},
			Status:       models.SessionCompleted,
		},
	}
	key, err := a.Archive(context.Background(), h)
	require.NoError(t, err)
	assert.Equal(t, "sessions/h1/20240304T183000Z.json", key)

	var rec Record
	require.NoError(t, json.Unmarshal(client.body, &rec))
	assert.Equal(t, "The Flat", rec.HouseholdName)
	assert.Equal(t, at, rec.ArchivedAt)
	require.Len(t, rec.Session.MatchedMeals, 1)
	assert.Equal(t, "52772", rec.Session.MatchedMeals[0].ID)
	client.AssertExpectations(t)
}

func TestArchiveUploadError(t *testing.T) {
	client := new(mockS3)
	client.On("PutObject", "bucket", mock.Anything).Return(errors.New("access denied"))

	_, err := NewS3Archiver(client, "bucket").Archive(context.Background(), &models.Household{ID: "h1"})
	assert.ErrorContains(t, err, "access denied")
}

func TestFromConfigWithoutBucket(t *testing.T) {
	assert.Nil(t, FromConfig(nil))
}
