// Package archive stores finished planning sessions in S3 before a reset.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/pageza/mealmatch/backend/config"
	"github.com/pageza/mealmatch/backend/internal/models"
)

const keyTimeLayout = "20060102T150405Z"

// Archiver keeps a copy of a household's current session.
type Archiver interface {
	Archive(ctx context.Context, h *models.Household) (string, error)
}

// PutObjectAPI is the part of the S3 client the archiver needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Record is the archived document.
type Record struct {
	HouseholdID   string             `json:"householdId"`
	HouseholdName string             `json:"householdName"`
	ArchivedAt    time.Time          `json:"archivedAt"`
	Session       models.Session     `json:"session"`
	WeeklyPlans   models.WeeklyPlans `json:"weeklyPlans"`
}

// S3Archiver writes sessions to sessions/{householdID}/{timestamp}.json.
type S3Archiver struct {
	client PutObjectAPI
	bucket string
	now    func() time.Time
}

// NewS3Archiver creates an archiver writing to bucket.
func NewS3Archiver(client PutObjectAPI, bucket string) *S3Archiver {
	return &S3Archiver{client: client, bucket: bucket, now: time.Now}
}

// FromConfig returns nil when no archive bucket is configured.
func FromConfig(s3cfg *config.S3Config) Archiver {
	if s3cfg == nil {
		return nil
	}
	return NewS3Archiver(s3cfg.Client, s3cfg.BucketName)
}

// Key returns the object key for an archive of householdID taken at t.
func Key(householdID string, t time.Time) string {
	return fmt.Sprintf("sessions/%s/%s.json", householdID, t.UTC().Format(keyTimeLayout))
}

// Archive uploads the current session of h and returns the object key.
func (a *S3Archiver) Archive(ctx context.Context, h *models.Household) (string, error) {
	now := a.now().UTC()
	data, err := json.Marshal(Record{
		HouseholdID:   h.ID,
		HouseholdName: h.Name,
		ArchivedAt:    now,
		Session:       h.CurrentSession,
		WeeklyPlans:   h.WeeklyPlans,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode session archive: %w", err)
	}

	key := Key(h.ID, now)
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload session archive: %w", err)
	}
	return key, nil
}
