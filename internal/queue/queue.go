package queue

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

const TypeGenerateVideo = "video:generate"

// GenerateVideoPayload is the task body enqueued when a video project is
// created. The worker re-reads everything else from the database.
type GenerateVideoPayload struct {
	VideoProjectID string `json:"video_project_id"`
}

// Enqueuer submits background tasks. The orchestrator does not wait for
// task completion; delivery is at-least-once.
type Enqueuer interface {
	EnqueueGenerateVideo(ctx context.Context, videoProjectID uuid.UUID) error
}

type AsynqEnqueuer struct {
	client *asynq.Client
	log    zerolog.Logger
}

func NewAsynqEnqueuer(redisOpt asynq.RedisClientOpt, log zerolog.Logger) *AsynqEnqueuer {
	return &AsynqEnqueuer{
		client: asynq.NewClient(redisOpt),
		log:    log,
	}
}

func (q *AsynqEnqueuer) Close() error {
	return q.client.Close()
}

func (q *AsynqEnqueuer) EnqueueGenerateVideo(ctx context.Context, videoProjectID uuid.UUID) error {
	payload, _ := json.Marshal(GenerateVideoPayload{
		VideoProjectID: videoProjectID.String(),
	})
	task := asynq.NewTask(TypeGenerateVideo, payload)
	info, err := q.client.EnqueueContext(ctx, task)
	if err != nil {
		q.log.Warn().Err(err).Str("video_project_id", videoProjectID.String()).Msg("enqueue video generation failed")
		return err
	}

	q.log.Info().
		Str("video_project_id", videoProjectID.String()).
		Str("task_id", info.ID).
		Msg("video generation enqueued")
	return nil
}

// NoopEnqueuer is used when Redis is not configured and in tests.
type NoopEnqueuer struct{}

func NewNoopEnqueuer() *NoopEnqueuer {
	return &NoopEnqueuer{}
}

func (q *NoopEnqueuer) EnqueueGenerateVideo(ctx context.Context, videoProjectID uuid.UUID) error {
	return nil
}
