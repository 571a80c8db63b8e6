package alerts

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/tasniazannat65/micro-task-earning-platform-server/internal/logger"
)

var (
	client *asynq.Client
	server *asynq.Server
)

// Init starts the Asynq server and initializes a shared client. An empty
// redisAddr leaves the queue disabled; enqueues then become no-ops so the
// API keeps working without Redis.
func Init(redisAddr string) {
	if redisAddr == "" {
		logger.Log.Info("alerts queue disabled: no redis address configured")
		return
	}

	opts := asynq.RedisClientOpt{Addr: redisAddr}
	client = asynq.NewClient(opts)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskWelcomeEmail, handleWelcomeEmail)
	mux.HandleFunc(TaskSubmissionReviewed, handleSubmissionReviewed)
	mux.HandleFunc(TaskWithdrawalApproved, handleWithdrawalApproved)

	server = asynq.NewServer(opts, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			"emails": 10,
		},
	})
	go func() {
		if err := server.Run(mux); err != nil {
			logger.Log.Error("asynq server stopped", zap.Error(err))
		}
	}()

	logger.Log.Info("alerts queue initialized", zap.String("addr", redisAddr))
}

func handleWelcomeEmail(ctx context.Context, t *asynq.Task) error {
	var p WelcomeEmailPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	return SendEmail(p.Envelope.To, p.Envelope.Subject, p.Envelope.Body)
}

func handleSubmissionReviewed(ctx context.Context, t *asynq.Task) error {
	var p SubmissionReviewedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	return SendEmail(p.Envelope.To, p.Envelope.Subject, p.Envelope.Body)
}

func handleWithdrawalApproved(ctx context.Context, t *asynq.Task) error {
	var p WithdrawalApprovedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	return SendEmail(p.Envelope.To, p.Envelope.Subject, p.Envelope.Body)
}
