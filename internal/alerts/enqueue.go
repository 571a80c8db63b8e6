package alerts

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

func enqueue(taskType string, payload interface{}) error {
	if client == nil {
		return nil
	}
	b, _ := json.Marshal(payload)
	_, err := client.Enqueue(asynq.NewTask(taskType, b), asynq.Queue("emails"))
	return err
}

// EnqueueWelcomeEmail schedules a welcome email to a new user.
func EnqueueWelcomeEmail(userID, email, name string) error {
	env := EmailEnvelope{
		To:      email,
		Subject: fmt.Sprintf("Welcome to Zentaskly, %s!", name),
		Body:    fmt.Sprintf("Hi %s, thanks for joining Zentaskly. Post tasks or start earning coins right away.", name),
	}
	return enqueue(TaskWelcomeEmail, WelcomeEmailPayload{
		UserID: userID, Name: name, Email: email, Envelope: env, SentAt: time.Now(),
	})
}

// EnqueueSubmissionReviewed notifies the worker of a review outcome.
func EnqueueSubmissionReviewed(submissionID, workerEmail, taskTitle, outcome string, coins int64) error {
	env := EmailEnvelope{To: workerEmail}
	if outcome == "approved" {
		env.Subject = "Your submission was approved"
		env.Body = fmt.Sprintf("Your submission for %q was approved. %d coins were credited to your balance.", taskTitle, coins)
	} else {
		env.Subject = "Your submission was rejected"
		env.Body = fmt.Sprintf("Your submission for %q was rejected. The task slot has been reopened.", taskTitle)
	}
	return enqueue(TaskSubmissionReviewed, SubmissionReviewedPayload{
		SubmissionID: submissionID, WorkerEmail: workerEmail, TaskTitle: taskTitle,
		Outcome: outcome, Coins: coins, Envelope: env, SentAt: time.Now(),
	})
}

// EnqueueWithdrawalApproved notifies the worker that a payout is on the way.
func EnqueueWithdrawalApproved(withdrawalID, workerEmail string, coins int64, cashAmount string) error {
	env := EmailEnvelope{
		To:      workerEmail,
		Subject: "Your withdrawal was approved",
		Body:    fmt.Sprintf("Your withdrawal of %d coins ($%s) was approved and will be paid out shortly.", coins, cashAmount),
	}
	return enqueue(TaskWithdrawalApproved, WithdrawalApprovedPayload{
		WithdrawalID: withdrawalID, WorkerEmail: workerEmail, Coins: coins,
		CashAmount: cashAmount, Envelope: env, SentAt: time.Now(),
	})
}
