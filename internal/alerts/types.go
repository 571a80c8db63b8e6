package alerts

import "time"

// Task type constants
const (
	TaskWelcomeEmail       = "email:welcome"
	TaskSubmissionReviewed = "email:submission_reviewed"
	TaskWithdrawalApproved = "email:withdrawal_approved"
)

// Common envelope for email-like notifications
type EmailEnvelope struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Welcome email payload
type WelcomeEmailPayload struct {
	UserID   string        `json:"user_id"`
	Name     string        `json:"name"`
	Email    string        `json:"email"`
	Envelope EmailEnvelope `json:"envelope"`
	SentAt   time.Time     `json:"sent_at"`
}

// Submission reviewed payload (sent to the worker on approve or reject)
type SubmissionReviewedPayload struct {
	SubmissionID string        `json:"submission_id"`
	WorkerEmail  string        `json:"worker_email"`
	TaskTitle    string        `json:"task_title"`
	Outcome      string        `json:"outcome"` // approved|rejected
	Coins        int64         `json:"coins"`
	Envelope     EmailEnvelope `json:"envelope"`
	SentAt       time.Time     `json:"sent_at"`
}

// Withdrawal approved payload (sent to the worker)
type WithdrawalApprovedPayload struct {
	WithdrawalID string        `json:"withdrawal_id"`
	WorkerEmail  string        `json:"worker_email"`
	Coins        int64         `json:"coins"`
	CashAmount   string        `json:"cash_amount"`
	Envelope     EmailEnvelope `json:"envelope"`
	SentAt       time.Time     `json:"sent_at"`
}
