package task

import "time"

type Task struct {
	ID              string    `json:"id"`
	BuyerEmail      string    `json:"buyerEmail"`
	BuyerName       string    `json:"buyerName"`
	Title           string    `json:"task_title"`
	Detail          string    `json:"task_detail"`
	RequiredWorkers int64     `json:"required_workers"`
	PayableAmount   int64     `json:"payable_amount"`
	CompletionDate  time.Time `json:"completion_date"`
	SubmissionInfo  string    `json:"submission_info"`
	ImageURL        string    `json:"task_image_url,omitempty"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
}
