package submission

import "time"

type Submission struct {
	ID            string    `json:"id"`
	TaskID        string    `json:"task_id"`
	TaskTitle     string    `json:"task_title"`
	PayableAmount int64     `json:"payable_amount"`
	WorkerEmail   string    `json:"worker_email"`
	WorkerName    string    `json:"worker_name"`
	BuyerEmail    string    `json:"buyer_email"`
	BuyerName     string    `json:"buyer_name"`
	Details       string    `json:"submission_details"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
}
