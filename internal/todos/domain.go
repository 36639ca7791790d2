package todos

import "time"

// Todo is a single to-do item owned by one account.
type Todo struct {
	ID          int64      `json:"id"`
	OwnerID     int64      `json:"-"`
	Text        string     `json:"text"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
