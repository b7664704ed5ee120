package task

import (
	"time"

	"github.com/google/uuid"
)

const MaxTitleLength = 200

type Task struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	UserID      uuid.UUID  `json:"user_id" db:"user_id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	Status      Status     `json:"status" db:"status"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty" db:"updated_at,omitempty"`
}

type Status string

const StatusTodo Status = "todo"
const StatusInProgress Status = "in_progress"
const StatusDone Status = "done"

// ParseStatus проверяет строку на соответствие одному из трёх статусов
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusTodo, StatusInProgress, StatusDone:
		return Status(s), true
	}
	return "", false
}
