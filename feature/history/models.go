package history

import "time"

// JobRecord is one finished generation job.
type JobRecord struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	Stage        string     `gorm:"size:32;index" json:"stage"`
	Success      bool       `json:"success"`
	Message      string     `gorm:"type:text" json:"message"`
	SuccessCount int        `json:"success_count"`
	FailedItems  string     `gorm:"type:text" json:"failed_items"`
	Selections   int        `json:"selections"`
	Auxiliary    int        `json:"auxiliary"`
	CreatedAt    time.Time  `json:"created_at"`
	FinishedAt   *time.Time `json:"finished_at"`
}

// TableName pins the table name.
func (JobRecord) TableName() string {
	return "generation_jobs"
}

// Columns the history feature reads and writes.
var Columns = []string{
	"id", "stage", "success", "message", "success_count",
	"failed_items", "selections", "auxiliary", "created_at", "finished_at",
}
