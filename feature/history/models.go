package history

import "time"

// Run states.
const (
	StatusRunning     = "running"
	StatusFinished    = "finished"
	StatusLoginFailed = "login_failed"
)

// Run is one sync run.
type Run struct {
	ID         string           `gorm:"primaryKey;size:36" json:"id"`
	Status     string           `gorm:"size:16;not null" json:"status"`
	DryRun     bool             `gorm:"not null;default:false" json:"dry_run"`
	StartedAt  time.Time        `gorm:"index;not null" json:"started_at"`
	FinishedAt *time.Time       `json:"finished_at"`
	Scraped    int              `gorm:"not null;default:0" json:"scraped"`
	Created    int              `gorm:"not null;default:0" json:"created"`
	Updated    int              `gorm:"not null;default:0" json:"updated"`
	Archived   int              `gorm:"not null;default:0" json:"archived"`
	Failed     int              `gorm:"not null;default:0" json:"failed"`
	Skipped    int              `gorm:"not null;default:0" json:"skipped"`
	Categories []CategoryResult `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE" json:"categories,omitempty"`
}

// TableName overrides the default table name.
func (Run) TableName() string {
	return "sync_runs"
}

// CategoryResult is the outcome of one category in a run.
type CategoryResult struct {
	ID                 uint      `gorm:"primaryKey" json:"-"`
	RunID              string    `gorm:"size:36;index;not null" json:"run_id"`
	URL                string    `gorm:"size:512;not null" json:"url"`
	CategoryName       string    `gorm:"size:255" json:"category_name"`
	CategoryID         *int64    `json:"category_id"`
	Status             string    `gorm:"size:16;not null" json:"status"`
	Error              string    `gorm:"type:text" json:"error,omitempty"`
	Scraped            int       `json:"scraped"`
	Created            int       `json:"created"`
	Updated            int       `json:"updated"`
	Archived           int       `json:"archived"`
	Failed             int       `json:"failed"`
	Dropped            int       `json:"dropped"`
	Duplicates         int       `json:"duplicates"`
	Promoted           int       `json:"promoted"`
	ArchivesSuppressed int       `json:"archives_suppressed"`
	StartedAt          time.Time `json:"started_at"`
	FinishedAt         time.Time `json:"finished_at"`
}

// TableName overrides the default table name.
func (CategoryResult) TableName() string {
	return "sync_category_results"
}
