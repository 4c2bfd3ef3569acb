package models

import "time"

// AnalysisTask represents one feature-extraction run requested through the API
type AnalysisTask struct {
	ID int64 `json:"id" db:"id"`

	// Task identification
	SkillName string `json:"skill_name" db:"skill_name"` // analyzer name, or "all"
	RunID     string `json:"run_id,omitempty" db:"run_id"`

	// Status
	Status          string `json:"status" db:"status"` // pending, running, completed, failed
	ProgressPercent int    `json:"progress_percent" db:"progress_percent"`

	// Input parameters
	ParamsJSON string `json:"params_json,omitempty" db:"params_json"`

	// Execution info
	TotalSubjects     int   `json:"total_subjects,omitempty" db:"total_subjects"`
	ProcessedSubjects int   `json:"processed_subjects" db:"processed_subjects"`
	StartTime         int64 `json:"start_time,omitempty" db:"start_time"` // Unix timestamp
	EndTime           int64 `json:"end_time,omitempty" db:"end_time"`     // Unix timestamp

	// Results
	ResultSummary string `json:"result_summary,omitempty" db:"result_summary"` // JSON object with summary statistics
	ErrorMessage  string `json:"error_message,omitempty" db:"error_message"`

	// Metadata
	CreatedBy string    `json:"created_by,omitempty" db:"created_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// TaskStatus constants
const (
	TaskStatusPending   = "pending"
	TaskStatusRunning   = "running"
	TaskStatusCompleted = "completed"
	TaskStatusFailed    = "failed"
)

// SkillAll runs every registered analyzer
const SkillAll = "all"

// FeatureRun describes one persisted feature table
type FeatureRun struct {
	ID        string    `json:"id"`
	Skill     string    `json:"skill"`
	Subjects  int       `json:"subjects"`
	Columns   int       `json:"columns"`
	CreatedAt time.Time `json:"created_at"`
}
