package model

// TaskType is the grading family of a task
type TaskType string

const (
	TaskMultipleChoice TaskType = "multiple choice"
	TaskText           TaskType = "text"
)

// Task is a scored challenge belonging to a game
type Task struct {
	ID            string   `json:"id" bson:"_id,omitempty"`
	GameID        string   `json:"gameId" bson:"gameId"`
	Type          TaskType `json:"type" bson:"type"`
	Question      string   `json:"question" bson:"question"`
	Clue          string   `json:"clue" bson:"clue"`
	AnswerChoices []string `json:"answerChoices" bson:"answerChoices"`
	Answers       []int    `json:"answers" bson:"answers"` // indices of correct choices, empty = accept any answer
	Attempts      int      `json:"attempts" bson:"attempts"`
	Required      bool     `json:"required" bson:"required"`
	Points        int      `json:"points" bson:"points"`
	ScalePoints   bool     `json:"scalePoints" bson:"scalePoints"` // decay points by attempt number
}

// PublicTask is the view of a task without the correct answers
type PublicTask struct {
	ID            string   `json:"id"`
	GameID        string   `json:"gameId"`
	Type          TaskType `json:"type"`
	Question      string   `json:"question"`
	Clue          string   `json:"clue"`
	AnswerChoices []string `json:"answerChoices"`
	Attempts      int      `json:"attempts"`
	Required      bool     `json:"required"`
	Points        int      `json:"points"`
	ScalePoints   bool     `json:"scalePoints"`
}

// Public derives the player-visible view of the task.
func (t *Task) Public() *PublicTask {
	return &PublicTask{
		ID:            t.ID,
		GameID:        t.GameID,
		Type:          t.Type,
		Question:      t.Question,
		Clue:          t.Clue,
		AnswerChoices: t.AnswerChoices,
		Attempts:      t.Attempts,
		Required:      t.Required,
		Points:        t.Points,
		ScalePoints:   t.ScalePoints,
	}
}

// TaskSubmission records a single graded attempt by a player
type TaskSubmission struct {
	ID             string   `json:"id" bson:"_id,omitempty"`
	TaskID         string   `json:"taskid" bson:"taskid"`
	Answers        []string `json:"answers" bson:"answers"`
	SubmissionTime int64    `json:"submissionTime" bson:"submissionTime"`
	Success        bool     `json:"success" bson:"success"`
	PointsAwarded  int      `json:"pointsAwarded" bson:"pointsAwarded"`
}

// SubmitResult confirms a task submission
type SubmitResult struct {
	Success        bool  `json:"success"`
	PointsAwarded  int   `json:"pointsAwarded"`
	SubmissionTime int64 `json:"submissionTime"`
}
