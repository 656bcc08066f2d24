package model

// PlayerRole is the role of a principal within a game
type PlayerRole string

const (
	RoleHost   PlayerRole = "host"
	RolePlayer PlayerRole = "player"
)

// Valid reports whether the role is one a principal may hold.
func (r PlayerRole) Valid() bool {
	return r == RoleHost || r == RolePlayer
}

// Player represents a participant in a game
type Player struct {
	ID             string           `json:"id" bson:"_id,omitempty"`
	GameID         string           `json:"gameId" bson:"gameId"`
	Username       string           `json:"username" bson:"username"`
	Points         int              `json:"points" bson:"points"` // monotonically non-decreasing
	TasksSubmitted []TaskSubmission `json:"tasksSubmitted" bson:"tasksSubmitted"`
	Done           bool             `json:"done" bson:"done"`
	JoinedAt       int64            `json:"joinedAt" bson:"joinedAt"`
}

// AttemptsUsed counts the graded attempts the player has made on a task.
func (p *Player) AttemptsUsed(taskID string) int {
	n := 0
	for _, s := range p.TasksSubmitted {
		if s.TaskID == taskID {
			n++
		}
	}
	return n
}

// Solved reports whether the player has a successful submission for a task.
func (p *Player) Solved(taskID string) bool {
	for _, s := range p.TasksSubmitted {
		if s.TaskID == taskID && s.Success {
			return true
		}
	}
	return false
}

// CompletedTasks counts the distinct tasks the player has solved.
func (p *Player) CompletedTasks() int {
	solved := make(map[string]bool)
	for _, s := range p.TasksSubmitted {
		if s.Success {
			solved[s.TaskID] = true
		}
	}
	return len(solved)
}

// PublicPlayer is the view of a player visible to other participants
type PublicPlayer struct {
	GameID            string `json:"gameId"`
	Username          string `json:"username"`
	Points            int    `json:"points"`
	NumTasksSubmitted int    `json:"numTasksSubmitted"`
	NumTasksCompleted int    `json:"numTasksCompleted"`
	Done              bool   `json:"done"`
}

// Public derives the unprivileged view of the player.
func (p *Player) Public() *PublicPlayer {
	return &PublicPlayer{
		GameID:            p.GameID,
		Username:          p.Username,
		Points:            p.Points,
		NumTasksSubmitted: len(p.TasksSubmitted),
		NumTasksCompleted: p.CompletedTasks(),
		Done:              p.Done,
	}
}
