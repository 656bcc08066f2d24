package model

// GameState is the lifecycle state of a game
type GameState string

const (
	GameCreated GameState = "created"
	GameRunning GameState = "running"
	GameStopped GameState = "stopped"
	GameEnded   GameState = "ended"
)

// Terminal reports whether no further lifecycle transition is possible.
// A stopped game permits restart, but restart spawns a new game rather
// than resuming this one.
func (s GameState) Terminal() bool {
	return s == GameStopped || s == GameEnded
}

// GameSettings holds the host-supplied configuration for a game
type GameSettings struct {
	Name             string `json:"name" bson:"name"`
	Duration         int64  `json:"duration" bson:"duration"` // seconds, 0 for unbounded
	StartTime        int64  `json:"startTime" bson:"startTime"`
	EndTime          int64  `json:"endTime" bson:"endTime"` // startTime + duration, 0 for unbounded, may end early
	Ordered          bool   `json:"ordered" bson:"ordered"`
	MinPlayers       int    `json:"minPlayers" bson:"minPlayers"`
	MaxPlayers       int    `json:"maxPlayers" bson:"maxPlayers"` // 0 for uncapped
	JoinMidGame      bool   `json:"joinMidGame" bson:"joinMidGame"`
	NumRequiredTasks int    `json:"numRequiredTasks" bson:"numRequiredTasks"`
}

// Game is a single playthrough instance. Tasks are embedded in order since
// they are immutable once the game is running.
type Game struct {
	ID              string       `json:"id" bson:"_id,omitempty"`
	Settings        GameSettings `json:"settings" bson:"settings"`
	Tasks           []Task       `json:"tasks" bson:"tasks"`
	State           GameState    `json:"state" bson:"state"`
	HostID          string       `json:"hostId" bson:"hostId"`
	HostAccessToken string       `json:"-" bson:"hostAccessToken"`
	Players         []string     `json:"players" bson:"players"`
	CreatedAt       int64        `json:"createdAt" bson:"createdAt"`
}

// Task returns the embedded task with the given id, or nil.
func (g *Game) Task(taskID string) *Task {
	for i := range g.Tasks {
		if g.Tasks[i].ID == taskID {
			return &g.Tasks[i]
		}
	}
	return nil
}

// PublicGame is the view of a game visible without host credentials.
// Settings internals and host identity beyond the game name are withheld.
type PublicGame struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	State      GameState `json:"state"`
	NumTasks   int       `json:"numTasks"`
	NumPlayers int       `json:"numPlayers"`
	Players    []string  `json:"players"`
}

// Public derives the unprivileged view of the game.
func (g *Game) Public() *PublicGame {
	return &PublicGame{
		ID:         g.ID,
		Name:       g.Settings.Name,
		State:      g.State,
		NumTasks:   len(g.Tasks),
		NumPlayers: len(g.Players),
		Players:    g.Players,
	}
}

// CreateGameResult confirms game creation
type CreateGameResult struct {
	Creds   *AccessCredentials `json:"creds"`
	GameID  string             `json:"gameid"`
	TaskIDs []string           `json:"taskids"`
}

// StateChangeResult confirms a lifecycle transition
type StateChangeResult struct {
	State     GameState `json:"state"`
	StartTime int64     `json:"startTime"`
	EndTime   int64     `json:"endTime"`
}
