package service

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"

	"vulture/internal/model"
	"vulture/internal/repository"
)

// TaskService is the task catalog: it validates task specs at game creation,
// serves role-appropriate views, and grades submissions. Tasks are embedded
// in their game document and immutable once the game is running.
type TaskService struct {
	gameRepo repository.GameRepo
	maxTasks int
}

// NewTaskService creates a new task service
func NewTaskService(gameRepo repository.GameRepo, maxTasks int) *TaskService {
	return &TaskService{
		gameRepo: gameRepo,
		maxTasks: maxTasks,
	}
}

// CreateTasks validates the given specs and materializes them as the task
// catalog for a game. Returned ids match the input order.
func (s *TaskService) CreateTasks(gameID string, specs []model.Task) ([]model.Task, []string, error) {
	if len(specs) == 0 {
		return nil, nil, fmt.Errorf("%w: a game needs at least one task", ErrValidation)
	}
	if s.maxTasks > 0 && len(specs) > s.maxTasks {
		return nil, nil, fmt.Errorf("%w: too many tasks (max %d)", ErrValidation, s.maxTasks)
	}

	tasks := make([]model.Task, len(specs))
	ids := make([]string, len(specs))
	for i, spec := range specs {
		if err := validateTaskSpec(&spec); err != nil {
			return nil, nil, fmt.Errorf("task %d: %w", i, err)
		}
		spec.ID = uuid.NewString()
		spec.GameID = gameID
		tasks[i] = spec
		ids[i] = spec.ID
	}
	return tasks, ids, nil
}

func validateTaskSpec(t *model.Task) error {
	if t.Type != model.TaskMultipleChoice && t.Type != model.TaskText {
		return fmt.Errorf("%w: unknown task type %q", ErrValidation, t.Type)
	}
	if t.Question == "" {
		return fmt.Errorf("%w: question must not be empty", ErrValidation)
	}
	if t.Points < 0 {
		return fmt.Errorf("%w: points must be >= 0", ErrValidation)
	}
	if t.Attempts < 1 {
		return fmt.Errorf("%w: at least one attempt must be allowed", ErrValidation)
	}
	// Text tasks may grade open-ended (empty answer set accepts anything);
	// multiple choice requires a concrete answer key.
	if t.Type == model.TaskMultipleChoice {
		if len(t.AnswerChoices) == 0 || len(t.Answers) == 0 {
			return fmt.Errorf("%w: multiple choice tasks need answer choices and a correct answer set", ErrValidation)
		}
		for _, idx := range t.Answers {
			if idx < 0 || idx >= len(t.AnswerChoices) {
				return fmt.Errorf("%w: answer index %d out of range", ErrValidation, idx)
			}
		}
	}
	return nil
}

// Tasks returns the full task catalog for a game; host view.
func (s *TaskService) Tasks(ctx context.Context, gameID string) ([]model.Task, error) {
	game, err := s.getGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return game.Tasks, nil
}

// PublicTasks returns the task catalog without correct answers.
func (s *TaskService) PublicTasks(ctx context.Context, gameID string) ([]*model.PublicTask, error) {
	game, err := s.getGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	tasks := make([]*model.PublicTask, len(game.Tasks))
	for i := range game.Tasks {
		tasks[i] = game.Tasks[i].Public()
	}
	return tasks, nil
}

// Task returns a single task with its answer key; host view.
func (s *TaskService) Task(ctx context.Context, gameID, taskID string) (*model.Task, error) {
	game, err := s.getGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	task := game.Task(taskID)
	if task == nil {
		return nil, fmt.Errorf("%w: task %s", ErrNotFound, taskID)
	}
	return task, nil
}

// PublicTask returns a single task without its answer key.
func (s *TaskService) PublicTask(ctx context.Context, gameID, taskID string) (*model.PublicTask, error) {
	task, err := s.Task(ctx, gameID, taskID)
	if err != nil {
		return nil, err
	}
	return task.Public(), nil
}

// Grade scores a submission. A multiple choice submission is correct iff the
// submitted values match the correct answer set exactly; no partial credit
// for subsets or supersets. An empty answer key accepts any submission.
//
// When scalePoints is set, awarded points decay by attempt number:
// round(points / attemptNumber), so the first correct attempt earns full
// credit and later attempts earn proportionally less.
func (s *TaskService) Grade(task *model.Task, answers []string, attemptNumber int) (bool, int) {
	if !gradeCorrect(task, answers) {
		return false, 0
	}

	points := task.Points
	if task.ScalePoints && attemptNumber > 1 {
		points = int(math.Round(float64(task.Points) / float64(attemptNumber)))
	}
	return true, points
}

func gradeCorrect(task *model.Task, answers []string) bool {
	if len(task.Answers) == 0 {
		return true // open-ended, accepts any answer
	}

	expected := make(map[string]bool, len(task.Answers))
	for _, idx := range task.Answers {
		if idx < 0 || idx >= len(task.AnswerChoices) {
			return false
		}
		expected[task.AnswerChoices[idx]] = true
	}

	submitted := make(map[string]bool, len(answers))
	for _, a := range answers {
		submitted[a] = true
	}

	if len(submitted) != len(expected) {
		return false
	}
	for value := range expected {
		if !submitted[value] {
			return false
		}
	}
	return true
}

func (s *TaskService) getGame(ctx context.Context, gameID string) (*model.Game, error) {
	game, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, fmt.Errorf("%w: game %s", ErrNotFound, gameID)
	}
	return game, nil
}
