package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"vulture/internal/model"
)

// PlayerRepo persists per-game player records.
type PlayerRepo interface {
	Create(ctx context.Context, player *model.Player) error
	Get(ctx context.Context, gameID, username string) (*model.Player, error)
	ListByGame(ctx context.Context, gameID string) ([]*model.Player, error)
	// AddSubmission appends a graded attempt and applies the resulting points
	// and done-flag change in a single update.
	AddSubmission(ctx context.Context, gameID, username string, sub model.TaskSubmission, points int, done bool) error
	DeleteByGame(ctx context.Context, gameID string) error
}

type playerRepo struct {
	collection *mongo.Collection
}

func NewPlayerRepo(db *mongo.Database) PlayerRepo {
	return &playerRepo{
		collection: db.Collection("players"),
	}
}

func (r *playerRepo) Create(ctx context.Context, player *model.Player) error {
	if player.ID == "" {
		player.ID = primitive.NewObjectID().Hex()
	}
	_, err := r.collection.InsertOne(ctx, player)
	return err
}

func (r *playerRepo) Get(ctx context.Context, gameID, username string) (*model.Player, error) {
	var player model.Player
	err := r.collection.FindOne(ctx, bson.M{"gameId": gameID, "username": username}).Decode(&player)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil // Player not found
		}
		return nil, err
	}
	return &player, nil
}

func (r *playerRepo) ListByGame(ctx context.Context, gameID string) ([]*model.Player, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"gameId": gameID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var players []*model.Player
	if err := cursor.All(ctx, &players); err != nil {
		return nil, err
	}
	return players, nil
}

func (r *playerRepo) AddSubmission(ctx context.Context, gameID, username string, sub model.TaskSubmission, points int, done bool) error {
	if sub.ID == "" {
		sub.ID = primitive.NewObjectID().Hex()
	}
	update := bson.M{
		"$push": bson.M{"tasksSubmitted": sub},
	}
	// Points only ever increase; never write a negative increment.
	if points > 0 {
		update["$inc"] = bson.M{"points": points}
	}
	if done {
		update["$set"] = bson.M{"done": true}
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"gameId": gameID, "username": username}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *playerRepo) DeleteByGame(ctx context.Context, gameID string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"gameId": gameID})
	return err
}
