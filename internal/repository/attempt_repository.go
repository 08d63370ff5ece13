package repository

import (
	"context"
	"math"

	apperrors "phonics-coach/internal/errors"
	"phonics-coach/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const attemptsCollection = "attempts"

// AttemptRepository stores archived attempts for progress tracking.
type AttemptRepository interface {
	// Create returns apperrors.ErrAttemptAlreadyArchived when the attempt id
	// has been stored before.
	Create(ctx context.Context, record *models.AttemptRecord) error
	// FindByUserID pages through a user's attempts, newest first.
	FindByUserID(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]models.AttemptRecord, int64, error)
	// StatsByUserID summarises attempts per target, ordered by target.
	StatsByUserID(ctx context.Context, userID primitive.ObjectID) ([]models.TargetStats, error)
	// DeleteByUserID removes every attempt and returns their audio keys.
	DeleteByUserID(ctx context.Context, userID primitive.ObjectID) ([]string, error)
}

type attemptRepository struct {
	collection *mongo.Collection
}

func NewAttemptRepository(db *mongo.Database) AttemptRepository {
	return &attemptRepository{
		collection: db.Collection(attemptsCollection),
	}
}

func (r *attemptRepository) Create(ctx context.Context, record *models.AttemptRecord) error {
	if record.ID.IsZero() {
		record.ID = primitive.NewObjectID()
	}

	// upsert on attemptId so a retried job never stores a duplicate
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"attemptId": record.AttemptID},
		bson.M{"$setOnInsert": record},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return err
	}
	if res.UpsertedCount == 0 {
		return apperrors.ErrAttemptAlreadyArchived
	}
	return nil
}

func (r *attemptRepository) FindByUserID(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]models.AttemptRecord, int64, error) {
	filter := bson.M{"userId": userID}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	skip := (page - 1) * limit
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var records []models.AttemptRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, 0, err
	}
	if records == nil {
		records = []models.AttemptRecord{}
	}
	return records, total, nil
}

func (r *attemptRepository) StatsByUserID(ctx context.Context, userID primitive.ObjectID) ([]models.TargetStats, error) {
	genuine := bson.M{"$eq": bson.A{"$degraded", false}}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"userId": userID}}},
		{{Key: "$group", Value: bson.M{
			"_id":              "$target",
			"attempts":         bson.M{"$sum": 1},
			"degradedAttempts": bson.M{"$sum": bson.M{"$cond": bson.A{"$degraded", 1, 0}}},
			// $avg and $max ignore nulls, so degraded attempts drop out
			"averageAccuracy": bson.M{"$avg": bson.M{"$cond": bson.A{genuine, "$accuracy", nil}}},
			"bestAccuracy":    bson.M{"$max": bson.M{"$cond": bson.A{genuine, "$accuracy", nil}}},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Target           string   `bson:"_id"`
		Attempts         int      `bson:"attempts"`
		DegradedAttempts int      `bson:"degradedAttempts"`
		AverageAccuracy  *float64 `bson:"averageAccuracy"`
		BestAccuracy     *int     `bson:"bestAccuracy"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	stats := make([]models.TargetStats, 0, len(rows))
	for _, row := range rows {
		st := models.TargetStats{
			Target:           row.Target,
			Attempts:         row.Attempts,
			DegradedAttempts: row.DegradedAttempts,
		}
		if row.AverageAccuracy != nil {
			st.AverageAccuracy = math.Round(*row.AverageAccuracy*100) / 100
		}
		if row.BestAccuracy != nil {
			st.BestAccuracy = *row.BestAccuracy
		}
		stats = append(stats, st)
	}
	return stats, nil
}

func (r *attemptRepository) DeleteByUserID(ctx context.Context, userID primitive.ObjectID) ([]string, error) {
	filter := bson.M{"userId": userID}

	cursor, err := r.collection.Find(ctx,
		bson.M{"userId": userID, "audioKey": bson.M{"$exists": true, "$ne": ""}},
		options.Find().SetProjection(bson.M{"audioKey": 1}),
	)
	if err != nil {
		return nil, err
	}
	var docs []struct {
		AudioKey string `bson:"audioKey"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	if _, err := r.collection.DeleteMany(ctx, filter); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(docs))
	for _, d := range docs {
		keys = append(keys, d.AudioKey)
	}
	return keys, nil
}
