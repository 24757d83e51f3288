package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sportify/camp-server/internal/core/domain"
)

// SelectionRepository implements ports.SelectionRepository using MongoDB.
type SelectionRepository struct {
	coll *mongo.Collection
}

func NewSelectionRepository(db *mongo.Database) *SelectionRepository {
	return &SelectionRepository{coll: db.Collection(collectionSelections)}
}

func (r *SelectionRepository) Create(ctx context.Context, sel *domain.SelectionRequest) (*domain.SelectionRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := *sel
	if doc.ID == "" {
		doc.ID = primitive.NewObjectID().Hex()
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrSelectionExists
		}
		return nil, fmt.Errorf("insert selection: %w", err)
	}
	return &doc, nil
}

func (r *SelectionRepository) Exists(ctx context.Context, studentEmail, classID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx,
		bson.M{"student_email": studentEmail, "class_id": classID},
		options.Count().SetLimit(1),
	)
	if err != nil {
		return false, fmt.Errorf("count selections: %w", err)
	}
	return n > 0, nil
}

func (r *SelectionRepository) FindByID(ctx context.Context, id string) (*domain.SelectionRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var sel domain.SelectionRequest
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&sel); err != nil {
		if isNoDocuments(err) {
			return nil, domain.ErrSelectionNotFound
		}
		return nil, fmt.Errorf("find selection: %w", err)
	}
	return &sel, nil
}

func (r *SelectionRepository) ListByStudent(ctx context.Context, studentEmail string) ([]*domain.SelectionRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx,
		bson.M{"student_email": studentEmail},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("find selections: %w", err)
	}
	out := make([]*domain.SelectionRequest, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode selections: %w", err)
	}
	return out, nil
}

func (r *SelectionRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete selection: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrSelectionNotFound
	}
	return nil
}
