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

// PaymentRepository implements ports.PaymentRepository using MongoDB. The
// unique index on selection_id is the last line against double commits.
type PaymentRepository struct {
	coll *mongo.Collection
}

func NewPaymentRepository(db *mongo.Database) *PaymentRepository {
	return &PaymentRepository{coll: db.Collection(collectionPayments)}
}

func (r *PaymentRepository) Create(ctx context.Context, rec *domain.PaymentRecord) (*domain.PaymentRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := *rec
	if doc.ID == "" {
		doc.ID = primitive.NewObjectID().Hex()
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrCommitInProgress
		}
		return nil, fmt.Errorf("insert payment: %w", err)
	}
	return &doc, nil
}

func (r *PaymentRepository) FindBySelectionID(ctx context.Context, selectionID string) (*domain.PaymentRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var rec domain.PaymentRecord
	if err := r.coll.FindOne(ctx, bson.M{"selection_id": selectionID}).Decode(&rec); err != nil {
		if isNoDocuments(err) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("find payment: %w", err)
	}
	return &rec, nil
}

func (r *PaymentRepository) ListByStudent(ctx context.Context, studentEmail string) ([]*domain.PaymentRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx,
		bson.M{"student_email": studentEmail},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("find payments: %w", err)
	}
	out := make([]*domain.PaymentRecord, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode payments: %w", err)
	}
	return out, nil
}

func (r *PaymentRepository) ExistsForClass(ctx context.Context, studentEmail, classID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx,
		bson.M{"student_email": studentEmail, "class_id": classID},
		options.Count().SetLimit(1),
	)
	if err != nil {
		return false, fmt.Errorf("count payments: %w", err)
	}
	return n > 0, nil
}

func (r *PaymentRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}
	return nil
}
