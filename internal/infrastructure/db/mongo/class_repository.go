package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sportify/camp-server/internal/core/domain"
	"github.com/sportify/camp-server/internal/core/ports"
)

// ClassRepository implements ports.ClassRepository using MongoDB.
type ClassRepository struct {
	coll *mongo.Collection
}

func NewClassRepository(db *mongo.Database) *ClassRepository {
	return &ClassRepository{coll: db.Collection(collectionClasses)}
}

func (r *ClassRepository) Create(ctx context.Context, class *domain.ClassOffering) (*domain.ClassOffering, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := *class
	if doc.ID == "" {
		doc.ID = primitive.NewObjectID().Hex()
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert class: %w", err)
	}
	return &doc, nil
}

func (r *ClassRepository) FindByID(ctx context.Context, id string) (*domain.ClassOffering, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var class domain.ClassOffering
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&class); err != nil {
		if isNoDocuments(err) {
			return nil, domain.ErrClassNotFound
		}
		return nil, fmt.Errorf("find class: %w", err)
	}
	return &class, nil
}

func (r *ClassRepository) List(ctx context.Context, filter ports.ClassFilter) ([]*domain.ClassOffering, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{}
	if filter.Status != "" {
		query["status"] = string(filter.Status)
	}
	if filter.InstructorEmail != "" {
		query["instructor_email"] = filter.InstructorEmail
	}

	cur, err := r.coll.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find classes: %w", err)
	}
	classes := make([]*domain.ClassOffering, 0)
	if err := cur.All(ctx, &classes); err != nil {
		return nil, fmt.Errorf("decode classes: %w", err)
	}
	return classes, nil
}

func (r *ClassRepository) UpdatePending(ctx context.Context, id, instructorEmail string, patch ports.ClassPatch) (*domain.ClassOffering, error) {
	filter := bson.M{
		"_id":              id,
		"instructor_email": instructorEmail,
		"status":           string(domain.ClassPending),
	}
	update := bson.M{"$set": bson.M{
		"name":       patch.Name,
		"image_url":  patch.ImageURL,
		"price":      patch.Price,
		"seats":      patch.Seats,
		"updated_at": time.Now().UTC(),
	}}
	return r.conditionalUpdate(ctx, id, filter, update)
}

// Review performs the pending -> status move as a single conditional write so
// two concurrent reviews cannot both succeed.
func (r *ClassRepository) Review(ctx context.Context, id string, status domain.ClassStatus, feedback string) (*domain.ClassOffering, error) {
	set := bson.M{
		"status":     string(status),
		"updated_at": time.Now().UTC(),
	}
	if feedback != "" {
		set["feedback"] = feedback
	}
	filter := bson.M{"_id": id, "status": string(domain.ClassPending)}
	return r.conditionalUpdate(ctx, id, filter, bson.M{"$set": set})
}

// ApplyEnrollment counts paymentID toward the class. The payment id is kept on
// the class document and checked in the same filter as the seat limit, so the
// counter moves at most once per payment however often the call is repeated.
func (r *ClassRepository) ApplyEnrollment(ctx context.Context, id, paymentID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"_id":            id,
		"enrollment_ids": bson.M{"$ne": paymentID},
		"$or": bson.A{
			bson.M{"seats": bson.M{"$lte": 0}},
			bson.M{"$expr": bson.M{"$lt": bson.A{"$enrolled", "$seats"}}},
		},
	}
	update := bson.M{
		"$inc":      bson.M{"enrolled": 1},
		"$addToSet": bson.M{"enrollment_ids": paymentID},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	}
	n, err := r.updateEnrolled(ctx, filter, update)
	if err == nil || !isNoDocuments(err) {
		return n, err
	}

	class, err := r.FindByID(ctx, id)
	if err != nil {
		return 0, err
	}
	if class.HasEnrollment(paymentID) {
		return class.Enrolled, nil
	}
	return 0, domain.ErrClassFull
}

// RevertEnrollment undoes ApplyEnrollment for paymentID. Reverting a payment
// that was never applied leaves the counter alone.
func (r *ClassRepository) RevertEnrollment(ctx context.Context, id, paymentID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": id, "enrollment_ids": paymentID}
	update := bson.M{
		"$inc":  bson.M{"enrolled": -1},
		"$pull": bson.M{"enrollment_ids": paymentID},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}
	n, err := r.updateEnrolled(ctx, filter, update)
	if err == nil || !isNoDocuments(err) {
		return n, err
	}

	class, err := r.FindByID(ctx, id)
	if err != nil {
		return 0, err
	}
	return class.Enrolled, nil
}

// updateEnrolled returns the counter after update, or mongo.ErrNoDocuments
// unwrapped when filter matched nothing.
func (r *ClassRepository) updateEnrolled(ctx context.Context, filter, update bson.M) (int, error) {
	var class domain.ClassOffering
	err := r.coll.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&class)
	if err == nil {
		return class.Enrolled, nil
	}
	if isNoDocuments(err) {
		return 0, err
	}
	return 0, fmt.Errorf("update enrolled: %w", err)
}

// conditionalUpdate applies update when filter matches. A miss on an
// existing class means the guard failed, which surfaces as an invalid
// transition.
func (r *ClassRepository) conditionalUpdate(ctx context.Context, id string, filter, update bson.M) (*domain.ClassOffering, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var class domain.ClassOffering
	err := r.coll.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&class)
	if err == nil {
		return &class, nil
	}
	if !isNoDocuments(err) {
		return nil, fmt.Errorf("update class: %w", err)
	}

	exists, cerr := r.exists(ctx, id)
	if cerr != nil {
		return nil, cerr
	}
	if !exists {
		return nil, domain.ErrClassNotFound
	}
	return nil, domain.ErrInvalidTransition
}

func (r *ClassRepository) exists(ctx context.Context, id string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count class: %w", err)
	}
	return n > 0, nil
}
