package store

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// repository is a typed view over one collection.
type repository[T any] struct {
	collection *mongo.Collection
}

func newRepository[T any](collection *mongo.Collection) *repository[T] {
	return &repository[T]{collection: collection}
}

func (r *repository[T]) insert(ctx context.Context, doc T) error {
	_, err := r.collection.InsertOne(ctx, doc)
	return err
}

func (r *repository[T]) findOne(ctx context.Context, filter any) (T, error) {
	var result T
	err := r.collection.FindOne(ctx, filter).Decode(&result)
	return result, err
}

func (r *repository[T]) find(ctx context.Context, filter any, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := r.collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	results := []T{}
	for cursor.Next(ctx) {
		var entity T
		if err := cursor.Decode(&entity); err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, cursor.Err()
}

// updateOne applies update and reports whether a document matched filter.
func (r *repository[T]) updateOne(ctx context.Context, filter, update any) (bool, error) {
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// deleteOne removes the document matching filter and reports whether one did.
func (r *repository[T]) deleteOne(ctx context.Context, filter any) (bool, error) {
	res, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
