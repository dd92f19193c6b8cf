package mongodb

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"example.com/kalendas/internal/filter"
	"example.com/kalendas/internal/storage"
)

// Collection maps documents of type T onto a Mongo collection. T's bson tags
// must store the identity under _id.
type Collection[T storage.Document] struct {
	coll *mongo.Collection
}

func NewCollection[T storage.Document](c *Client, name string) *Collection[T] {
	return &Collection[T]{coll: c.db.Collection(name)}
}

func (c *Collection[T]) Insert(ctx context.Context, doc T) error {
	_, err := c.coll.InsertOne(ctx, doc)
	return err
}

func (c *Collection[T]) Get(ctx context.Context, id string) (T, error) {
	var doc T
	err := c.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return doc, storage.ErrNotFound
	}
	return doc, err
}

func (c *Collection[T]) Find(ctx context.Context, p filter.Predicate) ([]T, error) {
	q, err := Query(p)
	if err != nil {
		return nil, err
	}
	cur, err := c.coll.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Collection[T]) Merge(ctx context.Context, id string, fields map[string]any) (T, error) {
	if len(fields) == 0 {
		return c.Get(ctx, id)
	}
	var doc T
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := c.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return doc, storage.ErrNotFound
	}
	return doc, err
}

func (c *Collection[T]) Delete(ctx context.Context, id string) (int64, error) {
	res, err := c.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (c *Collection[T]) Drop(ctx context.Context) error {
	return c.coll.Drop(ctx)
}
