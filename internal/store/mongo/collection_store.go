// internal/store/mongo/collection_store.go
package mongo

import (
	"alcyxob/gymhub/internal/store"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionsCollectionName = "collections"

// collectionDocument is one named collection. The payload is kept as JSON
// text so lists and maps round-trip without bson type coercion.
type collectionDocument struct {
	Name      string    `bson:"_id"`
	Data      string    `bson:"data"`
	Version   int64     `bson:"version"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// mongoCollectionStore implements store.CollectionStore
type mongoCollectionStore struct {
	collection *mongo.Collection
}

// NewMongoCollectionStore creates a collection store backed by db.
func NewMongoCollectionStore(db *mongo.Database) store.CollectionStore {
	return &mongoCollectionStore{
		collection: db.Collection(collectionsCollectionName),
	}
}

// Get returns the named collection, or an empty one if it was never saved.
func (r *mongoCollectionStore) Get(ctx context.Context, name string) (store.Collection, error) {
	var doc collectionDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": name}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return store.Collection{}, nil
		}
		return store.Collection{}, err
	}
	return store.Collection{Data: []byte(doc.Data), Version: doc.Version}, nil
}

// Save writes the collection if the stored version still equals c.Version.
func (r *mongoCollectionStore) Save(ctx context.Context, name string, c store.Collection) (store.Collection, error) {
	now := time.Now().UTC()
	next := c.Version + 1

	if c.Version == 0 {
		_, err := r.collection.InsertOne(ctx, collectionDocument{
			Name:      name,
			Data:      string(c.Data),
			Version:   next,
			UpdatedAt: now,
		})
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return store.Collection{}, store.ErrVersionConflict
			}
			return store.Collection{}, err
		}
		return store.Collection{Data: c.Data, Version: next}, nil
	}

	filter := bson.M{"_id": name, "version": c.Version}
	update := bson.M{
		"$set": bson.M{
			"data":      string(c.Data),
			"version":   next,
			"updatedAt": now,
		},
	}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return store.Collection{}, err
	}
	if result.MatchedCount == 0 {
		return store.Collection{}, store.ErrVersionConflict
	}
	return store.Collection{Data: c.Data, Version: next}, nil
}

// Names lists every stored collection name.
func (r *mongoCollectionStore) Names(ctx context.Context) ([]string, error) {
	findOptions := options.Find().
		SetProjection(bson.M{"_id": 1}).
		SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []struct {
		Name string `bson:"_id"`
	}
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(docs))
	for _, d := range docs {
		names = append(names, d.Name)
	}
	return names, nil
}

// EnsureCollectionIndexes creates necessary indexes. Call during startup.
func EnsureCollectionIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "updatedAt", Value: -1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// CollectionsCollection returns the mongo collection the store writes to.
func CollectionsCollection(db *mongo.Database) *mongo.Collection {
	return db.Collection(collectionsCollectionName)
}
