package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	dom "github.com/xixhienxix/task-list/internal/domain"
	"github.com/xixhienxix/task-list/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type accountDoc struct {
	ID    primitive.ObjectID `bson:"_id,omitempty"`
	Email string             `bson:"email"`
	Name  string             `bson:"name,omitempty"`
}

type taskDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Titulo        string             `bson:"titulo"`
	Descripcion   string             `bson:"descripcion"`
	Estado        bool               `bson:"estado"`
	FechaCreacion time.Time          `bson:"fecha_creacion,omitempty"`
}

func (d taskDoc) task() dom.Task {
	return dom.Task{
		ID:            d.ID.Hex(),
		Titulo:        d.Titulo,
		Descripcion:   d.Descripcion,
		Estado:        d.Estado,
		FechaCreacion: d.FechaCreacion.UTC(),
	}
}

// EnsureMongoIndexes creates the unique email index on the accounts
// collection. It is idempotent.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(AccountsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return fmt.Errorf("mongo create email index: %w", err)
	}
	return nil
}

// MongoAccountRepo implements AccountRepo over the usuarios collection.
type MongoAccountRepo struct {
	coll *mongo.Collection
}

func NewMongoAccountRepo(db *mongo.Database) *MongoAccountRepo {
	return &MongoAccountRepo{coll: db.Collection(AccountsCollection)}
}

func (r *MongoAccountRepo) FindByEmail(ctx context.Context, email string) (dom.Account, error) {
	var doc accountDoc
	err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return dom.Account{}, ErrNotFound
	}
	if err != nil {
		return dom.Account{}, fmt.Errorf("mongo find account: %w", err)
	}
	return dom.Account{ID: doc.ID.Hex(), Email: doc.Email, Name: doc.Name}, nil
}

func (r *MongoAccountRepo) Create(ctx context.Context, email, name string) (dom.Account, error) {
	doc := accountDoc{ID: primitive.NewObjectID(), Email: email, Name: name}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if utils.IsMongoDuplicateKey(err) {
			return dom.Account{}, ErrDuplicate
		}
		return dom.Account{}, fmt.Errorf("mongo create account: %w", err)
	}
	return dom.Account{ID: doc.ID.Hex(), Email: email, Name: name}, nil
}

// MongoTaskRepo implements TaskRepo over the tareas collection.
// Ids are ObjectID hex strings; a malformed id is reported as not found.
type MongoTaskRepo struct {
	coll *mongo.Collection
}

func NewMongoTaskRepo(db *mongo.Database) *MongoTaskRepo {
	return &MongoTaskRepo{coll: db.Collection(TasksCollection)}
}

func (r *MongoTaskRepo) List(ctx context.Context) ([]dom.Task, error) {
	cur, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "fecha_creacion", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("mongo list tasks: %w", err)
	}
	var docs []taskDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo decode tasks: %w", err)
	}
	list := make([]dom.Task, 0, len(docs))
	for _, d := range docs {
		list = append(list, d.task())
	}
	return list, nil
}

func (r *MongoTaskRepo) Create(ctx context.Context, t dom.Task) (dom.Task, error) {
	doc := taskDoc{
		ID:            primitive.NewObjectID(),
		Titulo:        t.Titulo,
		Descripcion:   t.Descripcion,
		Estado:        t.Estado,
		FechaCreacion: t.FechaCreacion,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return dom.Task{}, fmt.Errorf("mongo create task: %w", err)
	}
	t.ID = doc.ID.Hex()
	return t, nil
}

func (r *MongoTaskRepo) Get(ctx context.Context, id string) (dom.Task, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return dom.Task{}, ErrNotFound
	}
	var doc taskDoc
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return dom.Task{}, ErrNotFound
	}
	if err != nil {
		return dom.Task{}, fmt.Errorf("mongo get task: %w", err)
	}
	return doc.task(), nil
}

func (r *MongoTaskRepo) Update(ctx context.Context, id string, patch dom.TaskPatch) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	set := bson.M{}
	if patch.Titulo != nil {
		set["titulo"] = *patch.Titulo
	}
	if patch.Descripcion != nil {
		set["descripcion"] = *patch.Descripcion
	}
	if patch.Estado != nil {
		set["estado"] = *patch.Estado
	}
	if len(set) == 0 {
		_, err := r.Get(ctx, id)
		return err
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("mongo update task: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoTaskRepo) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("mongo delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
