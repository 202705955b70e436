// Package mongodb keeps users and tasks in two MongoDB collections using
// the document shape of the original Mongoose models.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/adanyl0v/go-todo-tracker/internal/models"
	"github.com/adanyl0v/go-todo-tracker/internal/storage"
)

const (
	usersCollection = "users"
	tasksCollection = "tasks"
)

type Store struct {
	client *mongo.Client
	users  *mongo.Collection
	tasks  *mongo.Collection
}

var _ storage.Store = (*Store)(nil)

// New binds the store to database and creates the indexes it relies on.
func New(ctx context.Context, client *mongo.Client, database string) (*Store, error) {
	db := client.Database(database)
	s := &Store{
		client: client,
		users:  db.Collection(usersCollection),
		tasks:  db.Collection(tasksCollection),
	}

	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create username index: %w", err)
	}

	_, err = s.tasks.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user", Value: 1}, {Key: "_id", Value: 1}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks index: %w", err)
	}
	return s, nil
}

type userDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Username  string             `bson:"username"`
	Password  string             `bson:"password"`
	CreatedAt time.Time          `bson:"date"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

type taskDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    primitive.ObjectID `bson:"user"`
	Text      string             `bson:"text"`
	Completed bool               `bson:"completed"`
	DueDate   *time.Time         `bson:"dueDate,omitempty"`
	Category  *string            `bson:"category,omitempty"`
	Priority  *string            `bson:"priority,omitempty"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d *taskDocument) toModel() *models.Task {
	task := &models.Task{
		ID:        d.ID.Hex(),
		UserID:    d.UserID.Hex(),
		Text:      d.Text,
		Completed: d.Completed,
		DueDate:   d.DueDate,
		Category:  d.Category,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if d.DueDate != nil {
		due := d.DueDate.UTC()
		task.DueDate = &due
	}
	if d.Priority != nil {
		value := models.Priority(*d.Priority)
		task.Priority = &value
	}
	return task
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) UsernameExists(ctx context.Context, username string) (bool, error) {
	n, err := s.users.CountDocuments(ctx, bson.M{"username": username}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to count users: %w", err)
	}
	return n > 0, nil
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	doc := userDocument{
		ID:        primitive.NewObjectID(),
		Username:  user.Username,
		Password:  user.PasswordHash,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}

	_, err := s.users.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return storage.ErrDuplicate
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	user.ID = doc.ID.Hex()
	return nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var doc userDocument
	err := s.users.FindOne(ctx, bson.M{"username": username}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return &models.User{
		ID:           doc.ID.Hex(),
		Username:     doc.Username,
		PasswordHash: doc.Password,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}, nil
}

func (s *Store) ListTasksByUserID(ctx context.Context, userID string) ([]*models.Task, error) {
	tasks := make([]*models.Task, 0)
	ownerID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return tasks, nil
	}

	cursor, err := s.tasks.Find(ctx,
		bson.M{"user": ownerID},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find tasks: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var doc taskDocument
		err = cursor.Decode(&doc)
		if err != nil {
			return nil, fmt.Errorf("failed to decode task: %w", err)
		}
		tasks = append(tasks, doc.toModel())
	}

	err = cursor.Err()
	if err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}
	return tasks, nil
}

func (s *Store) CreateTask(ctx context.Context, task *models.Task) error {
	ownerID, err := primitive.ObjectIDFromHex(task.UserID)
	if err != nil {
		return fmt.Errorf("invalid owner id %q: %w", task.UserID, err)
	}

	doc := taskDocument{
		ID:        primitive.NewObjectID(),
		UserID:    ownerID,
		Text:      task.Text,
		Completed: task.Completed,
		DueDate:   task.DueDate,
		Category:  task.Category,
		CreatedAt: task.CreatedAt,
		UpdatedAt: task.UpdatedAt,
	}
	if task.Priority != nil {
		value := string(*task.Priority)
		doc.Priority = &value
	}

	_, err = s.tasks.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}

	task.ID = doc.ID.Hex()
	return nil
}

func (s *Store) GetTaskByID(ctx context.Context, taskID string) (*models.Task, error) {
	id, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return nil, storage.ErrNotFound
	}

	var doc taskDocument
	err = s.tasks.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return doc.toModel(), nil
}

// ownedFilter matches a task by id and owner. ok is false when either id
// is malformed, in which case nothing can match.
func ownedFilter(taskID, userID string) (filter bson.M, ok bool) {
	id, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return nil, false
	}
	ownerID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, false
	}
	return bson.M{"_id": id, "user": ownerID}, true
}

func patchUpdate(patch models.TaskPatch, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	unset := bson.M{}

	if patch.Text != nil {
		set["text"] = *patch.Text
	}
	if patch.Completed != nil {
		set["completed"] = *patch.Completed
	}
	if patch.DueDateSet {
		if patch.DueDate != nil {
			set["dueDate"] = *patch.DueDate
		} else {
			unset["dueDate"] = ""
		}
	}
	if patch.CategorySet {
		if patch.Category != nil {
			set["category"] = *patch.Category
		} else {
			unset["category"] = ""
		}
	}
	if patch.PrioritySet {
		if patch.Priority != nil {
			set["priority"] = string(*patch.Priority)
		} else {
			unset["priority"] = ""
		}
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return update
}

func (s *Store) UpdateTask(ctx context.Context, taskID, userID string, patch models.TaskPatch) (*models.Task, error) {
	filter, ok := ownedFilter(taskID, userID)
	if !ok {
		return nil, storage.ErrNotFound
	}

	var doc taskDocument
	err := s.tasks.FindOneAndUpdate(ctx,
		filter,
		patchUpdate(patch, time.Now().UTC()),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return doc.toModel(), nil
}

func (s *Store) DeleteTask(ctx context.Context, taskID, userID string) error {
	filter, ok := ownedFilter(taskID, userID)
	if !ok {
		return storage.ErrNotFound
	}

	res, err := s.tasks.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}
