package mongodb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/adanyl0v/go-todo-tracker/internal/models"
)

func TestPatchUpdate_SetsAndUnsets(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	text := "walk the dog"
	priority := models.PriorityLow

	update := patchUpdate(models.TaskPatch{
		Text:        &text,
		Priority:    &priority,
		PrioritySet: true,
		CategorySet: true,
	}, now)

	require.Equal(t, bson.M{
		"$set": bson.M{
			"updatedAt": now,
			"text":      "walk the dog",
			"priority":  "low",
		},
		"$unset": bson.M{"category": ""},
	}, update)
}

func TestPatchUpdate_EmptyPatchOnlyTouchesUpdatedAt(t *testing.T) {
	now := time.Now().UTC()
	require.Equal(t, bson.M{"$set": bson.M{"updatedAt": now}}, patchUpdate(models.TaskPatch{}, now))
}

func TestOwnedFilter(t *testing.T) {
	id := primitive.NewObjectID()
	owner := primitive.NewObjectID()

	filter, ok := ownedFilter(id.Hex(), owner.Hex())
	require.True(t, ok)
	require.Equal(t, bson.M{"_id": id, "user": owner}, filter)

	_, ok = ownedFilter("not-an-id", owner.Hex())
	require.False(t, ok)

	_, ok = ownedFilter(id.Hex(), "0190a8a4-5b7e-7cc2-9f0a-2d1e4b8f6a11")
	require.False(t, ok)
}
