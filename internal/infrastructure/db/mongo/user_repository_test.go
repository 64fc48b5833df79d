package mongo

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestUserIndexModels_EmailUniquenessIsPartial(t *testing.T) {
	models := userIndexModels()
	if len(models) != 2 {
		t.Fatalf("expected 2 index models, got %d", len(models))
	}

	var checked bool
	for _, m := range models {
		keys, ok := m.Keys.(bson.D)
		if !ok || len(keys) != 1 {
			t.Fatalf("unexpected index keys: %#v", m.Keys)
		}

		if m.Options == nil || m.Options.Unique == nil || !*m.Options.Unique {
			t.Fatalf("index on %s must be unique", keys[0].Key)
		}

		if keys[0].Key != "email" {
			continue
		}
		checked = true

		// Accounts without an email must not collide on the unique index.
		filter, ok := m.Options.PartialFilterExpression.(bson.D)
		if !ok {
			t.Fatalf("email index must carry a partial filter, got %#v", m.Options.PartialFilterExpression)
		}
		if len(filter) != 1 || filter[0].Key != "email" {
			t.Fatalf("unexpected partial filter: %#v", filter)
		}
	}
	if !checked {
		t.Fatal("no email index found")
	}
}
