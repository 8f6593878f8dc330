package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/matzehuels/sugarcheck/pkg/errors"
	"github.com/matzehuels/sugarcheck/pkg/model"
	"github.com/matzehuels/sugarcheck/pkg/pipeline"
	"github.com/matzehuels/sugarcheck/pkg/sugar"
)

func report(structure string) *pipeline.Report {
	return &pipeline.Report{
		Structure: structure,
		Hash:      "h-" + structure,
		Sugars: []*sugar.Sugar{{
			Residue:      model.ResidueID{Chain: "A", Name: "NAG", Seq: 401},
			Supported:    true,
			Denomination: "beta-D-aldopyranose",
		}},
	}
}

func TestMemoryStorePutGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0)

	rep := report("1ABC")
	id, err := s.Put(ctx, rep)
	if err != nil {
		t.Fatal(err)
	}
	if err := ValidateID(id); err != nil {
		t.Errorf("Put assigned an invalid ID: %v", err)
	}
	if rep.ID != id || rep.CreatedAt.IsZero() {
		t.Error("Put should set ID and CreatedAt on the report")
	}

	got, err := s.Get(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if got.Structure != "1ABC" {
		t.Errorf("Structure = %q", got.Structure)
	}

	_, err = s.Get(ctx, NewID())
	if !errors.Is(err, errors.ErrCodeReportNotFound) {
		t.Errorf("Get(unknown) error = %v", err)
	}
}

func TestMemoryStoreKeepsID(t *testing.T) {
	s := NewMemoryStore(0)
	rep := report("1ABC")
	rep.ID = "fixed"
	id, _ := s.Put(context.Background(), rep)
	if id != "fixed" {
		t.Errorf("Put replaced an existing ID: %s", id)
	}
}

func TestMemoryStoreEviction(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(2)
	first, _ := s.Put(ctx, report("1AAA"))
	s.Put(ctx, report("2BBB"))
	s.Put(ctx, report("3CCC"))

	if _, err := s.Get(ctx, first); !errors.Is(err, errors.ErrCodeReportNotFound) {
		t.Error("oldest report should be evicted")
	}
	list, err := s.List(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Structure != "3CCC" || list[1].Structure != "2BBB" {
		t.Errorf("List() = %+v", list)
	}
	if list[0].Sugars != 1 {
		t.Errorf("Sugars = %d, want 1", list[0].Sugars)
	}
}

func TestMemoryStoreListLimitAndDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0)
	var ids []string
	for _, name := range []string{"1AAA", "2BBB", "3CCC"} {
		id, _ := s.Put(ctx, report(name))
		ids = append(ids, id)
	}
	list, _ := s.List(ctx, 1)
	if len(list) != 1 || list[0].ID != ids[2] {
		t.Errorf("List(1) = %+v", list)
	}

	if err := s.Delete(ctx, ids[1]); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, ids[1]); !errors.Is(err, errors.ErrCodeReportNotFound) {
		t.Errorf("second Delete error = %v", err)
	}
	list, _ = s.List(ctx, 0)
	if len(list) != 2 {
		t.Errorf("got %d reports after delete, want 2", len(list))
	}
}

func TestValidateID(t *testing.T) {
	if err := ValidateID(NewID()); err != nil {
		t.Error(err)
	}
	if err := ValidateID("../etc/passwd"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("ValidateID(path) error = %v", err)
	}
}

func TestNewMongoStoreRejectsURL(t *testing.T) {
	_, err := NewMongoStore(context.Background(), "redis://localhost:6379", "")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeInvalidInput)
	}
}

func TestMongoStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("put", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))
		s := NewMongoStoreFromCollection(mt.Coll)
		id, err := s.Put(context.Background(), report("1ABC"))
		if err != nil {
			mt.Fatal(err)
		}
		if ValidateID(id) != nil {
			mt.Errorf("invalid ID %q", id)
		}
	})

	mt.Run("get", func(mt *mtest.T) {
		rep := report("1ABC")
		rep.ID = NewID()
		data, _ := json.Marshal(rep)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: rep.ID},
			{Key: "structure", Value: rep.Structure},
			{Key: "report", Value: data},
		}))
		got, err := NewMongoStoreFromCollection(mt.Coll).Get(context.Background(), rep.ID)
		if err != nil {
			mt.Fatal(err)
		}
		if got.Structure != "1ABC" || len(got.Sugars) != 1 {
			mt.Errorf("got %+v", got)
		}
	})

	mt.Run("get missing", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		_, err := NewMongoStoreFromCollection(mt.Coll).Get(context.Background(), NewID())
		if !errors.Is(err, errors.ErrCodeReportNotFound) {
			mt.Errorf("error = %v, want %s", err, errors.ErrCodeReportNotFound)
		}
	})

	mt.Run("list", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		now := time.Now().UTC().Truncate(time.Millisecond)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "b"}, {Key: "structure", Value: "2BBB"}, {Key: "created_at", Value: now}, {Key: "sugars", Value: 3}},
			bson.D{{Key: "_id", Value: "a"}, {Key: "structure", Value: "1AAA"}, {Key: "created_at", Value: now.Add(-time.Hour)}},
		))
		list, err := NewMongoStoreFromCollection(mt.Coll).List(context.Background(), 10)
		if err != nil {
			mt.Fatal(err)
		}
		if len(list) != 2 || list[0].ID != "b" || list[0].Sugars != 3 || !list[0].CreatedAt.Equal(now) {
			mt.Errorf("List() = %+v", list)
		}
	})

	mt.Run("delete missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))
		err := NewMongoStoreFromCollection(mt.Coll).Delete(context.Background(), "x")
		if !errors.Is(err, errors.ErrCodeReportNotFound) {
			mt.Errorf("error = %v, want %s", err, errors.ErrCodeReportNotFound)
		}
	})

	mt.Run("close without client", func(mt *mtest.T) {
		if err := NewMongoStoreFromCollection(mt.Coll).Close(); err != nil {
			mt.Error(err)
		}
	})
}
