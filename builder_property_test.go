package schema_test

import (
	"reflect"
	"testing"

	"github.com/tinywasm/schema"
	"pgregory.net/rapid"
)

var genKey = rapid.Custom(func(t *rapid.T) schema.FieldKey {
	return schema.FieldKey(rapid.StringMatching(`[a-z][a-z0-9_]{0,7}`).Draw(t, "key"))
})

var genAction = rapid.SampledFrom([]schema.ForeignKeyAction{
	schema.NoAction, schema.Restrict, schema.Cascade, schema.SetNull, schema.SetDefault,
})

func TestAppendOrderRapid(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		db, _ := newDB()
		b := db.Schema("t")

		var fields []schema.FieldName
		var updates []schema.FieldName
		var deletes []schema.FieldName
		var uniques [][]schema.FieldName

		steps := rapid.IntRange(0, 30).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			key := genKey.Draw(t, "k")
			switch rapid.IntRange(0, 3).Draw(t, "op") {
			case 0:
				b.Field(key, schema.TypeString)
				fields = append(fields, key)
			case 1:
				b.UpdateField(key, schema.TypeInt64)
				updates = append(updates, key)
			case 2:
				b.DeleteField(key)
				deletes = append(deletes, key)
			default:
				other := genKey.Draw(t, "other")
				b.Unique(key, other)
				uniques = append(uniques, []schema.FieldName{key, other})
			}
		}

		s := b.Descriptor()
		if len(s.CreateFields) != len(fields) {
			t.Fatalf("expected %d create fields, got %d", len(fields), len(s.CreateFields))
		}
		for i, f := range s.CreateFields {
			if f.Name != fields[i] {
				t.Fatalf("create field %d: expected %v, got %v", i, fields[i], f.Name)
			}
		}
		for i, u := range s.UpdateFields {
			if u.Name != updates[i] {
				t.Fatalf("update field %d: expected %v, got %v", i, updates[i], u.Name)
			}
		}
		if len(s.UpdateFields) != len(updates) {
			t.Fatalf("expected %d updates, got %d", len(updates), len(s.UpdateFields))
		}
		if !reflect.DeepEqual(s.DeleteFields, deletes) {
			t.Fatalf("expected deletes %v, got %v", deletes, s.DeleteFields)
		}
		if len(s.CreateConstraints) != len(uniques) {
			t.Fatalf("expected %d constraints, got %d", len(uniques), len(s.CreateConstraints))
		}
		for i, c := range s.CreateConstraints {
			u := c.Algorithm.(schema.Unique)
			if !reflect.DeepEqual(u.Fields, uniques[i]) {
				t.Fatalf("constraint %d: expected %v, got %v", i, uniques[i], u.Fields)
			}
		}
	})
}

func TestForeignKeyOverloadsAgreeRapid(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		local := genKey.Draw(t, "local")
		foreign := genKey.Draw(t, "foreign")
		target := rapid.StringMatching(`[a-z]{1,8}`).Draw(t, "target")
		space := rapid.StringMatching(`[a-z]{0,4}`).Draw(t, "space")
		name := rapid.StringMatching(`[a-z_]{0,6}`).Draw(t, "name")
		onDelete := genAction.Draw(t, "onDelete")
		onUpdate := genAction.Draw(t, "onUpdate")

		opts := []schema.ForeignKeyOption{
			schema.InSpace(space), schema.OnDelete(onDelete), schema.OnUpdate(onUpdate), schema.Named(name),
		}

		db, _ := newDB()
		single := db.Schema("t").ForeignKey(local, target, foreign, opts...).Descriptor()
		multi := db.Schema("t").ForeignKeys([]schema.FieldKey{local}, target, []schema.FieldKey{foreign}, opts...).Descriptor()

		if !reflect.DeepEqual(single.CreateConstraints, multi.CreateConstraints) {
			t.Fatalf("single %#v != multi %#v", single.CreateConstraints, multi.CreateConstraints)
		}
	})
}

func TestIgnoreExistingIdempotentRapid(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		db, _ := newDB()
		b := db.Schema("t")
		n := rapid.IntRange(0, 5).Draw(t, "calls")
		for i := 0; i < n; i++ {
			b.IgnoreExisting()
		}
		if b.Descriptor().ExclusiveCreate != (n == 0) {
			t.Fatalf("after %d calls ExclusiveCreate = %v", n, b.Descriptor().ExclusiveCreate)
		}
	})
}

func TestIDMatchesField(t *testing.T) {
	db, _ := newDB()
	a := db.Schema("t").ID().Descriptor().CreateFields
	b := db.Schema("t").Field("id", schema.TypeUUID, schema.Identifier{Auto: false}).Descriptor().CreateFields
	if !reflect.DeepEqual(a, b) {
		t.Errorf("ID() %#v != Field %#v", a, b)
	}
}
