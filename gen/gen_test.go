//go:build !wasm

package gen_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tinywasm/schema/gen"
)

const model = "testdata/model.go"

func TestGen_ParseStruct(t *testing.T) {
	g := gen.NewGen()

	t.Run("types, tags and defaults", func(t *testing.T) {
		info, err := g.ParseStruct("User", model)
		if err != nil {
			t.Fatal(err)
		}
		if info.TableName != "users" || info.TableNameDeclared {
			t.Errorf("unexpected table %q declared=%v", info.TableName, info.TableNameDeclared)
		}
		if info.PackageName != "models" {
			t.Errorf("unexpected package %q", info.PackageName)
		}

		want := map[string]string{
			"id":         "schema.TypeInt64",
			"email":      "schema.TypeString",
			"nickname":   "schema.TypeString",
			"tags":       "schema.Array{Of: schema.TypeString}",
			"settings":   "schema.Dictionary{Of: schema.TypeJSON}",
			"created_at": "schema.TypeDatetime",
		}
		if len(info.Fields) != len(want) {
			t.Fatalf("expected %d fields, got %d: %+v", len(want), len(info.Fields), info.Fields)
		}
		for _, f := range info.Fields {
			if want[f.ColumnName] != f.Kind {
				t.Errorf("%s: expected %s, got %s", f.ColumnName, want[f.ColumnName], f.Kind)
			}
		}

		id, email := info.Fields[0], info.Fields[1]
		if !id.IsPK || !id.Auto {
			t.Errorf("id must be an auto primary key: %+v", id)
		}
		if !email.Unique || !email.NotNull || email.IsPK {
			t.Errorf("email flags wrong: %+v", email)
		}
	})

	t.Run("declared table name and composite key", func(t *testing.T) {
		info, err := g.ParseStruct("Membership", model)
		if err != nil {
			t.Fatal(err)
		}
		if info.TableName != "memberships" || !info.TableNameDeclared {
			t.Errorf("unexpected table %q", info.TableName)
		}
		if pks := info.PrimaryKeys(); strings.Join(pks, ",") != "org,member" {
			t.Errorf("unexpected primary keys %v", pks)
		}
		if f := info.Fields[1]; f.Ref != "users" || f.RefColumn != "id" {
			t.Errorf("unexpected ref %+v", f)
		}
	})

	t.Run("errors", func(t *testing.T) {
		if _, err := g.ParseStruct("", model); err == nil {
			t.Error("expected error for empty struct name")
		}
		if _, err := g.ParseStruct("User", ""); err == nil {
			t.Error("expected error for empty file")
		}
		if _, err := g.ParseStruct("Nope", model); err == nil {
			t.Error("expected error for missing struct")
		}
		if _, err := g.ParseStruct("BadAutoInc", model); err == nil {
			t.Error("expected error for autoincrement on a string")
		}
	})
}

func TestGen_ResolveReferences(t *testing.T) {
	var logged []string
	g := gen.NewGen()
	g.SetLog(func(messages ...any) {
		logged = append(logged, fmt.Sprint(messages...))
	})

	all := map[string]gen.StructInfo{}
	for _, name := range []string{"User", "Order", "Dangling"} {
		info, err := g.ParseStruct(name, model)
		if err != nil {
			t.Fatal(err)
		}
		all[name] = info
	}
	g.ResolveReferences(all)

	if col := all["Order"].Fields[1].RefColumn; col != "id" {
		t.Errorf("expected Order.Owner to resolve to users.id, got %q", col)
	}
	if col := all["Dangling"].Fields[1].RefColumn; col != "" {
		t.Errorf("unknown table must stay unresolved, got %q", col)
	}
	found := false
	for _, l := range logged {
		if strings.Contains(l, "unknown table missing") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an unknown-table warning, got %v", logged)
	}
}

func copyModel(t *testing.T) string {
	t.Helper()
	src, err := os.ReadFile(model)
	if err != nil {
		t.Fatal(err)
	}
	dst := filepath.Join(t.TempDir(), "model.go")
	if err := os.WriteFile(dst, src, 0644); err != nil {
		t.Fatal(err)
	}
	return dst
}

func TestGen_GenerateForStruct(t *testing.T) {
	path := copyModel(t)
	if err := gen.NewGen().GenerateForStruct("User", path); err != nil {
		t.Fatal(err)
	}

	content, err := os.ReadFile(strings.TrimSuffix(path, ".go") + "_schema.go")
	if err != nil {
		t.Fatal(err)
	}
	s := string(content)

	for _, want := range []string{
		"// Code generated by schemagen; DO NOT EDIT.",
		"package models",
		"func UserSchema(db *schema.DB) *schema.Builder {",
		`return db.Schema("users")`,
		`Field("id", schema.TypeInt64, schema.Identifier{Auto: true})`,
		`Field("email", schema.TypeString, schema.Required{})`,
		`Field("tags", schema.Array{Of: schema.TypeString})`,
		`Unique("email")`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("generated code missing %q:\n%s", want, s)
		}
	}
	for _, absent := range []string{"password", "age"} {
		if strings.Contains(s, absent) {
			t.Errorf("field %q must not be generated", absent)
		}
	}
}

func TestGen_Run(t *testing.T) {
	t.Run("scans dir and generates all structs", func(t *testing.T) {
		path := copyModel(t)

		var logged []string
		g := gen.NewGen()
		g.SetRootDir(filepath.Dir(path))
		g.SetLog(func(messages ...any) {
			logged = append(logged, fmt.Sprint(messages...))
		})
		if err := g.Run(); err != nil {
			t.Fatalf("Run() failed: %v", err)
		}

		content, err := os.ReadFile(filepath.Join(filepath.Dir(path), "model_schema.go"))
		if err != nil {
			t.Fatal(err)
		}
		s := string(content)
		for _, want := range []string{
			"func UserSchema(",
			"func OrderSchema(",
			`Field("id", schema.TypeUUID, schema.Identifier{})`,
			`ForeignKey("owner", "users", "id")`,
			`CompositeIdentifier("org", "member")`,
		} {
			if !strings.Contains(s, want) {
				t.Errorf("generated code missing %q", want)
			}
		}
		if strings.Contains(s, "EmptySchema") || strings.Contains(s, "BadAutoIncSchema") {
			t.Error("structs without fields or with errors must be skipped")
		}
		if len(logged) == 0 {
			t.Error("expected warnings to be logged")
		}
	})

	t.Run("returns error when no models found", func(t *testing.T) {
		g := gen.NewGen()
		g.SetRootDir(t.TempDir())
		if err := g.Run(); err == nil {
			t.Error("expected error for empty directory")
		}
	})
}
