package manifest_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tinywasm/schema"
	"github.com/tinywasm/schema/manifest"
	"github.com/tinywasm/schema/memexec"
)

const usersYAML = `
schema: users
space: app
action: create
fields:
  - {name: id, type: uuid, identifier: true}
  - {name: email, type: string, required: true}
  - {name: org_id, type: uuid, references: {schema: orgs, field: id, on_delete: cascade}}
  - {name: tags, type: "[]string"}
unique:
  - fields: [email]
foreign_keys:
  - fields: [org_id]
    schema: orgs
    foreign_fields: [id]
    on_update: set null
    name: fk_users_org
`

func submitted(t *testing.T, m *manifest.Manifest) *schema.Schema {
	t.Helper()
	var got *schema.Schema
	db := schema.New(schema.ExecutorFunc(func(_ context.Context, s *schema.Schema) error {
		got = s
		return nil
	}))
	require.NoError(t, m.Submit(context.Background(), db).Wait())
	return got
}

func TestDecode_Create(t *testing.T) {
	m, err := manifest.Decode(strings.NewReader(usersYAML))
	require.NoError(t, err)

	s := submitted(t, m)
	require.Equal(t, schema.ActionCreate, s.Action)
	require.Equal(t, "app", s.Space)
	require.Equal(t, "users", s.Name)
	require.True(t, s.ExclusiveCreate)

	require.Len(t, s.CreateFields, 4)
	require.Equal(t, schema.FieldDefinition{
		Name:        schema.KeyID,
		DataType:    schema.TypeUUID,
		Constraints: []schema.FieldConstraint{schema.Identifier{Auto: false}},
	}, s.CreateFields[0])
	require.Equal(t, []schema.FieldConstraint{schema.Required{}}, s.CreateFields[1].Constraints)
	require.Equal(t, []schema.FieldConstraint{schema.References{
		Schema:   "orgs",
		Field:    schema.KeyID,
		OnDelete: schema.Cascade,
	}}, s.CreateFields[2].Constraints)
	require.Equal(t, schema.Array{Of: schema.TypeString}, s.CreateFields[3].DataType)

	require.Len(t, s.CreateConstraints, 2)
	require.Equal(t, schema.Unique{Fields: []schema.FieldName{schema.FieldKey("email")}}, s.CreateConstraints[0].Algorithm)
	require.Equal(t, "fk_users_org", s.CreateConstraints[1].Name)
	fk := s.CreateConstraints[1].Algorithm.(schema.ForeignKey)
	require.Equal(t, schema.SetNull, fk.OnUpdate)
	require.Equal(t, schema.NoAction, fk.OnDelete)
}

func TestDecode_Update(t *testing.T) {
	m, err := manifest.Decode(strings.NewReader(`
schema: users
action: update
update_fields:
  - {name: email, type: "sql:VARCHAR(320)"}
delete_fields: [nickname]
delete_constraints:
  - unique: [email]
  - name: fk_users_org
  - custom: DROP INDEX legacy
`))
	require.NoError(t, err)

	s := submitted(t, m)
	require.Equal(t, schema.ActionUpdate, s.Action)
	require.Equal(t, []schema.FieldUpdate{{Name: schema.FieldKey("email"), DataType: schema.CustomType("VARCHAR(320)")}}, s.UpdateFields)
	require.Equal(t, []schema.FieldName{schema.FieldKey("nickname")}, s.DeleteFields)
	require.Equal(t, []schema.ConstraintDelete{
		schema.DropConstraint{Algorithm: schema.Unique{Fields: []schema.FieldName{schema.FieldKey("email")}}},
		schema.DropName("fk_users_org"),
		schema.CustomConstraintDelete("DROP INDEX legacy"),
	}, s.DeleteConstraints)
}

func TestDecode_IgnoreExisting(t *testing.T) {
	m, err := manifest.Decode(strings.NewReader("schema: users\nignore_existing: true\nfields: [{name: id, type: uuid}]\n"))
	require.NoError(t, err)
	require.False(t, submitted(t, m).ExclusiveCreate)
}

func TestDecode_Rejects(t *testing.T) {
	for name, doc := range map[string]string{
		"no schema":     "action: create\n",
		"bad action":    "schema: users\naction: rename\n",
		"unknown key":   "schema: users\ncolour: red\n",
		"not a mapping": "- users\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := manifest.Decode(strings.NewReader(doc))
			require.Error(t, err)
		})
	}
}

func TestSubmit_BadType(t *testing.T) {
	m, err := manifest.Decode(strings.NewReader("schema: users\nfields: [{name: id, type: bignum}]\n"))
	require.NoError(t, err)

	db := schema.New(schema.ExecutorFunc(func(context.Context, *schema.Schema) error {
		t.Error("executor must not run")
		return nil
	}))
	require.ErrorIs(t, m.Submit(context.Background(), db).Wait(), schema.ErrValidation)
}

func TestSubmit_Memexec(t *testing.T) {
	cat := memexec.New()
	db := schema.New(cat)

	orgs := "schema: orgs\nfields: [{name: id, type: uuid, identifier: true}]\n"
	for _, doc := range []string{orgs, usersYAML} {
		m, err := manifest.Decode(strings.NewReader(doc))
		require.NoError(t, err)
		require.NoError(t, m.Submit(context.Background(), db).Wait())
	}

	table, ok := cat.Table("app", "users")
	require.True(t, ok)
	require.Len(t, table.Fields, 4)
}

func TestParseDataType(t *testing.T) {
	cases := []struct {
		in   string
		want schema.DataType
	}{
		{"string", schema.TypeString},
		{"int64", schema.TypeInt64},
		{" uuid ", schema.TypeUUID},
		{"[]string", schema.Array{Of: schema.TypeString}},
		{"[][]int32", schema.Array{Of: schema.Array{Of: schema.TypeInt32}}},
		{"map[string]json", schema.Dictionary{Of: schema.TypeJSON}},
		{"enum:status(open | closed)", schema.Enum{Name: "status", Cases: []string{"open", "closed"}}},
		{"sql:VARCHAR(32)", schema.CustomType("VARCHAR(32)")},
	}
	for _, tc := range cases {
		got, err := manifest.ParseDataType(tc.in)
		require.NoError(t, err, tc.in)
		require.Equal(t, tc.want, got, tc.in)
	}

	for _, bad := range []string{"", "bignum", "[]", "enum:status", "enum:(a)", "enum:s()", "sql:"} {
		_, err := manifest.ParseDataType(bad)
		require.ErrorIs(t, err, schema.ErrValidation, bad)
	}
}

func TestParseAction(t *testing.T) {
	for in, want := range map[string]schema.ForeignKeyAction{
		"":            schema.NoAction,
		"cascade":     schema.Cascade,
		"SET NULL":    schema.SetNull,
		"set-default": schema.SetDefault,
		"restrict":    schema.Restrict,
		"no action":   schema.NoAction,
	} {
		got, err := manifest.ParseAction(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}
	_, err := manifest.ParseAction("explode")
	require.ErrorIs(t, err, schema.ErrValidation)
}
