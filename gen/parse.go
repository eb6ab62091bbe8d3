//go:build !wasm

package gen

import (
	"go/ast"
	"go/parser"
	"go/token"

	. "github.com/tinywasm/fmt"
)

type FieldInfo struct {
	Name       string
	ColumnName string
	// Kind is the schema.DataType expression written into generated code,
	// e.g. "schema.TypeInt64" or "schema.Array{Of: schema.TypeString}".
	Kind      string
	IsPK      bool
	Auto      bool
	NotNull   bool
	Unique    bool
	Ref       string
	RefColumn string
}

type StructInfo struct {
	Name              string
	TableName         string
	PackageName       string
	Fields            []FieldInfo
	TableNameDeclared bool
	SourceFile        string
}

// PrimaryKeys returns the columns of every field marked as primary key.
func (s StructInfo) PrimaryKeys() []string {
	var cols []string
	for _, f := range s.Fields {
		if f.IsPK {
			cols = append(cols, f.ColumnName)
		}
	}
	return cols
}

// detectTableName scans the AST for func (X) TableName() string on structName.
// Returns the literal return value if found, "" otherwise.
func detectTableName(node *ast.File, structName string) string {
	for _, decl := range node.Decls {
		funcDecl, ok := decl.(*ast.FuncDecl)
		if !ok || funcDecl.Recv == nil || len(funcDecl.Recv.List) == 0 {
			continue
		}
		if funcDecl.Name.Name != "TableName" {
			continue
		}
		recvName := ""
		switch recv := funcDecl.Recv.List[0].Type.(type) {
		case *ast.Ident:
			recvName = recv.Name
		case *ast.StarExpr:
			if ident, ok := recv.X.(*ast.Ident); ok {
				recvName = ident.Name
			}
		}
		if recvName != structName {
			continue
		}
		if funcDecl.Body != nil && len(funcDecl.Body.List) == 1 {
			if ret, ok := funcDecl.Body.List[0].(*ast.ReturnStmt); ok && len(ret.Results) == 1 {
				if lit, ok := ret.Results[0].(*ast.BasicLit); ok {
					return Convert(lit.Value).TrimPrefix(`"`).TrimSuffix(`"`).String()
				}
			}
		}
	}
	return ""
}

var scalarKinds = map[string]string{
	"bool":            "schema.TypeBool",
	"int8":            "schema.TypeInt8",
	"int16":           "schema.TypeInt16",
	"int32":           "schema.TypeInt32",
	"int":             "schema.TypeInt64",
	"int64":           "schema.TypeInt64",
	"uint8":           "schema.TypeUint8",
	"uint16":          "schema.TypeUint16",
	"uint32":          "schema.TypeUint32",
	"uint":            "schema.TypeUint64",
	"uint64":          "schema.TypeUint64",
	"string":          "schema.TypeString",
	"float32":         "schema.TypeFloat",
	"float64":         "schema.TypeDouble",
	"[]byte":          "schema.TypeData",
	"time.Time":       "schema.TypeDatetime",
	"uuid.UUID":       "schema.TypeUUID",
	"json.RawMessage": "schema.TypeJSON",
}

// typeString renders the Go type expression of a field, "" when it is not
// one kindFor understands.
func typeString(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.SelectorExpr:
		if pkgIdent, ok := t.X.(*ast.Ident); ok {
			return pkgIdent.Name + "." + t.Sel.Name
		}
	case *ast.ArrayType:
		if t.Len != nil {
			return ""
		}
		if elt := typeString(t.Elt); elt != "" {
			return "[]" + elt
		}
	case *ast.MapType:
		if key, ok := t.Key.(*ast.Ident); ok && key.Name == "string" {
			if val := typeString(t.Value); val != "" {
				return "map[string]" + val
			}
		}
	}
	return ""
}

// kindFor maps a Go type to a schema.DataType expression.
func kindFor(typeStr string) (string, bool) {
	if kind, ok := scalarKinds[typeStr]; ok {
		return kind, true
	}
	if HasPrefix(typeStr, "[]") {
		if of, ok := kindFor(Convert(typeStr).TrimPrefix("[]").String()); ok {
			return "schema.Array{Of: " + of + "}", true
		}
	}
	if HasPrefix(typeStr, "map[string]") {
		if of, ok := kindFor(Convert(typeStr).TrimPrefix("map[string]").String()); ok {
			return "schema.Dictionary{Of: " + of + "}", true
		}
	}
	return "", false
}

// ParseStruct parses a single struct from a Go file and returns its metadata.
func (g *Gen) ParseStruct(structName string, goFile string) (StructInfo, error) {
	if structName == "" {
		return StructInfo{}, Err("Please provide a struct name")
	}
	if goFile == "" {
		return StructInfo{}, Err("goFile path cannot be empty")
	}

	fset := token.NewFileSet()
	node, err := parser.ParseFile(fset, goFile, nil, parser.ParseComments)
	if err != nil {
		return StructInfo{}, Err(err, "Failed to parse file")
	}

	var targetStruct *ast.StructType
	ast.Inspect(node, func(n ast.Node) bool {
		if typeSpec, ok := n.(*ast.TypeSpec); ok && typeSpec.Name.Name == structName {
			if structType, ok := typeSpec.Type.(*ast.StructType); ok {
				targetStruct = structType
				return false
			}
		}
		return targetStruct == nil
	})
	if targetStruct == nil {
		return StructInfo{}, Err("Struct not found in file")
	}

	tableName := detectTableName(node, structName)
	declared := tableName != ""
	if !declared {
		tableName = Convert(structName + "s").SnakeLow().String()
	}

	info := StructInfo{
		Name:              structName,
		TableName:         tableName,
		PackageName:       node.Name.Name,
		TableNameDeclared: declared,
	}

	pkFound := false
	for _, field := range targetStruct.Fields.List {
		if len(field.Names) == 0 {
			continue
		}
		fieldName := field.Names[0].Name
		if !ast.IsExported(fieldName) {
			continue
		}

		dbTag := ""
		if field.Tag != nil {
			tagVal := Convert(field.Tag.Value).TrimPrefix("`").TrimSuffix("`").String()
			for _, p := range Convert(tagVal).Split(" ") {
				if HasPrefix(p, "db:\"") {
					dbTag = Convert(p).TrimPrefix(`db:"`).TrimSuffix(`"`).String()
					break
				}
			}
		}
		if dbTag == "-" {
			continue
		}

		typeStr := typeString(field.Type)
		kind, ok := kindFor(typeStr)
		if !ok {
			g.log(Sprintf("Warning: unsupported type for field %s.%s; skipping. Add db:\"-\" to suppress.", structName, fieldName))
			continue
		}

		f := FieldInfo{
			Name:       fieldName,
			ColumnName: Convert(fieldName).SnakeLow().String(),
			Kind:       kind,
		}

		isID, isPK := IDorPrimaryKey(tableName, fieldName)
		if (isID || isPK) && !pkFound {
			f.IsPK = true
			pkFound = true
		}

		if dbTag != "" {
			for _, p := range Convert(dbTag).Split(",") {
				switch {
				case p == "pk":
					f.IsPK = true
					pkFound = true
				case p == "unique":
					f.Unique = true
				case p == "not_null":
					f.NotNull = true
				case p == "autoincrement":
					if kind != "schema.TypeInt64" && kind != "schema.TypeInt32" && kind != "schema.TypeUint64" {
						return StructInfo{}, Err("autoincrement requires an integer field")
					}
					f.Auto = true
					f.IsPK = true
					pkFound = true
				case HasPrefix(p, "ref="):
					refParts := Convert(Convert(p).TrimPrefix("ref=").String()).Split(":")
					f.Ref = refParts[0]
					if len(refParts) > 1 {
						f.RefColumn = refParts[1]
					}
				}
			}
		}

		info.Fields = append(info.Fields, f)
	}

	return info, nil
}
