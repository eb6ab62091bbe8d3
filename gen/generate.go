//go:build !wasm

package gen

import (
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"

	. "github.com/tinywasm/fmt"
)

// GenerateForStruct reads goFile and writes the schema function for one struct.
func (g *Gen) GenerateForStruct(structName string, goFile string) error {
	info, err := g.ParseStruct(structName, goFile)
	if err != nil {
		return err
	}
	if len(info.Fields) == 0 {
		return nil
	}
	return g.GenerateForFile([]StructInfo{info}, goFile)
}

// GenerateForFile writes one <Struct>Schema function per info into
// <sourceFile>_schema.go.
func (g *Gen) GenerateForFile(infos []StructInfo, sourceFile string) error {
	if len(infos) == 0 {
		return nil
	}
	buf := Convert()

	buf.Write("// Code generated by schemagen; DO NOT EDIT.\n\n")
	buf.Write(Sprintf("package %s\n\n", infos[0].PackageName))
	buf.Write("import (\n")
	buf.Write("\t\"github.com/tinywasm/schema\"\n")
	buf.Write(")\n\n")

	for _, info := range infos {
		pks := info.PrimaryKeys()
		composite := len(pks) > 1

		buf.Write(Sprintf("// %sSchema declares the %s table.\n", info.Name, info.TableName))
		buf.Write(Sprintf("func %sSchema(db *schema.DB) *schema.Builder {\n", info.Name))
		buf.Write(Sprintf("\treturn db.Schema(\"%s\")", info.TableName))

		for _, f := range info.Fields {
			var constraints []string
			if f.IsPK && !composite {
				if f.Auto {
					constraints = append(constraints, "schema.Identifier{Auto: true}")
				} else {
					constraints = append(constraints, "schema.Identifier{}")
				}
			}
			if f.NotNull {
				constraints = append(constraints, "schema.Required{}")
			}
			buf.Write(Sprintf(".\n\t\tField(\"%s\", %s", f.ColumnName, f.Kind))
			for _, c := range constraints {
				buf.Write(", " + c)
			}
			buf.Write(")")
		}

		if composite {
			buf.Write(".\n\t\tCompositeIdentifier(" + quoted(pks) + ")")
		}
		for _, f := range info.Fields {
			if f.Unique {
				buf.Write(Sprintf(".\n\t\tUnique(\"%s\")", f.ColumnName))
			}
		}
		for _, f := range info.Fields {
			if f.Ref == "" {
				continue
			}
			refCol := f.RefColumn
			if refCol == "" {
				refCol = "id"
			}
			buf.Write(Sprintf(".\n\t\tForeignKey(\"%s\", \"%s\", \"%s\")", f.ColumnName, f.Ref, refCol))
		}
		buf.Write("\n}\n\n")
	}

	outName := Convert(sourceFile).TrimSuffix(".go").String() + "_schema.go"
	return os.WriteFile(outName, buf.Bytes(), 0644)
}

func quoted(cols []string) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = "\"" + c + "\""
	}
	return Convert(parts).Join(", ").String()
}

// collectAllStructs walks rootDir and returns every parsed StructInfo keyed
// by struct name, plus struct and file order for stable output.
func (g *Gen) collectAllStructs() (map[string]StructInfo, []string, []string, error) {
	all := make(map[string]StructInfo)
	var structOrder []string
	var fileOrder []string
	fileSeen := make(map[string]bool)

	err := filepath.Walk(g.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			switch info.Name() {
			case "vendor", ".git", "testdata":
				return filepath.SkipDir
			}
			return nil
		}

		fileName := info.Name()
		if fileName != "model.go" && fileName != "models.go" {
			return nil
		}
		node, err := parser.ParseFile(token.NewFileSet(), path, nil, parser.ParseComments)
		if err != nil {
			return nil
		}

		for _, decl := range node.Decls {
			genDecl, ok := decl.(*ast.GenDecl)
			if !ok || genDecl.Tok != token.TYPE {
				continue
			}
			for _, spec := range genDecl.Specs {
				typeSpec, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}
				if _, ok := typeSpec.Type.(*ast.StructType); !ok {
					continue
				}
				s, err := g.ParseStruct(typeSpec.Name.Name, path)
				if err != nil {
					g.log(Sprintf("Skipping %s in %s: %v", typeSpec.Name.Name, path, err))
					continue
				}
				if len(s.Fields) == 0 {
					g.log(Sprintf("Warning: %s has no mappable fields; skipping", typeSpec.Name.Name))
					continue
				}
				s.SourceFile = path
				all[s.Name] = s
				structOrder = append(structOrder, s.Name)
				if !fileSeen[path] {
					fileSeen[path] = true
					fileOrder = append(fileOrder, path)
				}
			}
		}
		return nil
	})

	return all, structOrder, fileOrder, err
}

// Run scans rootDir for model.go and models.go files and writes a
// _schema.go next to each.
func (g *Gen) Run() error {
	all, structOrder, fileOrder, err := g.collectAllStructs()
	if err != nil {
		return Err(err, "error walking directory")
	}
	if len(all) == 0 {
		return Err("no models found")
	}

	g.ResolveReferences(all)

	byFile := make(map[string][]StructInfo)
	for _, name := range structOrder {
		info := all[name]
		byFile[info.SourceFile] = append(byFile[info.SourceFile], info)
	}
	for _, sourceFile := range fileOrder {
		if err := g.GenerateForFile(byFile[sourceFile], sourceFile); err != nil {
			return Err(err, "failed to write output for", sourceFile)
		}
	}
	return nil
}
