//go:build !wasm

package gen

import (
	"sort"

	. "github.com/tinywasm/fmt"
)

// ResolveReferences fills the referenced column of every ref= tag that only
// names a table, using that table's single primary key.
func (g *Gen) ResolveReferences(all map[string]StructInfo) {
	byTable := make(map[string]StructInfo, len(all))
	var names []string
	for name, info := range all {
		byTable[info.TableName] = info
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		info := all[name]
		for i, f := range info.Fields {
			if f.Ref == "" || f.RefColumn != "" {
				continue
			}
			target, ok := byTable[f.Ref]
			if !ok {
				g.log(Sprintf("Warning: %s.%s references unknown table %s; set ref=%s:column", name, f.Name, f.Ref, f.Ref))
				continue
			}
			pks := target.PrimaryKeys()
			if len(pks) != 1 {
				g.log(Sprintf("Warning: %s.%s references %s which has %d primary key columns; set ref=%s:column", name, f.Name, f.Ref, len(pks), f.Ref))
				continue
			}
			info.Fields[i].RefColumn = pks[0]
		}
		all[name] = info
	}
}
