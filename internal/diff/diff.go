// Package diff computes the structural difference between a template schema
// and a target schema over the canonical model. The output is declarative;
// rendering it as DDL is the synthesizer's job. All orderings are
// deterministic so repeated runs over unchanged inputs produce identical
// results.
package diff

import (
	"sort"

	"github.com/schemalign/schemalign/internal/ir"
)

// Status classifies a table-level comparison outcome.
type Status string

const (
	StatusMissingInTarget Status = "MISSING_IN_TARGET"
	StatusExtraInTarget   Status = "EXTRA_IN_TARGET"
	StatusIdentical       Status = "IDENTICAL"
	StatusModified        Status = "MODIFIED"
)

// ChangeKind classifies a column-level difference.
type ChangeKind string

const (
	ChangeAdded    ChangeKind = "ADDED"
	ChangeModified ChangeKind = "MODIFIED"
	ChangeRemoved  ChangeKind = "REMOVED"
)

// ColumnDiff describes one column difference. Template carries the desired
// state (nil for REMOVED), Target the current state (nil for ADDED). After
// names the template column that should immediately precede an ADDED column,
// "" when it is the first. The Changed flags record which facets differ for
// MODIFIED columns, so renderers that alter one facet per statement need not
// re-derive the comparison policy.
type ColumnDiff struct {
	Kind     ChangeKind `json:"kind"`
	Template *ir.Column `json:"template,omitempty"`
	Target   *ir.Column `json:"target,omitempty"`
	After    string     `json:"after,omitempty"`

	TypeChanged          bool `json:"type_changed,omitempty"`
	NullableChanged      bool `json:"nullable_changed,omitempty"`
	DefaultChanged       bool `json:"default_changed,omitempty"`
	CommentChanged       bool `json:"comment_changed,omitempty"`
	AutoIncrementChanged bool `json:"auto_increment_changed,omitempty"`
}

// Name returns the column name regardless of which side holds it.
func (cd *ColumnDiff) Name() string {
	if cd.Template != nil {
		return cd.Template.Name
	}
	return cd.Target.Name
}

// TableDiff describes how one table differs between template and target.
// Template is nil for EXTRA_IN_TARGET, Target is nil for MISSING_IN_TARGET.
type TableDiff struct {
	Name             string           `json:"name"`
	Status           Status           `json:"status"`
	Template         *ir.Table        `json:"-"`
	Target           *ir.Table        `json:"-"`
	ColumnDiffs      []*ColumnDiff    `json:"column_diffs,omitempty"`
	AddedIndexes     []*ir.Index      `json:"added_indexes,omitempty"`
	ExtraIndexes     []*ir.Index      `json:"extra_indexes,omitempty"`
	AddedForeignKeys []*ir.ForeignKey `json:"added_foreign_keys,omitempty"`
	ExtraForeignKeys []*ir.ForeignKey `json:"extra_foreign_keys,omitempty"`
	CommentChanged   bool             `json:"comment_changed,omitempty"`
}

// Compare diffs every template table against the target. Emission order:
// template tables in their listing order (missing or compared), then tables
// existing only in the target in the target's listing order.
func Compare(template, target *ir.Schema) []*TableDiff {
	var diffs []*TableDiff

	for _, name := range template.TableOrder {
		tmpl := template.Tables[name]
		tgt, ok := target.Tables[name]
		if !ok {
			diffs = append(diffs, &TableDiff{
				Name:     name,
				Status:   StatusMissingInTarget,
				Template: tmpl,
			})
			continue
		}
		diffs = append(diffs, diffTable(tmpl, tgt, template.Dialect, target.Dialect))
	}

	// Find tables only the target has
	for _, name := range target.TableOrder {
		if _, ok := template.Tables[name]; !ok {
			diffs = append(diffs, &TableDiff{
				Name:   name,
				Status: StatusExtraInTarget,
				Target: target.Tables[name],
			})
		}
	}
	return diffs
}

func diffTable(tmpl, tgt *ir.Table, tmplDialect, tgtDialect ir.Dialect) *TableDiff {
	d := &TableDiff{
		Name:     tmpl.Name,
		Status:   StatusIdentical,
		Template: tmpl,
		Target:   tgt,
	}

	sameDialect := tmplDialect == tgtDialect
	// A side that cannot store comments always reads them as empty; comparing
	// through it would flag every commented column forever
	compareComments := tmplDialect.SupportsComments() && tgtDialect.SupportsComments()

	tmplCols := make(map[string]*ir.Column, len(tmpl.Columns))
	for _, c := range tmpl.Columns {
		tmplCols[c.Name] = c
	}
	tgtCols := make(map[string]*ir.Column, len(tgt.Columns))
	for _, c := range tgt.Columns {
		tgtCols[c.Name] = c
	}

	// ADDED and MODIFIED in template position order; After tracks the
	// template's own predecessor so consecutive additions chain correctly
	after := ""
	for _, tc := range orderedColumns(tmpl) {
		gc, ok := tgtCols[tc.Name]
		if !ok {
			d.ColumnDiffs = append(d.ColumnDiffs, &ColumnDiff{
				Kind:     ChangeAdded,
				Template: tc,
				After:    after,
			})
		} else if cd := compareColumns(tc, gc, sameDialect, compareComments); cd != nil {
			d.ColumnDiffs = append(d.ColumnDiffs, cd)
		}
		after = tc.Name
	}

	// REMOVED in target position order
	for _, gc := range orderedColumns(tgt) {
		if _, ok := tmplCols[gc.Name]; !ok {
			d.ColumnDiffs = append(d.ColumnDiffs, &ColumnDiff{
				Kind:   ChangeRemoved,
				Target: gc,
			})
		}
	}

	d.AddedIndexes, d.ExtraIndexes = diffIndexes(tmpl.Indexes, tgt.Indexes)
	d.AddedForeignKeys, d.ExtraForeignKeys = diffForeignKeys(tmpl.ForeignKeys, tgt.ForeignKeys)

	if compareComments && tmpl.Comment != tgt.Comment {
		d.CommentChanged = true
	}

	if len(d.ColumnDiffs) > 0 || len(d.AddedIndexes) > 0 || len(d.ExtraIndexes) > 0 ||
		len(d.AddedForeignKeys) > 0 || len(d.ExtraForeignKeys) > 0 || d.CommentChanged {
		d.Status = StatusModified
	}
	return d
}

// compareColumns builds a MODIFIED diff for two same-named columns, or nil
// when they match. Unsigned and auto-increment are dialect-local annotations,
// compared only when both sides speak the same dialect; an unsigned change
// counts as a type change since it is rendered inside the type.
func compareColumns(tmpl, tgt *ir.Column, sameDialect, compareComments bool) *ColumnDiff {
	cd := &ColumnDiff{Kind: ChangeModified, Template: tmpl, Target: tgt}

	if !tmpl.Type.EquivalentTo(tgt.Type) {
		cd.TypeChanged = true
	}
	if sameDialect {
		if tmpl.Type.Unsigned != tgt.Type.Unsigned {
			cd.TypeChanged = true
		}
		if tmpl.Type.AutoIncrement != tgt.Type.AutoIncrement {
			cd.AutoIncrementChanged = true
		}
	}
	if tmpl.Nullable != tgt.Nullable {
		cd.NullableChanged = true
	}
	if (tmpl.Default == nil) != (tgt.Default == nil) {
		cd.DefaultChanged = true
	} else if tmpl.Default != nil && *tmpl.Default != *tgt.Default {
		cd.DefaultChanged = true
	}
	if compareComments && tmpl.Comment != tgt.Comment {
		cd.CommentChanged = true
	}

	if !cd.TypeChanged && !cd.NullableChanged && !cd.DefaultChanged &&
		!cd.CommentChanged && !cd.AutoIncrementChanged {
		return nil
	}
	return cd
}

func diffIndexes(tmpl, tgt []*ir.Index) (added, extra []*ir.Index) {
	tmplSigs := make(map[string]*ir.Index, len(tmpl))
	for _, idx := range tmpl {
		tmplSigs[idx.Signature()] = idx
	}
	tgtSigs := make(map[string]*ir.Index, len(tgt))
	for _, idx := range tgt {
		tgtSigs[idx.Signature()] = idx
	}

	for sig, idx := range tmplSigs {
		if _, ok := tgtSigs[sig]; !ok {
			added = append(added, idx)
		}
	}
	for sig, idx := range tgtSigs {
		if _, ok := tmplSigs[sig]; !ok {
			extra = append(extra, idx)
		}
	}
	sortIndexesBySignature(added)
	sortIndexesBySignature(extra)
	return added, extra
}

func diffForeignKeys(tmpl, tgt []*ir.ForeignKey) (added, extra []*ir.ForeignKey) {
	tmplSigs := make(map[string]*ir.ForeignKey, len(tmpl))
	for _, fk := range tmpl {
		tmplSigs[fk.Signature()] = fk
	}
	tgtSigs := make(map[string]*ir.ForeignKey, len(tgt))
	for _, fk := range tgt {
		tgtSigs[fk.Signature()] = fk
	}

	for sig, fk := range tmplSigs {
		if _, ok := tgtSigs[sig]; !ok {
			added = append(added, fk)
		}
	}
	for sig, fk := range tgtSigs {
		if _, ok := tmplSigs[sig]; !ok {
			extra = append(extra, fk)
		}
	}
	sortForeignKeysBySignature(added)
	sortForeignKeysBySignature(extra)
	return added, extra
}

func sortIndexesBySignature(indexes []*ir.Index) {
	sort.Slice(indexes, func(i, j int) bool {
		return indexes[i].Signature() < indexes[j].Signature()
	})
}

func sortForeignKeysBySignature(fks []*ir.ForeignKey) {
	sort.Slice(fks, func(i, j int) bool {
		return fks[i].Signature() < fks[j].Signature()
	})
}

// orderedColumns returns the table's columns sorted by position without
// mutating the table.
func orderedColumns(t *ir.Table) []*ir.Column {
	cols := make([]*ir.Column, len(t.Columns))
	copy(cols, t.Columns)
	sort.SliceStable(cols, func(i, j int) bool { return cols[i].Position < cols[j].Position })
	return cols
}
