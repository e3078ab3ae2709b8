// Package views composes denormalized, viewer-relative, paginated read
// models from the normalized tables at query time. Every view is built from
// the same fixed pipeline shape: match, join, computed fields, sort,
// post-filter, projection, pagination. The Pipeline type enforces that stage
// order structurally; a stage appended out of order poisons the pipeline and
// the error surfaces when the SQL is built, before anything touches the
// database.
package views

import (
	"fmt"
	"strings"
)

type stageKind int

const (
	stageMatch stageKind = iota
	stageJoin
	stageCompute
	stageSort
	stagePostFilter
	stageProject
)

var stageNames = map[stageKind]string{
	stageMatch:      "match",
	stageJoin:       "join",
	stageCompute:    "compute",
	stageSort:       "sort",
	stagePostFilter: "post-filter",
	stageProject:    "project",
}

// Pipeline assembles a single read-model query. Conditions and expressions
// use ? placeholders; the builder rewrites them to positional $n arguments
// in stage order.
type Pipeline struct {
	base  string
	alias string

	matches     []fragment
	matchJoiner string
	joins       []fragment
	computes    []fragment
	sorts       []string
	postFilters []fragment
	projections []string
	groupBy     []string

	last stageKind
	err  error
}

type fragment struct {
	sql  string
	args []any
}

// From starts a pipeline over the given base table and alias.
func From(table, alias string) *Pipeline {
	return &Pipeline{base: table, alias: alias, matchJoiner: "AND", last: stageMatch}
}

func (p *Pipeline) advance(k stageKind) bool {
	if p.err != nil {
		return false
	}
	if k < p.last {
		p.err = fmt.Errorf("views: %s stage after %s stage", stageNames[k], stageNames[p.last])
		return false
	}
	p.last = k
	return true
}

// Match filters the base table. Multiple Match calls combine with the
// pipeline's match joiner (AND unless MatchAny was requested).
func (p *Pipeline) Match(cond string, args ...any) *Pipeline {
	if p.advance(stageMatch) {
		p.matches = append(p.matches, fragment{sql: cond, args: args})
	}
	return p
}

// MatchAny switches the match predicates to combine with OR. Used by the
// video feed, where a free-text query and an owner scope widen rather than
// narrow each other.
func (p *Pipeline) MatchAny() *Pipeline {
	if p.advance(stageMatch) {
		p.matchJoiner = "OR"
	}
	return p
}

// Join attaches a related table. Joins are LEFT joins: a base record with no
// related rows still appears in the view with zero counts.
func (p *Pipeline) Join(table, alias, on string, args ...any) *Pipeline {
	if p.advance(stageJoin) {
		p.joins = append(p.joins, fragment{
			sql:  fmt.Sprintf("LEFT JOIN %s %s ON %s", table, alias, on),
			args: args,
		})
	}
	return p
}

// Compute adds a derived select-list field: a count, a sum, or a
// viewer-relative EXISTS. The expression may reference joined aliases and
// bind the viewer id through a ? placeholder.
func (p *Pipeline) Compute(expr, as string, args ...any) *Pipeline {
	if p.advance(stageCompute) {
		p.computes = append(p.computes, fragment{
			sql:  fmt.Sprintf("%s AS %s", expr, as),
			args: args,
		})
	}
	return p
}

// GroupBy collapses joined many-rows into aggregates. Required whenever a
// Compute uses an aggregate over a joined table instead of a sub-select.
func (p *Pipeline) GroupBy(exprs ...string) *Pipeline {
	if p.advance(stageCompute) {
		p.groupBy = append(p.groupBy, exprs...)
	}
	return p
}

// Sort orders the result. The column must belong to the projection contract;
// callers validate caller-supplied sort fields before reaching the builder.
func (p *Pipeline) Sort(column string, descending bool) *Pipeline {
	if p.advance(stageSort) {
		dir := "ASC"
		if descending {
			dir = "DESC"
		}
		p.sorts = append(p.sorts, fmt.Sprintf("%s %s", column, dir))
	}
	return p
}

// PostFilter drops rows by a predicate over joined or computed data, after
// the join has resolved. Rendered into HAVING when the pipeline groups,
// otherwise into the WHERE clause alongside the match predicates.
func (p *Pipeline) PostFilter(cond string, args ...any) *Pipeline {
	if p.advance(stagePostFilter) {
		p.postFilters = append(p.postFilters, fragment{sql: cond, args: args})
	}
	return p
}

// Project whitelists the exact output columns. This is the response-shape
// contract of the view; computed fields from Compute are appended after it.
func (p *Pipeline) Project(columns ...string) *Pipeline {
	if p.advance(stageProject) {
		p.projections = append(p.projections, columns...)
	}
	return p
}

// SQL renders the pipeline. It returns the accumulated stage-order error, if
// any, and refuses to render a pipeline without a projection.
func (p *Pipeline) SQL() (string, []any, error) {
	if p.err != nil {
		return "", nil, p.err
	}
	if len(p.projections) == 0 {
		return "", nil, fmt.Errorf("views: pipeline over %s has no projection", p.base)
	}

	var (
		sb   strings.Builder
		args []any
	)

	bind := func(f fragment) string {
		sql := f.sql
		for _, a := range f.args {
			args = append(args, a)
			sql = strings.Replace(sql, "?", fmt.Sprintf("$%d", len(args)), 1)
		}
		return sql
	}

	selectList := append([]string{}, p.projections...)
	computed := make([]string, 0, len(p.computes))
	for _, c := range p.computes {
		computed = append(computed, bind(c))
	}

	joined := make([]string, 0, len(p.joins))
	for _, j := range p.joins {
		joined = append(joined, bind(j))
	}

	where := make([]string, 0, len(p.matches))
	for _, m := range p.matches {
		where = append(where, "("+bind(m)+")")
	}

	post := make([]string, 0, len(p.postFilters))
	for _, f := range p.postFilters {
		post = append(post, "("+bind(f)+")")
	}

	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(append(selectList, computed...), ", "))
	sb.WriteString("\nFROM ")
	sb.WriteString(p.base + " " + p.alias)
	for _, j := range joined {
		sb.WriteString("\n" + j)
	}

	// Match predicates form one group (possibly OR-joined); post-filters
	// always AND against that group so an OR match cannot leak past them.
	var whereParts []string
	if len(where) > 0 {
		whereParts = append(whereParts, "("+strings.Join(where, " "+p.matchJoiner+" ")+")")
	}
	if len(p.groupBy) == 0 {
		whereParts = append(whereParts, post...)
	}
	if len(whereParts) > 0 {
		sb.WriteString("\nWHERE ")
		sb.WriteString(strings.Join(whereParts, " AND "))
	}

	if len(p.groupBy) > 0 {
		sb.WriteString("\nGROUP BY ")
		sb.WriteString(strings.Join(p.groupBy, ", "))
		if len(post) > 0 {
			sb.WriteString("\nHAVING ")
			sb.WriteString(strings.Join(post, " AND "))
		}
	}

	if len(p.sorts) > 0 {
		sb.WriteString("\nORDER BY ")
		sb.WriteString(strings.Join(p.sorts, ", "))
	}

	return sb.String(), args, nil
}
