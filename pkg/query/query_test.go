package query_test

import (
	"slices"
	"testing"

	"github.com/JaimeStill/folio/pkg/query"
)

var projection = query.
	NewProjectionMap("public", "runs", "r").
	Project("id", "ID").
	Project("filename", "Filename").
	Project("success", "Success").
	Project("created_at", "CreatedAt")

func TestBuildPage(t *testing.T) {
	search := "lease"
	success := true

	qb := query.
		NewBuilder(projection, query.SortField{Field: "CreatedAt", Descending: true}).
		WhereSearch(&search, "Filename").
		WhereEquals("Success", &success)

	sql, args := qb.BuildPage(3, 20)

	want := "SELECT r.id, r.filename, r.success, r.created_at FROM public.runs r" +
		" WHERE (r.filename ILIKE $1) AND r.success = $2" +
		" ORDER BY r.created_at DESC LIMIT 20 OFFSET 40"
	if sql != want {
		t.Errorf("sql =\n%s\nwant\n%s", sql, want)
	}
	if len(args) != 2 || args[0] != "%lease%" || args[1] != &success {
		t.Errorf("args = %v", args)
	}

	count, countArgs := qb.BuildCount()
	if want := "SELECT COUNT(*) FROM public.runs r WHERE (r.filename ILIKE $1) AND r.success = $2"; count != want {
		t.Errorf("count sql = %s", count)
	}
	if len(countArgs) != 2 {
		t.Errorf("count args = %v", countArgs)
	}
}

func TestBuilderIgnoresUnknownFields(t *testing.T) {
	var none *bool
	qb := query.
		NewBuilder(projection).
		WhereEquals("Nope", "x").
		WhereEquals("Success", none).
		OrderByFields(query.ParseSortFields("Filename; DROP TABLE runs,-Filename"))

	sql, args := qb.BuildPage(1, 10)
	want := "SELECT r.id, r.filename, r.success, r.created_at FROM public.runs r ORDER BY r.filename DESC LIMIT 10 OFFSET 0"
	if sql != want {
		t.Errorf("sql = %s", sql)
	}
	if len(args) != 0 {
		t.Errorf("args = %v, want none", args)
	}
}

func TestBuildSingle(t *testing.T) {
	sql, args := query.NewBuilder(projection).BuildSingle("ID", "abc")
	if want := "SELECT r.id, r.filename, r.success, r.created_at FROM public.runs r WHERE r.id = $1"; sql != want {
		t.Errorf("sql = %s", sql)
	}
	if !slices.Equal(args, []any{"abc"}) {
		t.Errorf("args = %v", args)
	}
}

func TestParseSortFields(t *testing.T) {
	got := query.ParseSortFields(" Filename , -CreatedAt,,")
	want := []query.SortField{{Field: "Filename"}, {Field: "CreatedAt", Descending: true}}
	if !slices.Equal(got, want) {
		t.Errorf("ParseSortFields() = %v, want %v", got, want)
	}
	if query.ParseSortFields("") != nil {
		t.Error("empty input should yield nil")
	}
}
