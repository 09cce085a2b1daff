package store

import (
	"context"
	"testing"
)

func TestSearch_Basic(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := sampleRun("sub01")
	p.Infos[0].ProtocolName = "func_rest"
	p.Infos[0].SeriesDescription = "resting state MoCo"
	p.Infos[1].ProtocolName = "AAHead_Scout"
	if _, err := s.SaveRun(ctx, p); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SaveRun(ctx, sampleRun("sub02")); err != nil {
		t.Fatal(err)
	}

	// Protocol name
	results, err := s.Search(ctx, SearchParams{Query: "Scout"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Info.SeriesID != "99-localizer" {
		t.Fatalf("expected the localizer, got %+v", results)
	}

	// Series description
	results, err = s.Search(ctx, SearchParams{Query: "MoCo"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Subject != "sub01" {
		t.Fatalf("expected 1 result for sub01, got %+v", results)
	}

	// Series id, across runs
	results, err = s.Search(ctx, SearchParams{Query: "bold"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	// Newest run first.
	if results[0].Subject != "sub02" {
		t.Errorf("expected sub02 first, got %s", results[0].Subject)
	}

	// Subject filter
	results, err = s.Search(ctx, SearchParams{Subject: "sub02", Query: "bold"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	// No results
	results, err = s.Search(ctx, SearchParams{Query: "dwi"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Fatalf("expected 0 results, got %d", len(results))
	}
}

func TestSearch_Limit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		s.SaveRun(ctx, sampleRun("sub01"))
	}

	results, err := s.Search(ctx, SearchParams{Query: "", Limit: 4})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
}
