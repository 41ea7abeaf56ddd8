package service

import (
	"context"
	"testing"

	"github.com/safecity/incident-dashboard/internal/core/domain"
	"github.com/safecity/incident-dashboard/internal/core/ports"
)

func TestCategoryService_CreateTrimsFields(t *testing.T) {
	repo := newStubCategoryRepo()
	svc := NewCategoryService(repo, newStubIncidentRepo(), discardLogger)

	c, err := svc.Create(context.Background(), ports.CategoryInput{Name: "  Baches ", Description: " calles "})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if c.ID == 0 {
		t.Fatal("expected an id to be assigned")
	}
	if c.Name != "Baches" || c.Description != "calles" {
		t.Errorf("expected trimmed fields, got %q / %q", c.Name, c.Description)
	}
}

func TestCategoryService_CreateDuplicate(t *testing.T) {
	repo := newStubCategoryRepo()
	repo.seed("Baches")
	svc := NewCategoryService(repo, newStubIncidentRepo(), discardLogger)

	if _, err := svc.Create(context.Background(), ports.CategoryInput{Name: "Baches"}); err != domain.ErrCategoryExists {
		t.Fatalf("expected ErrCategoryExists, got %v", err)
	}
}

func TestCategoryService_UpdateKeepsDescriptionWhenBlank(t *testing.T) {
	repo := newStubCategoryRepo()
	c := repo.seed("Luminarias")
	c.Description = "alumbrado"
	svc := NewCategoryService(repo, newStubIncidentRepo(), discardLogger)

	updated, err := svc.Update(context.Background(), c.ID, ports.CategoryInput{Name: "Alumbrado"})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Name != "Alumbrado" {
		t.Errorf("expected renamed category, got %q", updated.Name)
	}
	if updated.Description != "alumbrado" {
		t.Errorf("expected description preserved, got %q", updated.Description)
	}
}

func TestCategoryService_UpdateMissing(t *testing.T) {
	svc := NewCategoryService(newStubCategoryRepo(), newStubIncidentRepo(), discardLogger)

	if _, err := svc.Update(context.Background(), 99, ports.CategoryInput{Name: "x"}); err != domain.ErrCategoryNotFound {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}
}

func TestCategoryService_DeleteInUse(t *testing.T) {
	cats := newStubCategoryRepo()
	c := cats.seed("Baches")
	incidents := newStubIncidentRepo()
	_, _ = incidents.Create(context.Background(), &domain.Incident{CategoryID: c.ID, ReporterID: 1})

	svc := NewCategoryService(cats, incidents, discardLogger)
	if err := svc.Delete(context.Background(), c.ID); err != domain.ErrCategoryInUse {
		t.Fatalf("expected ErrCategoryInUse, got %v", err)
	}
	if _, ok := cats.byID[c.ID]; !ok {
		t.Fatal("category in use must not be deleted")
	}
}

func TestCategoryService_DeleteUnused(t *testing.T) {
	cats := newStubCategoryRepo()
	c := cats.seed("Grafiti")
	svc := NewCategoryService(cats, newStubIncidentRepo(), discardLogger)

	if err := svc.Delete(context.Background(), c.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, ok := cats.byID[c.ID]; ok {
		t.Fatal("expected category removed")
	}
	if err := svc.Delete(context.Background(), c.ID); err != domain.ErrCategoryNotFound {
		t.Fatalf("expected ErrCategoryNotFound on second delete, got %v", err)
	}
}
