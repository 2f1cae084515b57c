package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/recipe-share/internal/apperror"
	"github.com/sakif/recipe-share/internal/repository"
)

func TestCommentCreate(t *testing.T) {
	repo := newFakeCommentRepo(10)
	svc := NewCommentService(repo, testLogger())

	c, err := svc.Create(context.Background(), 3, 10, "  Ótimo!  ")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if c.ID == 0 || c.Text != "Ótimo!" || c.UserID != 3 || c.RecipeID != 10 {
		t.Errorf("Create() = %+v", c)
	}
	if c.AuthorName == "" {
		t.Error("AuthorName not filled in")
	}
}

func TestCommentCreate_EmptyText(t *testing.T) {
	svc := NewCommentService(newFakeCommentRepo(10), testLogger())

	for _, text := range []string{"", " \n\t "} {
		if _, err := svc.Create(context.Background(), 3, 10, text); !errors.Is(err, apperror.ErrValidation) {
			t.Errorf("Create(%q) error = %v, want ErrValidation", text, err)
		}
	}
}

func TestCommentCreate_UnknownRecipe(t *testing.T) {
	svc := NewCommentService(newFakeCommentRepo(), testLogger())

	if _, err := svc.Create(context.Background(), 3, 10, "hi"); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("Create() error = %v, want ErrNotFound", err)
	}
}

func TestCommentCreate_RepositoryError(t *testing.T) {
	repo := newFakeCommentRepo(10)
	repo.createErr = errDBDown
	svc := NewCommentService(repo, testLogger())

	if _, err := svc.Create(context.Background(), 3, 10, "hi"); !errors.Is(err, errDBDown) {
		t.Fatalf("Create() error = %v, want wrapped errDBDown", err)
	}
}

func TestCommentList(t *testing.T) {
	repo := newFakeCommentRepo(10, 11)
	svc := NewCommentService(repo, testLogger())
	first, _ := svc.Create(context.Background(), 3, 10, "first")
	second, _ := svc.Create(context.Background(), 4, 10, "second")
	svc.Create(context.Background(), 4, 11, "elsewhere")

	got, err := svc.List(context.Background(), 10, repository.ListOptions{Limit: -1})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 2 || got[0].ID != second.ID || got[1].ID != first.ID {
		t.Errorf("List() = %+v, want newest first", got)
	}
	if repo.lastOpts.Limit != 0 {
		t.Errorf("negative limit passed through: %+v", repo.lastOpts)
	}
}

func TestCommentUpdateAndDelete_OwnerOnly(t *testing.T) {
	svc := NewCommentService(newFakeCommentRepo(10), testLogger())
	c, _ := svc.Create(context.Background(), 3, 10, "mine")

	if err := svc.Update(context.Background(), c.ID, 4, "theirs"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update() by non-owner error = %v, want ErrNotFound", err)
	}
	if err := svc.Update(context.Background(), c.ID, 3, " "); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Update() with blank text error = %v, want ErrValidation", err)
	}
	if err := svc.Update(context.Background(), c.ID, 3, "edited"); err != nil {
		t.Errorf("Update() error = %v", err)
	}

	if err := svc.Delete(context.Background(), c.ID, 4); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Delete() by non-owner error = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(context.Background(), c.ID, 3); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
	if err := svc.Delete(context.Background(), c.ID, 3); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}
