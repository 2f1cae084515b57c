package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sakif/recipe-share/internal/apperror"
	"github.com/sakif/recipe-share/internal/model"
	"github.com/sakif/recipe-share/internal/repository"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

// The fakes below are in-memory stand-ins for the repositories and the image
// store. Hand-written fakes keep the tests readable: you can see exactly
// what each one does, and each exposes an err field to simulate a failure.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

var errDBDown = errors.New("database is on fire")

type fakeUserRepo struct {
	users     map[int64]*model.User
	nextID    int64
	createErr error
	photoErr  error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*model.User), nextID: 1}
}

func (f *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return apperror.Conflict("email", "email already registered")
		}
	}
	u.ID = f.nextID
	f.nextID++
	u.CreatedAt = time.Now()
	copied := *u
	f.users[u.ID] = &copied
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user")
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("user")
}

func (f *fakeUserRepo) UpdatePhoto(_ context.Context, id int64, path string) error {
	if f.photoErr != nil {
		return f.photoErr
	}
	u, ok := f.users[id]
	if !ok {
		return apperror.NotFound("user")
	}
	u.PhotoURL = &path
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.users[id]; !ok {
		return apperror.NotFound("user")
	}
	delete(f.users, id)
	return nil
}

type fakeRecipeRepo struct {
	recipes   map[int64]*model.Recipe
	nextID    int64
	createErr error
	updateErr error
	deleteErr error

	lastOpts repository.ListOptions
	lastTerm string
}

func newFakeRecipeRepo() *fakeRecipeRepo {
	return &fakeRecipeRepo{recipes: make(map[int64]*model.Recipe), nextID: 1}
}

func (f *fakeRecipeRepo) Create(_ context.Context, r *model.Recipe) error {
	if f.createErr != nil {
		return f.createErr
	}
	r.ID = f.nextID
	f.nextID++
	r.CreatedAt = time.Now()
	copied := *r
	f.recipes[r.ID] = &copied
	return nil
}

func (f *fakeRecipeRepo) GetByID(_ context.Context, id int64) (*model.Recipe, error) {
	r, ok := f.recipes[id]
	if !ok {
		return nil, apperror.NotFound("recipe")
	}
	copied := *r
	return &copied, nil
}

func (f *fakeRecipeRepo) List(_ context.Context, opts repository.ListOptions) ([]model.Recipe, error) {
	f.lastOpts = opts
	out := make([]model.Recipe, 0, len(f.recipes))
	for _, r := range f.recipes {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeRecipeRepo) Search(ctx context.Context, term string, opts repository.ListOptions) ([]model.Recipe, error) {
	f.lastTerm = term
	all, _ := f.List(ctx, opts)
	out := make([]model.Recipe, 0)
	for _, r := range all {
		if strings.Contains(strings.ToLower(r.Name+" "+r.Ingredients), strings.ToLower(term)) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRecipeRepo) Update(_ context.Context, id, userID int64, p repository.RecipePatch) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	r, ok := f.recipes[id]
	if !ok || r.UserID != userID {
		return apperror.NotFound("recipe")
	}
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.Ingredients != nil {
		r.Ingredients = *p.Ingredients
	}
	if p.Steps != nil {
		r.Steps = *p.Steps
	}
	if p.ImagePath != nil {
		r.ImageURL = p.ImagePath
	}
	return nil
}

func (f *fakeRecipeRepo) Delete(_ context.Context, id, userID int64) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	r, ok := f.recipes[id]
	if !ok || r.UserID != userID {
		return apperror.NotFound("recipe")
	}
	delete(f.recipes, id)
	return nil
}

type fakeCommentRepo struct {
	comments  map[int64]*model.Comment
	recipes   map[int64]bool // recipe ids that "exist"
	nextID    int64
	createErr error
	lastOpts  repository.ListOptions
}

func newFakeCommentRepo(recipeIDs ...int64) *fakeCommentRepo {
	f := &fakeCommentRepo{comments: make(map[int64]*model.Comment), recipes: make(map[int64]bool), nextID: 1}
	for _, id := range recipeIDs {
		f.recipes[id] = true
	}
	return f
}

func (f *fakeCommentRepo) Create(_ context.Context, c *model.Comment) error {
	if f.createErr != nil {
		return f.createErr
	}
	if !f.recipes[c.RecipeID] {
		return apperror.NotFound("recipe")
	}
	c.ID = f.nextID
	f.nextID++
	c.AuthorName = fmt.Sprintf("user-%d", c.UserID)
	c.CreatedAt = time.Now()
	copied := *c
	f.comments[c.ID] = &copied
	return nil
}

func (f *fakeCommentRepo) ListByRecipe(_ context.Context, recipeID int64, opts repository.ListOptions) ([]model.Comment, error) {
	f.lastOpts = opts
	out := make([]model.Comment, 0)
	for _, c := range f.comments {
		if c.RecipeID == recipeID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeCommentRepo) Update(_ context.Context, id, userID int64, text string) error {
	c, ok := f.comments[id]
	if !ok || c.UserID != userID {
		return apperror.NotFound("comment")
	}
	c.Text = text
	return nil
}

func (f *fakeCommentRepo) Delete(_ context.Context, id, userID int64) error {
	c, ok := f.comments[id]
	if !ok || c.UserID != userID {
		return apperror.NotFound("comment")
	}
	delete(f.comments, id)
	return nil
}

// fakeImageStore keeps saved images in memory, keyed by public path.
type fakeImageStore struct {
	mu      sync.Mutex
	files   map[string][]byte
	types   map[string]string
	deleted []string
	saveErr error
}

func newFakeImageStore() *fakeImageStore {
	return &fakeImageStore{files: make(map[string][]byte), types: make(map[string]string)}
}

func (f *fakeImageStore) Save(_ context.Context, name, contentType string, r io.Reader) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	path := "/uploads/" + name
	f.files[path] = data
	f.types[path] = contentType
	return path, nil
}

func (f *fakeImageStore) Delete(_ context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, path)
	delete(f.files, path)
	return nil
}

func (f *fakeImageStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.files)
}

func jpeg(name string) *Upload {
	return &Upload{Filename: name, Body: strings.NewReader("\xff\xd8\xff fake jpeg")}
}

func strPtr(s string) *string { return &s }
