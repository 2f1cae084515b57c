package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/recipe-share/internal/model"
	"github.com/sakif/recipe-share/internal/repository"
	"github.com/sakif/recipe-share/internal/respond"
	"github.com/sakif/recipe-share/internal/service"
)

type RecipeService interface {
	Create(ctx context.Context, userID int64, in service.RecipeInput) (*model.Recipe, error)
	Get(ctx context.Context, id int64) (*model.Recipe, error)
	List(ctx context.Context, opts repository.ListOptions) ([]model.Recipe, error)
	Search(ctx context.Context, term string, opts repository.ListOptions) ([]model.Recipe, error)
	Update(ctx context.Context, id, userID int64, in service.RecipeUpdate) error
	Delete(ctx context.Context, id, userID int64) error
}

// RecipeHandler manages CRUD and search for recipes.
//
// Reads are public. Create, update and delete sit behind RequireAuth, and
// update/delete only ever touch the caller's own recipes: anyone else's
// recipe answers 404, exactly like one that doesn't exist.
type RecipeHandler struct {
	recipes   RecipeService
	maxUpload int64
	logger    *slog.Logger
}

func NewRecipeHandler(recipes RecipeService, maxUpload int64, logger *slog.Logger) *RecipeHandler {
	return &RecipeHandler{recipes: recipes, maxUpload: maxUpload, logger: logger}
}

// CreatedRecipe is the body of a successful create.
type CreatedRecipe struct {
	ID       int64   `json:"id"`
	ImageURL *string `json:"imageUrl"`
}

// HandleCreate adds a recipe owned by the caller.
//
// HTTP: POST /recipes
// Auth: Required
// REQUEST BODY: JSON {"name", "ingredients", "steps"} or multipart/form-data
// with the same fields plus an optional "image" file.
func (h *RecipeHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	form, err := readForm(w, r, h.maxUpload)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	defer form.Close()

	image, err := form.file(fieldImage)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	recipe, err := h.recipes.Create(r.Context(), userID, service.RecipeInput{
		Name:        form.get(fieldName),
		Ingredients: form.get(fieldIngredients),
		Steps:       form.get(fieldSteps),
		Image:       image,
	})
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	respond.JSON(w, http.StatusCreated, CreatedRecipe{ID: recipe.ID, ImageURL: recipe.ImageURL})
}

// HandleList returns recipes newest first.
//
// HTTP: GET /recipes[?limit=&offset=]
func (h *RecipeHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptions(r)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	recipes, err := h.recipes.List(r.Context(), opts)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	respond.JSON(w, http.StatusOK, recipes)
}

// HandleSearch matches ?q= against recipe names and ingredients.
//
// HTTP: GET /recipes/search?q=term[&limit=&offset=]
func (h *RecipeHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptions(r)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	recipes, err := h.recipes.Search(r.Context(), r.URL.Query().Get("q"), opts)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	respond.JSON(w, http.StatusOK, recipes)
}

// HandleGet returns a single recipe.
//
// HTTP: GET /recipes/{id}
func (h *RecipeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "recipe")
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	recipe, err := h.recipes.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	respond.JSON(w, http.StatusOK, recipe)
}

// HandleUpdate changes the fields the client sent.
//
// HTTP: PUT /recipes/{id}
// Auth: Required (owner only)
func (h *RecipeHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	id, err := pathID(r, "recipe")
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	form, err := readForm(w, r, h.maxUpload)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	defer form.Close()

	image, err := form.file(fieldImage)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	err = h.recipes.Update(r.Context(), id, userID, service.RecipeUpdate{
		Name:        form.optional(fieldName),
		Ingredients: form.optional(fieldIngredients),
		Steps:       form.optional(fieldSteps),
		Image:       image,
	})
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	respond.Message(w, "Recipe updated")
}

// HandleDelete removes one of the caller's recipes along with its comments.
//
// HTTP: DELETE /recipes/{id}
// Auth: Required (owner only)
func (h *RecipeHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	id, err := pathID(r, "recipe")
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	if err := h.recipes.Delete(r.Context(), id, userID); err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	respond.Message(w, "Recipe deleted")
}
