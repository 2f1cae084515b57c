package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/recipe-share/internal/model"
	"github.com/sakif/recipe-share/internal/repository"
	"github.com/sakif/recipe-share/internal/respond"
)

type CommentService interface {
	Create(ctx context.Context, userID, recipeID int64, text string) (*model.Comment, error)
	List(ctx context.Context, recipeID int64, opts repository.ListOptions) ([]model.Comment, error)
	Update(ctx context.Context, id, userID int64, text string) error
	Delete(ctx context.Context, id, userID int64) error
}

// CommentHandler serves comments. Comments are created and listed under
// their recipe (/recipes/{id}/comments) and edited by their own id
// (/comments/{id}).
type CommentHandler struct {
	comments CommentService
	maxBytes int64
	logger   *slog.Logger
}

func NewCommentHandler(comments CommentService, maxBytes int64, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, maxBytes: maxBytes, logger: logger}
}

// HandleCreate adds a comment to the recipe in the URL.
//
// HTTP: POST /recipes/{id}/comments
// Auth: Required
// REQUEST BODY: {"text": "..."}
// RESPONSE: 201 with the new comment, author name included
func (h *CommentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	recipeID, err := pathID(r, "recipe")
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	form, err := readForm(w, r, h.maxBytes)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	defer form.Close()

	comment, err := h.comments.Create(r.Context(), userID, recipeID, form.get(fieldText))
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	respond.JSON(w, http.StatusCreated, comment)
}

// HandleList returns a recipe's comments, newest first.
//
// HTTP: GET /recipes/{id}/comments[?limit=&offset=]
func (h *CommentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	recipeID, err := pathID(r, "recipe")
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	opts, err := listOptions(r)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	comments, err := h.comments.List(r.Context(), recipeID, opts)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	respond.JSON(w, http.StatusOK, comments)
}

// HandleUpdate replaces the text of one of the caller's comments.
//
// HTTP: PUT /comments/{id}
// Auth: Required (owner only)
func (h *CommentHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	id, err := pathID(r, "comment")
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	form, err := readForm(w, r, h.maxBytes)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	defer form.Close()

	if err := h.comments.Update(r.Context(), id, userID, form.get(fieldText)); err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	respond.Message(w, "Comment updated")
}

// HandleDelete removes one of the caller's comments.
//
// HTTP: DELETE /comments/{id}
// Auth: Required (owner only)
func (h *CommentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	id, err := pathID(r, "comment")
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	if err := h.comments.Delete(r.Context(), id, userID); err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	respond.Message(w, "Comment deleted")
}
