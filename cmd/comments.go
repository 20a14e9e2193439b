package main

import (
	"context"
	"errors"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/siahsang/socialite/internal/auth"
	"github.com/siahsang/socialite/internal/core"
	"github.com/siahsang/socialite/internal/utils/collectionutils"
	"github.com/siahsang/socialite/internal/utils/databaseutils"
	"github.com/siahsang/socialite/internal/utils/functional"
	"github.com/siahsang/socialite/internal/validator"
	"github.com/siahsang/socialite/models"
)

type CommentEnvelope struct {
	ID        int64          `json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	Body      string         `json:"body"`
	Author    AuthorEnvelope `json:"author"`
}

// checkCommentBody applies the single comment-length rule used everywhere.
// Lengths are counted in characters, not bytes.
func checkCommentBody(v *validator.Validator, body string) {
	v.CheckNotBlank(body, "body", "must be provided")
	length := utf8.RuneCountInString(body)
	v.Check(length >= 10, "body", "must be at least 10 characters long")
	v.Check(length <= 500, "body", "must not be more than 500 characters long")
}

func (app *application) createCommentHandler(w http.ResponseWriter, r *http.Request) {
	type createCommentPayload struct {
		Body string `json:"body"`
	}

	type CreateCommentRequest struct {
		createCommentPayload `json:"comment"`
	}

	var createCommentRequest CreateCommentRequest

	if err := app.readJSON(w, r, &createCommentRequest); err != nil {
		app.badRequestResponse(w, r, &AppError{
			ErrorMessage: err.Error(),
			ErrorStack:   err,
		})
		return
	}

	v := validator.New()
	checkCommentBody(v, createCommentRequest.Body)

	if !v.IsValid() {
		app.badRequestResponse(w, r, &AppError{ErrorDetails: v.Errors})
		return
	}

	postID, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	user, err := app.auth.GetAuthenticatedUser(r)
	if err != nil {
		app.authenticationRequiredResponse(w, r, err)
		return
	}

	newComment, err := databaseutils.DoTransactionally(r.Context(), app.session, func(txCtx context.Context) (*models.Comment, error) {
		post, err := app.core.GetPostByID(txCtx, postID)
		if err != nil {
			return nil, err
		}

		return app.core.CreateComment(txCtx, &models.Comment{
			Body:     createCommentRequest.Body,
			PostID:   post.ID,
			AuthorID: user.ID,
		})
	})

	if err != nil {
		switch {
		case errors.Is(err, core.NoRecordFound):
			app.notFoundResponse(w, r)
			return
		default:
			app.internalErrorResponse(w, r, err)
			return
		}
	}

	response, err := app.singleCommentResponse(r, newComment)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	if err := app.writeJSON(w, http.StatusCreated, response, nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}

func (app *application) updateCommentHandler(w http.ResponseWriter, r *http.Request) {
	type updateCommentPayload struct {
		Body string `json:"body"`
	}

	type UpdateCommentRequest struct {
		updateCommentPayload `json:"comment"`
	}

	var updateCommentRequest UpdateCommentRequest

	if err := app.readJSON(w, r, &updateCommentRequest); err != nil {
		app.badRequestResponse(w, r, &AppError{
			ErrorMessage: err.Error(),
			ErrorStack:   err,
		})
		return
	}

	v := validator.New()
	checkCommentBody(v, updateCommentRequest.Body)

	if !v.IsValid() {
		app.badRequestResponse(w, r, &AppError{ErrorDetails: v.Errors})
		return
	}

	commentID, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	comment, err := app.core.GetCommentByID(r.Context(), commentID)
	if err != nil {
		switch {
		case errors.Is(err, core.NoRecordFound):
			app.notFoundResponse(w, r)
			return
		default:
			app.internalErrorResponse(w, r, err)
			return
		}
	}

	user, err := app.auth.GetAuthenticatedUser(r)
	if err != nil {
		app.authenticationRequiredResponse(w, r, err)
		return
	}

	// Only the author may touch the comment.
	if comment.AuthorID != user.ID {
		app.forbiddenResponse(w, r)
		return
	}

	comment.Body = updateCommentRequest.Body
	updatedComment, err := app.core.UpdateComment(r.Context(), comment)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	response, err := app.singleCommentResponse(r, updatedComment)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	if err := app.writeJSON(w, http.StatusOK, response, nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}

func (app *application) deleteCommentHandler(w http.ResponseWriter, r *http.Request) {
	commentID, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	comment, err := app.core.GetCommentByID(r.Context(), commentID)
	if err != nil {
		switch {
		case errors.Is(err, core.NoRecordFound):
			app.notFoundResponse(w, r)
			return
		default:
			app.internalErrorResponse(w, r, err)
			return
		}
	}

	user, err := app.auth.GetAuthenticatedUser(r)
	if err != nil {
		app.authenticationRequiredResponse(w, r, err)
		return
	}

	if comment.AuthorID != user.ID {
		app.forbiddenResponse(w, r)
		return
	}

	if err := app.core.DeleteComment(r.Context(), comment.ID); err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	if err := app.writeJSON(w, http.StatusOK, envelope{"deleted": true}, nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}

func (app *application) getCommentsHandler(w http.ResponseWriter, r *http.Request) {
	postID, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	if _, err := app.core.GetPostByID(r.Context(), postID); err != nil {
		switch {
		case errors.Is(err, core.NoRecordFound):
			app.notFoundResponse(w, r)
			return
		default:
			app.internalErrorResponse(w, r, err)
			return
		}
	}

	comments, err := app.core.GetCommentsByPostID(r.Context(), postID)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	commentsResponse, err := app.commentsResponse(r, comments)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	if err := app.writeJSON(w, http.StatusOK, envelope{"comments": commentsResponse}, nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}

func (app *application) singleCommentResponse(r *http.Request, comment *models.Comment) (envelope, error) {
	author, err := app.core.GetUserByID(r.Context(), comment.AuthorID)
	if err != nil {
		return nil, err
	}

	return envelope{
		"comment": CommentEnvelope{
			ID:        comment.ID,
			Body:      comment.Body,
			CreatedAt: comment.CreatedAt,
			UpdatedAt: comment.UpdatedAt,
			Author: AuthorEnvelope{
				Username: author.Username,
				Bio:      author.Bio,
				Image:    author.Image,
			},
		},
	}, nil
}

// commentsResponse resolves comment authors in one batch.
func (app *application) commentsResponse(r *http.Request, comments []*models.Comment) ([]CommentEnvelope, error) {
	authorIDList := functional.Map(comments, func(c *models.Comment) int64 {
		return c.AuthorID
	})

	authorList, err := app.core.GetUsersByIdList(r.Context(), authorIDList)
	if err != nil {
		return nil, err
	}

	authorByUserID := collectionutils.Associate(authorList, func(user *auth.User) (int64, *auth.User) {
		return user.ID, user
	})

	commentsEnvelope := make([]CommentEnvelope, 0, len(comments))
	for _, comment := range comments {
		author := authorByUserID[comment.AuthorID]
		commentsEnvelope = append(commentsEnvelope, CommentEnvelope{
			ID:        comment.ID,
			Body:      comment.Body,
			CreatedAt: comment.CreatedAt,
			UpdatedAt: comment.UpdatedAt,
			Author: AuthorEnvelope{
				Username: author.Username,
				Bio:      author.Bio,
				Image:    author.Image,
			},
		})
	}

	return commentsEnvelope, nil
}
