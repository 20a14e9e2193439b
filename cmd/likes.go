package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/siahsang/socialite/internal/core"
	"github.com/siahsang/socialite/internal/utils/databaseutils"
)

// toggleLikeHandler flips the caller's like on a post. Repeated calls
// alternate between liked and unliked.
func (app *application) toggleLikeHandler(w http.ResponseWriter, r *http.Request) {
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

	type toggleResult struct {
		liked     bool
		likeCount int64
	}

	// The count is read inside the same transaction so the response cannot
	// reflect a concurrent toggle that lands after ours.
	result, err := databaseutils.DoTransactionally(r.Context(), app.session, func(txCtx context.Context) (toggleResult, error) {
		if _, err := app.core.GetPostByID(txCtx, postID); err != nil {
			return toggleResult{}, err
		}

		liked, err := app.core.ToggleLike(txCtx, user.ID, postID)
		if err != nil {
			return toggleResult{}, err
		}

		likeCount, err := app.core.LikeCount(txCtx, postID)
		if err != nil {
			return toggleResult{}, err
		}

		return toggleResult{liked: liked, likeCount: likeCount}, nil
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

	if err := app.writeJSON(w, http.StatusOK, envelope{"liked": result.liked, "likeCount": result.likeCount}, nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}
