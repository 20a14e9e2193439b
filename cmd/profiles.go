package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/siahsang/socialite/internal/auth"
	"github.com/siahsang/socialite/internal/core"
	"github.com/siahsang/socialite/internal/utils/functional"
)

func (app *application) getProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	viewer, _ := app.auth.GetAuthenticatedUser(r)

	profile, err := app.core.GetProfile(r.Context(), userID, viewer)
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

	if err := app.writeJSON(w, http.StatusOK, envelope{"profile": profile}, nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}

func (app *application) getFollowersHandler(w http.ResponseWriter, r *http.Request) {
	app.listRelatedUsers(w, r, "followers", app.core.GetFollowers)
}

func (app *application) getFollowingHandler(w http.ResponseWriter, r *http.Request) {
	app.listRelatedUsers(w, r, "following", app.core.GetFollowing)
}

func (app *application) listRelatedUsers(w http.ResponseWriter, r *http.Request, key string, list func(ctx context.Context, userID int64) ([]*auth.User, error)) {
	userID, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	// An unknown user id is a 404, not an empty listing.
	if _, err := app.core.GetUserByID(r.Context(), userID); err != nil {
		switch {
		case errors.Is(err, core.NoRecordFound):
			app.notFoundResponse(w, r)
			return
		default:
			app.internalErrorResponse(w, r, err)
			return
		}
	}

	users, err := list(r.Context(), userID)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	profiles := functional.Map(users, profileSummary)

	if err := app.writeJSON(w, http.StatusOK, envelope{key: profiles}, nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}

func (app *application) followUserHandler(w http.ResponseWriter, r *http.Request) {
	params := httprouter.ParamsFromContext(r.Context())
	followeeUsername := params.ByName("username")

	user, err := app.auth.GetAuthenticatedUser(r)
	if err != nil {
		app.authenticationRequiredResponse(w, r, err)
		return
	}

	profile, err := app.core.FollowUser(r.Context(), user, followeeUsername)
	if err != nil {
		switch {
		case errors.Is(err, core.NoRecordFound):
			app.notFoundResponse(w, r)
			return
		case errors.Is(err, core.CannotFollowYourself):
			app.badRequestResponse(w, r, &AppError{
				ErrorDetails: map[string]string{"username": "you cannot follow yourself"},
			})
			return
		case errors.Is(err, core.UserIsAlreadyFollowed):
			app.conflictResponse(w, r, err)
			return
		default:
			app.internalErrorResponse(w, r, err)
			return
		}
	}

	if err := app.writeJSON(w, http.StatusOK, envelope{"profile": profile}, nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}

func (app *application) unfollowUserHandler(w http.ResponseWriter, r *http.Request) {
	params := httprouter.ParamsFromContext(r.Context())
	followeeUsername := params.ByName("username")

	user, err := app.auth.GetAuthenticatedUser(r)
	if err != nil {
		app.authenticationRequiredResponse(w, r, err)
		return
	}

	profile, err := app.core.UnfollowUser(r.Context(), user, followeeUsername)
	if err != nil {
		switch {
		case errors.Is(err, core.NoRecordFound):
			app.notFoundResponse(w, r)
			return
		case errors.Is(err, core.UserIsNotFollowed):
			app.badRequestResponse(w, r, &AppError{
				ErrorDetails: map[string]string{"username": "you are not following this user"},
			})
			return
		default:
			app.internalErrorResponse(w, r, err)
			return
		}
	}

	if err := app.writeJSON(w, http.StatusOK, envelope{"profile": profile}, nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}

type profileSummaryEnvelope struct {
	ID       int64   `json:"id"`
	Username string  `json:"username"`
	Bio      *string `json:"bio"`
	Image    *string `json:"image"`
}

func profileSummary(user *auth.User) profileSummaryEnvelope {
	return profileSummaryEnvelope{
		ID:       user.ID,
		Username: user.Username,
		Bio:      user.Bio,
		Image:    user.Image,
	}
}
