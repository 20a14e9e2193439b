package main

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/siahsang/socialite/internal/auth"
	"github.com/siahsang/socialite/internal/core"
	"github.com/siahsang/socialite/internal/validator"
)

type envelope map[string]any

func (app *application) registerUserHandler(w http.ResponseWriter, r *http.Request) {
	type registerUserPayload struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
	}

	type RegisterUserRequest struct {
		registerUserPayload `json:"user"`
	}

	var registerUserRequest RegisterUserRequest

	if err := app.readJSON(w, r, &registerUserRequest); err != nil {
		app.badRequestResponse(w, r, &AppError{
			ErrorMessage: err.Error(),
			ErrorStack:   err,
		})
		return
	}

	user := &auth.User{
		Email:             strings.TrimSpace(registerUserRequest.Email),
		Username:          strings.TrimSpace(registerUserRequest.Username),
		PlaintextPassword: registerUserRequest.Password,
	}

	v := validator.New()
	checkEmail(v, user.Email)

	// check username
	v.CheckNotBlank(user.Username, "username", "must be provided")
	v.Check(utf8.RuneCountInString(user.Username) >= 3, "username", "must be at least 3 characters long")

	// check password
	v.CheckNotBlank(user.PlaintextPassword, "password", "must be provided")
	v.Check(utf8.RuneCountInString(user.PlaintextPassword) >= 8, "password", "must be at least 8 characters long")

	if !v.IsValid() {
		app.badRequestResponse(w, r, &AppError{ErrorDetails: v.Errors})
		return
	}

	if err := user.SetPassword(user.PlaintextPassword); err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	// The user row and its profile row must commit together.
	err := app.session.DoTransactionally(r.Context(), func(txCtx context.Context) error {
		return app.core.CreateUser(txCtx, user)
	})
	if err != nil {
		switch {
		case errors.Is(err, core.ErrDuplicateEmail):
			v.AddError("email", "Email address is already in use")
			app.badRequestResponse(w, r, &AppError{ErrorDetails: v.Errors})
			return
		case errors.Is(err, core.ErrDuplicateUsername):
			v.AddError("username", "Username is already in use")
			app.badRequestResponse(w, r, &AppError{ErrorDetails: v.Errors})
			return
		default:
			app.internalErrorResponse(w, r, err)
			return
		}
	}

	token, err := user.GenerateToken(app.config.TokenDuration, app.config.JWTSecret)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	if err := app.writeJSON(w, http.StatusCreated, userResponse(user, token), nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}

func (app *application) loginHandler(w http.ResponseWriter, r *http.Request) {
	type loginUserPayload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	type LoginUserRequest struct {
		loginUserPayload `json:"user"`
	}

	var loginUserRequest LoginUserRequest

	if err := app.readJSON(w, r, &loginUserRequest); err != nil {
		app.badRequestResponse(w, r, &AppError{
			ErrorMessage: err.Error(),
			ErrorStack:   err,
		})
		return
	}

	v := validator.New()
	checkEmail(v, loginUserRequest.Email)
	v.CheckNotBlank(loginUserRequest.Password, "password", "must be provided")

	if !v.IsValid() {
		app.badRequestResponse(w, r, &AppError{ErrorDetails: v.Errors})
		return
	}

	user, err := app.core.GetUserByEmail(r.Context(), loginUserRequest.Email)
	if err != nil {
		switch {
		case errors.Is(err, core.NoRecordFound):
			app.badRequestResponse(w, r, &AppError{
				ErrorMessage: "Invalid credentials",
				ErrorStack:   err,
			})
			return
		default:
			app.internalErrorResponse(w, r, err)
			return
		}
	}

	match, err := user.IsPasswordMatch(loginUserRequest.Password)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}
	if !match {
		app.badRequestResponse(w, r, &AppError{
			ErrorMessage: "Invalid credentials",
		})
		return
	}

	token, err := user.GenerateToken(app.config.TokenDuration, app.config.JWTSecret)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	if err := app.writeJSON(w, http.StatusOK, userResponse(user, token), nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}

func (app *application) getCurrentUserHandler(w http.ResponseWriter, r *http.Request) {
	user, err := app.auth.GetAuthenticatedUser(r)
	if err != nil {
		app.authenticationRequiredResponse(w, r, err)
		return
	}

	if err := app.writeJSON(w, http.StatusOK, userResponse(user, user.Token), nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}

func (app *application) updateProfileHandler(w http.ResponseWriter, r *http.Request) {
	type updateProfilePayload struct {
		Bio   *string `json:"bio"`
		Image *string `json:"image"`
	}

	type UpdateProfileRequest struct {
		updateProfilePayload `json:"user"`
	}

	var updateProfileRequest UpdateProfileRequest

	if err := app.readJSON(w, r, &updateProfileRequest); err != nil {
		app.badRequestResponse(w, r, &AppError{
			ErrorMessage: err.Error(),
			ErrorStack:   err,
		})
		return
	}

	user, err := app.auth.GetAuthenticatedUser(r)
	if err != nil {
		app.authenticationRequiredResponse(w, r, err)
		return
	}

	// Partial update: fields left out of the payload keep their current value.
	if updateProfileRequest.Bio != nil {
		user.Bio = updateProfileRequest.Bio
	}
	if updateProfileRequest.Image != nil {
		user.Image = updateProfileRequest.Image
	}

	v := validator.New()
	if user.Bio != nil {
		v.Check(utf8.RuneCountInString(*user.Bio) <= 250, "bio", "must not be more than 250 characters long")
	}

	if !v.IsValid() {
		app.badRequestResponse(w, r, &AppError{ErrorDetails: v.Errors})
		return
	}

	updatedUser, err := app.core.UpdateProfile(r.Context(), user)
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

	if err := app.writeJSON(w, http.StatusOK, userResponse(updatedUser, user.Token), nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}

func (app *application) uploadProfileImageHandler(w http.ResponseWriter, r *http.Request) {
	user, err := app.auth.GetAuthenticatedUser(r)
	if err != nil {
		app.authenticationRequiredResponse(w, r, err)
		return
	}

	file, header, appErr := app.readImageUpload(r)
	if appErr != nil {
		app.badRequestResponse(w, r, appErr)
		return
	}
	defer file.Close()

	imageURL, err := app.storage.UploadImage(r.Context(), "profiles", header.Filename, file, header.Size)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	oldImage := user.Image
	user.Image = &imageURL
	updatedUser, err := app.core.UpdateProfile(r.Context(), user)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	if oldImage != nil {
		replacedImage := *oldImage
		app.doInBackground(func() {
			if err := app.storage.DeleteImage(context.Background(), replacedImage); err != nil {
				app.logger.Error("Error deleting replaced profile image", "error", err)
			}
		})
	}

	if err := app.writeJSON(w, http.StatusOK, userResponse(updatedUser, user.Token), nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}

func userResponse(user *auth.User, token string) envelope {
	user.Token = token
	return envelope{"user": user}
}
