package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/siahsang/socialite/internal/auth"
	"github.com/siahsang/socialite/internal/core"
	"github.com/siahsang/socialite/internal/filter"
	"github.com/siahsang/socialite/internal/utils/collectionutils"
	"github.com/siahsang/socialite/internal/utils/functional"
	"github.com/siahsang/socialite/internal/validator"
	"github.com/siahsang/socialite/models"
)

type AuthorEnvelope struct {
	Username  string  `json:"username"`
	Bio       *string `json:"bio"`
	Image     *string `json:"image"`
	Following bool    `json:"following"`
}

type PostEnvelope struct {
	ID        int64          `json:"id"`
	Content   *string        `json:"content"`
	Image     *string        `json:"image"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	Liked     bool           `json:"liked"`
	LikeCount int64          `json:"likeCount"`
	Author    AuthorEnvelope `json:"author"`
}

func (app *application) createPostHandler(w http.ResponseWriter, r *http.Request) {
	type createPostPayload struct {
		Content *string `json:"content"`
		Image   *string `json:"image"`
	}

	type CreatePostRequest struct {
		createPostPayload `json:"post"`
	}

	var createPostRequest CreatePostRequest

	if err := app.readJSON(w, r, &createPostRequest); err != nil {
		app.badRequestResponse(w, r, &AppError{
			ErrorMessage: err.Error(),
			ErrorStack:   err,
		})
		return
	}

	v := validator.New()
	v.Check(createPostRequest.Content != nil || createPostRequest.Image != nil, "post", "must have content or an image")
	if createPostRequest.Content != nil {
		v.CheckNotBlank(*createPostRequest.Content, "content", "must not be blank")
	}

	if !v.IsValid() {
		app.badRequestResponse(w, r, &AppError{ErrorDetails: v.Errors})
		return
	}

	user, err := app.auth.GetAuthenticatedUser(r)
	if err != nil {
		app.authenticationRequiredResponse(w, r, err)
		return
	}

	post, err := app.core.CreatePost(r.Context(), &models.Post{
		Content:  createPostRequest.Content,
		Image:    createPostRequest.Image,
		AuthorID: user.ID,
	})
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	response, err := app.singlePostResponse(r, post, user)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	if err := app.writeJSON(w, http.StatusCreated, response, nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}

func (app *application) getPostHandler(w http.ResponseWriter, r *http.Request) {
	postID, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	post, err := app.core.GetPostByID(r.Context(), postID)
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

	viewer, _ := app.auth.GetAuthenticatedUser(r)

	response, err := app.singlePostResponse(r, post, viewer)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	comments, err := app.core.GetCommentsByPostID(r.Context(), post.ID)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	commentsResponse, err := app.commentsResponse(r, comments)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}
	response["comments"] = commentsResponse

	if err := app.writeJSON(w, http.StatusOK, response, nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}

func (app *application) updatePostHandler(w http.ResponseWriter, r *http.Request) {
	type updatePostPayload struct {
		Content *string `json:"content"`
		Image   *string `json:"image"`
	}

	type UpdatePostRequest struct {
		updatePostPayload `json:"post"`
	}

	var updatePostRequest UpdatePostRequest

	if err := app.readJSON(w, r, &updatePostRequest); err != nil {
		app.badRequestResponse(w, r, &AppError{
			ErrorMessage: err.Error(),
			ErrorStack:   err,
		})
		return
	}

	postID, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	post, err := app.core.GetPostByID(r.Context(), postID)
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

	// Only the author may touch the post.
	if post.AuthorID != user.ID {
		app.forbiddenResponse(w, r)
		return
	}

	// Partial update: fields left out of the payload keep their current value.
	if updatePostRequest.Content != nil {
		post.Content = updatePostRequest.Content
	}
	if updatePostRequest.Image != nil {
		post.Image = updatePostRequest.Image
	}

	v := validator.New()
	if post.Content != nil {
		v.CheckNotBlank(*post.Content, "content", "must not be blank")
	}

	if !v.IsValid() {
		app.badRequestResponse(w, r, &AppError{ErrorDetails: v.Errors})
		return
	}

	updatedPost, err := app.core.UpdatePost(r.Context(), post)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	response, err := app.singlePostResponse(r, updatedPost, user)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	if err := app.writeJSON(w, http.StatusOK, response, nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}

func (app *application) deletePostHandler(w http.ResponseWriter, r *http.Request) {
	postID, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	post, err := app.core.GetPostByID(r.Context(), postID)
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

	if post.AuthorID != user.ID {
		app.forbiddenResponse(w, r)
		return
	}

	if err := app.core.DeletePost(r.Context(), post.ID); err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	if err := app.writeJSON(w, http.StatusOK, envelope{"deleted": true}, nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}

func (app *application) uploadPostImageHandler(w http.ResponseWriter, r *http.Request) {
	postID, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	post, err := app.core.GetPostByID(r.Context(), postID)
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

	if post.AuthorID != user.ID {
		app.forbiddenResponse(w, r)
		return
	}

	file, header, appErr := app.readImageUpload(r)
	if appErr != nil {
		app.badRequestResponse(w, r, appErr)
		return
	}
	defer file.Close()

	imageURL, err := app.storage.UploadImage(r.Context(), "posts", header.Filename, file, header.Size)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	oldImage := post.Image
	post.Image = &imageURL
	updatedPost, err := app.core.UpdatePost(r.Context(), post)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	if oldImage != nil {
		replacedImage := *oldImage
		app.doInBackground(func() {
			if err := app.storage.DeleteImage(context.Background(), replacedImage); err != nil {
				app.logger.Error("Error deleting replaced post image", "error", err)
			}
		})
	}

	response, err := app.singlePostResponse(r, updatedPost, user)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	if err := app.writeJSON(w, http.StatusOK, response, nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}

func (app *application) getPostsHandler(w http.ResponseWriter, r *http.Request) {
	v := validator.New()
	query := r.URL.Query()
	page := app.readInt(query, "page", 1, v)

	filters := filter.NewFilter(page)
	filter.ValidateFilters(filters, v)
	if !v.IsValid() {
		app.badRequestResponse(w, r, &AppError{ErrorDetails: v.Errors})
		return
	}

	posts, err := app.core.GetPosts(r.Context(), filters)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	totalCount, err := app.core.CountPosts(r.Context())
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	viewer, _ := app.auth.GetAuthenticatedUser(r)
	response, err := app.prepareMultiPostResponse(r.Context(), posts, viewer)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}
	response["metadata"] = filter.NewMetadata(filters, totalCount)

	if err := app.writeJSON(w, http.StatusOK, response, nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}

func (app *application) getFeedHandler(w http.ResponseWriter, r *http.Request) {
	user, err := app.auth.GetAuthenticatedUser(r)
	if err != nil {
		app.authenticationRequiredResponse(w, r, err)
		return
	}

	v := validator.New()
	query := r.URL.Query()
	page := app.readInt(query, "page", 1, v)

	filters := filter.NewFilter(page)
	filter.ValidateFilters(filters, v)
	if !v.IsValid() {
		app.badRequestResponse(w, r, &AppError{ErrorDetails: v.Errors})
		return
	}

	posts, err := app.core.GetFeed(r.Context(), user.ID, filters)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	totalCount, err := app.core.CountFeed(r.Context(), user.ID)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	response, err := app.prepareMultiPostResponse(r.Context(), posts, user)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}
	response["metadata"] = filter.NewMetadata(filters, totalCount)

	if err := app.writeJSON(w, http.StatusOK, response, nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}

func (app *application) singlePostResponse(r *http.Request, post *models.Post, viewer *auth.User) (envelope, error) {
	author, err := app.core.GetUserByID(r.Context(), post.AuthorID)
	if err != nil {
		return nil, err
	}

	liked, err := app.core.IsLikedByUser(r.Context(), post.ID, viewer)
	if err != nil {
		return nil, err
	}

	likeCount, err := app.core.LikeCount(r.Context(), post.ID)
	if err != nil {
		return nil, err
	}

	following := false
	if viewer != nil && viewer.ID != author.ID {
		following, err = app.core.IsFollowing(r.Context(), viewer.ID, author.ID)
		if err != nil {
			return nil, err
		}
	}

	return envelope{
		"post": PostEnvelope{
			ID:        post.ID,
			Content:   post.Content,
			Image:     post.Image,
			CreatedAt: post.CreatedAt,
			UpdatedAt: post.UpdatedAt,
			Liked:     liked,
			LikeCount: likeCount,
			Author: AuthorEnvelope{
				Username:  author.Username,
				Bio:       author.Bio,
				Image:     author.Image,
				Following: following,
			},
		},
	}, nil
}

func (app *application) prepareMultiPostResponse(ctx context.Context, posts []*models.Post, viewer *auth.User) (envelope, error) {
	postIDList := functional.Map(posts, func(p *models.Post) int64 {
		return p.ID
	})

	likeCountByPostID, err := app.core.LikeCountByPostIDs(ctx, postIDList)
	if err != nil {
		return nil, err
	}

	likedByPostID, err := app.core.LikedPostIDs(ctx, postIDList, viewer)
	if err != nil {
		return nil, err
	}

	authorIDList := functional.Map(posts, func(p *models.Post) int64 {
		return p.AuthorID
	})

	authorList, err := app.core.GetUsersByIdList(ctx, authorIDList)
	if err != nil {
		return nil, err
	}

	authorByUserID := collectionutils.Associate(authorList, func(user *auth.User) (int64, *auth.User) {
		return user.ID, user
	})

	var followingUserList []*auth.User
	if viewer != nil {
		followingUserList, err = app.core.GetFollowing(ctx, viewer.ID)
		if err != nil {
			return nil, err
		}
	}

	followingByUserID := collectionutils.Associate(followingUserList, func(user *auth.User) (int64, bool) {
		return user.ID, true
	})

	postsEnvelope := make([]PostEnvelope, 0, len(posts))
	for _, post := range posts {
		author := authorByUserID[post.AuthorID]
		p := PostEnvelope{
			ID:        post.ID,
			Content:   post.Content,
			Image:     post.Image,
			CreatedAt: post.CreatedAt,
			UpdatedAt: post.UpdatedAt,
			Liked:     likedByPostID[post.ID],
			LikeCount: collectionutils.GetOrDefault(likeCountByPostID, post.ID, int64(0)),
			Author: AuthorEnvelope{
				Username:  author.Username,
				Bio:       author.Bio,
				Image:     author.Image,
				Following: collectionutils.GetOrDefault(followingByUserID, post.AuthorID, false),
			},
		}
		postsEnvelope = append(postsEnvelope, p)
	}

	return envelope{
		"posts": postsEnvelope,
	}, nil
}
