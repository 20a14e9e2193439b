package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundResponse)

	// Not require authentication for these routes
	router.HandlerFunc(http.MethodPost, "/api/users", app.registerUserHandler)
	router.HandlerFunc(http.MethodPost, "/api/users/login", app.loginHandler)
	router.HandlerFunc(http.MethodGet, "/api/users/:id", app.getProfileHandler)
	router.HandlerFunc(http.MethodGet, "/api/users/:id/followers", app.getFollowersHandler)
	router.HandlerFunc(http.MethodGet, "/api/users/:id/following", app.getFollowingHandler)
	router.HandlerFunc(http.MethodGet, "/api/posts", app.getPostsHandler)
	router.HandlerFunc(http.MethodGet, "/api/posts/:id", app.getPostHandler)
	router.HandlerFunc(http.MethodGet, "/api/posts/:id/comments", app.getCommentsHandler)

	// Require authentication for these routes
	router.HandlerFunc(http.MethodGet, "/api/user", app.requireAuthenticatedUser(app.getCurrentUserHandler))
	router.HandlerFunc(http.MethodPut, "/api/user", app.requireAuthenticatedUser(app.updateProfileHandler))
	router.HandlerFunc(http.MethodPost, "/api/user/image", app.requireAuthenticatedUser(app.uploadProfileImageHandler))
	router.HandlerFunc(http.MethodPost, "/api/posts", app.requireAuthenticatedUser(app.createPostHandler))
	router.HandlerFunc(http.MethodGet, "/api/feed", app.requireAuthenticatedUser(app.getFeedHandler))
	router.HandlerFunc(http.MethodPut, "/api/posts/:id", app.requireAuthenticatedUser(app.updatePostHandler))
	router.HandlerFunc(http.MethodDelete, "/api/posts/:id", app.requireAuthenticatedUser(app.deletePostHandler))
	router.HandlerFunc(http.MethodPost, "/api/posts/:id/image", app.requireAuthenticatedUser(app.uploadPostImageHandler))
	router.HandlerFunc(http.MethodPost, "/api/posts/:id/like", app.requireAuthenticatedUser(app.toggleLikeHandler))
	router.HandlerFunc(http.MethodPost, "/api/posts/:id/comments", app.requireAuthenticatedUser(app.createCommentHandler))
	router.HandlerFunc(http.MethodPut, "/api/comments/:id", app.requireAuthenticatedUser(app.updateCommentHandler))
	router.HandlerFunc(http.MethodDelete, "/api/comments/:id", app.requireAuthenticatedUser(app.deleteCommentHandler))
	router.HandlerFunc(http.MethodPost, "/api/follow/:username", app.requireAuthenticatedUser(app.followUserHandler))
	router.HandlerFunc(http.MethodPost, "/api/unfollow/:username", app.requireAuthenticatedUser(app.unfollowUserHandler))

	return app.recoverPanic(app.authenticate(router))
}
