package models

import "time"

type Profile struct {
	ID             int64   `json:"-"`
	Username       string  `json:"username"`
	Bio            *string `json:"bio"`
	Image          *string `json:"image"`
	Following      bool    `json:"following"`
	PostCount      int64   `json:"postCount"`
	FollowerCount  int64   `json:"followerCount"`
	FollowingCount int64   `json:"followingCount"`
}

type Post struct {
	ID        int64     `json:"id"`
	Content   *string   `json:"content"`
	Image     *string   `json:"image"`
	AuthorID  int64     `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Comment struct {
	ID        int64     `json:"id"`
	Body      string    `json:"body"`
	PostID    int64     `json:"-"`
	AuthorID  int64     `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
