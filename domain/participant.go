// Package domain contains core concepts of the chat feed.
// This file defines users and the author snapshot attached to messages.
package domain

import "time"

type UserID string

// AnonymousName is displayed for authors whose account cannot be resolved.
const AnonymousName = "Anonymous"

type User struct {
	ID           UserID
	Email        string
	Name         string
	Image        string
	PasswordHash string
	Roles        []string
	CreatedAt    time.Time
}

// Author is the denormalized user snapshot carried by a feed item.
type Author struct {
	ID          UserID
	Name        string
	Image       string
	IsAnonymous bool
}

func AuthorFromUser(u User) Author {
	return Author{ID: u.ID, Name: u.Name, Image: u.Image}
}

// AnonymousAuthor is the placeholder used when a user lookup fails.
func AnonymousAuthor(id UserID) Author {
	return Author{ID: id, Name: AnonymousName, IsAnonymous: true}
}
