// Package memory keeps every repository in process memory. It backs the
// "memory" store driver and the service and handler tests.
package memory

import (
	"slices"
	"sync"

	"github.com/fillog/blog-service/internal/repository"
)

type store struct {
	mu sync.RWMutex
}

func New() *repository.Repository {
	return &repository.Repository{
		Post:      newPostRepo(),
		Comment:   newCommentRepo(),
		User:      newUserRepo(),
		Follow:    newFollowRepo(),
		Guestbook: newGuestbookRepo(),
		Journal:   newJournal(),
	}
}

func clone[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return slices.Clone(s)
}

func remove(s []string, v string) ([]string, bool) {
	i := slices.Index(s, v)
	if i < 0 {
		return s, false
	}
	return slices.Delete(s, i, i+1), true
}
