package api

import "github.com/notekeeper/notekeeper-server/internal/service"

// Services groups the business logic services used by the API server.
type Services struct {
	Auth          *service.AuthService
	PasswordReset *service.PasswordResetService
	Book          *service.BookService
	Chapter       *service.ChapterService
	Note          *service.NoteService
	Tag           *service.TagService
}
