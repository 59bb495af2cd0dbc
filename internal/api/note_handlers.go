package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/notekeeper/notekeeper-server/internal/domain"
	"github.com/notekeeper/notekeeper-server/internal/service"
)

func (s *Server) registerNoteRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchNotes",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/notes/search",
		Summary:     "Search notes",
		Description: "Case-insensitive substring search over the caller's notes, newest first, at most 50 results",
		Tags:        tagsNotes,
		Security:    bearerSecurity,
	}, s.handleSearchNotes)

	huma.Register(s.api, huma.Operation{
		OperationID: "listNotes",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/chapters/{id}/notes",
		Summary:     "List notes",
		Description: "Returns the notes of a chapter, newest first",
		Tags:        tagsNotes,
		Security:    bearerSecurity,
	}, s.handleListNotes)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createNote",
		Method:        http.MethodPost,
		Path:          apiPrefix + "/chapters/{id}/notes",
		Summary:       "Create note",
		Tags:          tagsNotes,
		Security:      bearerSecurity,
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateNote)

	huma.Register(s.api, huma.Operation{
		OperationID: "getNote",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/notes/{id}",
		Summary:     "Get note",
		Tags:        tagsNotes,
		Security:    bearerSecurity,
	}, s.handleGetNote)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateNote",
		Method:      http.MethodPut,
		Path:        apiPrefix + "/notes/{id}",
		Summary:     "Update note",
		Description: "Partial update; omitted fields are left unchanged",
		Tags:        tagsNotes,
		Security:    bearerSecurity,
	}, s.handleUpdateNote)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteNote",
		Method:        http.MethodDelete,
		Path:          apiPrefix + "/notes/{id}",
		Summary:       "Delete note",
		Tags:          tagsNotes,
		Security:      bearerSecurity,
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteNote)
}

// === DTOs ===

// NoteResponse contains note data in API responses.
type NoteResponse struct {
	ID        int64     `json:"id" doc:"Note ID"`
	Content   string    `json:"content" doc:"Note text"`
	ChapterID int64     `json:"chapter_id" doc:"Owning chapter"`
	Date      string    `json:"date" doc:"Creation date as Mon DD, YYYY"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update time"`
}

// NoteSearchResultResponse is a note with its chapter and book names.
type NoteSearchResultResponse struct {
	NoteResponse
	ChapterName string `json:"chapter_name" doc:"Chapter name"`
	BookID      int64  `json:"book_id" doc:"Book ID"`
	BookName    string `json:"book_name" doc:"Book name"`
}

// NoteOutput wraps the note response for Huma.
type NoteOutput struct {
	Body NoteResponse
}

// ListNotesOutput is a bare JSON array of notes.
type ListNotesOutput struct {
	Body []NoteResponse
}

// SearchNotesInput contains the search query.
type SearchNotesInput struct {
	Authorization string `header:"Authorization"`
	Q             string `query:"q" maxLength:"1000" doc:"Substring to look for; blank returns no results"`
}

// SearchNotesOutput is a bare JSON array of search results.
type SearchNotesOutput struct {
	Body []NoteSearchResultResponse
}

// NoteRequest is the request body for creating a note.
type NoteRequest struct {
	Content string `json:"content" minLength:"1" doc:"Note text"`
}

// CreateNoteInput wraps the create note request for Huma.
type CreateNoteInput struct {
	Authorization string `header:"Authorization"`
	ChapterID     int64  `path:"id" doc:"Chapter ID"`
	Body          NoteRequest
}

// NoteIDInput addresses one note.
type NoteIDInput struct {
	Authorization string `header:"Authorization"`
	ID            int64  `path:"id" doc:"Note ID"`
}

// UpdateNoteRequest is the request body for updating a note.
type UpdateNoteRequest struct {
	Content *string `json:"content,omitempty" minLength:"1" doc:"Note text"`
}

// UpdateNoteInput wraps the update note request for Huma.
type UpdateNoteInput struct {
	Authorization string `header:"Authorization"`
	ID            int64  `path:"id" doc:"Note ID"`
	Body          UpdateNoteRequest
}

func newNoteResponse(n *domain.Note) NoteResponse {
	return NoteResponse{
		ID:        n.ID,
		Content:   n.Content,
		ChapterID: n.ChapterID,
		Date:      n.DisplayDate(),
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

// === Handlers ===

func (s *Server) handleSearchNotes(ctx context.Context, input *SearchNotesInput) (*SearchNotesOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	results, err := s.services.Note.Search(ctx, user.ID, input.Q)
	if err != nil {
		return nil, err
	}

	resp := make([]NoteSearchResultResponse, len(results))
	for i, r := range results {
		resp[i] = NoteSearchResultResponse{
			NoteResponse: newNoteResponse(&r.Note),
			ChapterName:  r.ChapterName,
			BookID:       r.BookID,
			BookName:     r.BookName,
		}
	}

	return &SearchNotesOutput{Body: resp}, nil
}

func (s *Server) handleListNotes(ctx context.Context, input *ChapterIDInput) (*ListNotesOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	notes, err := s.services.Note.ListByChapter(ctx, user.ID, input.ID)
	if err != nil {
		return nil, err
	}

	resp := make([]NoteResponse, len(notes))
	for i, n := range notes {
		resp[i] = newNoteResponse(n)
	}

	return &ListNotesOutput{Body: resp}, nil
}

func (s *Server) handleCreateNote(ctx context.Context, input *CreateNoteInput) (*NoteOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	note, err := s.services.Note.Create(ctx, user.ID, input.ChapterID, service.CreateNoteRequest{Content: input.Body.Content})
	if err != nil {
		return nil, err
	}

	return &NoteOutput{Body: newNoteResponse(note)}, nil
}

func (s *Server) handleGetNote(ctx context.Context, input *NoteIDInput) (*NoteOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	note, err := s.services.Note.Get(ctx, user.ID, input.ID)
	if err != nil {
		return nil, err
	}

	return &NoteOutput{Body: newNoteResponse(note)}, nil
}

func (s *Server) handleUpdateNote(ctx context.Context, input *UpdateNoteInput) (*NoteOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	note, err := s.services.Note.Update(ctx, user.ID, input.ID, service.UpdateNoteRequest{Content: input.Body.Content})
	if err != nil {
		return nil, err
	}

	return &NoteOutput{Body: newNoteResponse(note)}, nil
}

func (s *Server) handleDeleteNote(ctx context.Context, input *NoteIDInput) (*struct{}, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Note.Delete(ctx, user.ID, input.ID); err != nil {
		return nil, err
	}

	return nil, nil
}
