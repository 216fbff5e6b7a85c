package services

import (
	"context"
	"errors"
	"time"

	"github.com/anjiri1684/educonnect/database"
	"github.com/anjiri1684/educonnect/models"
	"github.com/google/uuid"
)

type NoteService struct {
	store database.Store
	clean *Sanitizer
	now   func() time.Time
}

func NewNoteService(store database.Store, clean *Sanitizer) *NoteService {
	return &NoteService{store: store, clean: clean, now: time.Now}
}

func (s *NoteService) Create(ctx context.Context, userEmail, title, description string) (*models.Note, error) {
	userEmail = normalizeEmail(userEmail)
	if userEmail == "" {
		return nil, Invalid("userEmail is required")
	}
	note := models.Note{
		ID:          uuid.NewString(),
		UserEmail:   userEmail,
		Title:       s.clean.Text(title),
		Description: s.clean.RichText(description),
		CreatedAt:   s.now().UTC(),
	}
	if note.Title == "" {
		return nil, Invalid("title is required")
	}
	if _, err := s.store.InsertOne(ctx, database.CollectionNotes, note); err != nil {
		return nil, storeFailure("insert note", err)
	}
	return &note, nil
}

// ListByUser pages through a user's notes, newest first.
func (s *NoteService) ListByUser(ctx context.Context, userEmail string, page, limit int64) ([]models.Note, models.Page, error) {
	userEmail = normalizeEmail(userEmail)
	if userEmail == "" {
		return nil, models.Page{}, Invalid("userEmail query parameter is required")
	}
	filter := database.Filter{"userEmail": userEmail}
	total, err := s.store.Count(ctx, database.CollectionNotes, filter)
	if err != nil {
		return nil, models.Page{}, storeFailure("count notes", err)
	}
	p := models.NewPage(page, limit, total)
	notes := make([]models.Note, 0)
	opts := database.FindOptions{
		Sort:  []database.SortField{{Field: "createdAt", Desc: true}},
		Skip:  p.Skip(),
		Limit: p.Limit,
	}
	if err := s.store.Find(ctx, database.CollectionNotes, filter, opts, &notes); err != nil {
		return nil, models.Page{}, storeFailure("list notes", err)
	}
	return notes, p, nil
}

func (s *NoteService) Get(ctx context.Context, id string) (*models.Note, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	var note models.Note
	err := s.store.FindOne(ctx, database.CollectionNotes, database.Filter{"_id": id}, &note)
	if errors.Is(err, database.ErrNotFound) {
		return nil, NotFound("note")
	}
	if err != nil {
		return nil, storeFailure("find note", err)
	}
	return &note, nil
}

// Update changes title and description only.
func (s *NoteService) Update(ctx context.Context, id string, title, description *string) (bool, error) {
	if err := checkID(id); err != nil {
		return false, err
	}
	set := map[string]any{}
	if title != nil {
		t := s.clean.Text(*title)
		if t == "" {
			return false, Invalid("title cannot be empty")
		}
		set["title"] = t
	}
	if description != nil {
		set["description"] = s.clean.RichText(*description)
	}
	if len(set) == 0 {
		return false, Invalid("no fields to update")
	}
	res, err := s.store.UpdateOne(ctx, database.CollectionNotes, database.Filter{"_id": id}, database.Update{Set: set})
	if err != nil {
		return false, storeFailure("update note", err)
	}
	if res.Matched == 0 {
		return false, NotFound("note")
	}
	return res.Modified > 0, nil
}

func (s *NoteService) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	n, err := s.store.DeleteOne(ctx, database.CollectionNotes, database.Filter{"_id": id})
	if err != nil {
		return storeFailure("delete note", err)
	}
	if n == 0 {
		return NotFound("note")
	}
	return nil
}
