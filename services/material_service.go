package services

import (
	"context"
	"errors"
	"time"

	"github.com/anjiri1684/educonnect/database"
	"github.com/anjiri1684/educonnect/models"
	"github.com/google/uuid"
)

type MaterialService struct {
	store database.Store
	users *UserService
	clean *Sanitizer
	now   func() time.Time
}

func NewMaterialService(store database.Store, users *UserService, clean *Sanitizer) *MaterialService {
	return &MaterialService{store: store, users: users, clean: clean, now: time.Now}
}

type MaterialInput struct {
	Title     string
	SessionID string
	Link      string
	Image     string
}

// Create stores a material owned by the calling tutor.
func (s *MaterialService) Create(ctx context.Context, callerEmail string, in MaterialInput) (*models.Material, error) {
	if in.SessionID != "" {
		if err := checkID(in.SessionID); err != nil {
			return nil, err
		}
	}
	m := models.Material{
		ID:         uuid.NewString(),
		Title:      s.clean.Text(in.Title),
		TutorEmail: normalizeEmail(callerEmail),
		SessionID:  in.SessionID,
		Link:       in.Link,
		Image:      in.Image,
		CreatedAt:  s.now().UTC(),
	}
	if m.Title == "" {
		return nil, Invalid("title is required")
	}
	if _, err := s.store.InsertOne(ctx, database.CollectionMaterials, m); err != nil {
		return nil, storeFailure("insert material", err)
	}
	return &m, nil
}

func (s *MaterialService) List(ctx context.Context, page, limit int64) ([]models.Material, models.Page, error) {
	total, err := s.store.Count(ctx, database.CollectionMaterials, database.Filter{})
	if err != nil {
		return nil, models.Page{}, storeFailure("count materials", err)
	}
	p := models.NewPage(page, limit, total)
	out := make([]models.Material, 0)
	opts := database.FindOptions{
		Sort:  []database.SortField{{Field: "createdAt", Desc: true}},
		Skip:  p.Skip(),
		Limit: p.Limit,
	}
	if err := s.store.Find(ctx, database.CollectionMaterials, database.Filter{}, opts, &out); err != nil {
		return nil, models.Page{}, storeFailure("list materials", err)
	}
	return out, p, nil
}

func (s *MaterialService) ListByTutor(ctx context.Context, email string) ([]models.Material, error) {
	return s.find(ctx, database.Filter{"tutorEmail": normalizeEmail(email)})
}

func (s *MaterialService) ListBySession(ctx context.Context, sessionID string) ([]models.Material, error) {
	return s.find(ctx, database.Filter{"sessionId": sessionID})
}

func (s *MaterialService) Update(ctx context.Context, callerEmail, id string, in MaterialInput) (bool, error) {
	if err := s.authorize(ctx, callerEmail, id); err != nil {
		return false, err
	}
	set := map[string]any{}
	if in.Title != "" {
		set["title"] = s.clean.Text(in.Title)
	}
	if in.SessionID != "" {
		if err := checkID(in.SessionID); err != nil {
			return false, err
		}
		set["sessionId"] = in.SessionID
	}
	if in.Link != "" {
		set["link"] = in.Link
	}
	if in.Image != "" {
		set["image"] = in.Image
	}
	if len(set) == 0 {
		return false, Invalid("no fields to update")
	}
	res, err := s.store.UpdateOne(ctx, database.CollectionMaterials, database.Filter{"_id": id}, database.Update{Set: set})
	if err != nil {
		return false, storeFailure("update material", err)
	}
	if res.Matched == 0 {
		return false, NotFound("material")
	}
	return res.Modified > 0, nil
}

func (s *MaterialService) Delete(ctx context.Context, callerEmail, id string) error {
	if err := s.authorize(ctx, callerEmail, id); err != nil {
		return err
	}
	n, err := s.store.DeleteOne(ctx, database.CollectionMaterials, database.Filter{"_id": id})
	if err != nil {
		return storeFailure("delete material", err)
	}
	if n == 0 {
		return NotFound("material")
	}
	return nil
}

// authorize lets the owning tutor or an admin touch a material.
func (s *MaterialService) authorize(ctx context.Context, callerEmail, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	var m models.Material
	err := s.store.FindOne(ctx, database.CollectionMaterials, database.Filter{"_id": id}, &m)
	if errors.Is(err, database.ErrNotFound) {
		return NotFound("material")
	}
	if err != nil {
		return storeFailure("find material", err)
	}
	if m.TutorEmail == normalizeEmail(callerEmail) {
		return nil
	}
	admin, err := s.users.IsAdmin(ctx, callerEmail)
	if err != nil {
		return err
	}
	if !admin {
		return Forbidden("only the owner or an admin can change this material")
	}
	return nil
}

func (s *MaterialService) find(ctx context.Context, filter database.Filter) ([]models.Material, error) {
	out := make([]models.Material, 0)
	if err := s.store.Find(ctx, database.CollectionMaterials, filter, database.FindOptions{}, &out); err != nil {
		return nil, storeFailure("list materials", err)
	}
	return out, nil
}
