package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/anjiri1684/educonnect/database"
	"github.com/anjiri1684/educonnect/models"
	"github.com/google/uuid"
)

type UserService struct {
	store database.Store
	clean *Sanitizer
	now   func() time.Time
}

func NewUserService(store database.Store, clean *Sanitizer) *UserService {
	return &UserService{store: store, clean: clean, now: time.Now}
}

type RegisterInput struct {
	Name  string
	Email string
	Role  models.Role
	Image string
}

// Register creates the user unless the email is already known. The second
// return value is false when the user already existed.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, bool, error) {
	email := normalizeEmail(in.Email)
	if email == "" {
		return nil, false, Invalid("email is required")
	}
	role := in.Role
	if role == "" {
		role = models.RoleStudent
	}
	if role != models.RoleStudent && role != models.RoleTutor {
		return nil, false, Invalid("role must be student or tutor")
	}

	existing, err := s.GetByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if KindOf(err) != KindNotFound {
		return nil, false, err
	}

	user := models.User{
		ID:        uuid.NewString(),
		Name:      s.clean.Text(in.Name),
		Email:     email,
		Role:      role,
		Image:     in.Image,
		CreatedAt: s.now().UTC(),
	}
	if _, err := s.store.InsertOne(ctx, database.CollectionUsers, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			// Lost the race against a concurrent registration.
			existing, err := s.GetByEmail(ctx, email)
			if err != nil {
				return nil, false, err
			}
			return existing, false, nil
		}
		return nil, false, storeFailure("insert user", err)
	}
	return &user, true, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, Invalid("email is required")
	}
	var user models.User
	err := s.store.FindOne(ctx, database.CollectionUsers, database.Filter{"email": email}, &user)
	if errors.Is(err, database.ErrNotFound) {
		return nil, NotFound("user")
	}
	if err != nil {
		return nil, storeFailure("find user", err)
	}
	return &user, nil
}

// IsAdmin reports whether the email belongs to an admin. Unknown users are
// not admins.
func (s *UserService) IsAdmin(ctx context.Context, email string) (bool, error) {
	user, err := s.GetByEmail(ctx, email)
	if err != nil {
		if KindOf(err) == KindNotFound || KindOf(err) == KindValidation {
			return false, nil
		}
		return false, err
	}
	return user.Role == models.RoleAdmin, nil
}

func (s *UserService) List(ctx context.Context, page, limit int64) ([]models.User, models.Page, error) {
	total, err := s.store.Count(ctx, database.CollectionUsers, database.Filter{})
	if err != nil {
		return nil, models.Page{}, storeFailure("count users", err)
	}
	p := models.NewPage(page, limit, total)
	users := make([]models.User, 0)
	opts := database.FindOptions{
		Sort:  []database.SortField{{Field: "createdAt"}},
		Skip:  p.Skip(),
		Limit: p.Limit,
	}
	if err := s.store.Find(ctx, database.CollectionUsers, database.Filter{}, opts, &users); err != nil {
		return nil, models.Page{}, storeFailure("list users", err)
	}
	return users, p, nil
}

// Search matches non-admin users by name or email, case-insensitively.
func (s *UserService) Search(ctx context.Context, q string) ([]models.User, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, Invalid("query parameter q is required")
	}
	filter := database.Filter{
		"role": database.NotEqual{Value: models.RoleAdmin},
		database.OrKey: []database.Filter{
			{"name": database.Contains{Text: q}},
			{"email": database.Contains{Text: q}},
		},
	}
	users := make([]models.User, 0)
	if err := s.store.Find(ctx, database.CollectionUsers, filter, database.FindOptions{}, &users); err != nil {
		return nil, storeFailure("search users", err)
	}
	return users, nil
}

func (s *UserService) Tutors(ctx context.Context) ([]models.User, error) {
	users := make([]models.User, 0)
	err := s.store.Find(ctx, database.CollectionUsers, database.Filter{"role": models.RoleTutor}, database.FindOptions{}, &users)
	if err != nil {
		return nil, storeFailure("list tutors", err)
	}
	return users, nil
}

type UpdateUserInput struct {
	Role  *models.Role
	Image *string
	Name  *string
}

// Update changes role, image or name of the user with the given id. Role
// changes need an admin caller; everything else needs the owner or an admin.
func (s *UserService) Update(ctx context.Context, callerEmail, id string, in UpdateUserInput) (bool, error) {
	if err := checkID(id); err != nil {
		return false, err
	}
	if in.Role == nil && in.Image == nil && in.Name == nil {
		return false, Invalid("no fields to update")
	}

	caller, err := s.GetByEmail(ctx, callerEmail)
	if err != nil {
		if KindOf(err) == KindNotFound {
			return false, Forbidden("unknown caller")
		}
		return false, err
	}
	var target models.User
	err = s.store.FindOne(ctx, database.CollectionUsers, database.Filter{"_id": id}, &target)
	if errors.Is(err, database.ErrNotFound) {
		return false, NotFound("user")
	}
	if err != nil {
		return false, storeFailure("find user", err)
	}

	isAdmin := caller.Role == models.RoleAdmin
	if !isAdmin && caller.Email != target.Email {
		return false, Forbidden("you can only update your own profile")
	}

	set := map[string]any{}
	if in.Role != nil {
		if !in.Role.Valid() {
			return false, Invalid("unknown role %q", *in.Role)
		}
		if !isAdmin {
			return false, Forbidden("only admins can change roles")
		}
		set["role"] = *in.Role
	}
	if in.Image != nil {
		set["image"] = strings.TrimSpace(*in.Image)
	}
	if in.Name != nil {
		set["name"] = s.clean.Text(*in.Name)
	}

	res, err := s.store.UpdateOne(ctx, database.CollectionUsers, database.Filter{"_id": id}, database.Update{Set: set})
	if err != nil {
		return false, storeFailure("update user", err)
	}
	if res.Matched == 0 {
		return false, NotFound("user")
	}
	return res.Modified > 0, nil
}
