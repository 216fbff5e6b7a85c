package services

import (
	"context"
	"time"

	"github.com/anjiri1684/educonnect/database"
	"github.com/anjiri1684/educonnect/models"
	"github.com/google/uuid"
)

type ReviewService struct {
	store database.Store
	clean *Sanitizer
	now   func() time.Time
}

func NewReviewService(store database.Store, clean *Sanitizer) *ReviewService {
	return &ReviewService{store: store, clean: clean, now: time.Now}
}

// Create appends a review. Reviews are never edited.
func (s *ReviewService) Create(ctx context.Context, r models.Review) (*models.Review, error) {
	if err := checkID(r.SessionID); err != nil {
		return nil, err
	}
	r.ID = uuid.NewString()
	r.ReviewText = s.clean.Text(r.ReviewText)
	r.UserName = s.clean.Text(r.UserName)
	if r.DateTime == "" {
		r.DateTime = s.now().UTC().Format(time.RFC3339)
	}
	if _, err := s.store.InsertOne(ctx, database.CollectionReviews, r); err != nil {
		return nil, storeFailure("insert review", err)
	}
	return &r, nil
}

// List returns every review, newest first.
func (s *ReviewService) List(ctx context.Context) ([]models.Review, error) {
	reviews := make([]models.Review, 0)
	opts := database.FindOptions{Sort: []database.SortField{{Field: "dateTime", Desc: true}}}
	if err := s.store.Find(ctx, database.CollectionReviews, database.Filter{}, opts, &reviews); err != nil {
		return nil, storeFailure("list reviews", err)
	}
	return reviews, nil
}

// Aggregate collects the reviews of one session with their average rating.
func (s *ReviewService) Aggregate(ctx context.Context, sessionID string) (models.ReviewSummary, error) {
	reviews := make([]models.Review, 0)
	err := s.store.Find(ctx, database.CollectionReviews, database.Filter{"sessionId": sessionID}, database.FindOptions{}, &reviews)
	if err != nil {
		return models.ReviewSummary{}, storeFailure("list session reviews", err)
	}
	return models.ReviewSummary{Reviews: reviews, AverageRating: AverageRating(reviews)}, nil
}

// AverageRating is 0 for no reviews, otherwise the mean rounded to 2 places.
func AverageRating(reviews []models.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	var sum float64
	for _, r := range reviews {
		sum += r.Rating
	}
	return roundTo2(sum / float64(len(reviews)))
}
