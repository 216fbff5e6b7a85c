package services

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/anjiri1684/educonnect/database"
	"github.com/anjiri1684/educonnect/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// SessionAction is an input to the session state machine.
type SessionAction string

const (
	ActionApprove  SessionAction = "approve"
	ActionReject   SessionAction = "reject"
	ActionResubmit SessionAction = "resubmit"
)

// NextStatus is the session state machine. Approve and reject only leave
// pending; resubmit sends any session back to pending review.
func NextStatus(from models.SessionStatus, action SessionAction) (models.SessionStatus, error) {
	if !from.Valid() {
		return "", Conflict("session has unknown status %q", from)
	}
	switch action {
	case ActionApprove:
		if from == models.SessionPending {
			return models.SessionApproved, nil
		}
	case ActionReject:
		if from == models.SessionPending {
			return models.SessionRejected, nil
		}
	case ActionResubmit:
		return models.SessionPending, nil
	default:
		return "", Invalid("unknown session action %q", action)
	}
	return "", Conflict("cannot %s a session that is %s", action, from)
}

// ComputeFee derives the registration fee stored on approval.
func ComputeFee(sessionType models.SessionType, amount any) (float64, error) {
	switch sessionType {
	case models.SessionFree:
		return 0, nil
	case models.SessionPaid:
	default:
		return 0, Invalid("sessionType must be free or paid")
	}

	var fee float64
	switch v := amount.(type) {
	case float64:
		fee = v
	case int:
		fee = float64(v)
	case int64:
		fee = float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, Invalid("amount must be a number")
		}
		fee = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, Invalid("amount must be a number")
		}
		fee = f
	case nil:
		return 0, Invalid("amount is required for a paid session")
	default:
		return 0, Invalid("amount must be a number")
	}
	if math.IsNaN(fee) || math.IsInf(fee, 0) || fee < 0 {
		return 0, Invalid("amount must be a non-negative number")
	}
	return roundTo2(fee), nil
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}

// SessionEventSink receives lifecycle transitions after they are persisted.
type SessionEventSink interface {
	SessionChanged(ctx context.Context, ev models.SessionEvent)
}

type SessionService struct {
	store database.Store
	users *UserService
	clean *Sanitizer
	sinks []SessionEventSink
	now   func() time.Time
}

func NewSessionService(store database.Store, users *UserService, clean *Sanitizer, sinks ...SessionEventSink) *SessionService {
	return &SessionService{store: store, users: users, clean: clean, sinks: sinks, now: time.Now}
}

type CreateSessionInput struct {
	Title                 string
	Description           string
	TutorName             string
	RegistrationStartDate string
	RegistrationEndDate   string
	ClassStartDate        string
	ClassEndDate          string
	Duration              string
	Image                 string
	SessionType           models.SessionType
}

// Create stores a new session for the calling tutor in pending state.
func (s *SessionService) Create(ctx context.Context, callerEmail string, in CreateSessionInput) (*models.Session, error) {
	caller, err := s.users.GetByEmail(ctx, callerEmail)
	if err != nil {
		if KindOf(err) == KindNotFound {
			return nil, Forbidden("only registered tutors can create sessions")
		}
		return nil, err
	}
	if caller.Role != models.RoleTutor && caller.Role != models.RoleAdmin {
		return nil, Forbidden("only tutors can create sessions")
	}
	if in.SessionType != "" && in.SessionType != models.SessionFree && in.SessionType != models.SessionPaid {
		return nil, Invalid("sessionType must be free or paid")
	}

	tutorName := in.TutorName
	if tutorName == "" {
		tutorName = caller.Name
	}
	session := models.Session{
		ID:                    uuid.NewString(),
		Title:                 s.clean.Text(in.Title),
		Description:           s.clean.RichText(in.Description),
		TutorName:             s.clean.Text(tutorName),
		TutorEmail:            caller.Email,
		RegistrationStartDate: in.RegistrationStartDate,
		RegistrationEndDate:   in.RegistrationEndDate,
		ClassStartDate:        in.ClassStartDate,
		ClassEndDate:          in.ClassEndDate,
		Duration:              in.Duration,
		Image:                 in.Image,
		SessionType:           in.SessionType,
		Status:                models.SessionPending,
		CreatedAt:             s.now().UTC(),
	}
	if _, err := s.store.InsertOne(ctx, database.CollectionSessions, session); err != nil {
		return nil, storeFailure("insert session", err)
	}
	return &session, nil
}

func (s *SessionService) Get(ctx context.Context, id string) (*models.Session, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	var session models.Session
	err := s.store.FindOne(ctx, database.CollectionSessions, database.Filter{"_id": id}, &session)
	if errors.Is(err, database.ErrNotFound) {
		return nil, NotFound("session")
	}
	if err != nil {
		return nil, storeFailure("find session", err)
	}
	return &session, nil
}

// GetApproved only returns sessions open to students.
func (s *SessionService) GetApproved(ctx context.Context, id string) (*models.Session, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Status != models.SessionApproved {
		return nil, NotFound("approved session")
	}
	return session, nil
}

func (s *SessionService) List(ctx context.Context, page, limit int64) ([]models.Session, models.Page, error) {
	return s.list(ctx, database.Filter{}, page, limit)
}

func (s *SessionService) ListByStatus(ctx context.Context, status models.SessionStatus) ([]models.Session, error) {
	if !status.Valid() {
		return nil, Invalid("unknown status %q", status)
	}
	sessions := make([]models.Session, 0)
	err := s.store.Find(ctx, database.CollectionSessions, database.Filter{"status": status}, database.FindOptions{}, &sessions)
	if err != nil {
		return nil, storeFailure("list sessions by status", err)
	}
	return sessions, nil
}

func (s *SessionService) ListByTutor(ctx context.Context, tutorEmail string, status models.SessionStatus) ([]models.Session, error) {
	tutorEmail = normalizeEmail(tutorEmail)
	if tutorEmail == "" {
		return nil, Invalid("tutor email is required")
	}
	filter := database.Filter{"tutorEmail": tutorEmail}
	if status != "" {
		if !status.Valid() {
			return nil, Invalid("unknown status %q", status)
		}
		filter["status"] = status
	}
	sessions := make([]models.Session, 0)
	if err := s.store.Find(ctx, database.CollectionSessions, filter, database.FindOptions{}, &sessions); err != nil {
		return nil, storeFailure("list sessions by tutor", err)
	}
	return sessions, nil
}

// Approve sets the session approved and stores the registration fee. A
// missing or already decided session is reported before the fee is checked.
func (s *SessionService) Approve(ctx context.Context, id string, sessionType models.SessionType, amount any) (*models.Session, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := NextStatus(current.Status, ActionApprove); err != nil {
		return nil, err
	}
	fee, err := ComputeFee(sessionType, amount)
	if err != nil {
		return nil, err
	}
	return s.transitionFrom(ctx, current, ActionApprove, database.Update{
		Set: map[string]any{
			"registrationFee": fee,
			"sessionType":     sessionType,
		},
		Unset: []string{"rejectionReason", "feedback"},
	}, func(ss *models.Session) {
		ss.RegistrationFee = fee
		ss.SessionType = sessionType
		ss.RejectionReason = ""
		ss.Feedback = ""
	})
}

// Reject sets the session rejected with an explanation for the tutor.
func (s *SessionService) Reject(ctx context.Context, id, reason, feedback string) (*models.Session, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	reason = s.clean.Text(reason)
	feedback = s.clean.Text(feedback)
	if reason == "" {
		return nil, Invalid("rejectionReason is required")
	}
	return s.transition(ctx, id, ActionReject, database.Update{
		Set: map[string]any{
			"rejectionReason": reason,
			"feedback":        feedback,
			"registrationFee": float64(0),
		},
	}, func(ss *models.Session) {
		ss.RejectionReason = reason
		ss.Feedback = feedback
		ss.RegistrationFee = 0
	})
}

// Resubmit merges a tutor's edits into their own session and puts it back
// into pending review.
func (s *SessionService) Resubmit(ctx context.Context, id, callerEmail string, fields map[string]any) (*models.Session, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	set, err := s.sessionFields(fields, tutorEditable)
	if err != nil {
		return nil, err
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.TutorEmail != normalizeEmail(callerEmail) {
		return nil, Forbidden("only the session's tutor can edit it")
	}
	set["registrationFee"] = float64(0)
	return s.transition(ctx, id, ActionResubmit, database.Update{
		Set:   set,
		Unset: []string{"rejectionReason", "feedback"},
	}, func(ss *models.Session) {
		applySessionFields(ss, set)
		ss.RejectionReason = ""
		ss.Feedback = ""
	})
}

// Update is the admin correction path: a partial merge of known fields.
// Status may only be sent back to pending here.
func (s *SessionService) Update(ctx context.Context, id string, fields map[string]any) (database.UpdateResult, error) {
	if err := checkID(id); err != nil {
		return database.UpdateResult{}, err
	}
	set, err := s.sessionFields(fields, adminEditable)
	if err != nil {
		return database.UpdateResult{}, err
	}

	if status, ok := set["status"]; ok {
		if models.SessionStatus(status.(string)) != models.SessionPending {
			return database.UpdateResult{}, Invalid("use approveSession or rejectSession to change status to %s", status)
		}
		delete(set, "status")
		if _, err := s.transition(ctx, id, ActionResubmit, database.Update{Set: set}, func(ss *models.Session) {
			applySessionFields(ss, set)
		}); err != nil {
			return database.UpdateResult{}, err
		}
		return database.UpdateResult{Matched: 1, Modified: 1}, nil
	}

	res, err := s.store.UpdateOne(ctx, database.CollectionSessions, database.Filter{"_id": id}, database.Update{Set: set})
	if err != nil {
		return database.UpdateResult{}, storeFailure("update session", err)
	}
	if res.Matched == 0 {
		return database.UpdateResult{}, NotFound("session")
	}
	return res, nil
}

// Delete removes the session. Materials, bookings and reviews pointing at it
// are left in place.
func (s *SessionService) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	n, err := s.store.DeleteOne(ctx, database.CollectionSessions, database.Filter{"_id": id})
	if err != nil {
		return storeFailure("delete session", err)
	}
	if n == 0 {
		return NotFound("session")
	}
	return nil
}

// transition loads the session, runs the state machine and persists the new
// status guarded on the status it was read with.
func (s *SessionService) transition(ctx context.Context, id string, action SessionAction, update database.Update, apply func(*models.Session)) (*models.Session, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.transitionFrom(ctx, current, action, update, apply)
}

// transitionFrom writes the move only if the stored status still matches
// the one current was read with.
func (s *SessionService) transitionFrom(ctx context.Context, current *models.Session, action SessionAction, update database.Update, apply func(*models.Session)) (*models.Session, error) {
	id := current.ID
	next, err := NextStatus(current.Status, action)
	if err != nil {
		return nil, err
	}

	if update.Set == nil {
		update.Set = map[string]any{}
	}
	update.Set["status"] = next

	res, err := s.store.UpdateOne(ctx, database.CollectionSessions,
		database.Filter{"_id": id, "status": current.Status}, update)
	if err != nil {
		return nil, storeFailure("update session status", err)
	}
	if res.Matched == 0 {
		return nil, Conflict("session was modified concurrently, retry")
	}

	from := current.Status
	apply(current)
	current.Status = next

	log.Info().Str("session_id", id).Str("from", string(from)).Str("to", string(next)).Msg("session transition")
	s.emit(ctx, models.SessionEvent{
		SessionID:  current.ID,
		Title:      current.Title,
		TutorEmail: current.TutorEmail,
		From:       from,
		To:         next,
		Fee:        current.RegistrationFee,
		Reason:     current.RejectionReason,
		Feedback:   current.Feedback,
		At:         s.now().UTC(),
	})
	return current, nil
}

func (s *SessionService) emit(ctx context.Context, ev models.SessionEvent) {
	for _, sink := range s.sinks {
		sink.SessionChanged(ctx, ev)
	}
}

func (s *SessionService) list(ctx context.Context, filter database.Filter, page, limit int64) ([]models.Session, models.Page, error) {
	total, err := s.store.Count(ctx, database.CollectionSessions, filter)
	if err != nil {
		return nil, models.Page{}, storeFailure("count sessions", err)
	}
	p := models.NewPage(page, limit, total)
	sessions := make([]models.Session, 0)
	err = s.store.Find(ctx, database.CollectionSessions, filter, database.FindOptions{Skip: p.Skip(), Limit: p.Limit}, &sessions)
	if err != nil {
		return nil, models.Page{}, storeFailure("list sessions", err)
	}
	return sessions, p, nil
}

type fieldKind int

const (
	textField fieldKind = iota
	richTextField
	sessionTypeField
	feeField
	statusField
)

var tutorEditable = map[string]fieldKind{
	"title":                 textField,
	"description":           richTextField,
	"tutorName":             textField,
	"registrationStartDate": textField,
	"registrationEndDate":   textField,
	"classStartDate":        textField,
	"classEndDate":          textField,
	"duration":              textField,
	"image":                 textField,
	"sessionType":           sessionTypeField,
}

var adminEditable = func() map[string]fieldKind {
	m := map[string]fieldKind{
		"registrationFee": feeField,
		"status":          statusField,
		"rejectionReason": textField,
		"feedback":        textField,
	}
	for k, v := range tutorEditable {
		m[k] = v
	}
	return m
}()

func (s *SessionService) sessionFields(fields map[string]any, allowed map[string]fieldKind) (map[string]any, error) {
	if len(fields) == 0 {
		return nil, Invalid("no fields to update")
	}
	set := make(map[string]any, len(fields))
	for k, v := range fields {
		kind, ok := allowed[k]
		if !ok {
			return nil, Invalid("field %q cannot be updated", k)
		}
		switch kind {
		case textField, richTextField:
			str, ok := v.(string)
			if !ok {
				return nil, Invalid("field %q must be a string", k)
			}
			if kind == richTextField {
				set[k] = s.clean.RichText(str)
			} else {
				set[k] = s.clean.Text(str)
			}
		case sessionTypeField:
			str, _ := v.(string)
			if t := models.SessionType(str); t != models.SessionFree && t != models.SessionPaid {
				return nil, Invalid("sessionType must be free or paid")
			}
			set[k] = str
		case statusField:
			str, _ := v.(string)
			if !models.SessionStatus(str).Valid() {
				return nil, Invalid("unknown status %q", v)
			}
			set[k] = str
		case feeField:
			fee, err := ComputeFee(models.SessionPaid, v)
			if err != nil {
				return nil, Invalid("registrationFee must be a non-negative number")
			}
			set[k] = fee
		}
	}
	return set, nil
}

func applySessionFields(ss *models.Session, set map[string]any) {
	str := func(k string) (string, bool) {
		v, ok := set[k].(string)
		return v, ok
	}
	if v, ok := str("title"); ok {
		ss.Title = v
	}
	if v, ok := str("description"); ok {
		ss.Description = v
	}
	if v, ok := str("tutorName"); ok {
		ss.TutorName = v
	}
	if v, ok := str("registrationStartDate"); ok {
		ss.RegistrationStartDate = v
	}
	if v, ok := str("registrationEndDate"); ok {
		ss.RegistrationEndDate = v
	}
	if v, ok := str("classStartDate"); ok {
		ss.ClassStartDate = v
	}
	if v, ok := str("classEndDate"); ok {
		ss.ClassEndDate = v
	}
	if v, ok := str("duration"); ok {
		ss.Duration = v
	}
	if v, ok := str("image"); ok {
		ss.Image = v
	}
	if v, ok := str("sessionType"); ok {
		ss.SessionType = models.SessionType(v)
	}
	switch fee := set["registrationFee"].(type) {
	case float64:
		ss.RegistrationFee = fee
	case int:
		ss.RegistrationFee = float64(fee)
	}
}

func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return Invalid("invalid id %q", id)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}
