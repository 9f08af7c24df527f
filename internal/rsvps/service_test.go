package rsvps

import (
	"context"
	"testing"

	"github.com/flokoutapp/flokout-backend/pkg/db/models"
	"github.com/flokoutapp/flokout-backend/pkg/enums"
	pkgerrors "github.com/flokoutapp/flokout-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type rsvpKey struct {
	flokout uuid.UUID
	user    uuid.UUID
}

type stubRSVPRepo struct {
	rsvps map[rsvpKey]*models.RSVP
}

func newStubRSVPRepo() *stubRSVPRepo {
	return &stubRSVPRepo{rsvps: map[rsvpKey]*models.RSVP{}}
}

func (s *stubRSVPRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRSVPRepo) Upsert(ctx context.Context, rsvp *models.RSVP) error {
	key := rsvpKey{flokout: rsvp.FlokoutID, user: rsvp.UserID}
	if existing, ok := s.rsvps[key]; ok {
		existing.Response = rsvp.Response
		return nil
	}
	rsvp.ID = uuid.New()
	s.rsvps[key] = rsvp
	return nil
}

func (s *stubRSVPRepo) Get(ctx context.Context, flokoutID, userID uuid.UUID) (*models.RSVP, error) {
	if rsvp, ok := s.rsvps[rsvpKey{flokout: flokoutID, user: userID}]; ok {
		return rsvp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRSVPRepo) ListByFlokout(ctx context.Context, flokoutID uuid.UUID) ([]models.RSVP, error) {
	var result []models.RSVP
	for key, rsvp := range s.rsvps {
		if key.flokout == flokoutID {
			result = append(result, *rsvp)
		}
	}
	return result, nil
}

func (s *stubRSVPRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.RSVP, error) {
	var result []models.RSVP
	for key, rsvp := range s.rsvps {
		if key.user == userID {
			result = append(result, *rsvp)
		}
	}
	return result, nil
}

func (s *stubRSVPRepo) CountByResponse(ctx context.Context, flokoutID uuid.UUID, response enums.RSVPResponse) (int, error) {
	count := 0
	for key, rsvp := range s.rsvps {
		if key.flokout == flokoutID && rsvp.Response == response {
			count++
		}
	}
	return count, nil
}

type stubResolver struct {
	flokID uuid.UUID
}

func (s stubResolver) FlokIDFor(ctx context.Context, flokoutID uuid.UUID) (uuid.UUID, error) {
	return s.flokID, nil
}

type stubMembers struct {
	members map[uuid.UUID]bool
}

func (s stubMembers) IsMember(ctx context.Context, flokID, userID uuid.UUID) (bool, error) {
	return s.members[userID], nil
}

func newTestService(t *testing.T, repo Repository, members map[uuid.UUID]bool) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:     repo,
		Flokouts: stubResolver{flokID: uuid.New()},
		Members:  stubMembers{members: members},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error with code %s, got %v", code, err)
	}
	if typed.Code() != code {
		t.Fatalf("error code = %s, want %s", typed.Code(), code)
	}
}

func TestRespondUpsertsSingleRow(t *testing.T) {
	user := uuid.New()
	flokout := uuid.New()
	repo := newStubRSVPRepo()
	svc := newTestService(t, repo, map[uuid.UUID]bool{user: true})
	ctx := context.Background()

	first, err := svc.Respond(ctx, flokout, user, enums.RSVPResponseMaybe)
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	second, err := svc.Respond(ctx, flokout, user, enums.RSVPResponseYes)
	if err != nil {
		t.Fatalf("respond again: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("second response created a new row")
	}
	if second.Response != enums.RSVPResponseYes {
		t.Fatalf("response = %s, want yes", second.Response)
	}

	listed, err := svc.ListByFlokout(ctx, flokout, user)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected one rsvp row, got %d", len(listed))
	}
}

func TestRespondRejectsInvalidResponse(t *testing.T) {
	user := uuid.New()
	repo := newStubRSVPRepo()
	svc := newTestService(t, repo, map[uuid.UUID]bool{user: true})

	_, err := svc.Respond(context.Background(), uuid.New(), user, enums.RSVPResponse("definitely"))
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestRespondRequiresMembership(t *testing.T) {
	repo := newStubRSVPRepo()
	svc := newTestService(t, repo, map[uuid.UUID]bool{})

	_, err := svc.Respond(context.Background(), uuid.New(), uuid.New(), enums.RSVPResponseYes)
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestCountYesIgnoresOtherResponses(t *testing.T) {
	flokout := uuid.New()
	yes1 := uuid.New()
	yes2 := uuid.New()
	maybe := uuid.New()
	repo := newStubRSVPRepo()
	svc := newTestService(t, repo, map[uuid.UUID]bool{yes1: true, yes2: true, maybe: true})
	ctx := context.Background()

	for user, response := range map[uuid.UUID]enums.RSVPResponse{
		yes1:  enums.RSVPResponseYes,
		yes2:  enums.RSVPResponseYes,
		maybe: enums.RSVPResponseMaybe,
	} {
		if _, err := svc.Respond(ctx, flokout, user, response); err != nil {
			t.Fatalf("respond: %v", err)
		}
	}

	count, err := svc.CountYes(ctx, flokout)
	if err != nil {
		t.Fatalf("count yes: %v", err)
	}
	if count != 2 {
		t.Fatalf("yes count = %d, want 2", count)
	}
}

func TestGetNotFound(t *testing.T) {
	repo := newStubRSVPRepo()
	svc := newTestService(t, repo, map[uuid.UUID]bool{})

	_, err := svc.Get(context.Background(), uuid.New(), uuid.New())
	assertCode(t, err, pkgerrors.CodeNotFound)
}
