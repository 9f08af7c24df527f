package spots

import (
	"context"
	"strings"
	"testing"

	"github.com/flokoutapp/flokout-backend/pkg/db/models"
	pkgerrors "github.com/flokoutapp/flokout-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type stubSpotRepo struct {
	spots map[uuid.UUID]*models.Spot
	links map[uuid.UUID][]uuid.UUID
}

func newStubSpotRepo() *stubSpotRepo {
	return &stubSpotRepo{spots: map[uuid.UUID]*models.Spot{}, links: map[uuid.UUID][]uuid.UUID{}}
}

func (s *stubSpotRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubSpotRepo) Create(ctx context.Context, spot *models.Spot) error {
	spot.ID = uuid.New()
	s.spots[spot.ID] = spot
	return nil
}

func (s *stubSpotRepo) Get(ctx context.Context, id uuid.UUID) (*models.Spot, error) {
	if spot, ok := s.spots[id]; ok {
		return spot, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubSpotRepo) Update(ctx context.Context, spot *models.Spot) error {
	s.spots[spot.ID] = spot
	return nil
}

func (s *stubSpotRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(s.spots, id)
	return nil
}

func (s *stubSpotRepo) Search(ctx context.Context, query string, limit int) ([]models.Spot, error) {
	var result []models.Spot
	for _, spot := range s.spots {
		if strings.Contains(strings.ToLower(spot.Name), strings.ToLower(query)) {
			result = append(result, *spot)
		}
		if len(result) == limit {
			break
		}
	}
	return result, nil
}

func (s *stubSpotRepo) Link(ctx context.Context, assoc *models.FlokSpot) error {
	for _, linked := range s.links[assoc.FlokID] {
		if linked == assoc.SpotID {
			return gorm.ErrDuplicatedKey
		}
	}
	s.links[assoc.FlokID] = append(s.links[assoc.FlokID], assoc.SpotID)
	return nil
}

func (s *stubSpotRepo) Unlink(ctx context.Context, flokID, spotID uuid.UUID) error {
	linked := s.links[flokID]
	kept := linked[:0]
	for _, id := range linked {
		if id != spotID {
			kept = append(kept, id)
		}
	}
	s.links[flokID] = kept
	return nil
}

func (s *stubSpotRepo) ListByFlok(ctx context.Context, flokID uuid.UUID) ([]models.Spot, error) {
	var result []models.Spot
	for _, id := range s.links[flokID] {
		if spot, ok := s.spots[id]; ok {
			result = append(result, *spot)
		}
	}
	return result, nil
}

type allowAll struct{}

func (allowAll) IsMember(ctx context.Context, flokID, userID uuid.UUID) (bool, error) {
	return true, nil
}

type denyAll struct{}

func (denyAll) IsMember(ctx context.Context, flokID, userID uuid.UUID) (bool, error) {
	return false, nil
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

func TestCreateAndGetSpot(t *testing.T) {
	repo := newStubSpotRepo()
	svc, err := NewService(repo, allowAll{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	address := "123 Court St"
	spot, err := svc.Create(context.Background(), CreateSpotInput{
		Name:      "Riverside Courts",
		Address:   &address,
		CreatedBy: uuid.New(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.Get(context.Background(), spot.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Riverside Courts" {
		t.Fatalf("name = %q", got.Name)
	}
}

func TestCreateRejectsBlankName(t *testing.T) {
	repo := newStubSpotRepo()
	svc, _ := NewService(repo, allowAll{})

	_, err := svc.Create(context.Background(), CreateSpotInput{Name: "   ", CreatedBy: uuid.New()})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestUpdateRequiresCreator(t *testing.T) {
	repo := newStubSpotRepo()
	svc, _ := NewService(repo, allowAll{})
	creator := uuid.New()

	spot, err := svc.Create(context.Background(), CreateSpotInput{Name: "Riverside Courts", CreatedBy: creator})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	name := "Lakeside Courts"
	_, err = svc.Update(context.Background(), UpdateSpotInput{SpotID: spot.ID, ActorID: uuid.New(), Name: &name})
	assertCode(t, err, pkgerrors.CodeForbidden)

	updated, err := svc.Update(context.Background(), UpdateSpotInput{SpotID: spot.ID, ActorID: creator, Name: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Lakeside Courts" {
		t.Fatalf("name not updated")
	}
}

func TestLinkUnlinkAndList(t *testing.T) {
	repo := newStubSpotRepo()
	svc, _ := NewService(repo, allowAll{})
	ctx := context.Background()
	actor := uuid.New()
	flokID := uuid.New()

	spot, err := svc.Create(ctx, CreateSpotInput{Name: "Riverside Courts", CreatedBy: actor})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.LinkToFlok(ctx, flokID, spot.ID, actor); err != nil {
		t.Fatalf("link: %v", err)
	}
	err = svc.LinkToFlok(ctx, flokID, spot.ID, actor)
	assertCode(t, err, pkgerrors.CodeConflict)

	listed, err := svc.ListByFlok(ctx, flokID, actor)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != spot.ID {
		t.Fatalf("unexpected list: %+v", listed)
	}

	if err := svc.UnlinkFromFlok(ctx, flokID, spot.ID, actor); err != nil {
		t.Fatalf("unlink: %v", err)
	}
	listed, err = svc.ListByFlok(ctx, flokID, actor)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("spot still linked after unlink")
	}
}

func TestLinkRequiresMembership(t *testing.T) {
	repo := newStubSpotRepo()
	svc, _ := NewService(repo, denyAll{})
	actor := uuid.New()

	spot := &models.Spot{Name: "Riverside Courts", CreatedBy: actor}
	repo.Create(context.Background(), spot)

	err := svc.LinkToFlok(context.Background(), uuid.New(), spot.ID, actor)
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestSearchValidatesAndCaps(t *testing.T) {
	repo := newStubSpotRepo()
	svc, _ := NewService(repo, allowAll{})

	_, err := svc.Search(context.Background(), "  ", 10)
	assertCode(t, err, pkgerrors.CodeValidation)

	actor := uuid.New()
	for range [3]struct{}{} {
		if _, err := svc.Create(context.Background(), CreateSpotInput{Name: "Court A", CreatedBy: actor}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	found, err := svc.Search(context.Background(), "court", 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("limit not applied, got %d results", len(found))
	}
}
