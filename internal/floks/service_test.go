package floks

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/flokoutapp/flokout-backend/pkg/config"
	"github.com/flokoutapp/flokout-backend/pkg/db/models"
	"github.com/flokoutapp/flokout-backend/pkg/enums"
	pkgerrors "github.com/flokoutapp/flokout-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type memFlokRepo struct {
	floks       map[uuid.UUID]*models.Flok
	memberships map[uuid.UUID][]*models.FlokMembership
	invites     map[string]*models.FlokInvite
}

func newMemFlokRepo() *memFlokRepo {
	return &memFlokRepo{
		floks:       map[uuid.UUID]*models.Flok{},
		memberships: map[uuid.UUID][]*models.FlokMembership{},
		invites:     map[string]*models.FlokInvite{},
	}
}

func (m *memFlokRepo) WithTx(tx *gorm.DB) Repository { return m }

func (m *memFlokRepo) CreateFlok(ctx context.Context, flok *models.Flok) error {
	flok.ID = uuid.New()
	m.floks[flok.ID] = flok
	return nil
}

func (m *memFlokRepo) GetFlok(ctx context.Context, id uuid.UUID) (*models.Flok, error) {
	if flok, ok := m.floks[id]; ok {
		return flok, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memFlokRepo) UpdateFlok(ctx context.Context, flok *models.Flok) error {
	m.floks[flok.ID] = flok
	return nil
}

func (m *memFlokRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	if flok, ok := m.floks[id]; ok {
		flok.Active = active
	}
	return nil
}

func (m *memFlokRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Flok, error) {
	var result []models.Flok
	for flokID, members := range m.memberships {
		for _, member := range members {
			if member.UserID == userID {
				if flok, ok := m.floks[flokID]; ok && flok.Active {
					result = append(result, *flok)
				}
			}
		}
	}
	return result, nil
}

func (m *memFlokRepo) AddMember(ctx context.Context, membership *models.FlokMembership) error {
	membership.ID = uuid.New()
	m.memberships[membership.FlokID] = append(m.memberships[membership.FlokID], membership)
	return nil
}

func (m *memFlokRepo) RemoveMember(ctx context.Context, flokID, userID uuid.UUID) error {
	members := m.memberships[flokID]
	kept := members[:0]
	for _, member := range members {
		if member.UserID != userID {
			kept = append(kept, member)
		}
	}
	m.memberships[flokID] = kept
	return nil
}

func (m *memFlokRepo) GetMembership(ctx context.Context, flokID, userID uuid.UUID) (*models.FlokMembership, error) {
	for _, member := range m.memberships[flokID] {
		if member.UserID == userID {
			return member, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memFlokRepo) ListMembers(ctx context.Context, flokID uuid.UUID) ([]models.FlokMembership, error) {
	var result []models.FlokMembership
	for _, member := range m.memberships[flokID] {
		result = append(result, *member)
	}
	return result, nil
}

func (m *memFlokRepo) UpdateMemberRole(ctx context.Context, flokID, userID uuid.UUID, role enums.MemberRole) error {
	for _, member := range m.memberships[flokID] {
		if member.UserID == userID {
			member.Role = role
		}
	}
	return nil
}

func (m *memFlokRepo) CreateInvite(ctx context.Context, invite *models.FlokInvite) error {
	invite.ID = uuid.New()
	m.invites[invite.Code] = invite
	return nil
}

func (m *memFlokRepo) GetInviteByCode(ctx context.Context, code string) (*models.FlokInvite, error) {
	if invite, ok := m.invites[code]; ok {
		return invite, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memFlokRepo) DeactivateInvite(ctx context.Context, id uuid.UUID) error {
	for _, invite := range m.invites {
		if invite.ID == id {
			invite.Active = false
		}
	}
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newFlokService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo, stubTxRunner{}, config.InviteConfig{CodeLength: 8, TTL: time.Hour})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestCreateFlokMakesCreatorAdmin(t *testing.T) {
	repo := newMemFlokRepo()
	svc := newFlokService(t, repo)
	creator := uuid.New()

	flok, err := svc.Create(context.Background(), CreateFlokInput{Name: "Weekend Ballers", CreatedBy: creator})
	if err != nil {
		t.Fatalf("create flok: %v", err)
	}

	membership, err := repo.GetMembership(context.Background(), flok.ID, creator)
	if err != nil {
		t.Fatalf("creator membership missing: %v", err)
	}
	if membership.Role != enums.MemberRoleAdmin {
		t.Fatalf("creator role = %s, want admin", membership.Role)
	}
}

func TestUpdateFlokRequiresAdmin(t *testing.T) {
	repo := newMemFlokRepo()
	svc := newFlokService(t, repo)
	admin := uuid.New()
	member := uuid.New()

	flok, err := svc.Create(context.Background(), CreateFlokInput{Name: "Runners", CreatedBy: admin})
	if err != nil {
		t.Fatalf("create flok: %v", err)
	}
	repo.AddMember(context.Background(), &models.FlokMembership{FlokID: flok.ID, UserID: member, Role: enums.MemberRoleMember})

	name := "Trail Runners"
	_, err = svc.Update(context.Background(), UpdateFlokInput{FlokID: flok.ID, ActorID: member, Name: &name})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for plain member, got %v", err)
	}

	updated, err := svc.Update(context.Background(), UpdateFlokInput{FlokID: flok.ID, ActorID: admin, Name: &name})
	if err != nil {
		t.Fatalf("admin update: %v", err)
	}
	if updated.Name != "Trail Runners" {
		t.Fatalf("name not updated")
	}
}

func TestLastAdminCannotLeave(t *testing.T) {
	repo := newMemFlokRepo()
	svc := newFlokService(t, repo)
	admin := uuid.New()

	flok, err := svc.Create(context.Background(), CreateFlokInput{Name: "Runners", CreatedBy: admin})
	if err != nil {
		t.Fatalf("create flok: %v", err)
	}

	err = svc.Leave(context.Background(), flok.ID, admin)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestInviteLifecycle(t *testing.T) {
	repo := newMemFlokRepo()
	svc := newFlokService(t, repo)
	admin := uuid.New()
	joiner := uuid.New()
	ctx := context.Background()

	flok, err := svc.Create(ctx, CreateFlokInput{Name: "Runners", CreatedBy: admin})
	if err != nil {
		t.Fatalf("create flok: %v", err)
	}

	invite, err := svc.CreateInvite(ctx, flok.ID, admin)
	if err != nil {
		t.Fatalf("create invite: %v", err)
	}
	if len(invite.Code) != 8 {
		t.Fatalf("invite code length = %d, want 8", len(invite.Code))
	}
	if strings.ContainsAny(invite.Code, "01OI") {
		t.Fatalf("invite code contains ambiguous characters: %s", invite.Code)
	}

	joined, err := svc.JoinByCode(ctx, strings.ToLower(invite.Code), joiner)
	if err != nil {
		t.Fatalf("join by code: %v", err)
	}
	if joined.ID != flok.ID {
		t.Fatalf("joined wrong flok")
	}

	member, err := svc.IsMember(ctx, flok.ID, joiner)
	if err != nil || !member {
		t.Fatalf("joiner should be a member: %v", err)
	}

	// joining twice conflicts
	_, err = svc.JoinByCode(ctx, invite.Code, joiner)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict on double join, got %v", err)
	}

	if err := svc.DeactivateInvite(ctx, invite.ID, admin); err != nil {
		t.Fatalf("deactivate invite: %v", err)
	}
	_, err = svc.JoinByCode(ctx, invite.Code, uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict for inactive invite, got %v", err)
	}
}

func TestJoinExpiredInvite(t *testing.T) {
	repo := newMemFlokRepo()
	svc := newFlokService(t, repo).(*service)
	admin := uuid.New()
	ctx := context.Background()

	flok, err := svc.Create(ctx, CreateFlokInput{Name: "Runners", CreatedBy: admin})
	if err != nil {
		t.Fatalf("create flok: %v", err)
	}
	invite, err := svc.CreateInvite(ctx, flok.ID, admin)
	if err != nil {
		t.Fatalf("create invite: %v", err)
	}

	svc.now = func() time.Time { return invite.ExpiresAt.Add(time.Minute) }
	_, err = svc.JoinByCode(ctx, invite.Code, uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict for expired invite, got %v", err)
	}
}

func TestUpdateRoleProtectsLastAdmin(t *testing.T) {
	repo := newMemFlokRepo()
	svc := newFlokService(t, repo)
	admin := uuid.New()
	ctx := context.Background()

	flok, err := svc.Create(ctx, CreateFlokInput{Name: "Runners", CreatedBy: admin})
	if err != nil {
		t.Fatalf("create flok: %v", err)
	}

	err = svc.UpdateRole(ctx, flok.ID, admin, admin, enums.MemberRoleMember)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict demoting last admin, got %v", err)
	}
}
