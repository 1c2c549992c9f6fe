package service

import (
	"errors"

	"kidquiz/internal/domain"
	"kidquiz/internal/models"
	"kidquiz/internal/repository"

	"gorm.io/gorm"
)

var (
	ErrKidNotFound      = errors.New("kid not found")
	ErrGuardianNotFound = errors.New("guardian not found")
	ErrNotLinked        = errors.New("guardian is not linked to this kid")
	ErrNotOwner         = errors.New("only the kid's owner may do this")
	ErrCannotManage     = errors.New("link role does not allow this action")
	ErrMaxGuardians     = errors.New("kid already has the maximum number of guardians")
	ErrAlreadyLinked    = errors.New("guardian is already linked to this kid")
	ErrInvalidLinkRole  = errors.New("unknown guardian link role")
)

// KidService owns kid profiles and the guardian-relationship permission
// model: OWNER manages links and the profile, OWNER and GUARDIAN act on the
// wallet, VIEWER is read-only. A kid holds at most domain.MaxGuardiansPerKid
// links.
type KidService struct {
	kids      *repository.KidRepository
	guardians *repository.GuardianRepository
}

func NewKidService(kids *repository.KidRepository, guardians *repository.GuardianRepository) *KidService {
	return &KidService{kids: kids, guardians: guardians}
}

// CreateKid creates the profile, the creating guardian's OWNER link, and
// default settings.
func (s *KidService) CreateKid(guardianID uint, kid *models.Kid) error {
	if err := s.kids.Create(kid); err != nil {
		return err
	}
	if err := s.kids.CreateLink(&models.GuardianKid{
		GuardianID: guardianID,
		KidID:      kid.ID,
		Role:       domain.LinkRoleOwner,
	}); err != nil {
		return err
	}
	_, err := s.kids.GetOrCreateSettings(kid.ID)
	return err
}

func (s *KidService) GetKid(id uint) (*models.Kid, error) {
	k, err := s.kids.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrKidNotFound
		}
		return nil, err
	}
	return k, nil
}

func (s *KidService) UpdateKid(k *models.Kid) error {
	return s.kids.Update(k)
}

func (s *KidService) DeleteKid(id uint) error {
	return s.kids.Delete(id)
}

func (s *KidService) ListKids(guardianID uint) ([]models.Kid, error) {
	return s.kids.ListByGuardian(guardianID)
}

// LinkFor returns the guardian's link to a kid, or ErrNotLinked.
func (s *KidService) LinkFor(guardianID, kidID uint) (*models.GuardianKid, error) {
	l, err := s.kids.GetLink(guardianID, kidID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotLinked
		}
		return nil, err
	}
	return l, nil
}

// RequireRole loads the caller's link and checks it allows the action.
// manage=true demands OWNER or GUARDIAN; manage=false any link.
func (s *KidService) RequireRole(guardianID, kidID uint, manage bool) (*models.GuardianKid, error) {
	l, err := s.LinkFor(guardianID, kidID)
	if err != nil {
		return nil, err
	}
	if manage && !l.CanManage() {
		return nil, ErrCannotManage
	}
	return l, nil
}

// InviteGuardian links another guardian to a kid. Only the OWNER may invite,
// and the invite fails once the kid has MaxGuardiansPerKid links.
func (s *KidService) InviteGuardian(ownerID, kidID uint, email, role string) (*models.GuardianKid, error) {
	ownerLink, err := s.LinkFor(ownerID, kidID)
	if err != nil {
		return nil, err
	}
	if ownerLink.Role != domain.LinkRoleOwner {
		return nil, ErrNotOwner
	}
	if role != domain.LinkRoleGuardian && role != domain.LinkRoleViewer {
		return nil, ErrInvalidLinkRole
	}
	invited, err := s.guardians.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGuardianNotFound
		}
		return nil, err
	}
	if ok, err := s.kids.HasLink(invited.ID, kidID); err != nil {
		return nil, err
	} else if ok {
		return nil, ErrAlreadyLinked
	}
	n, err := s.kids.CountGuardians(kidID)
	if err != nil {
		return nil, err
	}
	if n >= domain.MaxGuardiansPerKid {
		return nil, ErrMaxGuardians
	}
	link := &models.GuardianKid{GuardianID: invited.ID, KidID: kidID, Role: role}
	if err := s.kids.CreateLink(link); err != nil {
		return nil, err
	}
	return link, nil
}

// RemoveGuardian unlinks a guardian. Only the OWNER may remove links, and the
// OWNER link itself cannot be removed.
func (s *KidService) RemoveGuardian(ownerID, kidID, guardianID uint) error {
	ownerLink, err := s.LinkFor(ownerID, kidID)
	if err != nil {
		return err
	}
	if ownerLink.Role != domain.LinkRoleOwner {
		return ErrNotOwner
	}
	target, err := s.LinkFor(guardianID, kidID)
	if err != nil {
		return err
	}
	if target.Role == domain.LinkRoleOwner {
		return ErrNotOwner
	}
	return s.kids.DeleteLink(guardianID, kidID)
}

func (s *KidService) ListGuardians(kidID uint) ([]models.GuardianKid, error) {
	return s.kids.ListLinks(kidID)
}

func (s *KidService) GetSettings(kidID uint) (*models.KidSettings, error) {
	return s.kids.GetOrCreateSettings(kidID)
}

func (s *KidService) UpdateSettings(settings *models.KidSettings) error {
	return s.kids.UpdateSettings(settings)
}
