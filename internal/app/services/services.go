package services

import (
	"github.com/rs/zerolog"

	"github.com/yigit/orghub/internal/app/repositories"
	"github.com/yigit/orghub/internal/pkg/auth"
	"github.com/yigit/orghub/internal/pkg/filestorage"
	"github.com/yigit/orghub/internal/pkg/helpers"
)

// Services defined in this package:
// - AuthService: login and the current principal
// - OrganizationService: organizations, branches, officers and events
// - MembershipService: members and applicants tables, applications
type Services struct {
	AuthService         *AuthService
	OrganizationService *OrganizationService
	MembershipService   *MembershipService
}

// NewServices wires every service over the given repositories
func NewServices(repos *repositories.Repositories, jwtService *auth.JWTService, storage filestorage.FileStorage, clock helpers.Clock, logger zerolog.Logger) *Services {
	return &Services{
		AuthService:         NewAuthService(repos.UserRepository, jwtService, logger),
		OrganizationService: NewOrganizationService(repos.OrganizationRepository, storage, logger),
		MembershipService:   NewMembershipService(repos.OrganizationRepository, clock, logger),
	}
}

// SetNotifier routes change notifications of every service to n
func (s *Services) SetNotifier(n ChangeNotifier) {
	s.OrganizationService.SetNotifier(n)
	s.MembershipService.SetNotifier(n)
}
