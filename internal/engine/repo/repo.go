package repo

import (
	"errors"

	"github.com/scenecast/scenecast/pkg/database"
)

// ErrNoMatch is returned by conditional updates whose filter matched
// no document. Callers classify it (invalid vs expired vs already
// consumed) with a follow-up read.
var ErrNoMatch = errors.New("no matching document")

// Repositories aggregates all repositories.
type Repositories struct {
	User            IUserRepository
	Organization    IOrganizationRepository
	Brand           IBrandRepository
	Membership      IMembershipRepository
	Invitation      IInvitationRepository
	DeletionRequest IDeletionRequestRepository
	Audit           IAuditRepository
}

// NewRepositories initializes all repositories on one mongo client.
func NewRepositories(mongo *database.MongoClient) *Repositories {
	return &Repositories{
		User:            NewUserRepo(mongo),
		Organization:    NewOrganizationRepo(mongo),
		Brand:           NewBrandRepo(mongo),
		Membership:      NewMembershipRepo(mongo),
		Invitation:      NewInvitationRepo(mongo),
		DeletionRequest: NewDeletionRequestRepo(mongo),
		Audit:           NewAuditRepo(mongo),
	}
}
