package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"taxipro/internal/domain"
	"taxipro/internal/redis"
	"taxipro/internal/repository"
	"taxipro/internal/triperr"
)

// DefaultLinkTTL is how long a shared trip link stays valid.
const DefaultLinkTTL = 24 * time.Hour

// SharedLinkService manages public follow-along links for trips. A link
// lets anyone holding the token see the trip's status and the driver's
// live position without authenticating.
type SharedLinkService struct {
	tripRepo      repository.TripRepository
	linkRepo      repository.SharedLinkRepository
	locationStore redis.LocationStoreInterface
	audit         *AuditLogger

	ttl time.Duration
}

// NewSharedLinkService creates a new SharedLinkService.
func NewSharedLinkService(tripRepo repository.TripRepository, linkRepo repository.SharedLinkRepository, locationStore redis.LocationStoreInterface, audit *AuditLogger, ttl time.Duration) *SharedLinkService {
	if ttl <= 0 {
		ttl = DefaultLinkTTL
	}
	return &SharedLinkService{
		tripRepo:      tripRepo,
		linkRepo:      linkRepo,
		locationStore: locationStore,
		audit:         audit,
		ttl:           ttl,
	}
}

// CreateLink issues a share token for an open trip. Only the trip's
// passenger may create one; an existing active link is returned instead
// of minting a second token.
func (s *SharedLinkService) CreateLink(ctx context.Context, tripID string, actor domain.Actor) (*domain.SharedTripLink, error) {
	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, translateRepoErr(err, "trip not found")
	}
	if actor.Role != domain.ActorPassenger || actor.ID != trip.PassengerID {
		return nil, triperr.New(triperr.PermissionDenied, "only the trip's passenger may share it")
	}
	if trip.IsTerminal() {
		return nil, triperr.New(triperr.FailedPrecondition, "trip is already closed")
	}

	if existing, err := s.linkRepo.GetActiveByTripID(ctx, tripID); err == nil {
		for _, l := range existing {
			if l.Usable(time.Now()) {
				return l, nil
			}
		}
	}

	now := time.Now()
	link := &domain.SharedTripLink{
		Token:     uuid.New().String(),
		TripID:    tripID,
		Active:    true,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.linkRepo.Create(ctx, link); err != nil {
		return nil, triperr.Wrap(triperr.Internal, "creating shared link failed", err)
	}

	s.audit.Log(ctx, tripID, actor, "shared link created")
	return link, nil
}

// RevokeLink deactivates a share token. Only the trip's passenger may
// revoke it.
func (s *SharedLinkService) RevokeLink(ctx context.Context, token string, actor domain.Actor) error {
	link, err := s.linkRepo.GetByToken(ctx, token)
	if err != nil {
		return translateRepoErr(err, "shared link not found")
	}

	trip, err := s.tripRepo.GetByID(ctx, link.TripID)
	if err != nil {
		return translateRepoErr(err, "trip not found")
	}
	if actor.Role != domain.ActorPassenger || actor.ID != trip.PassengerID {
		return triperr.New(triperr.PermissionDenied, "only the trip's passenger may revoke the link")
	}

	if err := s.linkRepo.Deactivate(ctx, token); err != nil {
		return triperr.Wrap(triperr.Internal, "revoking shared link failed", err)
	}
	s.audit.Log(ctx, link.TripID, actor, "shared link revoked")
	return nil
}

// LinkView is the public projection served to a link holder. Only the
// fields a follower needs are exposed; no passenger or payment details.
type LinkView struct {
	TripID         string
	Status         domain.TripStatus
	Origin         domain.LatLng
	Destination    domain.LatLng
	DriverPosition *domain.LatLng
}

// ViewLink resolves a share token into the public trip view. The live
// driver position is served only while the trip is in progress.
func (s *SharedLinkService) ViewLink(ctx context.Context, token string) (*LinkView, error) {
	link, err := s.linkRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, translateRepoErr(err, "shared link not found")
	}
	if !link.Usable(time.Now()) {
		return nil, triperr.New(triperr.NotFound, "shared link has expired")
	}

	trip, err := s.tripRepo.GetByID(ctx, link.TripID)
	if err != nil {
		return nil, translateRepoErr(err, "trip not found")
	}

	view := &LinkView{
		TripID:      trip.ID,
		Status:      trip.Status,
		Origin:      trip.Origin,
		Destination: trip.Destination,
	}

	if !trip.IsTerminal() && trip.DriverID != "" && s.locationStore != nil {
		pos, err := s.locationStore.GetLocation(ctx, trip.DriverID)
		if err != nil {
			log.Printf("live position lookup failed for trip %s: %v", trip.ID, err)
		} else {
			view.DriverPosition = pos
		}
	}

	return view, nil
}
