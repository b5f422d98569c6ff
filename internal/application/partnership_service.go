package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/synqit/synqit-backend/internal/domain/entity"
	repo "github.com/synqit/synqit-backend/internal/domain/repository"
	"github.com/synqit/synqit-backend/pkg/apperror"
	"github.com/synqit/synqit-backend/pkg/helpers"
)

var errActivePartnership = apperror.Conflict("an active partnership request already exists between these projects")

type PartnershipService struct {
	Partnerships repo.PartnershipRepository
	Projects     repo.ProjectRepository
	Notifier     Notifier
	Cache        Cache
	Logger       *logrus.Logger
	// RecommendationTTL bounds how long a computed recommendation list is reused.
	RecommendationTTL time.Duration
	Now               func() time.Time
}

func NewPartnershipService(partnerships repo.PartnershipRepository, projects repo.ProjectRepository, notifier Notifier, cache Cache, logger *logrus.Logger, recTTL time.Duration) *PartnershipService {
	if logger == nil {
		logger = helpers.NewDiscardLogger()
	}
	return &PartnershipService{
		Partnerships:      partnerships,
		Projects:          projects,
		Notifier:          notifier,
		Cache:             cache,
		Logger:            logger,
		RecommendationTTL: recTTL,
		Now:               time.Now,
	}
}

type CreatePartnershipInput struct {
	ReceiverProjectID string
	PartnershipType   entity.PartnershipType
	Title             string
	Description       string
	ProposedTerms     string
}

// CreatePartnershipRequest opens a PENDING request from the caller's project
// to another project. At most one PENDING or ACCEPTED partnership may link
// two projects, in either direction.
func (s *PartnershipService) CreatePartnershipRequest(ctx context.Context, userID string, in CreatePartnershipInput) (*entity.Partnership, error) {
	mine, err := s.Projects.GetByOwnerID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperror.BadRequest("you must have a project to send partnership requests")
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}

	target, err := s.Projects.GetByID(ctx, in.ReceiverProjectID)
	if err != nil {
		return nil, translate(err, "target project not found")
	}
	if target.ID == mine.ID || target.OwnerID == userID {
		return nil, apperror.BadRequest("you cannot send a partnership request to your own project")
	}

	existing, err := s.Partnerships.FindActiveBetween(ctx, mine.ID, target.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if existing != nil {
		return nil, errActivePartnership
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = fmt.Sprintf("%s x %s", mine.Name, target.Name)
	}
	p := &entity.Partnership{
		RequesterID:          userID,
		RequesterProjectID:   mine.ID,
		ReceiverID:           target.OwnerID,
		ReceiverProjectID:    target.ID,
		PartnershipType:      in.PartnershipType,
		Title:                title,
		Description:          strings.TrimSpace(in.Description),
		ProposedTerms:        strings.TrimSpace(in.ProposedTerms),
		RequesterProjectName: mine.Name,
		ReceiverProjectName:  target.Name,
	}
	if err := s.Partnerships.Create(ctx, p); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, errActivePartnership
		}
		return nil, apperror.Internal(err)
	}
	s.Logger.WithFields(logrus.Fields{"partnership_id": p.ID, "from": mine.ID, "to": target.ID}).Info("partnership requested")

	s.notify(ctx, p.ReceiverID, entity.NotificationPartnershipRequest, "New partnership request",
		fmt.Sprintf("%s wants to partner with %s", mine.Name, target.Name), p)
	s.forgetRecommendations(ctx, p.RequesterID, p.ReceiverID)
	return p, nil
}

func (s *PartnershipService) AcceptPartnership(ctx context.Context, userID, id string) (*entity.Partnership, error) {
	return s.respond(ctx, userID, id, entity.PartnershipAccepted, "")
}

func (s *PartnershipService) RejectPartnership(ctx context.Context, userID, id, message string) (*entity.Partnership, error) {
	return s.respond(ctx, userID, id, entity.PartnershipRejected, message)
}

func (s *PartnershipService) CancelPartnership(ctx context.Context, userID, id string) (*entity.Partnership, error) {
	return s.respond(ctx, userID, id, entity.PartnershipCancelled, "")
}

// respond moves a PENDING partnership to a terminal status. Only the
// receiver may accept or reject; only the requester may cancel.
func (s *PartnershipService) respond(ctx context.Context, userID, id string, to entity.PartnershipStatus, message string) (*entity.Partnership, error) {
	p, err := s.Partnerships.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "partnership not found")
	}

	switch to {
	case entity.PartnershipAccepted, entity.PartnershipRejected:
		if p.ReceiverID != userID {
			return nil, apperror.Forbidden("only the receiver can respond to this partnership request")
		}
	case entity.PartnershipCancelled:
		if p.RequesterID != userID {
			return nil, apperror.Forbidden("only the requester can cancel this partnership request")
		}
	}
	if p.Status.IsTerminal() {
		return nil, alreadyTerminal(p.Status)
	}

	now := s.Now()
	message = strings.TrimSpace(message)
	ok, err := s.Partnerships.Transition(ctx, p.ID, to, now, message)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if !ok {
		// lost a race against another transition
		if cur, err := s.Partnerships.GetByID(ctx, p.ID); err == nil {
			return nil, alreadyTerminal(cur.Status)
		}
		return nil, alreadyTerminal("")
	}
	p.Status = to
	p.RespondedAt = &now
	p.ResponseMessage = message
	p.UpdatedAt = now

	s.Logger.WithFields(logrus.Fields{"partnership_id": p.ID, "status": to, "by": userID}).Info("partnership transitioned")

	var (
		typ         entity.NotificationType
		title, body string
	)
	switch to {
	case entity.PartnershipAccepted:
		typ, title = entity.NotificationPartnershipAccepted, "Partnership accepted"
		body = fmt.Sprintf("%s accepted your partnership request", p.ReceiverProjectName)
	case entity.PartnershipRejected:
		typ, title = entity.NotificationPartnershipRejected, "Partnership declined"
		body = fmt.Sprintf("%s declined your partnership request", p.ReceiverProjectName)
	case entity.PartnershipCancelled:
		typ, title = entity.NotificationPartnershipCancelled, "Partnership request cancelled"
		body = fmt.Sprintf("%s cancelled their partnership request", p.RequesterProjectName)
	}
	s.notify(ctx, p.Counterpart(userID), typ, title, body, p)
	s.forgetRecommendations(ctx, p.RequesterID, p.ReceiverID)
	return p, nil
}

func alreadyTerminal(status entity.PartnershipStatus) error {
	if status == "" {
		return apperror.Conflict("partnership has already been responded to")
	}
	return apperror.Conflict("partnership is already " + strings.ToLower(string(status)))
}

// GetPartnership is visible to its two participants only.
func (s *PartnershipService) GetPartnership(ctx context.Context, userID, id string) (*entity.Partnership, error) {
	p, err := s.Partnerships.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "partnership not found")
	}
	if !p.IsParticipant(userID) {
		return nil, apperror.Forbidden("you are not part of this partnership")
	}
	return p, nil
}

func (s *PartnershipService) GetSentRequests(ctx context.Context, userID string, status entity.PartnershipStatus) ([]entity.Partnership, error) {
	items, err := s.Partnerships.ListSent(ctx, userID, status)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return items, nil
}

func (s *PartnershipService) GetReceivedRequests(ctx context.Context, userID string, status entity.PartnershipStatus) ([]entity.Partnership, error) {
	items, err := s.Partnerships.ListReceived(ctx, userID, status)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return items, nil
}

func (s *PartnershipService) GetStats(ctx context.Context, userID string) (entity.PartnershipStats, error) {
	st, err := s.Partnerships.Stats(ctx, userID)
	if err != nil {
		return entity.PartnershipStats{}, apperror.Internal(err)
	}
	return st, nil
}

// GetRecommendedMatches scores projects that are looking for partners
// against the caller's project and returns the best ones first.
func (s *PartnershipService) GetRecommendedMatches(ctx context.Context, userID string, limit int, excludeExisting bool) ([]Recommendation, error) {
	if limit <= 0 || limit > 50 {
		limit = defaultRecommendTake
	}

	mine, err := s.Projects.GetByOwnerID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperror.BadRequest("you must have a project to get recommendations")
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}

	key := fmt.Sprintf("%s%d:%t", recommendationPrefix(userID), limit, excludeExisting)
	if s.Cache != nil {
		var cached []Recommendation
		if ok, err := s.Cache.GetJSON(ctx, key, &cached); err == nil && ok {
			return cached, nil
		}
	}

	lookingForPartners := true
	candidates, _, err := s.Projects.List(ctx, entity.ProjectFilter{
		ExcludeOwnerID:       userID,
		IsLookingForPartners: &lookingForPartners,
		Limit:                recommendationPool,
	})
	if err != nil {
		return nil, apperror.Internal(err)
	}

	skip := map[string]struct{}{mine.ID: {}}
	if excludeExisting {
		ids, err := s.Partnerships.ActiveCounterpartProjects(ctx, mine.ID)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		for _, id := range ids {
			skip[id] = struct{}{}
		}
	}

	kept := make([]entity.Project, 0, len(candidates))
	ids := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := skip[c.ID]; ok {
			continue
		}
		kept = append(kept, c)
		ids = append(ids, c.ID)
	}

	accepted, err := s.Partnerships.CountAccepted(ctx, ids)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	recs := make([]Recommendation, 0, len(kept))
	for i := range kept {
		score, reasons := ScoreMatch(mine, &kept[i], accepted[kept[i].ID])
		recs = append(recs, Recommendation{Project: kept[i], Score: score, Reasons: reasons})
	}
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Score > recs[j].Score })
	if len(recs) > limit {
		recs = recs[:limit]
	}

	if s.Cache != nil && s.RecommendationTTL > 0 {
		if err := s.Cache.SetJSON(ctx, key, recs, s.RecommendationTTL); err != nil {
			s.Logger.WithError(err).Warn("cache recommendations failed")
		}
	}
	return recs, nil
}

func (s *PartnershipService) notify(ctx context.Context, userID string, typ entity.NotificationType, title, message string, p *entity.Partnership) {
	if s.Notifier == nil {
		return
	}
	data := map[string]any{
		"partnershipId":      p.ID,
		"requesterProjectId": p.RequesterProjectID,
		"receiverProjectId":  p.ReceiverProjectID,
		"status":             string(p.Status),
	}
	// the partnership write already succeeded; a missing notification is logged, not surfaced
	if _, err := s.Notifier.Notify(ctx, userID, typ, title, message, data); err != nil {
		s.Logger.WithError(err).WithField("partnership_id", p.ID).Error("create notification failed")
	}
}

func (s *PartnershipService) forgetRecommendations(ctx context.Context, userIDs ...string) {
	if s.Cache == nil {
		return
	}
	for _, id := range userIDs {
		if err := s.Cache.DelPrefix(ctx, recommendationPrefix(id)); err != nil {
			s.Logger.WithError(err).Warn("invalidate recommendations failed")
		}
	}
}
