package handlers

import (
	"time"

	"github.com/synqit/synqit-backend/internal/application"
	"github.com/synqit/synqit-backend/internal/domain/entity"
)

type userResponse struct {
	ID               string                  `json:"id"`
	Email            string                  `json:"email"`
	FirstName        string                  `json:"firstName"`
	LastName         string                  `json:"lastName"`
	Bio              string                  `json:"bio"`
	AvatarURL        string                  `json:"avatarUrl"`
	WalletAddress    *string                 `json:"walletAddress"`
	Location         string                  `json:"location"`
	Website          string                  `json:"website"`
	LinkedInURL      string                  `json:"linkedinUrl"`
	TwitterHandle    string                  `json:"twitterHandle"`
	UserType         entity.UserType         `json:"userType"`
	SubscriptionTier entity.SubscriptionTier `json:"subscriptionTier"`
	IsVerified       bool                    `json:"isVerified"`
	LastLoginAt      *time.Time              `json:"lastLoginAt"`
	CreatedAt        time.Time               `json:"createdAt"`
	UpdatedAt        time.Time               `json:"updatedAt"`
}

func toUser(u *entity.User) userResponse {
	return userResponse{
		ID:               u.ID,
		Email:            u.Email,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		Bio:              u.Bio,
		AvatarURL:        u.AvatarURL,
		WalletAddress:    u.WalletAddress,
		Location:         u.Location,
		Website:          u.Website,
		LinkedInURL:      u.LinkedInURL,
		TwitterHandle:    u.TwitterHandle,
		UserType:         u.UserType,
		SubscriptionTier: u.SubscriptionTier,
		IsVerified:       u.IsVerified,
		LastLoginAt:      u.LastLoginAt,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}

type authResponse struct {
	User                  userResponse `json:"user"`
	AccessToken           string       `json:"accessToken"`
	RefreshToken          string       `json:"refreshToken"`
	AccessTokenExpiresAt  time.Time    `json:"accessTokenExpiresAt"`
	RefreshTokenExpiresAt time.Time    `json:"refreshTokenExpiresAt"`
}

func toAuth(res *application.AuthResult) authResponse {
	return authResponse{
		User:                  toUser(res.User),
		AccessToken:           res.Tokens.AccessToken,
		RefreshToken:          res.Tokens.RefreshToken,
		AccessTokenExpiresAt:  res.Tokens.AccessTokenExpiry,
		RefreshTokenExpiresAt: res.Tokens.RefreshTokenExpiry,
	}
}

type projectResponse struct {
	ID                   string                        `json:"id"`
	OwnerID              string                        `json:"ownerId"`
	Name                 string                        `json:"name"`
	Description          string                        `json:"description"`
	LogoURL              string                        `json:"logoUrl"`
	Website              string                        `json:"website"`
	ProjectType          entity.ProjectType            `json:"projectType"`
	ProjectStage         entity.ProjectStage           `json:"projectStage,omitempty"`
	FundingStage         entity.FundingStage           `json:"fundingStage,omitempty"`
	TeamSize             entity.TeamSize               `json:"teamSize,omitempty"`
	TokenAvailability    entity.TokenAvailability      `json:"tokenAvailability,omitempty"`
	DevelopmentFocus     string                        `json:"developmentFocus"`
	IsLookingForFunding  bool                          `json:"isLookingForFunding"`
	IsLookingForPartners bool                          `json:"isLookingForPartners"`
	TrustScore           int                           `json:"trustScore"`
	ViewCount            int                           `json:"viewCount"`
	Blockchains          []entity.BlockchainPreference `json:"blockchains"`
	Tags                 []string                      `json:"tags"`
	Owner                *entity.ProjectOwner          `json:"owner,omitempty"`
	CreatedAt            time.Time                     `json:"createdAt"`
	UpdatedAt            time.Time                     `json:"updatedAt"`
}

func toProject(p *entity.Project) projectResponse {
	chains := p.Blockchains
	if chains == nil {
		chains = []entity.BlockchainPreference{}
	}
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return projectResponse{
		ID:                   p.ID,
		OwnerID:              p.OwnerID,
		Name:                 p.Name,
		Description:          p.Description,
		LogoURL:              p.LogoURL,
		Website:              p.Website,
		ProjectType:          p.ProjectType,
		ProjectStage:         p.ProjectStage,
		FundingStage:         p.FundingStage,
		TeamSize:             p.TeamSize,
		TokenAvailability:    p.TokenAvailability,
		DevelopmentFocus:     p.DevelopmentFocus,
		IsLookingForFunding:  p.IsLookingForFunding,
		IsLookingForPartners: p.IsLookingForPartners,
		TrustScore:           p.TrustScore,
		ViewCount:            p.ViewCount,
		Blockchains:          chains,
		Tags:                 tags,
		Owner:                p.Owner,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
}

func toProjects(items []entity.Project) []projectResponse {
	out := make([]projectResponse, 0, len(items))
	for i := range items {
		out = append(out, toProject(&items[i]))
	}
	return out
}

type partnershipResponse struct {
	ID                   string                   `json:"id"`
	RequesterID          string                   `json:"requesterId"`
	RequesterProjectID   string                   `json:"requesterProjectId"`
	RequesterProjectName string                   `json:"requesterProjectName,omitempty"`
	ReceiverID           string                   `json:"receiverId"`
	ReceiverProjectID    string                   `json:"receiverProjectId"`
	ReceiverProjectName  string                   `json:"receiverProjectName,omitempty"`
	PartnershipType      entity.PartnershipType   `json:"partnershipType"`
	Title                string                   `json:"title"`
	Description          string                   `json:"description"`
	ProposedTerms        string                   `json:"proposedTerms"`
	Status               entity.PartnershipStatus `json:"status"`
	ResponseMessage      string                   `json:"responseMessage,omitempty"`
	RespondedAt          *time.Time               `json:"respondedAt"`
	CreatedAt            time.Time                `json:"createdAt"`
	UpdatedAt            time.Time                `json:"updatedAt"`
}

func toPartnership(p *entity.Partnership) partnershipResponse {
	return partnershipResponse{
		ID:                   p.ID,
		RequesterID:          p.RequesterID,
		RequesterProjectID:   p.RequesterProjectID,
		RequesterProjectName: p.RequesterProjectName,
		ReceiverID:           p.ReceiverID,
		ReceiverProjectID:    p.ReceiverProjectID,
		ReceiverProjectName:  p.ReceiverProjectName,
		PartnershipType:      p.PartnershipType,
		Title:                p.Title,
		Description:          p.Description,
		ProposedTerms:        p.ProposedTerms,
		Status:               p.Status,
		ResponseMessage:      p.ResponseMessage,
		RespondedAt:          p.RespondedAt,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
}

func toPartnerships(items []entity.Partnership) []partnershipResponse {
	out := make([]partnershipResponse, 0, len(items))
	for i := range items {
		out = append(out, toPartnership(&items[i]))
	}
	return out
}

type recommendationResponse struct {
	Project projectResponse `json:"project"`
	Score   int             `json:"score"`
	Reasons []string        `json:"reasons"`
}

func toRecommendations(recs []application.Recommendation) []recommendationResponse {
	out := make([]recommendationResponse, 0, len(recs))
	for i := range recs {
		reasons := recs[i].Reasons
		if reasons == nil {
			reasons = []string{}
		}
		out = append(out, recommendationResponse{Project: toProject(&recs[i].Project), Score: recs[i].Score, Reasons: reasons})
	}
	return out
}

type messageResponse struct {
	ID            string             `json:"id"`
	PartnershipID string             `json:"partnershipId"`
	SenderID      string             `json:"senderId"`
	ReceiverID    string             `json:"receiverId"`
	Content       string             `json:"content"`
	MessageType   entity.MessageType `json:"messageType"`
	IsRead        bool               `json:"isRead"`
	ReadAt        *time.Time         `json:"readAt"`
	CreatedAt     time.Time          `json:"createdAt"`
}

func toMessage(m *entity.Message) messageResponse {
	return messageResponse{
		ID:            m.ID,
		PartnershipID: m.PartnershipID,
		SenderID:      m.SenderID,
		ReceiverID:    m.ReceiverID,
		Content:       m.Content,
		MessageType:   m.MessageType,
		IsRead:        m.IsRead,
		ReadAt:        m.ReadAt,
		CreatedAt:     m.CreatedAt,
	}
}

func toMessages(items []entity.Message) []messageResponse {
	out := make([]messageResponse, 0, len(items))
	for i := range items {
		out = append(out, toMessage(&items[i]))
	}
	return out
}

type notificationResponse struct {
	ID        string                  `json:"id"`
	Type      entity.NotificationType `json:"type"`
	Title     string                  `json:"title"`
	Message   string                  `json:"message"`
	Data      map[string]any          `json:"data,omitempty"`
	IsRead    bool                    `json:"isRead"`
	ReadAt    *time.Time              `json:"readAt"`
	CreatedAt time.Time               `json:"createdAt"`
}

func toNotifications(items []entity.Notification) []notificationResponse {
	out := make([]notificationResponse, 0, len(items))
	for _, n := range items {
		out = append(out, notificationResponse{
			ID:        n.ID,
			Type:      n.Type,
			Title:     n.Title,
			Message:   n.Message,
			Data:      n.Data,
			IsRead:    n.IsRead,
			ReadAt:    n.ReadAt,
			CreatedAt: n.CreatedAt,
		})
	}
	return out
}
