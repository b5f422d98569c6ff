package application

import (
	"fmt"
	"strings"

	"github.com/synqit/synqit-backend/internal/domain/entity"
)

// Scoring weights of the recommendation heuristic. A candidate starts at
// baseScore and only ever gains points, capped at maxScore.
const (
	baseScore            = 50
	focusMatchBonus      = 20
	complementaryBonus   = 15
	sharedTagBonus       = 5
	partnershipBonus     = 2
	maxPartnershipBonus  = 10
	maxScore             = 100
	recommendationPool   = 200
	defaultRecommendTake = 10
)

// complementaryTypes lists, per project type, the types it tends to partner with.
var complementaryTypes = map[entity.ProjectType][]entity.ProjectType{
	entity.ProjectTypeDeFi:           {entity.ProjectTypeInfrastructure, entity.ProjectTypeWallet, entity.ProjectTypeExchange, entity.ProjectTypeDeveloperTools},
	entity.ProjectTypeNFT:            {entity.ProjectTypeGaming, entity.ProjectTypeMetaverse, entity.ProjectTypeSocial, entity.ProjectTypeWallet},
	entity.ProjectTypeGaming:         {entity.ProjectTypeNFT, entity.ProjectTypeMetaverse, entity.ProjectTypeInfrastructure},
	entity.ProjectTypeInfrastructure: {entity.ProjectTypeDeFi, entity.ProjectTypeDeveloperTools, entity.ProjectTypeWallet, entity.ProjectTypeExchange},
	entity.ProjectTypeDAO:            {entity.ProjectTypeDeFi, entity.ProjectTypeSocial, entity.ProjectTypeDeveloperTools},
	entity.ProjectTypeSocial:         {entity.ProjectTypeNFT, entity.ProjectTypeDAO, entity.ProjectTypeMetaverse},
	entity.ProjectTypeMetaverse:      {entity.ProjectTypeGaming, entity.ProjectTypeNFT, entity.ProjectTypeSocial},
	entity.ProjectTypeDeveloperTools: {entity.ProjectTypeInfrastructure, entity.ProjectTypeAI, entity.ProjectTypeDeFi},
	entity.ProjectTypeAI:             {entity.ProjectTypeDeveloperTools, entity.ProjectTypeInfrastructure, entity.ProjectTypeDeFi},
	entity.ProjectTypeExchange:       {entity.ProjectTypeDeFi, entity.ProjectTypeWallet, entity.ProjectTypeInfrastructure},
	entity.ProjectTypeWallet:         {entity.ProjectTypeDeFi, entity.ProjectTypeExchange, entity.ProjectTypeNFT},
}

// Recommendation is a scored candidate project.
type Recommendation struct {
	Project entity.Project
	Score   int
	Reasons []string
}

func isComplementary(from, to entity.ProjectType) bool {
	for _, t := range complementaryTypes[from] {
		if t == to {
			return true
		}
	}
	return false
}

// sharedTags counts distinct tags present on both sides, ignoring case.
func sharedTags(a, b []string) int {
	mine := make(map[string]struct{}, len(a))
	for _, t := range a {
		mine[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}
	seen := make(map[string]struct{}, len(b))
	n := 0
	for _, t := range b {
		k := strings.ToLower(strings.TrimSpace(t))
		if _, ok := mine[k]; !ok || k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		n++
	}
	return n
}

// ScoreMatch rates candidate for caller. accepted is the number of accepted
// partnerships the candidate already has. The result is always in [50, 100].
func ScoreMatch(caller, candidate *entity.Project, accepted int) (int, []string) {
	score := baseScore
	var reasons []string

	focus := strings.ToLower(strings.TrimSpace(caller.DevelopmentFocus))
	if focus != "" && strings.Contains(strings.ToLower(candidate.DevelopmentFocus), focus) {
		score += focusMatchBonus
		reasons = append(reasons, "similar development focus")
	}

	if isComplementary(caller.ProjectType, candidate.ProjectType) {
		score += complementaryBonus
		reasons = append(reasons, fmt.Sprintf("%s complements %s", candidate.ProjectType, caller.ProjectType))
	}

	if n := sharedTags(caller.Tags, candidate.Tags); n > 0 {
		score += n * sharedTagBonus
		reasons = append(reasons, fmt.Sprintf("%d shared tags", n))
	}

	if accepted > 0 {
		bonus := accepted * partnershipBonus
		if bonus > maxPartnershipBonus {
			bonus = maxPartnershipBonus
		}
		score += bonus
		reasons = append(reasons, "established partner network")
	}

	if score > maxScore {
		score = maxScore
	}
	return score, reasons
}
