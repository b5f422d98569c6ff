package handlers

import (
	"sync"

	"github.com/synqit/synqit-backend/internal/domain/entity"
	"github.com/synqit/synqit-backend/pkg/validation"
)

var registerOnce sync.Once

// RegisterValidators installs the enum tags used by request structs in this
// package on Gin's validator. Safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		validation.RegisterEnum("usertype", entity.UserTypes()...)
		validation.RegisterEnum("projecttype", entity.ProjectTypes()...)
		validation.RegisterEnum("projectstage", entity.ProjectStages()...)
		validation.RegisterEnum("fundingstage", entity.FundingStages()...)
		validation.RegisterEnum("teamsize", entity.TeamSizes()...)
		validation.RegisterEnum("tokenavailability", entity.TokenAvailabilities()...)
		validation.RegisterEnum("blockchain", entity.Blockchains()...)
		validation.RegisterEnum("partnershiptype", entity.PartnershipTypes()...)
		validation.RegisterEnum("partnershipstatus", entity.PartnershipStatuses()...)
		validation.RegisterEnum("messagetype", entity.MessageTypes()...)
		validation.Init()
	})
}
