package entity

import "time"

type ProjectType string

const (
	ProjectTypeDeFi           ProjectType = "DEFI"
	ProjectTypeNFT            ProjectType = "NFT"
	ProjectTypeGaming         ProjectType = "GAMING"
	ProjectTypeInfrastructure ProjectType = "INFRASTRUCTURE"
	ProjectTypeDAO            ProjectType = "DAO"
	ProjectTypeSocial         ProjectType = "SOCIAL"
	ProjectTypeMetaverse      ProjectType = "METAVERSE"
	ProjectTypeDeveloperTools ProjectType = "DEVELOPER_TOOLS"
	ProjectTypeAI             ProjectType = "AI"
	ProjectTypeExchange       ProjectType = "EXCHANGE"
	ProjectTypeWallet         ProjectType = "WALLET"
	ProjectTypeOther          ProjectType = "OTHER"
)

func ProjectTypes() []string {
	return []string{"DEFI", "NFT", "GAMING", "INFRASTRUCTURE", "DAO", "SOCIAL", "METAVERSE", "DEVELOPER_TOOLS", "AI", "EXCHANGE", "WALLET", "OTHER"}
}

type ProjectStage string

func ProjectStages() []string {
	return []string{"IDEA", "MVP", "BETA", "LAUNCHED", "GROWTH", "MATURE"}
}

type FundingStage string

func FundingStages() []string {
	return []string{"BOOTSTRAPPED", "PRE_SEED", "SEED", "SERIES_A", "SERIES_B", "SERIES_C_PLUS", "NOT_RAISING"}
}

type TeamSize string

func TeamSizes() []string {
	return []string{"SIZE_1_5", "SIZE_6_20", "SIZE_21_50", "SIZE_51_200", "SIZE_200_PLUS"}
}

type TokenAvailability string

func TokenAvailabilities() []string {
	return []string{"NO_TOKEN", "TOKEN_PLANNED", "TOKEN_LAUNCHED"}
}

type Blockchain string

func Blockchains() []string {
	return []string{"ETHEREUM", "BITCOIN", "SOLANA", "POLYGON", "BNB_CHAIN", "AVALANCHE", "ARBITRUM", "OPTIMISM", "BASE", "CARDANO", "POLKADOT", "COSMOS", "NEAR", "SUI", "APTOS", "OTHER"}
}

type BlockchainPreference struct {
	Blockchain Blockchain `json:"blockchain"`
	IsPrimary  bool       `json:"isPrimary"`
}

// Project is owned by exactly one user. Blockchains and Tags are child
// collections that are always replaced as a whole.
type Project struct {
	ID                   string
	OwnerID              string
	Name                 string
	Description          string
	LogoURL              string
	Website              string
	ProjectType          ProjectType
	ProjectStage         ProjectStage
	FundingStage         FundingStage
	TeamSize             TeamSize
	TokenAvailability    TokenAvailability
	DevelopmentFocus     string
	IsLookingForFunding  bool
	IsLookingForPartners bool
	TrustScore           int
	ViewCount            int
	Blockchains          []BlockchainPreference
	Tags                 []string
	CreatedAt            time.Time
	UpdatedAt            time.Time

	// Owner is populated by list/read queries that join users.
	Owner *ProjectOwner
}

type ProjectOwner struct {
	ID        string   `json:"id"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	AvatarURL string   `json:"avatarUrl"`
	UserType  UserType `json:"userType"`
}

// ProjectFilter narrows project listings. Zero values mean "any".
type ProjectFilter struct {
	ProjectType          string
	ProjectStage         string
	FundingStage         string
	Blockchain           string
	Search               string
	IsLookingForFunding  *bool
	IsLookingForPartners *bool
	ExcludeOwnerID       string
	Limit                int
	Offset               int
}
