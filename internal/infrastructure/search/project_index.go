package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/synqit/synqit-backend/internal/domain/entity"
)

const requestTimeout = 3 * time.Second

// ProjectIndex keeps a searchable copy of projects in Elasticsearch.
type ProjectIndex struct {
	ES     *elasticsearch.Client
	Index  string
	Logger *logrus.Logger
}

// NewProjectIndex returns nil when the client or index name is missing.
func NewProjectIndex(es *elasticsearch.Client, index string, logger *logrus.Logger) *ProjectIndex {
	if es == nil || index == "" {
		return nil
	}
	return &ProjectIndex{ES: es, Index: index, Logger: logger}
}

// ProjectDocument is the indexed shape of a project.
type ProjectDocument struct {
	ID                   string   `json:"id"`
	OwnerID              string   `json:"owner_id"`
	Name                 string   `json:"name"`
	Description          string   `json:"description"`
	DevelopmentFocus     string   `json:"development_focus"`
	ProjectType          string   `json:"project_type"`
	ProjectStage         string   `json:"project_stage"`
	FundingStage         string   `json:"funding_stage"`
	Blockchains          []string `json:"blockchains"`
	Tags                 []string `json:"tags"`
	IsLookingForFunding  bool     `json:"is_looking_for_funding"`
	IsLookingForPartners bool     `json:"is_looking_for_partners"`
	UpdatedAt            string   `json:"updated_at"`
}

func NewProjectDocument(p *entity.Project) ProjectDocument {
	chains := make([]string, 0, len(p.Blockchains))
	for _, b := range p.Blockchains {
		chains = append(chains, string(b.Blockchain))
	}
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return ProjectDocument{
		ID:                   p.ID,
		OwnerID:              p.OwnerID,
		Name:                 p.Name,
		Description:          p.Description,
		DevelopmentFocus:     p.DevelopmentFocus,
		ProjectType:          string(p.ProjectType),
		ProjectStage:         string(p.ProjectStage),
		FundingStage:         string(p.FundingStage),
		Blockchains:          chains,
		Tags:                 tags,
		IsLookingForFunding:  p.IsLookingForFunding,
		IsLookingForPartners: p.IsLookingForPartners,
		UpdatedAt:            p.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func (x *ProjectIndex) IndexProject(ctx context.Context, p *entity.Project) error {
	b, err := json.Marshal(NewProjectDocument(p))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.Index, DocumentID: p.ID, Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index %s: %s", p.ID, res.Status())
	}
	return nil
}

func (x *ProjectIndex) DeleteProject(ctx context.Context, id string) error {
	req := esapi.DeleteRequest{Index: x.Index, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("es delete %s: %s", id, res.Status())
	}
	return nil
}

// SearchProjects runs a multi_match over the text fields and returns
// matching project ids in relevance order.
func (x *ProjectIndex) SearchProjects(ctx context.Context, q string, excludeOwnerID string, size int) ([]string, error) {
	if size <= 0 || size > 50 {
		size = 10
	}
	boolQuery := map[string]any{
		"must": map[string]any{
			"multi_match": map[string]any{
				"query":     q,
				"fields":    []string{"name^3", "tags^2", "development_focus^2", "description"},
				"fuzziness": "AUTO",
			},
		},
	}
	if excludeOwnerID != "" {
		boolQuery["must_not"] = map[string]any{"term": map[string]any{"owner_id": excludeOwnerID}}
	}
	body, err := json.Marshal(map[string]any{
		"query":   map[string]any{"bool": boolQuery},
		"size":    size,
		"_source": false,
	})
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := x.ES.Search(
		x.ES.Search.WithContext(c),
		x.ES.Search.WithIndex(x.Index),
		x.ES.Search.WithBody(strings.NewReader(string(body))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}
	return decodeHitIDs(res.Body)
}

func decodeHitIDs(r io.Reader) ([]string, error) {
	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(r).Decode(&parsed); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}
