package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/synqit/synqit-backend/internal/domain/entity"
	"github.com/synqit/synqit-backend/internal/domain/repository"
)

type ProjectRepository struct {
	pool *pgxpool.Pool
}

func NewProjectRepository(pool *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{pool: pool}
}

const projectColumns = `p.id, p.owner_id, p.name, p.description, p.logo_url, p.website, p.project_type,
	p.project_stage, p.funding_stage, p.team_size, p.token_availability, p.development_focus,
	p.is_looking_for_funding, p.is_looking_for_partners, p.trust_score, p.view_count, p.created_at, p.updated_at,
	u.first_name, u.last_name, u.avatar_url, u.user_type`

const projectFrom = ` FROM projects p JOIN users u ON u.id = p.owner_id`

func scanProject(row pgx.Row) (*entity.Project, error) {
	p := &entity.Project{Owner: &entity.ProjectOwner{}}
	if err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.LogoURL, &p.Website, &p.ProjectType,
		&p.ProjectStage, &p.FundingStage, &p.TeamSize, &p.TokenAvailability, &p.DevelopmentFocus,
		&p.IsLookingForFunding, &p.IsLookingForPartners, &p.TrustScore, &p.ViewCount, &p.CreatedAt, &p.UpdatedAt,
		&p.Owner.FirstName, &p.Owner.LastName, &p.Owner.AvatarURL, &p.Owner.UserType); err != nil {
		return nil, mapErr(err)
	}
	p.Owner.ID = p.OwnerID
	return p, nil
}

// Create inserts the project and its children atomically. A second project
// for the same owner fails with ErrDuplicate.
func (r *ProjectRepository) Create(ctx context.Context, p *entity.Project) error {
	return WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			INSERT INTO projects (owner_id, name, description, logo_url, website, project_type, project_stage,
				funding_stage, team_size, token_availability, development_focus, is_looking_for_funding,
				is_looking_for_partners)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			RETURNING id, trust_score, view_count, created_at, updated_at
		`, p.OwnerID, p.Name, p.Description, p.LogoURL, p.Website, p.ProjectType, p.ProjectStage,
			p.FundingStage, p.TeamSize, p.TokenAvailability, p.DevelopmentFocus, p.IsLookingForFunding,
			p.IsLookingForPartners)
		if err := row.Scan(&p.ID, &p.TrustScore, &p.ViewCount, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return mapErr(err)
		}
		return replaceProjectChildren(ctx, tx, p)
	})
}

// Update rewrites the scalar fields and replaces both child collections.
func (r *ProjectRepository) Update(ctx context.Context, p *entity.Project) error {
	p.UpdatedAt = time.Now()
	return WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		res, err := tx.Exec(ctx, `
			UPDATE projects
			SET name = $1, description = $2, website = $3, project_type = $4, project_stage = $5,
			    funding_stage = $6, team_size = $7, token_availability = $8, development_focus = $9,
			    is_looking_for_funding = $10, is_looking_for_partners = $11, updated_at = $12
			WHERE id = $13
		`, p.Name, p.Description, p.Website, p.ProjectType, p.ProjectStage,
			p.FundingStage, p.TeamSize, p.TokenAvailability, p.DevelopmentFocus,
			p.IsLookingForFunding, p.IsLookingForPartners, p.UpdatedAt, p.ID)
		if err != nil {
			return mapErr(err)
		}
		if res.RowsAffected() == 0 {
			return repository.ErrNotFound
		}
		return replaceProjectChildren(ctx, tx, p)
	})
}

func (r *ProjectRepository) ReplaceBlockchainPreferences(ctx context.Context, projectID string, prefs []entity.BlockchainPreference) error {
	return WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		res, err := tx.Exec(ctx, `UPDATE projects SET updated_at = now() WHERE id = $1`, projectID)
		if err != nil {
			return mapErr(err)
		}
		if res.RowsAffected() == 0 {
			return repository.ErrNotFound
		}
		return replaceBlockchains(ctx, tx, projectID, prefs)
	})
}

// replaceProjectChildren swaps both child collections for the ones on p.
// Callers run it inside the transaction that wrote the parent row.
func replaceProjectChildren(ctx context.Context, q querier, p *entity.Project) error {
	if err := replaceBlockchains(ctx, q, p.ID, p.Blockchains); err != nil {
		return err
	}
	return replaceTags(ctx, q, p.ID, p.Tags)
}

func replaceBlockchains(ctx context.Context, q querier, projectID string, prefs []entity.BlockchainPreference) error {
	if _, err := q.Exec(ctx, `DELETE FROM blockchain_preferences WHERE project_id = $1`, projectID); err != nil {
		return mapErr(err)
	}
	for _, bp := range prefs {
		if _, err := q.Exec(ctx, `
			INSERT INTO blockchain_preferences (project_id, blockchain, is_primary) VALUES ($1, $2, $3)
		`, projectID, bp.Blockchain, bp.IsPrimary); err != nil {
			return mapErr(err)
		}
	}
	return nil
}

func replaceTags(ctx context.Context, q querier, projectID string, tags []string) error {
	if _, err := q.Exec(ctx, `DELETE FROM project_tags WHERE project_id = $1`, projectID); err != nil {
		return mapErr(err)
	}
	for i, t := range tags {
		if _, err := q.Exec(ctx, `INSERT INTO project_tags (project_id, tag, position) VALUES ($1, $2, $3)`, projectID, t, i); err != nil {
			return mapErr(err)
		}
	}
	return nil
}

func (r *ProjectRepository) UpdateLogo(ctx context.Context, projectID, url string) error {
	res, err := r.pool.Exec(ctx, `UPDATE projects SET logo_url = $1, updated_at = now() WHERE id = $2`, url, projectID)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*entity.Project, error) {
	p, err := scanProject(r.pool.QueryRow(ctx, `SELECT `+projectColumns+projectFrom+` WHERE p.id = $1`, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadChildren(ctx, []*entity.Project{p}); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ProjectRepository) GetByOwnerID(ctx context.Context, ownerID string) (*entity.Project, error) {
	p, err := scanProject(r.pool.QueryRow(ctx, `SELECT `+projectColumns+projectFrom+` WHERE p.owner_id = $1`, ownerID))
	if err != nil {
		return nil, err
	}
	if err := r.loadChildren(ctx, []*entity.Project{p}); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ProjectRepository) GetByIDs(ctx context.Context, ids []string) ([]entity.Project, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.query(ctx, `SELECT `+projectColumns+projectFrom+` WHERE p.id = ANY($1::uuid[])`, ids)
}

// List applies f and returns one page plus the total number of matches.
func (r *ProjectRepository) List(ctx context.Context, f entity.ProjectFilter) ([]entity.Project, int, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if f.ProjectType != "" {
		add("p.project_type = $%d", f.ProjectType)
	}
	if f.ProjectStage != "" {
		add("p.project_stage = $%d", f.ProjectStage)
	}
	if f.FundingStage != "" {
		add("p.funding_stage = $%d", f.FundingStage)
	}
	if f.Blockchain != "" {
		add("EXISTS (SELECT 1 FROM blockchain_preferences b WHERE b.project_id = p.id AND b.blockchain = $%d)", f.Blockchain)
	}
	if f.Search != "" {
		add(`(p.name ILIKE $%[1]d ESCAPE '\' OR p.description ILIKE $%[1]d ESCAPE '\' OR p.development_focus ILIKE $%[1]d ESCAPE '\')`, containsPattern(f.Search))
	}
	if f.IsLookingForFunding != nil {
		add("p.is_looking_for_funding = $%d", *f.IsLookingForFunding)
	}
	if f.IsLookingForPartners != nil {
		add("p.is_looking_for_partners = $%d", *f.IsLookingForPartners)
	}
	if f.ExcludeOwnerID != "" {
		add("p.owner_id <> $%d", f.ExcludeOwnerID)
	}

	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*)`+projectFrom+cond, args...).Scan(&total); err != nil {
		return nil, 0, mapErr(err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit, f.Offset)
	sql := `SELECT ` + projectColumns + projectFrom + cond +
		fmt.Sprintf(` ORDER BY p.created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	items, err := r.query(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *ProjectRepository) IncrementViewCount(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `UPDATE projects SET view_count = view_count + 1 WHERE id = $1`, id)
	return mapErr(err)
}

func (r *ProjectRepository) query(ctx context.Context, sql string, args ...any) ([]entity.Project, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	var ptrs []*entity.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		ptrs = append(ptrs, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadChildren(ctx, ptrs); err != nil {
		return nil, err
	}
	out := make([]entity.Project, 0, len(ptrs))
	for _, p := range ptrs {
		out = append(out, *p)
	}
	return out, nil
}

// loadChildren fills Blockchains and Tags with two queries for the whole batch.
func (r *ProjectRepository) loadChildren(ctx context.Context, projects []*entity.Project) error {
	if len(projects) == 0 {
		return nil
	}
	ids := make([]string, 0, len(projects))
	byID := make(map[string]*entity.Project, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
		byID[p.ID] = p
		p.Blockchains = []entity.BlockchainPreference{}
		p.Tags = []string{}
	}

	rows, err := r.pool.Query(ctx, `
		SELECT project_id, blockchain, is_primary FROM blockchain_preferences
		WHERE project_id = ANY($1::uuid[]) ORDER BY is_primary DESC, blockchain
	`, ids)
	if err != nil {
		return mapErr(err)
	}
	for rows.Next() {
		var pid string
		var bp entity.BlockchainPreference
		if err := rows.Scan(&pid, &bp.Blockchain, &bp.IsPrimary); err != nil {
			rows.Close()
			return err
		}
		byID[pid].Blockchains = append(byID[pid].Blockchains, bp)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.pool.Query(ctx, `
		SELECT project_id, tag FROM project_tags WHERE project_id = ANY($1::uuid[]) ORDER BY position
	`, ids)
	if err != nil {
		return mapErr(err)
	}
	defer rows.Close()
	for rows.Next() {
		var pid, tag string
		if err := rows.Scan(&pid, &tag); err != nil {
			return err
		}
		byID[pid].Tags = append(byID[pid].Tags, tag)
	}
	return rows.Err()
}

var _ repository.ProjectRepository = (*ProjectRepository)(nil)
