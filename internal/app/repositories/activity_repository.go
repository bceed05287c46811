package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/peerconnect/api/internal/app/models"
	"github.com/peerconnect/api/internal/pkg/apperrors"
	"github.com/peerconnect/api/internal/pkg/logger"
)

var activityColumns = []string{
	"id", "title", "category", "activity_date", "activity_time", "location",
	"description", "capacity", "college", "creator_id", "participants",
	"waitlist", "version", "created_at", "updated_at",
}

// IActivityRepository defines the interface for activity database operations
type IActivityRepository interface {
	Create(ctx context.Context, activity *models.Activity) error
	GetByID(ctx context.Context, id int64) (*models.Activity, error)
	ListByCollege(ctx context.Context, college string) ([]*models.Activity, error)
	UpdateDetails(ctx context.Context, activity *models.Activity) error
	UpdateMembership(ctx context.Context, activity *models.Activity, expectedVersion int64) (bool, error)
	Delete(ctx context.Context, id int64) error
}

// ActivityRepository handles activity database operations
type ActivityRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewActivityRepository creates a new ActivityRepository
func NewActivityRepository(db *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanActivity(row pgx.Row) (*models.Activity, error) {
	a := &models.Activity{}
	var category string
	err := row.Scan(
		&a.ID, &a.Title, &category, &a.Date, &a.Time, &a.Location,
		&a.Description, &a.Capacity, &a.College, &a.CreatorID, &a.Participants,
		&a.Waitlist, &a.Version, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Category = models.ActivityCategory(category)
	if a.Participants == nil {
		a.Participants = []int64{}
	}
	if a.Waitlist == nil {
		a.Waitlist = []int64{}
	}
	return a, nil
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}

// Create inserts a new activity and fills in id, version and timestamps
func (r *ActivityRepository) Create(ctx context.Context, activity *models.Activity) error {
	sql, args, err := r.sb.Insert("activities").
		Columns("title", "category", "activity_date", "activity_time", "location",
			"description", "capacity", "college", "creator_id", "participants", "waitlist").
		Values(activity.Title, string(activity.Category), activity.Date, activity.Time, activity.Location,
			activity.Description, activity.Capacity, activity.College, activity.CreatorID,
			nonNil(activity.Participants), nonNil(activity.Waitlist)).
		Suffix("RETURNING id, version, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).
		Scan(&activity.ID, &activity.Version, &activity.CreatedAt, &activity.UpdatedAt)
	if err != nil {
		logger.Error().Err(err).Int64("creatorID", activity.CreatorID).Msg("Error creating activity")
		return fmt.Errorf("error creating activity: %w", err)
	}
	return nil
}

// GetByID retrieves an activity by ID
func (r *ActivityRepository) GetByID(ctx context.Context, id int64) (*models.Activity, error) {
	sql, args, err := r.sb.Select(activityColumns...).
		From("activities").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	activity, err := scanActivity(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrActivityNotFound
		}
		return nil, fmt.Errorf("error getting activity by ID: %w", err)
	}
	return activity, nil
}

// ListByCollege returns the college's activities, soonest first
func (r *ActivityRepository) ListByCollege(ctx context.Context, college string) ([]*models.Activity, error) {
	sql, args, err := r.sb.Select(activityColumns...).
		From("activities").
		Where(squirrel.Eq{"college": college}).
		OrderBy("activity_date ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying activities: %w", err)
	}
	defer rows.Close()

	activities := []*models.Activity{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning activity: %w", err)
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

// UpdateDetails writes the creator-editable columns. Membership is left alone,
// but the version still moves so an in-flight join sees the new capacity.
func (r *ActivityRepository) UpdateDetails(ctx context.Context, activity *models.Activity) error {
	sql, args, err := r.sb.Update("activities").
		Set("title", activity.Title).
		Set("category", string(activity.Category)).
		Set("activity_date", activity.Date).
		Set("activity_time", activity.Time).
		Set("location", activity.Location).
		Set("description", activity.Description).
		Set("capacity", activity.Capacity).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": activity.ID}).
		Suffix("RETURNING version, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&activity.Version, &activity.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrActivityNotFound
		}
		logger.Error().Err(err).Int64("activityID", activity.ID).Msg("Error updating activity")
		return fmt.Errorf("error updating activity: %w", err)
	}
	return nil
}

// UpdateMembership stores participants and waitlist only if the row is still
// at expectedVersion. It reports false when another writer got there first.
func (r *ActivityRepository) UpdateMembership(ctx context.Context, activity *models.Activity, expectedVersion int64) (bool, error) {
	sql, args, err := r.sb.Update("activities").
		Set("participants", nonNil(activity.Participants)).
		Set("waitlist", nonNil(activity.Waitlist)).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": activity.ID, "version": expectedVersion}).
		Suffix("RETURNING version, updated_at").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("error building SQL: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&activity.Version, &activity.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("error updating activity membership: %w", err)
	}
	return true, nil
}

// Delete removes an activity; its messages and notifications cascade
func (r *ActivityRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("activities").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting activity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrActivityNotFound
	}
	return nil
}
