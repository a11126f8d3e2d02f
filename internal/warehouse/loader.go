// Package warehouse loads enriched job postings into the star schema:
// dim_date, dim_location and dim_employer lookup-or-create, then an upsert of
// fact_job_post by its natural key. One transaction covers the whole batch —
// any failure rolls everything back.
package warehouse

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"jobwarehouse/etl-service/internal/etlerr"
	"jobwarehouse/etl-service/internal/model"
)

const unknown = "Unknown"

// TxBeginner is the slice of *pgxpool.Pool the loader needs.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// querier is the slice of pgx.Tx the per-record steps use.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Loader writes enriched batches to the warehouse.
type Loader struct {
	db     TxBeginner
	logger *zap.Logger
}

func NewLoader(db TxBeginner, logger *zap.Logger) *Loader {
	return &Loader{db: db, logger: logger}
}

// LoadBatch persists the batch inside a single transaction. On any error the
// transaction is rolled back and a LOAD_TRANSACTION error is returned — no
// partial commit. The transaction is released on every path.
func (l *Loader) LoadBatch(ctx context.Context, batch []model.EnrichedJobPosting) error {
	tx, err := l.db.Begin(ctx)
	if err != nil {
		return etlerr.LoadTransaction("begin transaction", err)
	}
	defer tx.Rollback(ctx) // no-op once committed

	for i := range batch {
		if err := l.loadOne(ctx, tx, &batch[i]); err != nil {
			return etlerr.LoadTransaction(fmt.Sprintf("job %s", batch[i].JobID), err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return etlerr.LoadTransaction("commit", err)
	}

	l.logger.Info("batch loaded", zap.Int("jobs", len(batch)))
	return nil
}

func (l *Loader) loadOne(ctx context.Context, q querier, job *model.EnrichedJobPosting) error {
	posted := time.Now()
	if job.PostedAt != nil {
		posted = time.Unix(*job.PostedAt, 0)
	}

	dateKey, err := ensureDate(ctx, q, posted)
	if err != nil {
		return err
	}

	locationKey, err := ensureLocation(ctx, q, job)
	if err != nil {
		return err
	}

	employerKey, err := ensureEmployer(ctx, q, job)
	if err != nil {
		return err
	}

	return upsertFact(ctx, q, job, dateKey, locationKey, employerKey)
}

// ensureDate inserts the calendar row for the posting date if absent. The
// date key is its own natural key, so ON CONFLICT DO NOTHING suffices.
func ensureDate(ctx context.Context, q querier, posted time.Time) (int, error) {
	dateKey := DateKey(posted)

	_, err := q.Exec(ctx, `
		INSERT INTO dim_date (
			date_key, full_date, year, quarter, month, month_name,
			day, day_of_week, day_name, week_of_year, is_weekend
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (date_key) DO NOTHING`,
		dateKey,
		posted.Format("2006-01-02"),
		posted.Year(),
		Quarter(posted),
		int(posted.Month()),
		posted.Month().String(),
		posted.Day(),
		ISOWeekday(posted),
		posted.Weekday().String(),
		isoWeek(posted),
		IsWeekend(posted),
	)
	if err != nil {
		return 0, fmt.Errorf("insert dim_date: %w", err)
	}
	return dateKey, nil
}

// ensureLocation resolves or creates the location dimension row keyed by
// (city, country). Postcode and region code on an existing row are only ever
// filled in with non-null derived values, never erased.
func ensureLocation(ctx context.Context, q querier, job *model.EnrichedJobPosting) (int, error) {
	city := unknown
	if job.City != nil && *job.City != "" {
		city = *job.City
	}
	// Country does not survive enrichment, so the dimension always carries
	// the default here.
	country := unknown

	var locationKey int
	err := q.QueryRow(ctx,
		`SELECT location_key FROM dim_location WHERE job_city = $1 AND job_country = $2`,
		city, country,
	).Scan(&locationKey)

	switch {
	case err == nil:
		if job.PostalCode != nil || job.RegionCode != nil {
			_, err := q.Exec(ctx, `
				UPDATE dim_location
				SET postcode = COALESCE($1, postcode),
				    isocode3166 = COALESCE($2, isocode3166)
				WHERE location_key = $3`,
				job.PostalCode, job.RegionCode, locationKey,
			)
			if err != nil {
				return 0, fmt.Errorf("update dim_location: %w", err)
			}
		}
		return locationKey, nil

	case errors.Is(err, pgx.ErrNoRows):
		err := q.QueryRow(ctx,
			`SELECT COALESCE(MAX(location_key), 0) + 1 FROM dim_location`,
		).Scan(&locationKey)
		if err != nil {
			return 0, fmt.Errorf("next location_key: %w", err)
		}

		_, err = q.Exec(ctx, `
			INSERT INTO dim_location (
				location_key, job_city, job_country, job_region,
				continent, latitude, longitude, postcode, isocode3166
			) VALUES ($1, $2, $3, NULL, NULL, NULL, NULL, $4, $5)`,
			locationKey, city, country, job.PostalCode, job.RegionCode,
		)
		if err != nil {
			return 0, fmt.Errorf("insert dim_location: %w", err)
		}
		return locationKey, nil

	default:
		return 0, fmt.Errorf("select dim_location: %w", err)
	}
}

// ensureEmployer resolves or creates the employer dimension row keyed by
// employer name. Publisher is recorded at creation only; there is no update
// path for employer attributes.
func ensureEmployer(ctx context.Context, q querier, job *model.EnrichedJobPosting) (int, error) {
	name := unknown
	if job.EmployerName != nil && *job.EmployerName != "" {
		name = *job.EmployerName
	}

	var employerKey int
	err := q.QueryRow(ctx,
		`SELECT employer_key FROM dim_employer WHERE employer_name = $1`,
		name,
	).Scan(&employerKey)

	switch {
	case err == nil:
		return employerKey, nil

	case errors.Is(err, pgx.ErrNoRows):
		err := q.QueryRow(ctx,
			`SELECT COALESCE(MAX(employer_key), 0) + 1 FROM dim_employer`,
		).Scan(&employerKey)
		if err != nil {
			return 0, fmt.Errorf("next employer_key: %w", err)
		}

		_, err = q.Exec(ctx, `
			INSERT INTO dim_employer (
				employer_key, employer_name, publisher,
				industry, company_size, founded_year
			) VALUES ($1, $2, $3, NULL, NULL, NULL)`,
			employerKey, name, job.Publisher,
		)
		if err != nil {
			return 0, fmt.Errorf("insert dim_employer: %w", err)
		}
		return employerKey, nil

	default:
		return 0, fmt.Errorf("select dim_employer: %w", err)
	}
}

// upsertFact writes the fact row keyed by job_id. On conflict only the
// derived/display fields are refreshed; keys and timestamps are write-once.
// List fields are persisted comma-joined — a documented denormalization.
func upsertFact(ctx context.Context, q querier, job *model.EnrichedJobPosting, dateKey, locationKey, employerKey int) error {
	technologies := JoinList(job.Technologies)
	benefits := JoinList(job.Benefits)
	seniority := JoinList(job.SenioritySignals)

	_, err := q.Exec(ctx, `
		INSERT INTO fact_job_post (
			job_key, date_key, location_key, employer_key,
			job_id, job_title, apply_link, employment_type,
			posted_timestamp, job_salary, job_min_salary, job_max_salary,
			technologies_list, tools_list, benefits_list, seniority_levels_list,
			technology_count, tools_count, benefits_count
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19
		)
		ON CONFLICT (job_id) DO UPDATE SET
			job_title = EXCLUDED.job_title,
			technologies_list = EXCLUDED.technologies_list,
			benefits_list = EXCLUDED.benefits_list,
			seniority_levels_list = EXCLUDED.seniority_levels_list,
			technology_count = EXCLUDED.technology_count,
			benefits_count = EXCLUDED.benefits_count`,
		JobKey(job.JobID),
		dateKey,
		locationKey,
		employerKey,
		job.JobID,
		job.Title,
		job.ApplyLink,
		job.EmploymentType,
		job.PostedAt,
		job.Salary,
		job.MinSalary,
		job.MaxSalary,
		technologies,
		technologies, // tools_list mirrors technologies_list
		benefits,
		seniority,
		len(job.Technologies),
		len(job.Technologies),
		len(job.Benefits),
	)
	if err != nil {
		return fmt.Errorf("upsert fact_job_post: %w", err)
	}
	return nil
}

// JoinList flattens a derived list to its comma-joined storage form; an
// empty list is stored as NULL.
func JoinList(items []string) *string {
	if len(items) == 0 {
		return nil
	}
	joined := strings.Join(items, ",")
	return &joined
}

func isoWeek(t time.Time) int {
	_, week := t.ISOWeek()
	return week
}
