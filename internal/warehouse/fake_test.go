package warehouse_test

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// The fakes below stand in for the warehouse schema: a fakeDB hands out
// transactions over a cloned store, so nothing reaches the committed store
// until Commit — which is exactly the batch-atomicity contract under test.

type locRow struct {
	key            int
	city, country  string
	postal, region *string
}

type empRow struct {
	key       int
	name      string
	publisher *string
}

type factRow struct {
	jobKey                                 int64
	dateKey, locationKey, employerKey      int
	jobID                                  string
	title                                  *string
	technologies, tools, benefits, seniors *string
	techCount, toolsCount, benefitsCount   int
}

type store struct {
	dates     map[int]bool
	locations []locRow
	employers []empRow
	facts     map[string]factRow
}

func newStore() *store {
	return &store{dates: map[int]bool{}, facts: map[string]factRow{}}
}

func (s *store) clone() *store {
	c := newStore()
	for k := range s.dates {
		c.dates[k] = true
	}
	c.locations = append(c.locations, s.locations...)
	c.employers = append(c.employers, s.employers...)
	for k, v := range s.facts {
		c.facts[k] = v
	}
	return c
}

type fakeDB struct {
	committed *store
	failJobID string // fact write for this job_id errors
}

func newFakeDB() *fakeDB {
	return &fakeDB{committed: newStore()}
}

func (db *fakeDB) Begin(ctx context.Context) (pgx.Tx, error) {
	return &fakeTx{db: db, work: db.committed.clone()}, nil
}

type fakeTx struct {
	pgx.Tx // unstubbed methods panic if reached
	db     *fakeDB
	work   *store
}

func (tx *fakeTx) Commit(ctx context.Context) error {
	tx.db.committed = tx.work
	return nil
}

func (tx *fakeTx) Rollback(ctx context.Context) error {
	return nil
}

func (tx *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	switch {
	case strings.Contains(sql, "INSERT INTO dim_date"):
		tx.work.dates[args[0].(int)] = true

	case strings.Contains(sql, "UPDATE dim_location"):
		postal, region, key := args[0].(*string), args[1].(*string), args[2].(int)
		for i := range tx.work.locations {
			if tx.work.locations[i].key == key {
				if postal != nil {
					tx.work.locations[i].postal = postal
				}
				if region != nil {
					tx.work.locations[i].region = region
				}
			}
		}

	case strings.Contains(sql, "INSERT INTO dim_location"):
		tx.work.locations = append(tx.work.locations, locRow{
			key:     args[0].(int),
			city:    args[1].(string),
			country: args[2].(string),
			postal:  args[3].(*string),
			region:  args[4].(*string),
		})

	case strings.Contains(sql, "INSERT INTO dim_employer"):
		tx.work.employers = append(tx.work.employers, empRow{
			key:       args[0].(int),
			name:      args[1].(string),
			publisher: args[2].(*string),
		})

	case strings.Contains(sql, "INSERT INTO fact_job_post"):
		jobID := args[4].(string)
		if jobID == tx.db.failJobID {
			return pgconn.CommandTag{}, errors.New("forced fact write failure")
		}
		if existing, ok := tx.work.facts[jobID]; ok {
			existing.title = args[5].(*string)
			existing.technologies = args[12].(*string)
			existing.benefits = args[14].(*string)
			existing.seniors = args[15].(*string)
			existing.techCount = args[16].(int)
			existing.benefitsCount = args[18].(int)
			tx.work.facts[jobID] = existing
		} else {
			tx.work.facts[jobID] = factRow{
				jobKey:        args[0].(int64),
				dateKey:       args[1].(int),
				locationKey:   args[2].(int),
				employerKey:   args[3].(int),
				jobID:         jobID,
				title:         args[5].(*string),
				technologies:  args[12].(*string),
				tools:         args[13].(*string),
				benefits:      args[14].(*string),
				seniors:       args[15].(*string),
				techCount:     args[16].(int),
				toolsCount:    args[17].(int),
				benefitsCount: args[18].(int),
			}
		}

	default:
		return pgconn.CommandTag{}, errors.New("fakeTx: unexpected exec: " + sql)
	}
	return pgconn.CommandTag{}, nil
}

func (tx *fakeTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	switch {
	case strings.Contains(sql, "SELECT location_key FROM dim_location"):
		city, country := args[0].(string), args[1].(string)
		for _, row := range tx.work.locations {
			if row.city == city && row.country == country {
				return fakeRow{val: row.key}
			}
		}
		return fakeRow{err: pgx.ErrNoRows}

	case strings.Contains(sql, "MAX(location_key)"):
		next := 1
		for _, row := range tx.work.locations {
			if row.key >= next {
				next = row.key + 1
			}
		}
		return fakeRow{val: next}

	case strings.Contains(sql, "SELECT employer_key FROM dim_employer"):
		name := args[0].(string)
		for _, row := range tx.work.employers {
			if row.name == name {
				return fakeRow{val: row.key}
			}
		}
		return fakeRow{err: pgx.ErrNoRows}

	case strings.Contains(sql, "MAX(employer_key)"):
		next := 1
		for _, row := range tx.work.employers {
			if row.key >= next {
				next = row.key + 1
			}
		}
		return fakeRow{val: next}

	default:
		return fakeRow{err: errors.New("fakeTx: unexpected query: " + sql)}
	}
}

type fakeRow struct {
	err error
	val int
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*int)) = r.val
	return nil
}
