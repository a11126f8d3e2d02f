// Package model defines the job posting records flowing through the pipeline.
package model

// RawJobPosting is one job as extracted from the upstream API, flattened to
// the fields the pipeline consumes. Optional API fields are pointers: an
// absent field stays nil and is never an error. A record is immutable once
// fetched — the transform stage builds a new EnrichedJobPosting instead of
// mutating it.
type RawJobPosting struct {
	JobID          string   `json:"job_id"`
	Title          *string  `json:"job_title"`
	City           *string  `json:"job_city"`
	Country        *string  `json:"job_country"`
	Location       *string  `json:"job_location"`
	Salary         *string  `json:"job_salary"`
	MinSalary      *float64 `json:"job_min_salary"`
	MaxSalary      *float64 `json:"job_max_salary"`
	Description    *string  `json:"job_description"`
	EmployerName   *string  `json:"employer_name"`
	Publisher      *string  `json:"publisher"`
	ApplyLink      *string  `json:"apply_link"`
	RawApplyLink   *string  `json:"job_apply_link"`
	EmploymentType *string  `json:"job_employment_type"`
	PostedAt       *int64   `json:"job_posted_at_timestamp"` // epoch seconds
}

// EnrichedJobPosting is a RawJobPosting after enrichment. Country, location,
// description and the raw apply link are dropped from the contract; the
// derived fields below are added. City is upper-cased whenever it was
// non-empty in the raw record.
type EnrichedJobPosting struct {
	JobID          string
	Title          *string
	City           *string
	Salary         *string
	MinSalary      *float64
	MaxSalary      *float64
	EmployerName   *string
	Publisher      *string
	ApplyLink      *string
	EmploymentType *string
	PostedAt       *int64

	PostalCode       *string // from the city→postal lookup, nil on miss
	RegionCode       *string // ISO 3166-2:FR, "FR-NN", nil when underivable
	Technologies     []string
	SenioritySignals []string
	SalaryMentions   []int
	Benefits         []string
}
