package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"jobwarehouse/etl-service/internal/etlerr"
	"jobwarehouse/etl-service/internal/model"
)

// apiResponse mirrors the top-level search response.
type apiResponse struct {
	Data []apiJob `json:"data"`
}

// apiJob mirrors one job object of the upstream schema. Only the consumed
// fields are declared; anything the API adds is ignored.
type apiJob struct {
	JobID             string        `json:"job_id"`
	JobTitle          *string       `json:"job_title"`
	JobCity           *string       `json:"job_city"`
	JobCountry        *string       `json:"job_country"`
	JobLocation       *string       `json:"job_location"`
	JobSalary         *string       `json:"job_salary"`
	JobMinSalary      *float64      `json:"job_min_salary"`
	JobMaxSalary      *float64      `json:"job_max_salary"`
	JobDescription    *string       `json:"job_description"`
	JobEmploymentType *string       `json:"job_employment_type"`
	JobPostedAt       *int64        `json:"job_posted_at_timestamp"`
	JobPublisher      *string       `json:"job_publisher"`
	JobApplyLink      *string       `json:"job_apply_link"`
	EmployerName      *string       `json:"employer_name"`
	ApplyOptions      []applyOption `json:"apply_options"`
}

type applyOption struct {
	Publisher *string `json:"publisher"`
	ApplyLink *string `json:"apply_link"`
}

// Fetcher pulls one batch of job postings from the endpoint the gate
// declared ready.
type Fetcher struct {
	apiKey string
	client *http.Client
	logger *zap.Logger
}

func NewFetcher(apiKey string, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		apiKey: apiKey,
		client: &http.Client{Timeout: httpTimeout},
		logger: logger,
	}
}

// Fetch GETs the endpoint and maps the response's data array into raw
// postings. A non-200 response is an EXTRACTION error: the gate said ready,
// so failure here aborts the run.
func (f *Fetcher) Fetch(ctx context.Context, endpoint string) ([]model.RawJobPosting, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, etlerr.Extraction("build request", err)
	}
	req.Header.Set("x-api-key", f.apiKey)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, etlerr.Extraction("http GET", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, etlerr.Extraction("read body", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, etlerr.Extraction(
			fmt.Sprintf("API returned %d: %s", resp.StatusCode, truncate(string(body), 200)), nil)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, etlerr.Extraction("json unmarshal", err)
	}

	jobs := make([]model.RawJobPosting, 0, len(apiResp.Data))
	for _, j := range apiResp.Data {
		jobs = append(jobs, mapJob(j))
	}

	f.logger.Info("extracted job postings", zap.Int("count", len(jobs)))
	return jobs, nil
}

// mapJob flattens one API job. Publisher and apply link prefer the first
// apply_options entry and fall back to the job-level fields.
func mapJob(j apiJob) model.RawJobPosting {
	publisher := j.JobPublisher
	applyLink := j.JobApplyLink
	if len(j.ApplyOptions) > 0 {
		publisher = j.ApplyOptions[0].Publisher
		applyLink = j.ApplyOptions[0].ApplyLink
	}

	return model.RawJobPosting{
		JobID:          j.JobID,
		Title:          j.JobTitle,
		City:           j.JobCity,
		Country:        j.JobCountry,
		Location:       j.JobLocation,
		Salary:         j.JobSalary,
		MinSalary:      j.JobMinSalary,
		MaxSalary:      j.JobMaxSalary,
		Description:    j.JobDescription,
		EmployerName:   j.EmployerName,
		Publisher:      publisher,
		ApplyLink:      applyLink,
		RawApplyLink:   j.JobApplyLink,
		EmploymentType: j.JobEmploymentType,
		PostedAt:       j.JobPostedAt,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
