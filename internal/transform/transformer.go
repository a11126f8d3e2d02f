package transform

import "jobwarehouse/etl-service/internal/model"

// TransformBatch enriches every record in the batch: city resolution, then
// the four annotation passes, reading only the original record's fields.
// Records are processed sequentially and independently; a record with missing
// optional fields enriches to empty results instead of aborting the batch.
// Country, location, description and the raw apply link do not survive into
// the output.
func TransformBatch(jobs []model.RawJobPosting, annotator *Annotator, postalByCity map[string]string) []model.EnrichedJobPosting {
	enriched := make([]model.EnrichedJobPosting, 0, len(jobs))
	for i := range jobs {
		enriched = append(enriched, transformOne(&jobs[i], annotator, postalByCity))
	}
	return enriched
}

func transformOne(job *model.RawJobPosting, annotator *Annotator, postalByCity map[string]string) model.EnrichedJobPosting {
	out := model.EnrichedJobPosting{
		JobID:          job.JobID,
		Title:          job.Title,
		City:           job.City,
		Salary:         job.Salary,
		MinSalary:      job.MinSalary,
		MaxSalary:      job.MaxSalary,
		EmployerName:   job.EmployerName,
		Publisher:      job.Publisher,
		ApplyLink:      job.ApplyLink,
		EmploymentType: job.EmploymentType,
		PostedAt:       job.PostedAt,
	}

	if job.City != nil && *job.City != "" {
		loc := ResolveLocation(*job.City, postalByCity)
		out.City = &loc.City
		out.PostalCode = loc.PostalCode
		out.RegionCode = loc.RegionCode
	}

	description := ""
	if job.Description != nil {
		description = *job.Description
	}
	ann := annotator.Annotate(description)
	out.Technologies = ann.Technologies
	out.SenioritySignals = ann.SenioritySignals
	out.SalaryMentions = ann.SalaryMentions
	out.Benefits = ann.Benefits

	return out
}
