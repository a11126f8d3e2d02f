package warehouse

import "github.com/cespare/xxhash/v2"

// JobKey derives the fact surrogate key from the job's natural key: a stable
// 64-bit hash of job_id masked into the positive signed range, so reloading
// the same job always produces the same key. Collisions across distinct
// job_ids are possible and accepted; the fact upsert is keyed by job_id, not
// job_key, so a collision corrupts nothing beyond the key column itself.
func JobKey(jobID string) int64 {
	return int64(xxhash.Sum64String(jobID) & 0x7FFFFFFFFFFFFFFF)
}
