// Package rebuild provides bulk reconstruction of the candidate search index.
//
// This package supports batch processing of the whole candidate population,
// progress tracking, retry logic with exponential backoff, and checkpointed
// resume. Each batch commits independently, so a rebuild runs online: it
// never blocks concurrent readers or writers of the candidate pool.
package rebuild
