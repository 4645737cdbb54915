// Package fetch performs single-target fetches with bounded retries,
// per-attempt timeouts and failure classification.
//
// The [Executor] is shared by every execution strategy: it resolves each
// target into exactly one [Outcome] and never lets an error escape its
// boundary. Which failure kinds are retryable and how many retries are
// allowed is fixed by [Options] so that strategies stay comparable; the one
// per-strategy degree of freedom is the [BackoffFunc] applied between
// retries.
//
// On success the response body is parsed with goquery to extract the page
// title and count outbound links. Parsing is best-effort: a malformed body
// downgrades to a success with empty extracted fields.
package fetch
