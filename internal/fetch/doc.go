// Package fetch provides the retrying JSON GET client shared by all
// provider adapters, plus the request pacer that keeps the pipelines under
// each provider's rate-limit ceiling.
package fetch
