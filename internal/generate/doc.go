// Package generate implements the manifest generation pipeline: per-resource
// configuration merge, image resolution, commit verification, and template
// rendering with per-resource failure isolation.
//
// Processing is strictly sequential: resources within a cluster run one at
// a time, and containers within a resource run one at a time, because
// commit verification needs every container of a resource resolved first.
package generate
