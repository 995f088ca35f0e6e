// Package insights implements playlist analysis over catalog data.
//
// The [Engine] provides two aggregations:
//
//   - Distinct artists: one record per unique artist across a playlist's
//     tracks with an occurrence count and a profile image fetched in a
//     second round trip per artist. Image fetches run through a bounded
//     worker pool with rate limiting so a large playlist cannot flood the
//     upstream API.
//   - Today's listening: the user's recently-played tracks filtered to the
//     current calendar day in a configured timezone, intersected with a
//     target playlist's track ids.
//
// Operations take a [Catalog] value per call because catalog clients are
// bound to per-request user tokens.
package insights
