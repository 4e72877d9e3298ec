// Package scoring converts raw answer events into points, levels, and session
// summaries. Every function is pure: the only state it touches is the
// domain.UserStats value passed in by the caller, and it never performs I/O.
package scoring
