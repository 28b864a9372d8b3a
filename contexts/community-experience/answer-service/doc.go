// Package answerservice implements the answer lifecycle of the Q&A board
// inside the community-experience context.
//
// The module owns answer creation, author-only modification and deletion,
// per-user idempotent voting, and paginated answer reads in creation order or
// by descending vote count. Questions and site users are read-only
// collaborators resolved through ports; persistence and event delivery are
// isolated behind adapters.
package answerservice
