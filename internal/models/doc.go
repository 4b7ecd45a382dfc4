// Package models defines the core domain models for Kinship.
//
// # Models
//
//   - Friend: a person the user keeps in touch with
//   - Interaction: a dated meetup or gift tied to one friend
//   - Memo: a short note attached to a friend
//   - Setting: a process-wide preference document keyed by name
//
// Friends own their interactions and memos: deleting a friend deletes them too.
// Derived facts (last contact, maintenance status, balance) are never stored;
// see package ledger.
//
// # Design Principles
//
// 1. **IDs, not pointers**: relationships are expressed through FriendID
// 2. **Tagged variants**: ThemeColor is resolved once, not re-checked per render
// 3. **Wire compatibility**: enum values match archives written by older clients
package models
