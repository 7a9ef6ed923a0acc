// Package service contains the application use cases of the task manager.
// It orchestrates domain objects and the repositories defined in
// internal/store to register and authenticate users, manage their profiles
// and avatars, and create, list, update and delete their tasks.
//
// Key components:
//
// 1. Service Interfaces:
//   - UserService covers registration, login, logout, profile updates,
//     account deletion and avatar storage
//   - TaskService covers owner-scoped task CRUD and listing
//
// 2. Use Case Implementations:
//   - Apply transactional boundaries through store.Transactor when an
//     operation reads and writes in one step
//   - Enqueue welcome and goodbye emails on the background job runner
//     through a Notifier
//
// 3. Background Maintenance:
//   - TokenSweeper periodically removes expired session tokens
//
// 4. Error Handling:
//   - Expected conditions are returned as sentinel errors from domain,
//     store and auth so callers can match them with errors.Is
//   - Unexpected failures are wrapped in ServiceError
//
// The service layer depends on domain entities and repository interfaces,
// never on a specific infrastructure implementation.
package service
