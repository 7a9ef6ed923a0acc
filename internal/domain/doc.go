// Package domain contains the core business entities of the task manager:
// users, their tasks, and the rules that govern creating and updating them.
// It is independent of any specific infrastructure or delivery mechanism.
package domain
