// Package model contains the domain types shared by the repository, service and HTTP layers.
// Types carry JSON tags only; persistence mapping lives in the repository implementations.
package model

// Roles recognised by the authorization middleware. Role is free text in storage.
const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)
