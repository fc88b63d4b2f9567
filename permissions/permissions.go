// Package permissions builds the access-control descriptors attached to
// stored documents and files, and evaluates them for the storage backends.
package permissions

import "prolific/models"

func ownerGrants(ownerID string) []models.Grant {
	owner := models.UserPrincipal(ownerID)
	return []models.Grant{
		{Capability: models.CapabilityRead, Principal: owner},
		{Capability: models.CapabilityUpdate, Principal: owner},
		{Capability: models.CapabilityDelete, Principal: owner},
	}
}

// ForPost returns the descriptor for a post owned by ownerID. The owner
// always gets read, update and delete; a published post is also readable
// by anyone.
func ForPost(ownerID string, status models.Status) []models.Grant {
	grants := ownerGrants(ownerID)
	if status == models.StatusPublished {
		grants = append(grants, models.Grant{Capability: models.CapabilityRead, Principal: models.PrincipalAny})
	}
	return grants
}

// ForFile returns the descriptor for an uploaded file. Cover images are
// public regardless of the post status.
func ForFile(ownerID string) []models.Grant {
	return append(ownerGrants(ownerID), models.Grant{Capability: models.CapabilityRead, Principal: models.PrincipalAny})
}

// Allows reports whether userID holds capability under grants. An empty
// userID is the anonymous principal and only matches public grants.
func Allows(grants []models.Grant, capability models.Capability, userID string) bool {
	for _, g := range grants {
		if g.Capability != capability {
			continue
		}
		if g.Principal == models.PrincipalAny {
			return true
		}
		if userID != "" && g.Principal == models.UserPrincipal(userID) {
			return true
		}
	}
	return false
}

// IsPublic reports whether the descriptor carries a public read grant.
func IsPublic(grants []models.Grant) bool {
	return Allows(grants, models.CapabilityRead, "")
}
